package indicator

import "github.com/alejandrodnm/swingdesk/internal/domain"

// RelativeStrength devuelve, alineado con stock, el cambio fraccional a period bars
// del stock menos el del benchmark en el mismo timestamp. NA donde alguno de los dos
// no tiene dato.
func RelativeStrength(stock, benchmark domain.BarSeries, period int) Series {
	out := NewSeries(len(stock))
	if period <= 0 {
		return out
	}
	stockChg := pctChange(stock.Closes(), period)
	benchChg := pctChange(benchmark.Closes(), period)

	byTime := make(map[int64]Value, len(benchmark))
	for i, b := range benchmark {
		byTime[b.Time.UnixNano()] = benchChg[i]
	}
	for i, b := range stock {
		bv, ok := byTime[b.Time.UnixNano()]
		if !ok {
			continue
		}
		out[i] = stockChg[i].Sub(bv)
	}
	return out
}

func pctChange(x []float64, n int) Series {
	out := NewSeries(len(x))
	for i := n; i < len(x); i++ {
		out[i] = Of(x[i]).Div(Of(x[i-n])).Sub(Of(1))
	}
	return out
}
