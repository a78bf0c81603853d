package strategy

import (
	"sort"

	"github.com/alejandrodnm/swingdesk/internal/domain"
)

// CalculateReturns asigna a cada bar cubierto por una señal LONG el retorno
// (close - entry) / entry respecto al precio de esa señal.
//
// La ventana de la señal k es (T_k, T_k+1]: estrictamente después de su timestamp
// hasta el de la siguiente señal incluido, o hasta el final de la serie si es la última.
// Los bars fuera de cualquier ventana valen 0. Los cierres no se usan aquí.
func CalculateReturns(bars domain.BarSeries, signals []domain.TradeSignal) domain.ReturnSeries {
	out := domain.NewReturnSeries(bars.Index())
	eachWindow(bars, signals, func(i int, sig domain.TradeSignal) {
		out.Values[i] = (bars[i].Close - sig.Price) / sig.Price
	})
	return out
}

// StepReturns usa las mismas ventanas que CalculateReturns pero asigna el retorno
// bar a bar close[i]/close[i-1] - 1, que es lo que se puede acumular en una curva de equity.
func StepReturns(bars domain.BarSeries, signals []domain.TradeSignal) domain.ReturnSeries {
	out := domain.NewReturnSeries(bars.Index())
	eachWindow(bars, signals, func(i int, sig domain.TradeSignal) {
		prev := sig.Price
		if i > 0 && bars[i-1].Time.After(sig.Timestamp) {
			prev = bars[i-1].Close
		}
		if prev != 0 {
			out.Values[i] = bars[i].Close/prev - 1
		}
	})
	return out
}

func eachWindow(bars domain.BarSeries, signals []domain.TradeSignal, fn func(i int, sig domain.TradeSignal)) {
	for k, sig := range signals {
		if sig.Type != domain.SignalLong || sig.Price == 0 {
			continue
		}
		start := sort.Search(len(bars), func(i int) bool { return bars[i].Time.After(sig.Timestamp) })
		for i := start; i < len(bars); i++ {
			if k+1 < len(signals) && bars[i].Time.After(signals[k+1].Timestamp) {
				break
			}
			fn(i, sig)
		}
	}
}

// Trades empareja cada entrada con su cierre.
func Trades(res Result) []domain.Trade {
	byEntry := make(map[int64]domain.PositionClosed, len(res.Closes))
	for _, c := range res.Closes {
		byEntry[c.EntryTimestamp.UnixNano()] = c
	}
	trades := make([]domain.Trade, 0, len(res.Signals))
	for _, sig := range res.Signals {
		c, ok := byEntry[sig.Timestamp.UnixNano()]
		if !ok {
			continue
		}
		trades = append(trades, domain.Trade{Entry: sig, Exit: c})
	}
	return trades
}
