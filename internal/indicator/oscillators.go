package indicator

// RSI calcula el Relative Strength Index con suavizado de Wilder.
// Necesita n+1 bars; el primer valor disponible es el índice n.
func RSI(closes []float64, n int) Series {
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	avgGain := wilder(gains, n)
	avgLoss := wilder(losses, n)

	out := NewSeries(len(closes))
	for i := range closes {
		g, l := avgGain[i], avgLoss[i]
		if !g.OK || !l.OK {
			continue
		}
		if l.V == 0 {
			if g.V == 0 {
				out[i] = Of(50)
			} else {
				out[i] = Of(100)
			}
			continue
		}
		rs := g.V / l.V
		out[i] = Of(100 - 100/(1+rs))
	}
	return out
}

// MACDResult agrupa las tres líneas del MACD.
type MACDResult struct {
	Line   Series
	Signal Series
	Hist   Series
}

// MACD calcula EMA(fast) - EMA(slow), su EMA(signal) y el histograma.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	line := NewSeries(len(closes))
	for i := range closes {
		line[i] = fastEMA[i].Sub(slowEMA[i])
	}
	sig := EMASeries(line, signal)

	hist := NewSeries(len(closes))
	for i := range closes {
		hist[i] = line[i].Sub(sig[i])
	}
	return MACDResult{Line: line, Signal: sig, Hist: hist}
}

// ROC es el cambio porcentual respecto a n bars atrás.
func ROC(x []float64, n int) Series {
	out := NewSeries(len(x))
	if n <= 0 {
		return out
	}
	for i := n; i < len(x); i++ {
		out[i] = Of(x[i]).Sub(Of(x[i-n])).Div(Of(x[i-n])).Scale(100)
	}
	return out
}
