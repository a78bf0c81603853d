package domain

import "math"

const tradingDaysPerYear = 252

// Metrics son las métricas de rendimiento de una curva de equity.
// Los porcentajes están en unidades de porcentaje (12.5 = 12.5%).
type Metrics struct {
	TotalReturnPct      float64
	AnnualizedReturnPct float64
	SharpeRatio         float64
	MaxDrawdownPct      float64
	WinRatePct          float64
	AvgWinPct           float64
	AvgLossPct          float64
	ProfitFactor        float64
}

// Equity construye la curva de equity acumulando retornos bar a bar:
// equity[i] = Π (1 + step[k]) para k <= i.
func Equity(step ReturnSeries) ReturnSeries {
	out := NewReturnSeries(step.Index)
	acc := 1.0
	for i, r := range step.Values {
		acc *= 1 + r
		out.Values[i] = acc
	}
	return out
}

// Drawdown devuelve equity / máximo previo - 1 para cada punto (≤ 0).
func Drawdown(equity ReturnSeries) ReturnSeries {
	out := NewReturnSeries(equity.Index)
	peak := math.Inf(-1)
	for i, v := range equity.Values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			out.Values[i] = v/peak - 1
		}
	}
	return out
}

// ComputeMetrics calcula las métricas sobre una curva de equity.
// Una curva vacía o con primer valor 0 devuelve métricas a cero.
func ComputeMetrics(equity ReturnSeries) Metrics {
	n := equity.Len()
	if n == 0 || equity.Values[0] == 0 {
		return Metrics{}
	}

	// Cambios porcentuales bar a bar (el primero es 0).
	changes := make([]float64, n)
	for i := 1; i < n; i++ {
		prev := equity.Values[i-1]
		if prev != 0 {
			changes[i] = equity.Values[i]/prev - 1
		}
	}

	var m Metrics
	m.TotalReturnPct = (equity.Values[n-1]/equity.Values[0] - 1) * 100

	days := CalendarDays(equity.Index[0], equity.Index[n-1])
	if days > 0 {
		m.AnnualizedReturnPct = (math.Pow(1+m.TotalReturnPct/100, 365/float64(days)) - 1) * 100
	}

	if n > 1 {
		mean, std := meanStd(changes)
		if std != 0 {
			m.SharpeRatio = math.Sqrt(tradingDaysPerYear) * mean / std
		}
	}

	worst := 0.0
	for _, d := range Drawdown(equity).Values {
		worst = math.Min(worst, d)
	}
	m.MaxDrawdownPct = worst * 100

	var wins, losses []float64
	for _, c := range changes {
		switch {
		case c > 0:
			wins = append(wins, c)
		case c < 0:
			losses = append(losses, c)
		}
	}
	if active := len(wins) + len(losses); active > 0 {
		m.WinRatePct = float64(len(wins)) / float64(active) * 100
	}
	grossProfit, grossLoss := sum(wins), math.Abs(sum(losses))
	if len(wins) > 0 {
		m.AvgWinPct = grossProfit / float64(len(wins)) * 100
	}
	if len(losses) > 0 {
		m.AvgLossPct = sum(losses) / float64(len(losses)) * 100
	}
	if grossLoss != 0 {
		m.ProfitFactor = grossProfit / grossLoss
	}
	return m
}

// meanStd devuelve la media y la desviación estándar muestral (n-1).
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean = sum(xs) / float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
