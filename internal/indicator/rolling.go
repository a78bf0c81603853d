package indicator

// RollingMax es el máximo de los últimos n valores, incluyendo el actual.
// Para comparar un breakout contra los bars anteriores usar .Shift(1).
func RollingMax(x []float64, n int) Series {
	return rolling(x, n, func(a, b float64) bool { return a > b })
}

// RollingMin es el mínimo de los últimos n valores, incluyendo el actual.
func RollingMin(x []float64, n int) Series {
	return rolling(x, n, func(a, b float64) bool { return a < b })
}

func rolling(x []float64, n int, better func(a, b float64) bool) Series {
	out := NewSeries(len(x))
	if n <= 0 {
		return out
	}
	// Deque monótono de índices: el frente siempre es el extremo de la ventana.
	dq := make([]int, 0, n)
	for i := range x {
		for len(dq) > 0 && dq[0] <= i-n {
			dq = dq[1:]
		}
		for len(dq) > 0 && !better(x[dq[len(dq)-1]], x[i]) {
			dq = dq[:len(dq)-1]
		}
		dq = append(dq, i)
		if i >= n-1 {
			out[i] = Of(x[dq[0]])
		}
	}
	return out
}

// Ratio divide a entre b punto a punto.
func Ratio(a, b Series) Series {
	out := NewSeries(len(a))
	for i := range a {
		out[i] = a[i].Div(b.At(i))
	}
	return out
}
