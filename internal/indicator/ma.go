package indicator

// SMA es la media aritmética de los últimos n valores.
// No disponible para los primeros n-1 puntos.
func SMA(x []float64, n int) Series {
	return RollingMean(FromFloats(x), n)
}

// RollingMean es la media móvil de una Series. Una ventana con algún valor no
// disponible produce NA.
func RollingMean(s Series, n int) Series {
	out := NewSeries(len(s))
	if n <= 0 {
		return out
	}
	var sum float64
	missing := 0
	for i, v := range s {
		if v.OK {
			sum += v.V
		} else {
			missing++
		}
		if i >= n {
			old := s[i-n]
			if old.OK {
				sum -= old.V
			} else {
				missing--
			}
		}
		if i >= n-1 && missing == 0 {
			out[i] = Of(sum / float64(n))
		}
	}
	return out
}

// EMA es la media exponencial estándar (k = 2/(n+1)), sembrada con la SMA de los
// primeros n valores. No disponible hasta haber observado n valores.
func EMA(x []float64, n int) Series {
	return EMASeries(FromFloats(x), n)
}

// EMASeries calcula la EMA empezando en el primer valor disponible de s.
// Así la línea de señal del MACD arranca cuando la línea MACD ya existe.
func EMASeries(s Series, n int) Series {
	out := NewSeries(len(s))
	start := s.FirstDefined()
	if n <= 0 || start < 0 || len(s)-start < n {
		return out
	}
	var seed float64
	for i := start; i < start+n; i++ {
		if !s[i].OK {
			return out
		}
		seed += s[i].V
	}
	prev := seed / float64(n)
	out[start+n-1] = Of(prev)

	k := 2.0 / float64(n+1)
	for i := start + n; i < len(s); i++ {
		if !s[i].OK {
			break
		}
		prev = (s[i].V-prev)*k + prev
		out[i] = Of(prev)
	}
	return out
}

// wilder aplica el suavizado de Wilder a xs[1:]: semilla = media de xs[1..n],
// luego avg = (avg*(n-1) + x) / n. El primer valor disponible es el índice n.
// xs[0] se ignora porque las series de cambios no tienen valor en el primer bar.
func wilder(xs []float64, n int) Series {
	out := NewSeries(len(xs))
	if n <= 0 || len(xs) <= n {
		return out
	}
	var avg float64
	for i := 1; i <= n; i++ {
		avg += xs[i]
	}
	avg /= float64(n)
	out[n] = Of(avg)
	for i := n + 1; i < len(xs); i++ {
		avg = (avg*float64(n-1) + xs[i]) / float64(n)
		out[i] = Of(avg)
	}
	return out
}
