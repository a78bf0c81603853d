package indicator

import "math"

// TrueRange devuelve el true range de cada bar. El primer bar usa high-low.
func TrueRange(high, low, close []float64) []float64 {
	out := make([]float64, len(close))
	for i := range close {
		tr := high[i] - low[i]
		if i > 0 {
			pc := close[i-1]
			tr = math.Max(tr, math.Max(math.Abs(high[i]-pc), math.Abs(low[i]-pc)))
		}
		out[i] = tr
	}
	return out
}

// ATR es el average true range con suavizado de Wilder.
// El primer valor disponible es el índice n.
func ATR(high, low, close []float64, n int) Series {
	return wilder(TrueRange(high, low, close), n)
}

// BollingerResult agrupa las tres bandas.
type BollingerResult struct {
	Upper  Series
	Middle Series
	Lower  Series
}

// Bollinger calcula SMA(n) ± k desviaciones estándar (poblacionales) de n bars.
func Bollinger(closes []float64, n int, k float64) BollingerResult {
	mid, std := meanStd(closes, n)
	upper := NewSeries(len(closes))
	lower := NewSeries(len(closes))
	for i := range closes {
		if !mid[i].OK || !std[i].OK {
			continue
		}
		upper[i] = Of(mid[i].V + k*std[i].V)
		lower[i] = Of(mid[i].V - k*std[i].V)
	}
	return BollingerResult{Upper: upper, Middle: mid, Lower: lower}
}

// meanStd devuelve media y desviación estándar poblacional sobre ventanas de p.
func meanStd(x []float64, p int) (mean, std Series) {
	mean = NewSeries(len(x))
	std = NewSeries(len(x))
	if p <= 0 {
		return
	}
	var sum, sum2 float64
	for i := range x {
		sum += x[i]
		sum2 += x[i] * x[i]
		if i >= p {
			sum -= x[i-p]
			sum2 -= x[i-p] * x[i-p]
		}
		if i < p-1 {
			continue
		}
		m := sum / float64(p)
		v := sum2/float64(p) - m*m
		if v < 0 {
			v = 0
		}
		mean[i] = Of(m)
		std[i] = Of(math.Sqrt(v))
	}
	return
}

// ADXResult agrupa ADX y los indicadores direccionales.
type ADXResult struct {
	ADX     Series
	PlusDI  Series
	MinusDI Series
}

// ADX calcula el Average Directional Index de Wilder.
// +DI/-DI están disponibles desde el índice n y ADX desde el índice 2n-1.
func ADX(high, low, close []float64, n int) ADXResult {
	size := len(close)
	plusDM := make([]float64, size)
	minusDM := make([]float64, size)
	for i := 1; i < size; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	atr := ATR(high, low, close, n)
	smPlus := wilder(plusDM, n)
	smMinus := wilder(minusDM, n)

	res := ADXResult{
		ADX:     NewSeries(size),
		PlusDI:  NewSeries(size),
		MinusDI: NewSeries(size),
	}
	dx := make([]float64, 0, size)
	dxStart := -1
	for i := 0; i < size; i++ {
		pdi := smPlus[i].Div(atr[i]).Scale(100)
		mdi := smMinus[i].Div(atr[i]).Scale(100)
		res.PlusDI[i] = pdi
		res.MinusDI[i] = mdi
		if !pdi.OK || !mdi.OK {
			continue
		}
		if dxStart < 0 {
			dxStart = i
		}
		d := 0.0
		if s := pdi.V + mdi.V; s != 0 {
			d = 100 * math.Abs(pdi.V-mdi.V) / s
		}
		dx = append(dx, d)
	}
	if dxStart < 0 || len(dx) < n {
		return res
	}

	// Wilder sobre DX, sembrado con la media de los primeros n valores.
	var avg float64
	for i := 0; i < n; i++ {
		avg += dx[i]
	}
	avg /= float64(n)
	res.ADX[dxStart+n-1] = Of(avg)
	for i := n; i < len(dx); i++ {
		avg = (avg*float64(n-1) + dx[i]) / float64(n)
		res.ADX[dxStart+i] = Of(avg)
	}
	return res
}
