package indicator

// Annotator añade una o más columnas a un Frame.
type Annotator func(f *Frame)

// Annotate aplica los annotators en orden. Los que dependen de otra columna
// (ATR_MA de ATR, Volume_Ratio de Volume_SMA) deben ir después.
func Annotate(f *Frame, annotators ...Annotator) *Frame {
	for _, a := range annotators {
		a(f)
	}
	return f
}

func AddSMA(n int) Annotator {
	return func(f *Frame) { f.Set(SMAName(n), SMA(f.bars.Closes(), n)) }
}

func AddEMA(n int) Annotator {
	return func(f *Frame) { f.Set(EMAName(n), EMA(f.bars.Closes(), n)) }
}

func AddRSI(n int) Annotator {
	return func(f *Frame) { f.Set(ColRSI, RSI(f.bars.Closes(), n)) }
}

func AddMACD(fast, slow, signal int) Annotator {
	return func(f *Frame) {
		m := MACD(f.bars.Closes(), fast, slow, signal)
		f.Set(ColMACD, m.Line)
		f.Set(ColMACDSignal, m.Signal)
		f.Set(ColMACDHist, m.Hist)
	}
}

func AddATR(n int) Annotator {
	return func(f *Frame) {
		f.Set(ColATR, ATR(f.bars.Highs(), f.bars.Lows(), f.bars.Closes(), n))
	}
}

// AddATRMA añade la media móvil del ATR. Requiere la columna ATR.
func AddATRMA(n int) Annotator {
	return func(f *Frame) { f.Set(ColATRMA, RollingMean(f.Col(ColATR), n)) }
}

func AddBollinger(n int, k float64) Annotator {
	return func(f *Frame) {
		bb := Bollinger(f.bars.Closes(), n, k)
		f.Set(ColBBUpper, bb.Upper)
		f.Set(ColBBMiddle, bb.Middle)
		f.Set(ColBBLower, bb.Lower)
	}
}

func AddADX(n int) Annotator {
	return func(f *Frame) {
		a := ADX(f.bars.Highs(), f.bars.Lows(), f.bars.Closes(), n)
		f.Set(ColADX, a.ADX)
		f.Set(ColPlusDI, a.PlusDI)
		f.Set(ColMinusDI, a.MinusDI)
	}
}

func AddROC(n int) Annotator {
	return func(f *Frame) { f.Set(ROCName(n), ROC(f.bars.Closes(), n)) }
}

// AddRollingHigh añade el máximo de los highs de los últimos n bars (incluye el actual).
func AddRollingHigh(n int) Annotator {
	return func(f *Frame) { f.Set(HighName(n), RollingMax(f.bars.Highs(), n)) }
}

// AddRollingLow añade el mínimo de los lows de los últimos n bars (incluye el actual).
func AddRollingLow(n int) Annotator {
	return func(f *Frame) { f.Set(LowName(n), RollingMin(f.bars.Lows(), n)) }
}

// AddVolumeRatio añade Volume_SMA_n y volumen / Volume_SMA_n.
func AddVolumeRatio(n int) Annotator {
	return func(f *Frame) {
		ma := SMA(f.bars.Volumes(), n)
		f.Set(VolumeSMAName(n), ma)
		f.Set(ColVolumeRatio, Ratio(FromFloats(f.bars.Volumes()), ma))
	}
}

// AddPricePatterns añade Higher_High y Lower_Low: el máximo (mínimo) de los últimos n
// bars comparado con el de los n bars anteriores. Sin datos suficientes el flag es 0.
func AddPricePatterns(n int) Annotator {
	return func(f *Frame) {
		hi := RollingMax(f.bars.Highs(), n)
		lo := RollingMin(f.bars.Lows(), n)
		prevHi, prevLo := hi.Shift(n), lo.Shift(n)

		hh := NewSeries(f.Len())
		ll := NewSeries(f.Len())
		for i := range hh {
			hh[i] = Flag(hi[i].Gt(prevHi[i]))
			ll[i] = Flag(lo[i].Lt(prevLo[i]))
		}
		f.Set(ColHigherHigh, hh)
		f.Set(ColLowerLow, ll)
	}
}

// Standard es el conjunto de indicadores del dashboard por stock.
func Standard() []Annotator {
	return []Annotator{
		AddRSI(14),
		AddMACD(12, 26, 9),
		AddBollinger(20, 2),
		AddADX(14),
		AddATR(14),
		AddSMA(20), AddSMA(50), AddSMA(100),
		AddEMA(20), AddEMA(50), AddEMA(100),
		AddVolumeRatio(20),
		AddROC(20),
	}
}
