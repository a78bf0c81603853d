package indicator

import (
	"testing"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(closes ...float64) domain.BarSeries {
	base := time.Date(2017, 6, 1, 9, 15, 0, 0, time.UTC)
	bars := make(domain.BarSeries, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func assertNAUntil(t *testing.T, s Series, first int) {
	t.Helper()
	for i := 0; i < first && i < len(s); i++ {
		assert.False(t, s[i].OK, "index %d should be NA", i)
	}
	if first < len(s) {
		assert.True(t, s[first].OK, "index %d should be defined", first)
	}
}

func TestValue_ComparisonsWithNAAreFalse(t *testing.T) {
	one := Of(1)
	assert.False(t, NA.Gt(one))
	assert.False(t, NA.Lt(one))
	assert.False(t, one.Gt(NA))
	assert.False(t, one.Le(NA))
	assert.False(t, NA.GtF(-1e9))
	assert.False(t, NA.Between(-1, 1))
	assert.False(t, NA.True())
	assert.True(t, one.GtF(0.5))
	assert.True(t, Of(50).Between(45, 65))
	assert.False(t, Of(45).Between(45, 65))
}

func TestValue_ArithmeticPropagatesNA(t *testing.T) {
	assert.False(t, NA.Scale(2).OK)
	assert.False(t, Of(1).Sub(NA).OK)
	assert.False(t, Of(1).Div(Of(0)).OK)
	assert.InDelta(t, 0.5, Of(1).Div(Of(2)).V, 1e-12)
}

func TestSMA_Correctness(t *testing.T) {
	s := SMA([]float64{1, 2, 3, 4, 5}, 3)
	assertNAUntil(t, s, 2)
	assert.InDelta(t, 2.0, s[2].V, 1e-12)
	assert.InDelta(t, 3.0, s[3].V, 1e-12)
	assert.InDelta(t, 4.0, s[4].V, 1e-12)
}

func TestSMA_ShortInputAllNA(t *testing.T) {
	s := SMA([]float64{1, 2, 3}, 20)
	assert.Len(t, s, 3)
	assert.Zero(t, s.Defined())
}

func TestRollingMean_NAInWindow(t *testing.T) {
	s := Series{NA, Of(2), Of(4), Of(6)}
	m := RollingMean(s, 2)
	assert.False(t, m[1].OK)
	assert.InDelta(t, 3.0, m[2].V, 1e-12)
	assert.InDelta(t, 5.0, m[3].V, 1e-12)
}

func TestEMA_SeededWithSMA(t *testing.T) {
	e := EMA([]float64{1, 2, 3, 4, 5}, 3)
	assertNAUntil(t, e, 2)
	// k = 0.5
	assert.InDelta(t, 2.0, e[2].V, 1e-12)
	assert.InDelta(t, 3.0, e[3].V, 1e-12)
	assert.InDelta(t, 4.0, e[4].V, 1e-12)
}

func TestRSI_AllUp_Is100(t *testing.T) {
	r := RSI(ramp(30, 100, 1), 14)
	assertNAUntil(t, r, 14)
	assert.InDelta(t, 100.0, r[29].V, 1e-9)
}

func TestRSI_AllDown_Is0(t *testing.T) {
	r := RSI(ramp(30, 100, -1), 14)
	assert.InDelta(t, 0.0, r[29].V, 1e-9)
}

func TestRSI_Flat_Is50(t *testing.T) {
	r := RSI(ramp(30, 100, 0), 14)
	assert.InDelta(t, 50.0, r[29].V, 1e-9)
}

func TestRSI_Alternating(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 10
		} else {
			closes[i] = 11
		}
	}
	// 7 subidas y 7 bajadas de 1 → RS = 1 → RSI = 50
	r := RSI(closes, 14)
	assert.InDelta(t, 50.0, r[14].V, 1e-9)
}

func TestMACD_WarmupAndHistogram(t *testing.T) {
	closes := ramp(60, 100, 0.5)
	m := MACD(closes, 12, 26, 9)
	assertNAUntil(t, m.Line, 25)
	assertNAUntil(t, m.Signal, 33)
	assertNAUntil(t, m.Hist, 33)
	for i := 33; i < len(closes); i++ {
		assert.InDelta(t, m.Line[i].V-m.Signal[i].V, m.Hist[i].V, 1e-12)
	}
	// Tendencia alcista: la EMA rápida va por encima de la lenta.
	assert.Greater(t, m.Line[59].V, 0.0)
}

func TestATR_ConstantRange(t *testing.T) {
	bars := makeBars(ramp(20, 100, 0)...)
	a := ATR(bars.Highs(), bars.Lows(), bars.Closes(), 14)
	assertNAUntil(t, a, 14)
	assert.InDelta(t, 2.0, a[19].V, 1e-12)
}

func TestTrueRange_UsesPreviousClose(t *testing.T) {
	tr := TrueRange([]float64{11, 15}, []float64{9, 14}, []float64{10, 14.5})
	assert.InDelta(t, 2.0, tr[0], 1e-12)
	assert.InDelta(t, 5.0, tr[1], 1e-12) // |15 - 10|
}

func TestBollinger_ConstantSeriesCollapses(t *testing.T) {
	bb := Bollinger(ramp(25, 50, 0), 20, 2)
	assertNAUntil(t, bb.Middle, 19)
	assert.InDelta(t, 50.0, bb.Upper[24].V, 1e-9)
	assert.InDelta(t, 50.0, bb.Lower[24].V, 1e-9)
}

func TestBollinger_PopulationStd(t *testing.T) {
	bb := Bollinger([]float64{1, 3}, 2, 2)
	// media 2, std poblacional 1
	assert.InDelta(t, 2.0, bb.Middle[1].V, 1e-12)
	assert.InDelta(t, 4.0, bb.Upper[1].V, 1e-12)
	assert.InDelta(t, 0.0, bb.Lower[1].V, 1e-12)
}

func TestADX_UptrendFavoursPlusDI(t *testing.T) {
	bars := makeBars(ramp(60, 100, 2)...)
	a := ADX(bars.Highs(), bars.Lows(), bars.Closes(), 14)
	assertNAUntil(t, a.PlusDI, 14)
	assertNAUntil(t, a.ADX, 27)
	assert.Greater(t, a.PlusDI[59].V, a.MinusDI[59].V)
	assert.InDelta(t, 100.0, a.ADX[59].V, 1e-9)
}

func TestROC_Percent(t *testing.T) {
	r := ROC([]float64{100, 110, 99}, 1)
	assert.False(t, r[0].OK)
	assert.InDelta(t, 10.0, r[1].V, 1e-12)
	assert.InDelta(t, -10.0, r[2].V, 1e-12)
}

func TestROC_ZeroBaseIsNA(t *testing.T) {
	r := ROC([]float64{0, 1}, 1)
	assert.False(t, r[1].OK)
}

func TestRollingMaxMin(t *testing.T) {
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	mx := RollingMax(x, 3)
	mn := RollingMin(x, 3)
	assertNAUntil(t, mx, 2)
	assert.Equal(t, []float64{4, 4, 5, 9, 9, 9}, mx.Floats()[2:])
	assert.Equal(t, []float64{1, 1, 1, 1, 2, 2}, mn.Floats()[2:])
}

func TestSeries_Shift(t *testing.T) {
	s := Series{Of(1), Of(2), Of(3)}.Shift(1)
	assert.False(t, s[0].OK)
	assert.Equal(t, 1.0, s[1].V)
	assert.Equal(t, 2.0, s[2].V)
}

func TestFrame_MissingColumnIsNA(t *testing.T) {
	f := NewFrame(makeBars(1, 2, 3))
	assert.False(t, f.At("nope", 1).OK)
	assert.Len(t, f.Col("nope"), 3)
	assert.False(t, f.Has("nope"))
	assert.False(t, f.Close(10).OK)
	assert.Equal(t, 2.0, f.Close(1).V)
}

func TestFrame_SetLengthMismatchPanics(t *testing.T) {
	f := NewFrame(makeBars(1, 2, 3))
	assert.Panics(t, func() { f.Set("x", NewSeries(2)) })
}

func TestAnnotate_DoesNotMutateBars(t *testing.T) {
	bars := makeBars(ramp(40, 10, 1)...)
	orig := make(domain.BarSeries, len(bars))
	copy(orig, bars)

	f := Annotate(NewFrame(bars), Standard()...)
	assert.Equal(t, orig, f.Bars())
	assert.True(t, f.Has(ColBBUpper))
	assert.True(t, f.Has(SMAName(100)))
	assert.True(t, f.Has(VolumeSMAName(20)))
	// 40 bars < 100: SMA_100 nunca está disponible, pero existe.
	assert.Zero(t, f.Col(SMAName(100)).Defined())
}

func TestAnnotate_EmptySeries(t *testing.T) {
	f := Annotate(NewFrame(nil), Standard()...)
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Col(ColRSI))
}

func TestAddVolumeRatio(t *testing.T) {
	bars := makeBars(1, 2, 3)
	bars[2].Volume = 4000
	f := Annotate(NewFrame(bars), AddVolumeRatio(3))
	// media (1000+1000+4000)/3 = 2000
	assert.InDelta(t, 2.0, f.At(ColVolumeRatio, 2).V, 1e-12)
	assert.False(t, f.At(ColVolumeRatio, 1).OK)
}

func TestAddPricePatterns(t *testing.T) {
	closes := ramp(12, 100, 1)
	f := Annotate(NewFrame(makeBars(closes...)), AddPricePatterns(5))
	// Sin 10 bars de historia no hay patrón.
	assert.False(t, f.At(ColHigherHigh, 8).True())
	assert.True(t, f.At(ColHigherHigh, 9).True())
	assert.False(t, f.At(ColLowerLow, 9).True())
	// El flag existe (=0) aunque no haya datos.
	assert.True(t, f.At(ColHigherHigh, 0).OK)
}

func TestRelativeStrength_AlignsByTimestamp(t *testing.T) {
	stock := makeBars(100, 110, 121)
	bench := makeBars(100, 100, 100)[1:] // le falta el primer bar

	rs := RelativeStrength(stock, bench, 1)
	require.Len(t, rs, 3)
	assert.False(t, rs[0].OK)
	assert.False(t, rs[1].OK) // el benchmark no tiene cambio en su primer bar
	assert.InDelta(t, 0.10, rs[2].V, 1e-12)
}
