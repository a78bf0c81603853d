package strategy

import (
	"fmt"

	"github.com/alejandrodnm/swingdesk/internal/indicator"
)

// Nombres de las variantes estándar.
const (
	MomentumName    = "momentum"
	Breakout20Name  = "breakout20"
	GoldenCrossName = "cross"
	Breakout30Name  = "breakout30"
)

// Momentum es la variante de tendencia con filtros de volatilidad, momentum, volumen
// y patrón de precio. Stop y target se derivan del ATR.
func Momentum() Variant {
	sma20, sma50, sma200 := indicator.SMAName(20), indicator.SMAName(50), indicator.SMAName(200)
	roc5, roc20 := indicator.ROCName(5), indicator.ROCName(20)

	return Variant{
		Name:        MomentumName,
		Description: "Mean reversion with momentum filter",
		Warmup:      200,
		Indicators: []indicator.Annotator{
			indicator.AddSMA(20), indicator.AddSMA(50), indicator.AddSMA(200),
			indicator.AddRSI(14),
			indicator.AddATR(14), indicator.AddATRMA(20),
			indicator.AddMACD(12, 26, 9),
			indicator.AddPricePatterns(5),
			indicator.AddVolumeRatio(20),
			indicator.AddROC(5), indicator.AddROC(20),
		},
		Entry: []Rule{
			{Name: "volatility", Check: func(s State) bool {
				atr, atrMA := s.At(indicator.ColATR), s.At(indicator.ColATRMA)
				return atr.Lt(atrMA.Scale(1.1)) && atr.Gt(atrMA.Scale(0.7))
			}},
			{Name: "trend", Check: func(s State) bool {
				return s.Close().Gt(s.At(sma20)) &&
					s.At(sma20).Gt(s.At(sma50)) &&
					s.At(sma50).Gt(s.At(sma200))
			}},
			{Name: "momentum", Check: func(s State) bool {
				return s.At(indicator.ColRSI).Between(45, 65) &&
					s.At(indicator.ColMACD).Gt(s.At(indicator.ColMACDSignal)) &&
					s.At(indicator.ColMACDHist).GtF(0) &&
					s.At(roc5).GtF(0) &&
					s.At(roc20).GtF(0)
			}},
			{Name: "volume", Check: func(s State) bool {
				return s.At(indicator.ColVolumeRatio).GtF(1.3)
			}},
			{Name: "pattern", Check: func(s State) bool {
				return s.At(indicator.ColHigherHigh).True() &&
					!s.At(indicator.ColLowerLow).True() &&
					s.Close().Gt(s.At(sma20).Scale(1.01))
			}},
		},
		Exit: []Rule{
			{Name: "volatility_exit", Check: func(s State) bool {
				return s.At(indicator.ColATR).Gt(s.At(indicator.ColATRMA).Scale(1.3))
			}},
			{Name: "trend_exit", Check: func(s State) bool {
				return s.Close().Lt(s.At(sma20))
			}},
			{Name: "momentum_exit", Check: func(s State) bool {
				return s.At(indicator.ColMACD).Lt(s.At(indicator.ColMACDSignal)) &&
					s.At(indicator.ColMACDHist).LtF(0)
			}},
			{Name: "rsi_exit", Check: func(s State) bool {
				return s.At(indicator.ColRSI).GtF(70)
			}},
			stopLossRule(0.98),
			takeProfitRule(1.04),
			maxHoldRule(8),
		},
		Levels: func(s State) (float64, float64) {
			atr := s.At(indicator.ColATR).Or(0)
			return s.Price - 1.2*atr, s.Price + 2.0*atr
		},
		Reason: "Strong trend with momentum and volume confirmation",
	}
}

// Breakout20 compra cuando el cierre supera el máximo de los 20 bars anteriores.
func Breakout20() Variant {
	v := breakout(Breakout20Name, 20, 0.97)
	v.Description = "Breakout momentum"
	return v
}

// Breakout30 compra cuando el cierre supera el máximo de los 30 bars anteriores.
func Breakout30() Variant {
	v := breakout(Breakout30Name, 30, 0.95)
	v.Description = "Infrastructure play with momentum"
	return v
}

// breakout construye una variante de ruptura: entra si close > máximo de los highs
// de window bars hasta el bar anterior; sale a los 10 días o si el precio cae a
// stopFactor × entrada.
func breakout(name string, window int, stopFactor float64) Variant {
	high := indicator.HighName(window)
	return Variant{
		Name:       name,
		Warmup:     window,
		Indicators: []indicator.Annotator{indicator.AddRollingHigh(window)},
		Entry: []Rule{
			{Name: "breakout", Check: func(s State) bool {
				return s.Close().Gt(s.Prev(high))
			}},
		},
		Exit: []Rule{
			maxHoldRule(10),
			stopLossRule(stopFactor),
		},
		Levels: func(s State) (float64, float64) {
			return s.Price * stopFactor, s.Price * 1.12
		},
		Reason: fmt.Sprintf("%d-day high breakout", window),
	}
}

// GoldenCross entra cuando la SMA50 cruza por encima de la SMA200 y sale en el
// cruce contrario.
func GoldenCross() Variant {
	fast, slow := indicator.SMAName(50), indicator.SMAName(200)
	return Variant{
		Name:        GoldenCrossName,
		Description: "Sector rotation with technical confirmation",
		Warmup:      200,
		Indicators:  []indicator.Annotator{indicator.AddSMA(50), indicator.AddSMA(200)},
		Entry: []Rule{
			{Name: "golden_cross", Check: func(s State) bool {
				return s.Prev(fast).Le(s.Prev(slow)) && s.At(fast).Gt(s.At(slow))
			}},
		},
		Exit: []Rule{
			{Name: "death_cross", Check: func(s State) bool {
				return s.Prev(fast).Ge(s.Prev(slow)) && s.At(fast).Lt(s.At(slow))
			}},
		},
		Levels: func(s State) (float64, float64) {
			return s.Price * 0.94, s.Price * 1.12
		},
		Reason: "50/200 SMA golden cross",
	}
}

func stopLossRule(factor float64) Rule {
	return Rule{Name: "stop_loss", Check: func(s State) bool {
		return s.Price <= s.EntryPrice*factor
	}}
}

func takeProfitRule(factor float64) Rule {
	return Rule{Name: "take_profit", Check: func(s State) bool {
		return s.Price >= s.EntryPrice*factor
	}}
}

func maxHoldRule(days int) Rule {
	return Rule{Name: "max_hold", Check: func(s State) bool {
		return s.HeldDays() >= days
	}}
}
