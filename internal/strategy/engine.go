package strategy

import (
	"fmt"

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/alejandrodnm/swingdesk/internal/indicator"
)

// Result es la salida de un scan: entradas LONG y cierres explícitos.
// Hay exactamente un cierre por entrada; el último puede ser el sentinel de fin de datos.
type Result struct {
	Signals []domain.TradeSignal
	Closes  []domain.PositionClosed
}

// Scan recorre el frame una vez hacia adelante desde el warm-up de la variante.
//
// Estado FLAT → LONG cuando todas las reglas de entrada se cumplen en el bar.
// Estado LONG → FLAT cuando cualquier regla de salida se cumple; ese bar no puede
// volver a abrir. Stop loss y take profit de la señal no se comprueban aquí.
func Scan(v Variant, f *indicator.Frame) Result {
	var res Result
	bars := f.Bars()

	open := false
	var entry domain.TradeSignal

	for i := v.Warmup; i < len(bars); i++ {
		st := State{Frame: f, I: i, Price: bars[i].Close, Date: bars[i].Time}

		if open {
			st.EntryPrice, st.EntryDate = entry.Price, entry.Timestamp
			if rule, fired := anyRule(v.Exit, st); fired {
				res.Closes = append(res.Closes, closeAt(entry, bars[i], rule.Name))
				open = false
			}
			continue
		}

		if !allRules(v.Entry, st) {
			continue
		}
		stop, target := v.Levels(st)
		entry = domain.TradeSignal{
			Timestamp:  bars[i].Time,
			Type:       domain.SignalLong,
			Price:      bars[i].Close,
			StopLoss:   stop,
			TakeProfit: target,
			Reason:     v.Reason,
		}
		res.Signals = append(res.Signals, entry)
		open = true
	}

	if open {
		last, _ := bars.Last()
		res.Closes = append(res.Closes, closeAt(entry, last, domain.CloseReasonEndOfData))
	}
	return res
}

func allRules(rules []Rule, st State) bool {
	if len(rules) == 0 {
		return false
	}
	for _, r := range rules {
		if !r.Check(st) {
			return false
		}
	}
	return true
}

func anyRule(rules []Rule, st State) (Rule, bool) {
	for _, r := range rules {
		if r.Check(st) {
			return r, true
		}
	}
	return Rule{}, false
}

func closeAt(entry domain.TradeSignal, bar domain.Bar, reason string) domain.PositionClosed {
	return domain.PositionClosed{
		Timestamp:      bar.Time,
		Price:          bar.Close,
		EntryTimestamp: entry.Timestamp,
		EntryPrice:     entry.Price,
		Reason:         reason,
	}
}

// Strategy es una variante aplicada a la serie de un stock. Los indicadores se
// calculan una vez en New; GenerateSignals y CalculateReturns recalculan desde cero
// en cada llamada y no modifican el estado.
type Strategy struct {
	variant Variant
	frame   *indicator.Frame
}

// New valida la serie y calcula los indicadores que la variante necesita.
func New(v Variant, bars domain.BarSeries) (*Strategy, error) {
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("strategy.New: %w", err)
	}
	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("strategy.New %s: %w", v.Name, err)
	}
	f := indicator.Annotate(indicator.NewFrame(bars), v.Indicators...)
	return &Strategy{variant: v, frame: f}, nil
}

// Name devuelve el nombre de la variante.
func (s *Strategy) Name() string { return s.variant.Name }

// Variant devuelve la configuración de la variante.
func (s *Strategy) Variant() Variant { return s.variant }

// Frame devuelve los bars anotados con los indicadores de la variante.
func (s *Strategy) Frame() *indicator.Frame { return s.frame }

// Run ejecuta el scan completo.
func (s *Strategy) Run() Result {
	return Scan(s.variant, s.frame)
}

// GenerateSignals devuelve las entradas LONG en orden cronológico.
func (s *Strategy) GenerateSignals() []domain.TradeSignal {
	return s.Run().Signals
}

// CalculateReturns devuelve la serie de retornos de posición, con el mismo índice que los bars.
func (s *Strategy) CalculateReturns() domain.ReturnSeries {
	return CalculateReturns(s.frame.Bars(), s.GenerateSignals())
}
