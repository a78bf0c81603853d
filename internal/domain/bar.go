package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrEmptySeries se devuelve cuando una operación necesita al menos un bar.
	ErrEmptySeries = errors.New("empty bar series")
	// ErrUnorderedBars indica timestamps duplicados o no ascendentes.
	ErrUnorderedBars = errors.New("bar timestamps must be unique and ascending")
	// ErrInvalidBar indica un precio o volumen no finito o negativo.
	ErrInvalidBar = errors.New("invalid bar")
)

// Bar es una muestra OHLCV inmutable.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// BarSeries es una serie de bars ordenada por Time ascendente, sin duplicados.
type BarSeries []Bar

// Validate comprueba la forma estructural de la serie: orden estricto y precios finitos.
// Una serie vacía es válida (las estrategias simplemente no emiten señales).
func (s BarSeries) Validate() error {
	for i, b := range s {
		if !finite(b.Open) || !finite(b.High) || !finite(b.Low) || !finite(b.Close) || !finite(b.Volume) {
			return fmt.Errorf("%w: non-finite value at %s", ErrInvalidBar, b.Time.Format(time.RFC3339))
		}
		if b.Volume < 0 {
			return fmt.Errorf("%w: negative volume at %s", ErrInvalidBar, b.Time.Format(time.RFC3339))
		}
		if i > 0 && !b.Time.After(s[i-1].Time) {
			return fmt.Errorf("%w: %s after %s", ErrUnorderedBars,
				b.Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Index devuelve los timestamps de la serie.
func (s BarSeries) Index() []time.Time {
	out := make([]time.Time, len(s))
	for i, b := range s {
		out[i] = b.Time
	}
	return out
}

// Closes devuelve los precios de cierre.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs devuelve los máximos.
func (s BarSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows devuelve los mínimos.
func (s BarSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes devuelve los volúmenes.
func (s BarSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// Last devuelve el último bar. ok=false si la serie está vacía.
func (s BarSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Filter devuelve la sub-serie cuyos timestamps caen dentro del rango.
// Los límites se interpretan en la location de la serie (ver DateRange.In).
func (s BarSeries) Filter(r DateRange) BarSeries {
	if len(s) == 0 || r.IsZero() {
		return s
	}
	r = r.In(s[0].Time.Location())
	out := make(BarSeries, 0, len(s))
	for _, b := range s {
		if r.Contains(b.Time) {
			out = append(out, b)
		}
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
