package strategy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/alejandrodnm/swingdesk/internal/indicator"
)

// ErrUnknownVariant se devuelve cuando se pide una variante que no está en el registry.
var ErrUnknownVariant = errors.New("unknown strategy variant")

// State es lo que una regla ve en el bar i.
type State struct {
	Frame      *indicator.Frame
	I          int
	Price      float64 // cierre del bar i
	Date       time.Time
	EntryPrice float64 // 0 si no hay posición
	EntryDate  time.Time
}

// At devuelve la columna en el bar actual.
func (s State) At(col string) indicator.Value { return s.Frame.At(col, s.I) }

// Prev devuelve la columna en el bar anterior.
func (s State) Prev(col string) indicator.Value { return s.Frame.At(col, s.I-1) }

// Close devuelve el cierre actual como Value.
func (s State) Close() indicator.Value { return indicator.Of(s.Price) }

// HeldDays devuelve los días de calendario desde la entrada.
func (s State) HeldDays() int { return domain.CalendarDays(s.EntryDate, s.Date) }

// Rule es un predicado con nombre. El nombre de una regla de salida acaba como
// Reason del PositionClosed.
type Rule struct {
	Name  string
	Check func(s State) bool
}

// Levels calcula stop loss y take profit en la entrada.
type Levels func(s State) (stop, target float64)

// Variant es la configuración de una estrategia: qué indicadores calcula, desde qué
// bar empieza el scan, qué reglas abren (todas) y cierran (cualquiera) la posición.
type Variant struct {
	Name        string
	Description string
	Warmup      int
	Indicators  []indicator.Annotator
	Entry       []Rule
	Exit        []Rule
	Levels      Levels
	Reason      string
}

// Validate comprueba que la variante está completa.
func (v Variant) Validate() error {
	switch {
	case v.Name == "":
		return fmt.Errorf("strategy: variant without name")
	case v.Warmup < 1:
		return fmt.Errorf("strategy %s: warmup must be >= 1", v.Name)
	case len(v.Entry) == 0:
		return fmt.Errorf("strategy %s: no entry rules", v.Name)
	case v.Levels == nil:
		return fmt.Errorf("strategy %s: no stop/target levels", v.Name)
	}
	return nil
}

// Registry mantiene las variantes disponibles indexadas por nombre.
type Registry map[string]Variant

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// DefaultRegistry devuelve un registry con las cuatro variantes estándar.
func DefaultRegistry() Registry {
	r := NewRegistry()
	for _, v := range []Variant{Momentum(), Breakout20(), GoldenCross(), Breakout30()} {
		r.Register(v)
	}
	return r
}

// Register añade una variante al registry.
func (r Registry) Register(v Variant) {
	r[v.Name] = v
}

// Get devuelve la variante por nombre.
func (r Registry) Get(name string) (Variant, bool) {
	v, ok := r[name]
	return v, ok
}

// Lookup es como Get pero devuelve ErrUnknownVariant.
func (r Registry) Lookup(name string) (Variant, error) {
	v, ok := r[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Names devuelve los nombres registrados, ordenados.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
