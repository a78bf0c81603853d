package indicator

import (
	"math"
	"strconv"
)

// Value es un valor de indicador que puede no estar disponible (warm-up, división por cero).
// Todas las comparaciones con un valor no disponible devuelven false, así que un
// predicado que dependa de él nunca dispara.
type Value struct {
	V  float64
	OK bool
}

// NA es el valor no disponible.
var NA = Value{}

// Of envuelve un float. NaN e Inf se tratan como no disponibles.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return Value{V: v, OK: true}
}

// Flag representa un booleano como 1/0 siempre disponible.
func Flag(b bool) Value {
	if b {
		return Value{V: 1, OK: true}
	}
	return Value{V: 0, OK: true}
}

// True devuelve true si el valor está disponible y es distinto de cero.
func (a Value) True() bool { return a.OK && a.V != 0 }

func (a Value) Gt(b Value) bool { return a.OK && b.OK && a.V > b.V }
func (a Value) Ge(b Value) bool { return a.OK && b.OK && a.V >= b.V }
func (a Value) Lt(b Value) bool { return a.OK && b.OK && a.V < b.V }
func (a Value) Le(b Value) bool { return a.OK && b.OK && a.V <= b.V }

func (a Value) GtF(f float64) bool { return a.Gt(Of(f)) }
func (a Value) LtF(f float64) bool { return a.Lt(Of(f)) }

// Between devuelve true si lo < a < hi (ambos exclusivos).
func (a Value) Between(lo, hi float64) bool { return a.GtF(lo) && a.LtF(hi) }

// Scale multiplica por f propagando la no disponibilidad.
func (a Value) Scale(f float64) Value {
	if !a.OK {
		return NA
	}
	return Of(a.V * f)
}

// Sub devuelve a - b.
func (a Value) Sub(b Value) Value {
	if !a.OK || !b.OK {
		return NA
	}
	return Of(a.V - b.V)
}

// Div devuelve a / b; no disponible si b es 0.
func (a Value) Div(b Value) Value {
	if !a.OK || !b.OK || b.V == 0 {
		return NA
	}
	return Of(a.V / b.V)
}

// Or devuelve el valor si está disponible, o def en otro caso.
func (a Value) Or(def float64) float64 {
	if !a.OK {
		return def
	}
	return a.V
}

func (a Value) String() string {
	if !a.OK {
		return "NA"
	}
	return strconv.FormatFloat(a.V, 'f', 4, 64)
}

// Series es una serie de valores alineada 1:1 con una serie de bars.
type Series []Value

// NewSeries devuelve una serie de n valores no disponibles.
func NewSeries(n int) Series {
	return make(Series, n)
}

// FromFloats envuelve un slice de floats.
func FromFloats(xs []float64) Series {
	out := make(Series, len(xs))
	for i, x := range xs {
		out[i] = Of(x)
	}
	return out
}

// At devuelve el valor en i, o NA si i está fuera de rango.
func (s Series) At(i int) Value {
	if i < 0 || i >= len(s) {
		return NA
	}
	return s[i]
}

// Shift desplaza la serie k posiciones hacia adelante (s'[i] = s[i-k]).
func (s Series) Shift(k int) Series {
	out := NewSeries(len(s))
	for i := range s {
		out[i] = s.At(i - k)
	}
	return out
}

// FirstDefined devuelve el índice del primer valor disponible, o -1.
func (s Series) FirstDefined() int {
	for i, v := range s {
		if v.OK {
			return i
		}
	}
	return -1
}

// Defined devuelve cuántos valores están disponibles.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if v.OK {
			n++
		}
	}
	return n
}

// Floats devuelve los valores como floats, con NaN donde no están disponibles.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if v.OK {
			out[i] = v.V
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
