package domain

import (
	"sort"
	"time"
)

// ReturnSeries asocia a cada timestamp de una serie de bars un retorno escalar.
// Index y Values tienen siempre la misma longitud; el índice es el de la serie de entrada.
type ReturnSeries struct {
	Index  []time.Time
	Values []float64
}

// NewReturnSeries crea una serie a cero sobre el índice dado.
func NewReturnSeries(index []time.Time) ReturnSeries {
	idx := make([]time.Time, len(index))
	copy(idx, index)
	return ReturnSeries{Index: idx, Values: make([]float64, len(index))}
}

// Len devuelve el número de puntos.
func (r ReturnSeries) Len() int {
	return len(r.Values)
}

// At devuelve el valor para el timestamp t. ok=false si t no está en el índice.
func (r ReturnSeries) At(t time.Time) (float64, bool) {
	i := sort.Search(len(r.Index), func(i int) bool { return !r.Index[i].Before(t) })
	if i < len(r.Index) && r.Index[i].Equal(t) {
		return r.Values[i], true
	}
	return 0, false
}

// NonZero devuelve cuántos puntos tienen valor distinto de cero.
func (r ReturnSeries) NonZero() int {
	n := 0
	for _, v := range r.Values {
		if v != 0 {
			n++
		}
	}
	return n
}

// Last devuelve el último valor, o 0 si la serie está vacía.
func (r ReturnSeries) Last() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[len(r.Values)-1]
}
