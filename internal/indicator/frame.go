package indicator

import (
	"fmt"
	"sort"

	"github.com/alejandrodnm/swingdesk/internal/domain"
)

// Nombres de columnas fijas.
const (
	ColRSI         = "RSI"
	ColMACD        = "MACD"
	ColMACDSignal  = "MACD_Signal"
	ColMACDHist    = "MACD_Hist"
	ColATR         = "ATR"
	ColATRMA       = "ATR_MA"
	ColBBUpper     = "BB_Upper"
	ColBBMiddle    = "BB_Middle"
	ColBBLower     = "BB_Lower"
	ColADX         = "ADX"
	ColPlusDI      = "Plus_DI"
	ColMinusDI     = "Minus_DI"
	ColVolumeRatio = "Volume_Ratio"
	ColHigherHigh  = "Higher_High"
	ColLowerLow    = "Lower_Low"
)

// Nombres de columnas parametrizadas por longitud.
func SMAName(n int) string { return fmt.Sprintf("SMA_%d", n) }
func EMAName(n int) string { return fmt.Sprintf("EMA_%d", n) }
func ROCName(n int) string { return fmt.Sprintf("ROC_%d", n) }
func HighName(n int) string { return fmt.Sprintf("High_%d", n) }
func LowName(n int) string { return fmt.Sprintf("Low_%d", n) }
func VolumeSMAName(n int) string { return fmt.Sprintf("Volume_SMA_%d", n) }

// Frame es una serie de bars anotada con columnas de indicadores.
// Los bars no se modifican; las columnas siempre tienen la misma longitud que los bars.
type Frame struct {
	bars domain.BarSeries
	cols map[string]Series
}

// NewFrame crea un Frame sin columnas sobre los bars dados.
func NewFrame(bars domain.BarSeries) *Frame {
	return &Frame{bars: bars, cols: make(map[string]Series)}
}

// Bars devuelve la serie de bars subyacente.
func (f *Frame) Bars() domain.BarSeries { return f.bars }

// Len devuelve el número de bars.
func (f *Frame) Len() int { return len(f.bars) }

// Set añade o reemplaza una columna. La serie debe tener la longitud del Frame.
func (f *Frame) Set(name string, s Series) {
	if len(s) != len(f.bars) {
		panic(fmt.Sprintf("indicator.Frame.Set: column %q has %d values, frame has %d bars", name, len(s), len(f.bars)))
	}
	f.cols[name] = s
}

// Has devuelve true si la columna existe.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Col devuelve la columna, o una serie NA si no existe.
func (f *Frame) Col(name string) Series {
	if s, ok := f.cols[name]; ok {
		return s
	}
	return NewSeries(len(f.bars))
}

// At devuelve el valor de la columna en el índice i. NA si no existe o i está fuera de rango.
func (f *Frame) At(name string, i int) Value {
	s, ok := f.cols[name]
	if !ok {
		return NA
	}
	return s.At(i)
}

// Close devuelve el cierre del bar i como Value.
func (f *Frame) Close(i int) Value {
	if i < 0 || i >= len(f.bars) {
		return NA
	}
	return Of(f.bars[i].Close)
}

// Names devuelve los nombres de columna ordenados.
func (f *Frame) Names() []string {
	names := make([]string, 0, len(f.cols))
	for n := range f.cols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Row devuelve todas las columnas en el índice i.
func (f *Frame) Row(i int) map[string]Value {
	row := make(map[string]Value, len(f.cols))
	for n, s := range f.cols {
		row[n] = s.At(i)
	}
	return row
}
