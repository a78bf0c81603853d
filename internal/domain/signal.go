package domain

import "time"

// SignalType es la dirección de una señal de trading.
type SignalType string

const (
	SignalLong SignalType = "LONG"
	// SignalShort está reservado; ninguna estrategia actual lo emite.
	SignalShort SignalType = "SHORT"
)

// TradeSignal es una entrada emitida por una estrategia.
// StopLoss y TakeProfit son metadatos informativos: el scan no los ejecuta.
type TradeSignal struct {
	Timestamp  time.Time
	Type       SignalType
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
}

// Razones de cierre que no vienen de una regla de la variante.
const (
	CloseReasonEndOfData = "end_of_data"
)

// PositionClosed registra explícitamente el cierre de una posición.
// No es una señal: CalculateReturns no lo usa, pero permite reconstruir trades completos.
type PositionClosed struct {
	Timestamp      time.Time
	Price          float64
	EntryTimestamp time.Time
	EntryPrice     float64
	Reason         string // nombre de la regla de salida, o CloseReasonEndOfData
}

// EndOfData devuelve true si el cierre es el sentinel de fin de serie.
func (c PositionClosed) EndOfData() bool {
	return c.Reason == CloseReasonEndOfData
}

// Trade es un ciclo completo entrada → salida.
type Trade struct {
	Entry TradeSignal
	Exit  PositionClosed
}

// Return devuelve el retorno simple del trade (fraccional).
func (t Trade) Return() float64 {
	if t.Entry.Price == 0 {
		return 0
	}
	return (t.Exit.Price - t.Entry.Price) / t.Entry.Price
}

// HoldingDays devuelve los días de calendario completos entre entrada y salida.
func (t Trade) HoldingDays() int {
	return CalendarDays(t.Entry.Timestamp, t.Exit.Timestamp)
}

// CalendarDays devuelve los días completos transcurridos entre from y to
// (floor de la diferencia en horas / 24). Con bars intradía dos timestamps del
// mismo día dan 0.
func CalendarDays(from, to time.Time) int {
	d := to.Sub(from)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}
