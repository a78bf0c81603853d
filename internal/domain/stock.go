package domain

import (
	"errors"
	"time"
)

// ErrUnknownStock se devuelve cuando se pide un stock que no está configurado.
var ErrUnknownStock = errors.New("unknown stock")

// Stock es un instrumento configurado y la estrategia que se le aplica.
type Stock struct {
	Name     string // nombre visible, p.ej. "Adani Ports"
	File     string // fichero CSV dentro del data dir, p.ej. "ADANIPORTS-15minute"
	Symbol   string // ticker para proveedores remotos, p.ej. "ADANIPORTS.NS"
	Strategy string // nombre de la variante en el registry de estrategias
}

// DateRange es un rango de fechas inclusivo. Un límite cero significa "sin límite".
//
// Los límites llegan normalmente sin zona horaria (fechas civiles del config o de un flag);
// In los reinterpreta con el mismo reloj de pared en la location de la serie, para que la
// comparación contra timestamps con offset sea consistente.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero devuelve true si el rango no tiene ningún límite.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// In reinterpreta ambos límites con el mismo reloj de pared en loc.
func (r DateRange) In(loc *time.Location) DateRange {
	if loc == nil {
		return r
	}
	return DateRange{Start: localize(r.Start, loc), End: localize(r.End, loc)}
}

// Contains devuelve true si t está dentro del rango (ambos límites inclusivos).
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

func localize(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), loc)
}
