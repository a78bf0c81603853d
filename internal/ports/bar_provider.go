package ports

import (
	"context"

	"github.com/alejandrodnm/swingdesk/internal/domain"
)

// BarProvider obtiene la serie OHLCV de un stock.
type BarProvider interface {
	// LoadBars devuelve los bars del stock dentro del rango (inclusivo), en orden
	// ascendente y validados. Un rango cero devuelve la serie completa.
	LoadBars(ctx context.Context, stock domain.Stock, r domain.DateRange) (domain.BarSeries, error)
}
