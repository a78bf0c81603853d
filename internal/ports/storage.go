package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/domain"
)

// RunStorage persiste las ejecuciones del backtest.
type RunStorage interface {
	// SaveRun persiste el resumen, las métricas por stock, las señales y los cierres.
	SaveRun(ctx context.Context, run domain.Run) error

	// GetRuns devuelve las ejecuciones iniciadas en el rango dado, más recientes primero.
	// Los resultados traen métricas, señales y cierres; no las series.
	GetRuns(ctx context.Context, from, to time.Time) ([]domain.Run, error)

	// GetSignals devuelve las señales de una ejecución agrupadas por stock.
	GetSignals(ctx context.Context, runID string) (map[string][]domain.TradeSignal, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
