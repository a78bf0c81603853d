package ports

import (
	"context"

	"github.com/alejandrodnm/swingdesk/internal/domain"
)

// Reporter presenta los resultados del backtest al usuario.
type Reporter interface {
	// Report muestra señales, trades y métricas de cada stock.
	Report(ctx context.Context, results []domain.StockResult) error

	// ReportPortfolio muestra las métricas del portfolio combinado.
	ReportPortfolio(ctx context.Context, p domain.PortfolioResult) error
}
