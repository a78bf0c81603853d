package backtest

// concurrent.go: worker pool para el backtest paralelo de stocks.
//
// Cada stock es independiente (sus propios bars, indicadores y estado de posición),
// así que se reparten entre workers sin estado compartido.

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/swingdesk/internal/domain"
)

type analyzeFunc func(ctx context.Context, stock domain.Stock) (domain.StockResult, error)

// analyzeStocksConcurrent analiza todos los stocks usando un worker pool.
// Los fallos por stock se registran y se omiten; el error devuelto agrupa todos
// los fallos. Si workers <= 0 usa runtime.NumCPU() × 2.
func analyzeStocksConcurrent(
	ctx context.Context,
	analyze analyzeFunc,
	stocks []domain.Stock,
	workers int,
) ([]domain.StockResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > len(stocks) {
		workers = len(stocks)
	}

	type outcome struct {
		result domain.StockResult
		err    error
	}

	workCh := make(chan domain.Stock, len(stocks))
	resultCh := make(chan outcome, len(stocks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stock := range workCh {
				if err := ctx.Err(); err != nil {
					resultCh <- outcome{err: err}
					continue
				}
				res, err := analyze(ctx, stock)
				if err != nil {
					slog.Warn("backtest failed", "stock", stock.Name, "err", err)
					resultCh <- outcome{err: err}
					continue
				}
				resultCh <- outcome{result: res}
			}
		}()
	}

	for _, s := range stocks {
		workCh <- s
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]domain.StockResult, 0, len(stocks))
	var errs []error
	for o := range resultCh {
		if o.err != nil {
			errs = append(errs, o.err)
			continue
		}
		results = append(results, o.result)
	}

	slog.Debug("concurrent backtest complete",
		"stocks", len(stocks),
		"ok", len(results),
		"failed", len(errs),
		"workers", workers,
	)
	return results, errors.Join(errs...)
}
