package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/alejandrodnm/swingdesk/internal/ports"
	"github.com/alejandrodnm/swingdesk/internal/strategy"
	"github.com/google/uuid"
)

// Config contiene la configuración del servicio de backtest.
type Config struct {
	Stocks    []domain.Stock
	Workers   int          // goroutines para el backtest paralelo (0 = NumCPU*2)
	Benchmark domain.Stock // serie contra la que se mide la fuerza relativa; vacío = sin benchmark
}

// Service orquesta el backtest de todos los stocks configurados, persiste la
// ejecución y la presenta. storage y reporter pueden ser nil.
type Service struct {
	cfg      Config
	bars     ports.BarProvider
	storage  ports.RunStorage
	reporter ports.Reporter
	analyzer *Analyzer
}

// New crea un Service con todas las dependencias inyectadas.
func New(
	cfg Config,
	bars ports.BarProvider,
	registry strategy.Registry,
	storage ports.RunStorage,
	reporter ports.Reporter,
) *Service {
	return &Service{
		cfg:      cfg,
		bars:     bars,
		storage:  storage,
		reporter: reporter,
		analyzer: NewAnalyzer(bars, registry),
	}
}

// Backtest analiza los stocks dados en paralelo y devuelve los resultados en el
// orden de entrada. Un stock que falla se omite; solo es error si fallan todos.
func (s *Service) Backtest(ctx context.Context, stocks []domain.Stock, r domain.DateRange) ([]domain.StockResult, error) {
	if len(stocks) == 0 {
		return nil, fmt.Errorf("backtest.Backtest: no stocks configured")
	}

	benchmark := s.loadBenchmark(ctx, r)
	analyze := func(ctx context.Context, stock domain.Stock) (domain.StockResult, error) {
		return s.analyzer.Analyze(ctx, stock, r, benchmark)
	}

	results, err := analyzeStocksConcurrent(ctx, analyze, stocks, s.cfg.Workers)
	if len(results) == 0 {
		return nil, fmt.Errorf("backtest.Backtest: every stock failed: %w", err)
	}
	domain.SortResults(results, stocks)
	return results, nil
}

// Run hace el backtest de todos los stocks, lo presenta y lo persiste.
func (s *Service) Run(ctx context.Context, r domain.DateRange) (domain.Run, error) {
	return s.run(ctx, s.cfg.Stocks, r, false)
}

// RunPortfolio es Run más el portfolio equal-weight de todos los stocks.
func (s *Service) RunPortfolio(ctx context.Context, r domain.DateRange) (domain.Run, error) {
	return s.run(ctx, s.cfg.Stocks, r, true)
}

// RunStock hace el backtest de un único stock por nombre (sin distinguir mayúsculas).
func (s *Service) RunStock(ctx context.Context, name string, r domain.DateRange) (domain.Run, error) {
	stock, err := s.Stock(name)
	if err != nil {
		return domain.Run{}, err
	}
	return s.run(ctx, []domain.Stock{stock}, r, false)
}

// Stock busca un stock configurado por nombre.
func (s *Service) Stock(name string) (domain.Stock, error) {
	for _, st := range s.cfg.Stocks {
		if strings.EqualFold(st.Name, name) {
			return st, nil
		}
	}
	return domain.Stock{}, fmt.Errorf("backtest.Stock: %w: %q", domain.ErrUnknownStock, name)
}

func (s *Service) run(ctx context.Context, stocks []domain.Stock, r domain.DateRange, portfolio bool) (domain.Run, error) {
	start := time.Now()

	results, err := s.Backtest(ctx, stocks, r)
	if err != nil {
		return domain.Run{}, err
	}

	run := domain.Run{
		ID:        uuid.NewString(),
		StartedAt: start,
		Range:     r,
		Results:   results,
	}
	if portfolio {
		p := domain.BuildPortfolio(results)
		run.Portfolio = &p
	}

	s.publish(ctx, run)

	slog.Info("backtest complete",
		"run_id", run.ID,
		"stocks", len(results),
		"signals", countSignals(results),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return run, nil
}

// publish presenta y persiste la ejecución. Los fallos se registran pero no
// invalidan el resultado.
func (s *Service) publish(ctx context.Context, run domain.Run) {
	if s.reporter != nil {
		if err := s.reporter.Report(ctx, run.Results); err != nil {
			slog.Warn("reporter error", "err", err)
		}
		if run.Portfolio != nil {
			if err := s.reporter.ReportPortfolio(ctx, *run.Portfolio); err != nil {
				slog.Warn("reporter error", "err", err)
			}
		}
	}

	if s.storage != nil {
		if err := s.storage.SaveRun(ctx, run); err != nil {
			slog.Warn("storage error", "run_id", run.ID, "err", err)
		}
	}
}

// loadBenchmark carga la serie del benchmark. Un fallo desactiva la fuerza relativa
// para esta ejecución.
func (s *Service) loadBenchmark(ctx context.Context, r domain.DateRange) domain.BarSeries {
	b := s.cfg.Benchmark
	if b.File == "" && b.Symbol == "" {
		return nil
	}
	bars, err := s.bars.LoadBars(ctx, b, r)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("benchmark unavailable", "benchmark", b.Name, "err", err)
		}
		return nil
	}
	return bars
}

func countSignals(results []domain.StockResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Signals)
	}
	return n
}
