package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/swingdesk/config"
	"github.com/alejandrodnm/swingdesk/internal/adapters/csvdata"
	"github.com/alejandrodnm/swingdesk/internal/adapters/notify"
	"github.com/alejandrodnm/swingdesk/internal/adapters/storage"
	"github.com/alejandrodnm/swingdesk/internal/adapters/yahoo"
	"github.com/alejandrodnm/swingdesk/internal/application/backtest"
	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/alejandrodnm/swingdesk/internal/ports"
	"github.com/alejandrodnm/swingdesk/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	stock := flag.String("stock", "", "backtest a single stock by name (default: all configured stocks)")
	portfolio := flag.Bool("portfolio", false, "add the equal-weight portfolio analysis")
	watch := flag.Bool("watch", false, "re-run the backtest on the configured cron schedule")
	history := flag.Int("history", 0, "list stored runs of the last N days and exit")
	start := flag.String("start", "", "start date YYYY-MM-DD (overrides config)")
	end := flag.String("end", "", "end date YYYY-MM-DD (overrides config)")
	trades := flag.Bool("trades", false, "print the paired trades table per stock")
	dryRun := flag.Bool("dry-run", false, "do not persist runs")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if *start != "" {
		cfg.Backtest.Start = *start
	}
	if *end != "" {
		cfg.Backtest.End = *end
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid flags", "err", err)
		os.Exit(1)
	}
	r, _ := cfg.Range()

	slog.Info("swingdesk starting",
		"config", *configPath,
		"source", cfg.Data.Source,
		"range", fmt.Sprintf("%s..%s", cfg.Backtest.Start, cfg.Backtest.End),
		"stocks", len(cfg.Stocks),
		"portfolio", *portfolio,
		"watch", *watch,
	)

	bars, err := newBarProvider(cfg)
	if err != nil {
		slog.Error("failed to build data source", "err", err)
		os.Exit(1)
	}

	var store *storage.SQLiteStorage
	if !*dryRun || *history > 0 {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	console := notify.NewConsole(*trades)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *history > 0 {
		if err := runHistory(ctx, store, console, *history); err != nil {
			slog.Error("history failed", "err", err)
			os.Exit(1)
		}
		return
	}

	var runStorage ports.RunStorage
	if store != nil {
		runStorage = store
	}
	svc := backtest.New(backtest.Config{
		Stocks:    cfg.DomainStocks(),
		Workers:   cfg.Backtest.Workers,
		Benchmark: cfg.BenchmarkStock(),
	}, bars, strategy.DefaultRegistry(), runStorage, console)

	job := func(ctx context.Context) error {
		_, err := runOnce(ctx, svc, *stock, *portfolio, r)
		return err
	}

	if *watch {
		if err := runWatch(ctx, cfg.Schedule.Cron, job); err != nil {
			slog.Error("watch mode failed", "err", err)
			os.Exit(1)
		}
		slog.Info("swingdesk stopped cleanly")
		return
	}

	if err := job(ctx); err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}
}

// runOnce elige el modo: un stock, todos, o todos más portfolio.
func runOnce(ctx context.Context, svc *backtest.Service, stock string, portfolio bool, r domain.DateRange) (domain.Run, error) {
	switch {
	case stock != "":
		return svc.RunStock(ctx, stock, r)
	case portfolio:
		return svc.RunPortfolio(ctx, r)
	default:
		return svc.Run(ctx, r)
	}
}

func newBarProvider(cfg *config.Config) (ports.BarProvider, error) {
	switch cfg.Data.Source {
	case config.SourceYahoo:
		return yahoo.NewClient(cfg.Yahoo.Base, cfg.Yahoo.Interval, cfg.Yahoo.Range), nil
	default:
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return csvdata.NewLoader(cfg.Data.Dir, loc), nil
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// stdout es para los reportes
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
