package backtest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/application/backtest"
	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/alejandrodnm/swingdesk/internal/indicator"
	"github.com/alejandrodnm/swingdesk/internal/ports"
	"github.com/alejandrodnm/swingdesk/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockBarProvider struct {
	bars map[string]domain.BarSeries
	errs map[string]error

	mu     sync.Mutex
	ranges []domain.DateRange
}

func (m *mockBarProvider) LoadBars(ctx context.Context, stock domain.Stock, r domain.DateRange) (domain.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.ranges = append(m.ranges, r)
	m.mu.Unlock()
	if err := m.errs[stock.Name]; err != nil {
		return nil, err
	}
	return m.bars[stock.Name], nil
}

type mockStorage struct {
	saved []domain.Run
	err   error
}

func (m *mockStorage) SaveRun(_ context.Context, run domain.Run) error {
	m.saved = append(m.saved, run)
	return m.err
}

func (m *mockStorage) GetRuns(_ context.Context, _, _ time.Time) ([]domain.Run, error) {
	return m.saved, nil
}

func (m *mockStorage) GetSignals(_ context.Context, _ string) (map[string][]domain.TradeSignal, error) {
	return nil, nil
}

func (m *mockStorage) Close() error { return nil }

type mockReporter struct {
	reported  []domain.StockResult
	portfolio *domain.PortfolioResult
	err       error
}

func (m *mockReporter) Report(_ context.Context, results []domain.StockResult) error {
	m.reported = results
	return m.err
}

func (m *mockReporter) ReportPortfolio(_ context.Context, p domain.PortfolioResult) error {
	m.portfolio = &p
	return m.err
}

// --- helpers ---

var (
	acc       = domain.Stock{Name: "ACC", File: "ACC-15minute", Strategy: strategy.MomentumName}
	adaniEnt  = domain.Stock{Name: "Adani Enterprises", File: "ADANIENT-15minute", Strategy: strategy.Breakout20Name}
	benchmark = domain.Stock{Name: "NIFTY", File: "NIFTY-15minute"}
	t0        = time.Date(2018, 1, 1, 9, 15, 0, 0, time.UTC)
)

func makeBars(closes []float64) domain.BarSeries {
	bars := make(domain.BarSeries, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Time:   t0.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

// breakoutCloses: plano en 100 y desde el bar 21 sube 1 por bar.
// Breakout20 entra en el 21 y sale por max_hold en el 31.
func breakoutCloses() []float64 {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
		if i >= 21 {
			closes[i] = 110 + float64(i-21)
		}
	}
	return closes
}

func flatCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 250 + float64(i%3)
	}
	return closes
}

func newProvider() *mockBarProvider {
	return &mockBarProvider{
		bars: map[string]domain.BarSeries{
			acc.Name:       makeBars(flatCloses(40)),
			adaniEnt.Name:  makeBars(breakoutCloses()),
			benchmark.Name: makeBars(flatCloses(40)),
		},
		errs: map[string]error{},
	}
}

func newService(cfg backtest.Config, bars *mockBarProvider, st ports.RunStorage, rep ports.Reporter) *backtest.Service {
	if cfg.Stocks == nil {
		cfg.Stocks = []domain.Stock{acc, adaniEnt}
	}
	return backtest.New(cfg, bars, strategy.DefaultRegistry(), st, rep)
}

// --- tests ---

func TestService_Run_ReportsAndPersistsInConfigOrder(t *testing.T) {
	st, rep := &mockStorage{}, &mockReporter{}
	svc := newService(backtest.Config{Workers: 4}, newProvider(), st, rep)

	run, err := svc.Run(context.Background(), domain.DateRange{})
	require.NoError(t, err)

	require.Len(t, run.Results, 2)
	assert.Equal(t, "ACC", run.Results[0].Stock.Name)
	assert.Equal(t, "Adani Enterprises", run.Results[1].Stock.Name)
	assert.NotEmpty(t, run.ID)
	assert.Nil(t, run.Portfolio)

	ae := run.Results[1]
	require.Len(t, ae.Signals, 1)
	assert.Equal(t, t0.AddDate(0, 0, 21), ae.Signals[0].Timestamp)
	require.Len(t, ae.Trades, 1)
	assert.Equal(t, "max_hold", ae.Trades[0].Exit.Reason)
	assert.InDelta(t, 10/110.0, ae.Trades[0].Return(), 1e-12)

	assert.Equal(t, 40, ae.Bars)
	assert.Equal(t, 40, ae.Returns.Len())
	assert.Equal(t, t0, ae.From)
	assert.Equal(t, t0.AddDate(0, 0, 39), ae.To)
	assert.InDelta(t, (128/110.0-1)*100, ae.Metrics.TotalReturnPct, 1e-9)

	assert.Contains(t, ae.Indicators, indicator.ColRSI)
	assert.NotContains(t, ae.Indicators, indicator.SMAName(100))
	assert.Nil(t, ae.RelativeStrength)

	assert.Empty(t, run.Results[0].Signals, "momentum necesita 200 bars de warm-up")

	require.Len(t, st.saved, 1)
	assert.Equal(t, run.ID, st.saved[0].ID)
	assert.Len(t, rep.reported, 2)
	assert.Nil(t, rep.portfolio)
}

func TestService_Run_PassesRange(t *testing.T) {
	bars := newProvider()
	svc := newService(backtest.Config{}, bars, nil, nil)

	r := domain.DateRange{Start: t0, End: t0.AddDate(0, 1, 0)}
	_, err := svc.Run(context.Background(), r)
	require.NoError(t, err)

	require.Len(t, bars.ranges, 2)
	for _, got := range bars.ranges {
		assert.Equal(t, r, got)
	}
}

func TestService_Run_SkipsFailingStock(t *testing.T) {
	bars := newProvider()
	bars.errs[acc.Name] = errors.New("file not found")
	st := &mockStorage{}
	svc := newService(backtest.Config{}, bars, st, nil)

	run, err := svc.Run(context.Background(), domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.Equal(t, adaniEnt.Name, run.Results[0].Stock.Name)
	assert.Len(t, st.saved, 1)
}

func TestService_Run_AllFail(t *testing.T) {
	bars := newProvider()
	bars.errs[acc.Name] = errors.New("boom")
	bars.errs[adaniEnt.Name] = errors.New("boom")
	st, rep := &mockStorage{}, &mockReporter{}
	svc := newService(backtest.Config{}, bars, st, rep)

	_, err := svc.Run(context.Background(), domain.DateRange{})
	assert.Error(t, err)
	assert.Empty(t, st.saved)
	assert.Nil(t, rep.reported)
}

func TestService_Run_UnknownStrategy(t *testing.T) {
	bad := domain.Stock{Name: "X", File: "x", Strategy: "mean_reversion"}
	svc := newService(backtest.Config{Stocks: []domain.Stock{bad}}, newProvider(), nil, nil)

	_, err := svc.Run(context.Background(), domain.DateRange{})
	assert.ErrorIs(t, err, strategy.ErrUnknownVariant)
}

func TestService_Run_CancelledContext(t *testing.T) {
	svc := newService(backtest.Config{}, newProvider(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, domain.DateRange{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Run_StorageErrorDoesNotFail(t *testing.T) {
	st := &mockStorage{err: errors.New("disk full")}
	rep := &mockReporter{err: errors.New("closed pipe")}
	svc := newService(backtest.Config{}, newProvider(), st, rep)

	run, err := svc.Run(context.Background(), domain.DateRange{})
	require.NoError(t, err)
	assert.Len(t, run.Results, 2)
}

func TestService_RunPortfolio(t *testing.T) {
	st, rep := &mockStorage{}, &mockReporter{}
	svc := newService(backtest.Config{}, newProvider(), st, rep)

	run, err := svc.RunPortfolio(context.Background(), domain.DateRange{})
	require.NoError(t, err)
	require.NotNil(t, run.Portfolio)

	p := run.Portfolio
	assert.Len(t, p.Stocks, 2)
	assert.Equal(t, 40, p.Equity.Len())

	// ACC no opera: el portfolio lleva la mitad de cada paso de Adani Enterprises
	ae := run.Results[1].Metrics.TotalReturnPct
	assert.Greater(t, p.Metrics.TotalReturnPct, 0.0)
	assert.Less(t, p.Metrics.TotalReturnPct, ae)

	require.NotNil(t, rep.portfolio)
	require.Len(t, st.saved, 1)
	assert.NotNil(t, st.saved[0].Portfolio)
}

func TestService_RunStock(t *testing.T) {
	rep := &mockReporter{}
	svc := newService(backtest.Config{}, newProvider(), nil, rep)

	run, err := svc.RunStock(context.Background(), "adani enterprises", domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, run.Results, 1)
	assert.Equal(t, adaniEnt.Name, run.Results[0].Stock.Name)
	assert.Len(t, rep.reported, 1)

	_, err = svc.RunStock(context.Background(), "Reliance", domain.DateRange{})
	assert.ErrorIs(t, err, domain.ErrUnknownStock)
}

func TestService_Benchmark(t *testing.T) {
	svc := newService(backtest.Config{Benchmark: benchmark}, newProvider(), nil, nil)

	run, err := svc.Run(context.Background(), domain.DateRange{})
	require.NoError(t, err)
	for _, r := range run.Results {
		require.NotNil(t, r.RelativeStrength, r.Stock.Name)
	}
	// ACC y el benchmark tienen la misma serie
	assert.InDelta(t, 0, *run.Results[0].RelativeStrength, 1e-12)
}

func TestService_BenchmarkUnavailable(t *testing.T) {
	bars := newProvider()
	bars.errs[benchmark.Name] = errors.New("no data")
	svc := newService(backtest.Config{Benchmark: benchmark}, bars, nil, nil)

	run, err := svc.Run(context.Background(), domain.DateRange{})
	require.NoError(t, err)
	assert.Nil(t, run.Results[0].RelativeStrength)
}
