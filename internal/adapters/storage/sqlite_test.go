package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/adapters/storage"
	"github.com/alejandrodnm/swingdesk/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2018, 3, 5, 9, 15, 0, 0, time.FixedZone("IST", 19800))

func makeResult(name, strategy string, total float64) domain.StockResult {
	entry := domain.TradeSignal{
		Timestamp:  base,
		Type:       domain.SignalLong,
		Price:      100,
		StopLoss:   97,
		TakeProfit: 112,
		Reason:     "20-day high breakout",
	}
	second := entry
	second.Timestamp = base.AddDate(0, 0, 20)
	second.Price = 104

	return domain.StockResult{
		Stock:   domain.Stock{Name: name, Strategy: strategy},
		Bars:    500,
		From:    base.AddDate(0, -1, 0),
		To:      base.AddDate(0, 1, 0),
		Signals: []domain.TradeSignal{entry, second},
		Closes: []domain.PositionClosed{
			{Timestamp: base.AddDate(0, 0, 10), Price: 103, EntryTimestamp: base, EntryPrice: 100, Reason: "max_hold"},
			{Timestamp: base.AddDate(0, 1, 0), Price: 106, EntryTimestamp: second.Timestamp, EntryPrice: 104, Reason: domain.CloseReasonEndOfData},
		},
		Metrics: domain.Metrics{TotalReturnPct: total, SharpeRatio: 1.2, MaxDrawdownPct: -4.5, ProfitFactor: 1.8},
	}
}

func TestSQLiteStorage_SaveAndGetRuns(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	run := domain.Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Range: domain.DateRange{
			Start: time.Date(2015, 2, 2, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2019, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		Results: []domain.StockResult{
			makeResult("Adani Ports", "breakout30", 12.5),
			makeResult("ACC", "momentum", -3.0),
		},
		Portfolio: &domain.PortfolioResult{Metrics: domain.Metrics{TotalReturnPct: 4.75}},
	}
	require.NoError(t, db.SaveRun(ctx, run))

	runs, err := db.GetRuns(ctx, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	assert.True(t, run.Range.Start.Equal(got.Range.Start))
	assert.True(t, run.Range.End.Equal(got.Range.End))

	// el orden de configuración se conserva
	require.Len(t, got.Results, 2)
	assert.Equal(t, "Adani Ports", got.Results[0].Stock.Name)
	assert.Equal(t, "breakout30", got.Results[0].Stock.Strategy)
	assert.Equal(t, "ACC", got.Results[1].Stock.Name)
	assert.InDelta(t, 12.5, got.Results[0].Metrics.TotalReturnPct, 1e-9)
	assert.InDelta(t, -4.5, got.Results[0].Metrics.MaxDrawdownPct, 1e-9)
	assert.Equal(t, 500, got.Results[0].Bars)

	require.Len(t, got.Results[0].Signals, 2)
	assert.True(t, base.Equal(got.Results[0].Signals[0].Timestamp))
	assert.Equal(t, domain.SignalLong, got.Results[0].Signals[0].Type)

	require.Len(t, got.Results[0].Closes, 2)
	assert.Equal(t, "max_hold", got.Results[0].Closes[0].Reason)
	assert.True(t, got.Results[0].Closes[1].EndOfData())

	require.NotNil(t, got.Portfolio)
	assert.InDelta(t, 4.75, got.Portfolio.Metrics.TotalReturnPct, 1e-9)
}

func TestSQLiteStorage_GetSignals(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	run := domain.Run{
		ID:        "run-1",
		StartedAt: time.Now(),
		Results:   []domain.StockResult{makeResult("ACC", "momentum", 1), makeResult("Adani Power", "cross", 2)},
	}
	require.NoError(t, db.SaveRun(ctx, run))

	signals, err := db.GetSignals(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, signals, 2)
	require.Len(t, signals["ACC"], 2)

	sig := signals["ACC"][1]
	assert.InDelta(t, 104, sig.Price, 1e-9)
	assert.InDelta(t, 97, sig.StopLoss, 1e-9)
	assert.InDelta(t, 112, sig.TakeProfit, 1e-9)
	assert.Equal(t, "20-day high breakout", sig.Reason)
	assert.True(t, base.AddDate(0, 0, 20).Equal(sig.Timestamp))

	none, err := db.GetSignals(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStorage_GeneratesID(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.SaveRun(ctx, domain.Run{}))

	runs, err := db.GetRuns(ctx, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	_, err = uuid.Parse(runs[0].ID)
	assert.NoError(t, err)
	assert.Nil(t, runs[0].Portfolio)
	assert.Empty(t, runs[0].Results)
}

func TestSQLiteStorage_GetRuns_EmptyRange(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.GetRuns(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSQLiteStorage_RunsNewestFirst(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, db.SaveRun(ctx, domain.Run{ID: "old", StartedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, db.SaveRun(ctx, domain.Run{ID: "new", StartedAt: now.Add(-time.Hour)}))

	runs, err := db.GetRuns(ctx, now.Add(-3*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestSQLiteStorage_DuplicateRunID(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.SaveRun(ctx, domain.Run{ID: "dup"}))
	assert.Error(t, db.SaveRun(ctx, domain.Run{ID: "dup"}))
}
