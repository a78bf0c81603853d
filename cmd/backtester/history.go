package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/swingdesk/internal/adapters/notify"
	"github.com/alejandrodnm/swingdesk/internal/ports"
)

func runHistory(ctx context.Context, store ports.RunStorage, console *notify.Console, days int) error {
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	runs, err := store.GetRuns(ctx, from, to)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return console.ReportHistory(ctx, runs)
}
