package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/swingdesk/internal/scheduler"
)

const watchJob = "backtest"

// runWatch ejecuta el job una vez y luego según spec hasta que se cancele ctx.
func runWatch(ctx context.Context, spec string, job scheduler.Job) error {
	s := scheduler.New(ctx)
	if err := s.Register(watchJob, spec, job); err != nil {
		return err
	}

	s.RunNow(watchJob, job)
	s.Start()
	slog.Info("watch mode", "cron", spec, "next", s.Next(watchJob))

	<-ctx.Done()
	s.Stop()
	return nil
}
