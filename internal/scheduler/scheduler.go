// Package scheduler re-ejecuta el backtest periódicamente (modo watch).
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job es una tarea programada. El error se registra; no detiene el scheduler.
type Job func(ctx context.Context) error

// Scheduler gestiona las tareas cron. Una ejecución que sigue en curso cuando
// llega el siguiente tick hace que ese tick se salte.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	jobs map[string]cron.EntryID
}

// New crea un Scheduler con specs de 6 campos (con segundos). ctx se pasa a cada Job.
func New(ctx context.Context) *Scheduler {
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:  ctx,
		jobs: make(map[string]cron.EntryID),
	}
}

// Register añade una tarea con nombre.
func (s *Scheduler) Register(name, spec string, job Job) error {
	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("scheduler.Register %s: %w", name, err)
	}
	s.jobs[name] = id
	return nil
}

// Start arranca el scheduler en background.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop detiene el scheduler y espera a que terminen las tareas en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// Next devuelve la próxima ejecución de la tarea. Cero si no existe o el
// scheduler no está arrancado.
func (s *Scheduler) Next(name string) time.Time {
	id, ok := s.jobs[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// RunNow ejecuta la tarea inmediatamente en la goroutine actual.
func (s *Scheduler) RunNow(name string, job Job) {
	s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) {
	if s.ctx.Err() != nil {
		return
	}
	start := time.Now()
	slog.Info("running scheduled job", "job", name)
	if err := job(s.ctx); err != nil {
		slog.Error("scheduled job failed", "job", name, "err", err)
		return
	}
	slog.Info("scheduled job done", "job", name, "duration", time.Since(start).Round(time.Millisecond))
}

// slogLogger adapta cron.Logger a slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
