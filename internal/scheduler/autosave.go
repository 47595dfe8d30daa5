// Package scheduler runs periodic background jobs for the server.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Saver persists the live game and reports the slot written.
type Saver interface {
	Save(ctx context.Context) (string, error)
}

// Autosave saves on a cron schedule.
type Autosave struct {
	cron    *cron.Cron
	saver   Saver
	timeout time.Duration
}

// NewAutosave registers a save job on spec, e.g. "@every 5m" or "*/10 * * * *".
func NewAutosave(spec string, saver Saver) (*Autosave, error) {
	a := &Autosave{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		saver:   saver,
		timeout: 30 * time.Second,
	}
	if _, err := a.cron.AddFunc(spec, a.run); err != nil {
		return nil, fmt.Errorf("autosave schedule %q: %w", spec, err)
	}
	return a, nil
}

func (a *Autosave) run() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	start := time.Now()
	id, err := a.saver.Save(ctx)
	if err != nil {
		slog.Error("autosave failed", "error", err)
		return
	}
	slog.Info("autosave", "slot", id, "took", time.Since(start).Round(time.Millisecond))
}

// Start begins running jobs in the background.
func (a *Autosave) Start() {
	a.cron.Start()
}

// Stop halts the schedule and waits for a running save to finish.
func (a *Autosave) Stop() {
	<-a.cron.Stop().Done()
}

// Next is when the next save will run. Zero before Start.
func (a *Autosave) Next() time.Time {
	entries := a.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
