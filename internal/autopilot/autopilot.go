package autopilot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/talgya/orbital-trader/internal/catalog"
)

// Config tunes the pilot.
type Config struct {
	Interval   time.Duration
	MaxBackoff time.Duration
	MinFuel    float64 // refuel below this share of the tank
	MinHull    float64 // repair below this share of max hull
}

// Pilot runs observe, triage, decide and act cycles.
type Pilot struct {
	Catalog  *catalog.Catalog
	Observer *Observer
	Actor    *Actor
	Memory   *Memory
	Config   Config
}

// New builds a pilot for the server at baseURL.
func New(cat *catalog.Catalog, baseURL string, mem *Memory, cfg Config) *Pilot {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	cfg.MaxBackoff = max(cfg.MaxBackoff, cfg.Interval)
	return &Pilot{
		Catalog:  cat,
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL),
		Memory:   mem,
		Config:   cfg,
	}
}

// RunCycle executes one cycle. A rejected command is recorded, not returned;
// the error is only for failures to reach the server.
func (p *Pilot) RunCycle(ctx context.Context) (Decision, error) {
	snap, err := p.Observer.Observe(ctx)
	if err != nil {
		return Decision{}, err
	}
	st := &snap.State
	p.Memory.Visit(st.CurrentLocationID, st.Day)

	health := Triage(p.Catalog, snap, p.Config.MinFuel, p.Config.MinHull)
	d := Decide(p.Catalog, snap, health, p.Memory)
	rec := CycleRecord{Day: st.Day, Action: d.Action, Location: st.CurrentLocationID}
	if st.Player != nil {
		rec.Credits = st.Player.Credits
	}
	slog.Debug("decision made", "action", d.Action, "condition", health.Condition, "rationale", d.Rationale)

	if d.Action == ActionNone {
		p.Memory.Record(rec)
		return d, nil
	}

	out, err := p.Actor.Act(ctx, d)
	var rejected *CommandError
	switch {
	case errors.As(err, &rejected):
		rec.Error = rejected.Code
		slog.Info("command rejected", "action", d.Action, "code", rejected.Code, "message", rejected.Message)
	case err != nil:
		return d, err
	default:
		if out.State != nil && out.State.Player != nil {
			rec.Day = out.State.Day
			rec.Location = out.State.CurrentLocationID
			rec.Credits = out.State.Player.Credits
		}
		slog.Info("command executed", "action", d.Action, "rationale", d.Rationale, "day", rec.Day, "credits", rec.Credits)
	}
	p.Memory.Record(rec)
	return d, nil
}

// Run loops until ctx is done. While the server is unreachable the wait
// doubles up to MaxBackoff.
func (p *Pilot) Run(ctx context.Context) {
	wait := p.Config.Interval
	for {
		d, err := p.RunCycle(ctx)
		switch {
		case err != nil:
			wait = min(wait*2, p.Config.MaxBackoff)
			slog.Warn("server unreachable, backing off", "error", err, "backoff", wait)
		default:
			wait = p.Config.Interval
			p.Memory.Save()
			if d.Final {
				slog.Info("game over, autopilot stopping")
				return
			}
		}

		select {
		case <-ctx.Done():
			p.Memory.Save()
			return
		case <-time.After(wait):
		}
	}
}
