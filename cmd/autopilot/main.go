// Command autopilot plays a tradersim game through its HTTP API.
// It observes the game, decides on one command per cycle and sends it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/orbital-trader/internal/autopilot"
	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/config"
)

func main() {
	cfg, err := config.LoadAutopilot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cat, err := catalog.Default()
	if err != nil {
		slog.Error("catalog", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("autopilot starting", "server", cfg.ServerURL, "interval", cfg.Interval)
	pilot := autopilot.New(cat, cfg.ServerURL, autopilot.LoadMemory(cfg.MemoryPath), autopilot.Config{
		Interval:   cfg.Interval,
		MaxBackoff: cfg.MaxBackoff,
		MinFuel:    cfg.MinFuel,
		MinHull:    cfg.MinHull,
	})

	// Wait for the server before the first cycle.
	slog.Info("waiting for tradersim API...")
	if !waitForAPI(ctx, pilot.Observer, cfg.MaxBackoff) {
		return
	}

	pilot.Run(ctx)
	fmt.Print(pilot.Memory.Summary(10))
	fmt.Println("Autopilot stopped.")
}

// waitForAPI polls the server with exponential backoff until it responds or
// ctx ends.
func waitForAPI(ctx context.Context, o *autopilot.Observer, maxBackoff time.Duration) bool {
	backoff := 2 * time.Second
	for {
		if o.Ready(ctx) {
			slog.Info("tradersim API is ready")
			return true
		}
		slog.Info("tradersim not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, max(maxBackoff, 2*time.Second))
	}
}
