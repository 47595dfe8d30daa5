// Command tradersim serves a single-player space trading game over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/orbital-trader/internal/api"
	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/config"
	"github.com/talgya/orbital-trader/internal/persistence"
	"github.com/talgya/orbital-trader/internal/scheduler"
	"github.com/talgya/orbital-trader/internal/session"
)

const lastSlotKey = "last_slot"

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("tradersim stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Catalog ───────────────────────────────────────────────────────
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	slog.Info("catalog loaded",
		"locations", len(cat.Locations),
		"commodities", len(cat.Commodities),
		"ships", len(cat.Ships),
		"encounters", len(cat.Encounters),
	)

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	slot := cfg.SlotID
	if slot == "" {
		slot, _ = db.GetMeta(lastSlotKey)
	}

	// ── Session ───────────────────────────────────────────────────────
	sess, err := session.Open(ctx, cat, db, slot, cfg.PlayerName)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	// Every save, autosave included, remembers its slot so a restart after
	// an admin new-game resumes the new game.
	sess.OnSave = func(id string) {
		if err := db.SaveMeta(lastSlotKey, id); err != nil {
			slog.Warn("failed to record last slot", "error", err)
		}
	}
	save := func(ctx context.Context) {
		if _, err := sess.Save(ctx); err != nil {
			slog.Error("save failed", "error", err)
		}
	}
	save(ctx)

	// ── Autosave ──────────────────────────────────────────────────────
	autosave, err := scheduler.NewAutosave(cfg.Autosave, sess)
	if err != nil {
		return err
	}
	autosave.Start()
	slog.Info("autosave scheduled", "spec", cfg.Autosave, "next", autosave.Next())

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("TRADER_ADMIN_KEY not set, admin endpoints will be disabled")
	}
	server := api.NewServer(sess, cfg.AdminKey, cfg.Origins(), api.NewRateLimiter(cfg.RateLimit, cfg.RateBurst))
	server.ForceEvents = cfg.ForceEvent

	fmt.Printf("\nTrading session %s is open.\n", sess.SlotID())
	fmt.Printf("API: http://localhost:%d/api/v1/state\n", cfg.Port)

	serveErr := server.Start(ctx, cfg.Port)
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		slog.Error("HTTP server error", "error", serveErr)
	}

	// Final save on shutdown.
	autosave.Stop()
	slog.Info("final save...")
	save(context.Background())
	fmt.Println("Session stopped. Game saved.")
	if errors.Is(serveErr, http.ErrServerClosed) {
		return nil
	}
	return serveErr
}
