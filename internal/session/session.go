// Package session owns the single live game of a server process. Every
// command runs under one mutex, so the game has exactly one writer.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/entropy"
	"github.com/talgya/orbital-trader/internal/game"
	"github.com/talgya/orbital-trader/internal/ledger"
	"github.com/talgya/orbital-trader/internal/persistence"
)

// Session guards one Game and knows which save slot it belongs to.
type Session struct {
	mu     sync.Mutex
	cat    *catalog.Catalog
	store  persistence.Store
	slotID string
	game   *game.Game

	// NewSource supplies randomness for new and restored games.
	NewSource func() entropy.Source

	// OnChange receives a snapshot after every successful command.
	OnChange func(*game.State)

	// OnSave receives the slot id after every successful save.
	OnSave func(slotID string)
}

// Open resumes slotID from the store, or starts a new game when the slot is
// empty or missing.
func Open(ctx context.Context, cat *catalog.Catalog, store persistence.Store, slotID, playerName string) (*Session, error) {
	s := &Session{cat: cat, store: store, slotID: slotID, NewSource: seeded}
	if slotID != "" {
		st, err := store.Load(ctx, slotID)
		switch {
		case err == nil:
			g, err := game.Restore(cat, st, s.NewSource())
			if err != nil {
				return nil, fmt.Errorf("restore slot %s: %w", slotID, err)
			}
			s.game = g
			slog.Info("game resumed", "slot", slotID, "day", st.Day)
			return s, nil
		case !errors.Is(err, persistence.ErrNotFound):
			return nil, err
		}
	}
	s.game = game.New(cat, s.NewSource(), playerName)
	return s, nil
}

func seeded() entropy.Source {
	return entropy.New(entropy.NewSeed())
}

// SlotID is the slot the session saves to. It is empty until the first save
// of a session that was not opened from a slot.
func (s *Session) SlotID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slotID
}

// Do runs a command. On success the fresh snapshot is returned and handed to
// OnChange.
func (s *Session) Do(cmd func(*game.Game) (game.Result, error)) (game.Result, *game.State, error) {
	s.mu.Lock()
	res, err := cmd(s.game)
	if err != nil {
		s.mu.Unlock()
		return res, nil, err
	}
	st, err := s.game.Snapshot()
	s.mu.Unlock()
	if err != nil {
		return res, nil, fmt.Errorf("snapshot: %w", err)
	}
	if s.OnChange != nil {
		s.OnChange(st)
	}
	return res, st, nil
}

// View reads from the game under the lock. The callback must not retain
// references into the game.
func View[T any](s *Session, read func(*game.Game) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return read(s.game)
}

// Snapshot copies the current state.
func (s *Session) Snapshot() (*game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// Save writes the game to its slot, creating one on first save.
func (s *Session) Save(ctx context.Context) (string, error) {
	s.mu.Lock()
	st, err := s.game.Snapshot()
	slot := s.slotID
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	id, err := s.store.Save(ctx, slot, st)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.slotID == "" {
		s.slotID = id
	}
	s.mu.Unlock()
	if s.OnSave != nil {
		s.OnSave(id)
	}
	return id, nil
}

// Reset replaces the game with a new one. The next save goes to a new slot.
func (s *Session) Reset(playerName string) *game.State {
	s.mu.Lock()
	s.game = game.New(s.cat, s.NewSource(), playerName)
	s.slotID = ""
	st, _ := s.game.Snapshot()
	s.mu.Unlock()
	if s.OnChange != nil && st != nil {
		s.OnChange(st)
	}
	return st
}

// FinanceHistory returns up to limit ledger entries, newest first. A game
// that was never saved reads from its live log.
func (s *Session) FinanceHistory(ctx context.Context, limit int) ([]ledger.Entry, error) {
	s.mu.Lock()
	slot := s.slotID
	live := s.game.State.Player.FinanceLog.Recent(limit)
	s.mu.Unlock()
	if slot == "" {
		return live, nil
	}
	entries, err := s.store.FinanceLog(ctx, slot, limit)
	if err != nil {
		return nil, fmt.Errorf("finance log of %s: %w", slot, err)
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return entries, nil
}

// Notices returns up to limit notices, newest first. A saved game reads
// from the store's journal, which keeps more than the state does.
func (s *Session) Notices(ctx context.Context, limit int) ([]game.Notice, error) {
	s.mu.Lock()
	slot := s.slotID
	live := s.game.State.RecentNotices(limit)
	s.mu.Unlock()
	if slot == "" {
		return live, nil
	}
	notices, err := s.store.RecentNotices(ctx, slot, limit)
	if err != nil {
		return nil, fmt.Errorf("notices of %s: %w", slot, err)
	}
	if notices == nil {
		notices = []game.Notice{}
	}
	return notices, nil
}

// Slots lists saved games.
func (s *Session) Slots(ctx context.Context) ([]persistence.Slot, error) {
	return s.store.List(ctx)
}
