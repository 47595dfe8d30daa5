// Package persistence stores saved games. A save is all-or-nothing: the whole
// game.State is written in one transaction or not at all.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/talgya/orbital-trader/internal/game"
	"github.com/talgya/orbital-trader/internal/ledger"
)

// ErrNotFound is returned when a slot does not exist.
var ErrNotFound = errors.New("save slot not found")

// Slot describes one saved game without loading it.
type Slot struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Day        int       `db:"day" json:"day"`
	Credits    int64     `db:"credits" json:"credits"`
	LocationID string    `db:"location_id" json:"location_id"`
	GameOver   bool      `db:"game_over" json:"game_over"`
	UpdatedAt  time.Time `db:"-" json:"updated_at"`
}

// Store is a save-slot backend.
type Store interface {
	// Save writes st to slotID, or to a new slot when slotID is empty.
	// It returns the slot id written.
	Save(ctx context.Context, slotID string, st *game.State) (string, error)
	Load(ctx context.Context, slotID string) (*game.State, error)
	List(ctx context.Context) ([]Slot, error)
	Delete(ctx context.Context, slotID string) error
	Close() error

	// FinanceLog returns up to limit ledger entries of a slot, newest first.
	FinanceLog(ctx context.Context, slotID string, limit int) ([]ledger.Entry, error)
	// RecentNotices returns up to limit notices ever saved to a slot, newest
	// first. The journal outlives the bounded list kept in the state.
	RecentNotices(ctx context.Context, slotID string, limit int) ([]game.Notice, error)
}

func slotOf(id string, st *game.State, now time.Time) Slot {
	s := Slot{
		ID:         id,
		Day:        st.Day,
		LocationID: st.CurrentLocationID,
		GameOver:   st.IsGameOver,
		UpdatedAt:  now,
	}
	if st.Player != nil {
		s.Name = st.Player.Name
		s.Credits = st.Player.Credits
	}
	return s
}
