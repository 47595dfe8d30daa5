package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/orbital-trader/internal/game"
	"github.com/talgya/orbital-trader/internal/ledger"
)

// MemoryStore keeps saves in process memory. Saves are stored encoded so a
// loaded state never aliases a live one.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]memorySlot
}

type memorySlot struct {
	Slot
	data    []byte
	log     ledger.Log
	notices []game.Notice // oldest first, unique by id
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]memorySlot)}
}

func (m *MemoryStore) Save(_ context.Context, slotID string, st *game.State) (string, error) {
	if slotID == "" {
		slotID = uuid.NewString()
	}
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.slots[slotID]
	next := memorySlot{Slot: slotOf(slotID, st, time.Now()), data: data, notices: prev.notices}
	if st.Player != nil {
		next.log = slices.Clone(st.Player.FinanceLog)
	}
	for _, n := range st.Notices {
		if !slices.ContainsFunc(next.notices, func(o game.Notice) bool { return o.ID == n.ID }) {
			next.notices = append(next.notices, n)
		}
	}
	m.slots[slotID] = next
	return slotID, nil
}

func (m *MemoryStore) Load(_ context.Context, slotID string) (*game.State, error) {
	m.mu.Lock()
	s, ok := m.slots[slotID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var st game.State
	if err := json.Unmarshal(s.data, &st); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", slotID, err)
	}
	return &st, nil
}

func (m *MemoryStore) List(context.Context) ([]Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Slot, 0, len(m.slots))
	for _, s := range m.slots {
		out = append(out, s.Slot)
	}
	slices.SortFunc(out, func(a, b Slot) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, slotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slotID]; !ok {
		return ErrNotFound
	}
	delete(m.slots, slotID)
	return nil
}

func (m *MemoryStore) FinanceLog(_ context.Context, slotID string, limit int) ([]ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[slotID].log.Recent(limit), nil
}

func (m *MemoryStore) RecentNotices(_ context.Context, slotID string, limit int) ([]game.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	journal := &game.State{Notices: m.slots[slotID].notices}
	return journal.RecentNotices(limit), nil
}

func (m *MemoryStore) Close() error { return nil }

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
