// Package game is the simulation aggregate and its command surface.
//
// State is everything that is saved. Game wraps a State with the catalog,
// the travel graph and a random source, and exposes one method per player
// command. Commands run to completion; a rejected command returns a coded
// error and leaves State untouched.
package game

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/orbital-trader/internal/event"
	"github.com/talgya/orbital-trader/internal/market"
	"github.com/talgya/orbital-trader/internal/player"
	"github.com/talgya/orbital-trader/internal/tutorial"
)

// IntelKind says which way an intel report moves prices.
type IntelKind string

const (
	IntelDemand     IntelKind = "demand"
	IntelDepression IntelKind = "depression"
)

// Intel is an active market tip.
type Intel struct {
	TargetLocationID string    `json:"target_location_id"`
	CommodityID      string    `json:"commodity_id"`
	Kind             IntelKind `json:"kind"`
	StartDay         int       `json:"start_day"`
	EndDay           int       `json:"end_day"`
}

// IntelState is the intel block: per-location availability and the one active tip.
type IntelState struct {
	Available map[string]bool `json:"available"`
	Active    *Intel          `json:"active"`
}

// State is the saved game aggregate.
type State struct {
	Day                   int    `json:"day"`
	LastInterestChargeDay int    `json:"last_interest_charge_day"`
	LastMarketUpdateDay   int    `json:"last_market_update_day"`
	CurrentLocationID     string `json:"current_location_id"`
	IsGameOver            bool   `json:"is_game_over"`
	GraphSeed             int64  `json:"graph_seed"`

	Pending   *event.Pending     `json:"pending_travel"`
	Player    *player.Player     `json:"player"`
	Market    *market.State      `json:"market"`
	Intel     IntelState         `json:"intel"`
	Tutorials tutorial.Progress  `json:"tutorials"`

	AgeEventQueue []string        `json:"age_event_queue"` // fired, awaiting a choice
	RareOffers    map[string]bool `json:"rare_offers"`     // rare ships on sale this visit
	Notices       []Notice        `json:"notices"`         // most recent last
}

// Clone returns a deep copy for readers outside the command path.
func (s *State) Clone() (*State, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &out, nil
}

// normalize fills maps a decoded save may leave nil.
func (s *State) normalize() {
	if s.Intel.Available == nil {
		s.Intel.Available = make(map[string]bool)
	}
	if s.RareOffers == nil {
		s.RareOffers = make(map[string]bool)
	}
	p := s.Player
	if p == nil {
		return
	}
	if p.ActivePerks == nil {
		p.ActivePerks = make(map[string]bool)
	}
	if p.ShipStates == nil {
		p.ShipStates = make(map[string]*player.ShipState)
	}
	if p.Inventories == nil {
		p.Inventories = make(map[string]player.Inventory)
	}
}
