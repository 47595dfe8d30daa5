// Package player holds the player's persistent record: identity, money,
// progression, the fleet and each ship's hold.
package player

import (
	"slices"

	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/ledger"
)

// HullAlerts remember which hull warnings have already fired.
type HullAlerts struct {
	Warning  bool `json:"warning"`
	Critical bool `json:"critical"`
}

// ShipState is the dynamic part of an owned ship.
type ShipState struct {
	Health     float64    `json:"health"`
	Fuel       float64    `json:"fuel"`
	HullAlerts HullAlerts `json:"hull_alerts"`
}

// Player is the player block of the saved game.
type Player struct {
	Name                string  `json:"name"`
	Title               string  `json:"title"`
	Age                 int     `json:"age"`
	LastBirthdayYear    int     `json:"last_birthday_year"`
	BirthdayProfitBonus float64 `json:"birthday_profit_bonus"`

	ledger.Account
	ledger.Progress

	ActivePerks   map[string]bool       `json:"active_perks"`
	ActiveShipID  string                `json:"active_ship_id"`
	OwnedShipIDs  []string              `json:"owned_ship_ids"`
	ShipStates    map[string]*ShipState `json:"ship_states"`
	Inventories   map[string]Inventory  `json:"inventories"`
	SeenAgeEvents []string              `json:"seen_age_events"`
}

// New creates a player from the catalog's starting conditions.
func New(name string, cat *catalog.Catalog, startYear int) *Player {
	s := cat.Start
	p := &Player{
		Name:             name,
		Title:            s.Title,
		Age:              s.Age,
		LastBirthdayYear: startYear,
		Account:          ledger.Account{Credits: s.Credits},
		Progress: ledger.Progress{
			UnlockedCommodityLevel: s.CommodityLevel,
			UnlockedLocationIDs:    slices.Clone(s.UnlockedLocations),
		},
		ActivePerks: make(map[string]bool),
		ShipStates:  make(map[string]*ShipState),
		Inventories: make(map[string]Inventory),
	}
	if ship, ok := cat.Ship(s.ShipID); ok {
		p.AddShip(ship)
		p.ActiveShipID = ship.ID
	}
	return p
}

// AddShip puts a ship in the hangar with full tanks and an empty hold.
func (p *Player) AddShip(ship *catalog.Ship) {
	if p.Owns(ship.ID) {
		return
	}
	p.OwnedShipIDs = append(p.OwnedShipIDs, ship.ID)
	p.ShipStates[ship.ID] = &ShipState{Health: ship.MaxHealth, Fuel: ship.MaxFuel}
	p.Inventories[ship.ID] = make(Inventory)
}

// RemoveShip purges a ship and its hold.
func (p *Player) RemoveShip(id string) {
	p.OwnedShipIDs = slices.DeleteFunc(p.OwnedShipIDs, func(s string) bool { return s == id })
	delete(p.ShipStates, id)
	delete(p.Inventories, id)
}

// Owns reports whether the ship is in the hangar.
func (p *Player) Owns(id string) bool {
	return slices.Contains(p.OwnedShipIDs, id)
}

// ActiveState returns the active ship's dynamic state.
func (p *Player) ActiveState() *ShipState {
	return p.ShipStates[p.ActiveShipID]
}

// Cargo returns the active ship's hold for reading. It may be nil, which
// reads as empty.
func (p *Player) Cargo() Inventory {
	return p.Inventories[p.ActiveShipID]
}

// ActiveInventory returns the active ship's hold, creating it if missing.
func (p *Player) ActiveInventory() Inventory {
	inv, ok := p.Inventories[p.ActiveShipID]
	if !ok {
		inv = make(Inventory)
		p.Inventories[p.ActiveShipID] = inv
	}
	return inv
}

// HasPerk reports whether a perk is active.
func (p *Player) HasPerk(id string) bool {
	return p.ActivePerks[id]
}

// SeenAgeEvent reports whether an age event has already fired.
func (p *Player) SeenAgeEvent(id string) bool {
	return slices.Contains(p.SeenAgeEvents, id)
}

// ProfitBonus is the share of positive trade profit paid on top of a sale.
func (p *Player) ProfitBonus(cat *catalog.Catalog) float64 {
	bonus := p.BirthdayProfitBonus
	for id, on := range p.ActivePerks {
		if perk, ok := cat.Perk(id); on && ok {
			bonus += perk.ProfitBonus
		}
	}
	return bonus
}

// CheckHullAlerts fires at most one alert per call, the critical one first.
// An alert re-arms once health rises back above its threshold.
func (s *ShipState) CheckHullAlerts(maxHealth, warning, critical float64) (fraction float64, fired bool) {
	fraction = s.Health / maxHealth
	switch {
	case fraction <= critical && !s.HullAlerts.Critical:
		s.HullAlerts.Critical = true
		fired = true
	case fraction <= warning && !s.HullAlerts.Warning:
		s.HullAlerts.Warning = true
		fired = true
	}
	if fraction > warning {
		s.HullAlerts.Warning = false
	}
	if fraction > critical {
		s.HullAlerts.Critical = false
	}
	return fraction, fired
}

// Repair adds hull up to max.
func (s *ShipState) Repair(amount, maxHealth float64) {
	s.Health = min(maxHealth, s.Health+amount)
}

// Damage removes hull, never below zero. Reports whether the hull failed.
func (s *ShipState) Damage(amount float64) bool {
	s.Health = max(0, s.Health-amount)
	return s.Health <= 0
}

// Refuel adds fuel, clamped to [0, maxFuel].
func (s *ShipState) Refuel(delta, maxFuel float64) {
	s.Fuel = min(maxFuel, max(0, s.Fuel+delta))
}
