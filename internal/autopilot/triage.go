package autopilot

import (
	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/game"
)

// Condition summarises the ship in one word.
type Condition string

const (
	ConditionLost     Condition = "LOST"     // game over
	ConditionDamaged  Condition = "DAMAGED"  // hull below threshold
	ConditionLowFuel  Condition = "LOW_FUEL" // fuel below threshold
	ConditionStranded Condition = "STRANDED" // no route reachable
	ConditionOK       Condition = "OK"
)

// ShipHealth holds signals derived from a snapshot. Runs before Decide.
type ShipHealth struct {
	Ship      *catalog.Ship
	Fuel      float64 // fraction of tank
	Hull      float64 // fraction of max hull
	CargoUsed int
	CargoFree int
	Reachable int
	Condition Condition
}

// Triage computes ShipHealth for the active ship.
func Triage(cat *catalog.Catalog, snap *Snapshot, minFuel, minHull float64) *ShipHealth {
	h := &ShipHealth{Condition: ConditionOK}
	st := &snap.State
	if st.IsGameOver || st.Player == nil {
		h.Condition = ConditionLost
		return h
	}
	p := st.Player
	ship, ok := cat.Ship(p.ActiveShipID)
	if !ok {
		h.Condition = ConditionLost
		return h
	}
	h.Ship = ship
	if ss := p.ShipStates[ship.ID]; ss != nil {
		h.Fuel = ss.Fuel / ship.MaxFuel
		h.Hull = ss.Health / ship.MaxHealth
	}
	h.CargoUsed = p.Inventories[ship.ID].Used()
	h.CargoFree = max(0, ship.CargoCapacity-h.CargoUsed)
	for _, r := range snap.Routes {
		if r.Reachable {
			h.Reachable++
		}
	}

	switch {
	case h.Hull < minHull:
		h.Condition = ConditionDamaged
	case h.Fuel < minFuel:
		h.Condition = ConditionLowFuel
	case h.Reachable == 0:
		h.Condition = ConditionStranded
	}
	return h
}
