package player

import (
	"testing"

	"github.com/talgya/orbital-trader/internal/catalog"
)

func TestNewPlayerStartsWithStarterShip(t *testing.T) {
	cat := catalog.MustDefault()
	p := New("Vex", cat, 2140)

	if p.Credits != 8000 || p.Debt != 0 {
		t.Fatalf("credits=%d debt=%d", p.Credits, p.Debt)
	}
	if p.ActiveShipID != "starter" || !p.Owns("starter") {
		t.Fatalf("active ship = %q", p.ActiveShipID)
	}
	st := p.ActiveState()
	if st.Fuel != 100 || st.Health != 100 {
		t.Fatalf("ship state = %+v", st)
	}
	if p.UnlockedCommodityLevel != 1 || !p.LocationUnlocked("loc_mars") || p.LocationUnlocked("loc_pluto") {
		t.Fatalf("progress = %+v", p.Progress)
	}
	if p.LastBirthdayYear != 2140 {
		t.Fatalf("last birthday year = %d", p.LastBirthdayYear)
	}
}

func TestInventoryAverageCost(t *testing.T) {
	inv := make(Inventory)
	inv.Buy("water_ice", 10, 100)
	inv.Buy("water_ice", 30, 200)

	h := inv["water_ice"]
	if h.Quantity != 40 || h.AvgCost != 175 {
		t.Fatalf("holding = %+v, want 40 @ 175", h)
	}

	if got := inv.Remove("water_ice", 15); got != 15 || h.AvgCost != 175 {
		t.Fatalf("partial sale removed %d, avg %v", got, h.AvgCost)
	}
	if got := inv.Remove("water_ice", 100); got != 25 {
		t.Fatalf("removed %d, want clamp to 25", got)
	}
	if h.Quantity != 0 || h.AvgCost != 0 {
		t.Fatalf("liquidated holding = %+v", h)
	}
}

func TestInventoryAddKeepsAverage(t *testing.T) {
	inv := make(Inventory)
	inv.Buy("plasteel", 10, 1000)
	inv.Add("plasteel", 10)
	if h := inv["plasteel"]; h.Quantity != 20 || h.AvgCost != 1000 {
		t.Fatalf("holding = %+v", h)
	}
	if inv.Used() != 20 {
		t.Fatalf("used = %d", inv.Used())
	}
	if ids := inv.IDs(); len(ids) != 1 || ids[0] != "plasteel" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestHullAlerts(t *testing.T) {
	tests := []struct {
		name      string
		health    []float64
		wantFired []bool
	}{
		{"warning once", []float64{29, 28}, []bool{true, false}},
		{"critical after warning", []float64{29, 14}, []bool{true, true}},
		{"warning still fires after critical", []float64{10, 12}, []bool{true, true}},
		{"re-arms above threshold", []float64{29, 50, 29}, []bool{true, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &ShipState{}
			for i, h := range tt.health {
				s.Health = h
				_, fired := s.CheckHullAlerts(100, 0.30, 0.15)
				if fired != tt.wantFired[i] {
					t.Fatalf("step %d health %v: fired=%v", i, h, fired)
				}
			}
		})
	}
}

func TestShipStateClamps(t *testing.T) {
	s := &ShipState{Health: 50, Fuel: 50}
	s.Repair(80, 100)
	if s.Health != 100 {
		t.Fatalf("health = %v", s.Health)
	}
	if !s.Damage(500) || s.Health != 0 {
		t.Fatalf("health after damage = %v", s.Health)
	}
	s.Refuel(-80, 100)
	if s.Fuel != 0 {
		t.Fatalf("fuel = %v", s.Fuel)
	}
	s.Refuel(300, 100)
	if s.Fuel != 100 {
		t.Fatalf("fuel = %v", s.Fuel)
	}
}

func TestRemoveShip(t *testing.T) {
	cat := catalog.MustDefault()
	p := New("Vex", cat, 2140)
	ship, _ := cat.Ship("hauler_c1")
	p.AddShip(ship)
	p.AddShip(ship)
	if len(p.OwnedShipIDs) != 2 {
		t.Fatalf("owned = %v", p.OwnedShipIDs)
	}
	p.RemoveShip("hauler_c1")
	if p.Owns("hauler_c1") || p.ShipStates["hauler_c1"] != nil || p.Inventories["hauler_c1"] != nil {
		t.Fatal("ship not purged")
	}
}

func TestProfitBonus(t *testing.T) {
	cat := catalog.MustDefault()
	p := New("Vex", cat, 2140)
	p.BirthdayProfitBonus = 0.02
	p.ActivePerks["trademaster"] = true
	p.ActivePerks["navigator"] = true
	if got := p.ProfitBonus(cat); got < 0.0699 || got > 0.0701 {
		t.Fatalf("bonus = %v", got)
	}
}
