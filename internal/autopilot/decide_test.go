package autopilot

import (
	"testing"

	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/entropy"
	"github.com/talgya/orbital-trader/internal/event"
	"github.com/talgya/orbital-trader/internal/game"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	g := game.New(catalog.MustDefault(), entropy.New(3), "Bot")
	st, err := g.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return &Snapshot{State: *st}
}

func TestSafestChoice(t *testing.T) {
	cat := catalog.MustDefault()
	tests := []struct {
		encounter string
		want      int
	}{
		{"nav_glitch", 1},
		{"life_support_fluctuation", 0},
		{"space_race", 1},
		{"supply_drop", 0},
		{"no_such_encounter", 0},
	}
	for _, tt := range tests {
		t.Run(tt.encounter, func(t *testing.T) {
			if got := safestChoice(cat, tt.encounter); got != tt.want {
				t.Fatalf("safestChoice = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecidePriorities(t *testing.T) {
	cat := catalog.MustDefault()
	quotes := []game.Quote{
		{CommodityID: "water_ice", BuyPrice: 100, SellPrice: 100, Stock: 50, GalacticAverage: 262.5},
	}
	routes := []game.Route{{LocationID: "loc_venus", Name: "Venus", Days: 3, Reachable: true}}

	tests := []struct {
		name   string
		setup  func(*Snapshot, *ShipHealth, *Memory)
		action Action
	}{
		{"game over", func(s *Snapshot, h *ShipHealth, _ *Memory) { h.Condition = ConditionLost }, ActionNone},
		{"unresolved encounter", func(s *Snapshot, _ *ShipHealth, _ *Memory) {
			s.State.Pending = &event.Pending{DestinationID: "loc_venus", EncounterID: "nav_glitch"}
		}, ActionResolveEvent},
		{"resolved encounter", func(s *Snapshot, _ *ShipHealth, _ *Memory) {
			s.State.Pending = &event.Pending{DestinationID: "loc_venus", EncounterID: "nav_glitch", Resolved: true}
		}, ActionResumeTravel},
		{"resume already failed", func(s *Snapshot, _ *ShipHealth, m *Memory) {
			s.State.Pending = &event.Pending{DestinationID: "loc_venus", EncounterID: "nav_glitch", Resolved: true}
			m.Record(CycleRecord{Action: ActionResumeTravel, Error: "insufficient_fuel"})
		}, ActionCancelTravel},
		{"age event", func(s *Snapshot, _ *ShipHealth, _ *Memory) {
			s.State.AgeEventQueue = []string{"captain_choice"}
		}, ActionChooseAge},
		{"damaged", func(_ *Snapshot, h *ShipHealth, _ *Memory) {
			h.Condition, h.Hull = ConditionDamaged, 0.2
		}, ActionRepair},
		{"low fuel", func(_ *Snapshot, h *ShipHealth, _ *Memory) {
			h.Condition, h.Fuel = ConditionLowFuel, 0.1
		}, ActionRefuel},
		{"profitable stack", func(s *Snapshot, _ *ShipHealth, _ *Memory) {
			s.Market = []game.Quote{{CommodityID: "plasteel", SellPrice: 900, Held: 4, AvgCost: 500, GalacticAverage: 700}}
		}, ActionSell},
		{"cheap stock", func(*Snapshot, *ShipHealth, *Memory) {}, ActionBuy},
		{"full hold moves on", func(_ *Snapshot, h *ShipHealth, _ *Memory) { h.CargoFree = 0 }, ActionTravel},
		{"nowhere to go", func(s *Snapshot, h *ShipHealth, _ *Memory) {
			h.CargoFree = 0
			s.Routes = nil
		}, ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := testSnapshot(t)
			snap.Market = quotes
			snap.Routes = routes
			h := &ShipHealth{Condition: ConditionOK, Fuel: 1, Hull: 1, CargoFree: 50}
			mem := LoadMemory("")
			tt.setup(snap, h, mem)
			if d := Decide(cat, snap, h, mem); d.Action != tt.action {
				t.Fatalf("action = %s (%s), want %s", d.Action, d.Rationale, tt.action)
			}
		})
	}
}

func TestBestPurchaseSizing(t *testing.T) {
	market := []game.Quote{
		{CommodityID: "a", BuyPrice: 90, Stock: 100, GalacticAverage: 100},  // not cheap enough
		{CommodityID: "b", BuyPrice: 50, Stock: 100, GalacticAverage: 100},  // ratio 0.5
		{CommodityID: "c", BuyPrice: 30, Stock: 0, GalacticAverage: 100},    // sold out
		{CommodityID: "d", BuyPrice: 10, Stock: 5, GalacticAverage: 100, Locked: true},
	}
	q, qty, ok := bestPurchase(market, 1500, 40)
	if !ok || q.CommodityID != "b" {
		t.Fatalf("picked %q ok=%v", q.CommodityID, ok)
	}
	if qty != 20 { // (1500-500)/50
		t.Fatalf("qty = %d, want 20", qty)
	}
	if _, _, ok := bestPurchase(market, 400, 40); ok {
		t.Fatal("bought below the credit reserve")
	}
}

func TestNextRoutePrefersUnvisited(t *testing.T) {
	mem := LoadMemory("")
	mem.Visit("loc_venus", 10)
	routes := []game.Route{
		{LocationID: "loc_venus", Days: 2, Reachable: true},
		{LocationID: "loc_earth", Days: 5, Reachable: true},
		{LocationID: "loc_belt", Days: 1, Reachable: false},
	}
	r, ok := nextRoute(routes, mem)
	if !ok || r.LocationID != "loc_earth" {
		t.Fatalf("route = %q", r.LocationID)
	}
}

func TestMemoryPersists(t *testing.T) {
	path := t.TempDir() + "/memory.json"
	mem := LoadMemory(path)
	for i := range maxRecords + 5 {
		mem.Record(CycleRecord{Day: i, Action: ActionTravel})
	}
	mem.Visit("loc_mars", 4)
	mem.Save()

	again := LoadMemory(path)
	if len(again.Records) != maxRecords || again.Records[0].Day != 5 {
		t.Fatalf("records = %d, first day %d", len(again.Records), again.Records[0].Day)
	}
	if again.LastVisit("loc_mars") != 4 {
		t.Fatalf("visit = %d", again.LastVisit("loc_mars"))
	}
}
