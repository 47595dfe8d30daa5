package game

import (
	"fmt"
	"log/slog"

	"github.com/talgya/orbital-trader/internal/calendar"
	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/entropy"
	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/event"
	"github.com/talgya/orbital-trader/internal/galaxy"
	"github.com/talgya/orbital-trader/internal/market"
	"github.com/talgya/orbital-trader/internal/player"
	"github.com/talgya/orbital-trader/internal/tutorial"
)

// Game is a running session: the saved State plus everything derived from
// the catalog. It is not safe for concurrent use; callers serialise commands.
type Game struct {
	Catalog *catalog.Catalog
	State   *State
	Graph   *galaxy.Graph

	rand      entropy.Source
	market    *market.Engine
	tutorials *tutorial.Tracker

	forceEncounter   bool
	forceEncounterID string

	pending []Notice
}

// Result is what a command reports back besides its error.
type Result struct {
	Value      int64              `json:"value,omitempty"`
	Notices    []Notice           `json:"notices,omitempty"`
	Tutorial   *tutorial.Step     `json:"tutorial,omitempty"`
	Encounter  *event.Encounter   `json:"encounter,omitempty"`
	Resolution *event.Resolution  `json:"resolution,omitempty"`
	Trip       *Trip              `json:"trip,omitempty"`
	Unlocks    []string           `json:"unlocks,omitempty"`
}

// New starts a fresh game on day 1.
func New(cat *catalog.Catalog, src entropy.Source, playerName string) *Game {
	st := &State{
		Day:                   1,
		LastInterestChargeDay: 1,
		LastMarketUpdateDay:   1,
		CurrentLocationID:     cat.Start.LocationID,
		GraphSeed:             entropy.NewSeed(),
		Player:                player.New(playerName, cat, calendar.StartYear),
		Intel:                 IntelState{Available: make(map[string]bool, len(cat.Locations))},
		RareOffers:            make(map[string]bool),
	}
	g := newGame(cat, st, src)
	st.Market = g.market.Seed(st.Day, st.Player.UnlockedCommodityLevel)
	for _, loc := range cat.Locations {
		st.Intel.Available[loc.ID] = src.Float64() < cat.Intel.Chance
	}
	g.rollRareOffers()
	slog.Info("new game", "player", playerName, "location", st.CurrentLocationID, "graph_seed", st.GraphSeed)
	return g
}

// Restore resumes a saved State. The travel graph is regenerated from its seed.
func Restore(cat *catalog.Catalog, st *State, src entropy.Source) (*Game, error) {
	if st == nil || st.Player == nil || st.Market == nil {
		return nil, fmt.Errorf("restore: incomplete state")
	}
	if _, ok := cat.Location(st.CurrentLocationID); !ok {
		return nil, fmt.Errorf("restore: unknown location %q", st.CurrentLocationID)
	}
	st.normalize()
	return newGame(cat, st, src), nil
}

func newGame(cat *catalog.Catalog, st *State, src entropy.Source) *Game {
	ids := make([]string, len(cat.Locations))
	for i, loc := range cat.Locations {
		ids[i] = loc.ID
	}
	g := &Game{
		Catalog: cat,
		State:   st,
		Graph:   galaxy.Generate(ids, cat.ShortHop, st.GraphSeed),
		rand:    src,
		market:  market.NewEngine(cat, src),
	}
	g.tutorials = &tutorial.Tracker{Batches: cat.Tutorials, Hold: g.holdTutorialStep}
	return g
}

// ForceEncounter makes the next trip roll an encounter. A non-empty id picks
// that encounter when its precondition holds.
func (g *Game) ForceEncounter(id string) error {
	if id != "" {
		if _, ok := event.Find(g.Catalog.Encounters, id); !ok {
			return apperrors.Newf(apperrors.CodeUnknownEvent, "Unknown encounter %q", id)
		}
	}
	g.forceEncounter = true
	g.forceEncounterID = id
	return nil
}

func (g *Game) checkActive() error {
	if g.State.IsGameOver {
		return apperrors.New(apperrors.CodeGameOver, "The game is over. Start a new game to keep trading.")
	}
	return nil
}

// activeShip returns the catalog entry and dynamic state of the active ship.
func (g *Game) activeShip() (*catalog.Ship, *player.ShipState) {
	p := g.State.Player
	ship, _ := g.Catalog.Ship(p.ActiveShipID)
	return ship, p.ActiveState()
}

func (g *Game) currentLocation() *catalog.Location {
	loc, _ := g.Catalog.Location(g.State.CurrentLocationID)
	return loc
}

// perkMods multiplies the travel modifiers of every active perk.
type perkMods struct {
	Fuel, HullDecay, TravelTime float64
}

func (g *Game) perkMods() perkMods {
	m := perkMods{Fuel: 1, HullDecay: 1, TravelTime: 1}
	for id, on := range g.State.Player.ActivePerks {
		perk, ok := g.Catalog.Perk(id)
		if !on || !ok {
			continue
		}
		if perk.FuelMod > 0 {
			m.Fuel *= perk.FuelMod
		}
		if perk.HullDecayMod > 0 {
			m.HullDecay *= perk.HullDecayMod
		}
		if perk.TravelTimeMod > 0 {
			m.TravelTime *= perk.TravelTimeMod
		}
	}
	return m
}

// serviceDiscount returns the fuel and repair discounts that apply here.
func (g *Game) serviceDiscount() (fuel, repair float64) {
	for id, on := range g.State.Player.ActivePerks {
		perk, ok := g.Catalog.Perk(id)
		if !on || !ok || perk.DiscountLocation != g.State.CurrentLocationID {
			continue
		}
		fuel += perk.FuelDiscount
		repair += perk.RepairDiscount
	}
	return fuel, repair
}

// intelMod is the price multiplier active intel puts on a commodity here.
func (g *Game) intelMod(commodityID string) float64 {
	in := g.State.Intel.Active
	if in == nil || in.TargetLocationID != g.State.CurrentLocationID || in.CommodityID != commodityID {
		return 0
	}
	if in.Kind == IntelDepression {
		return g.Catalog.Intel.DepressionMod
	}
	return g.Catalog.Intel.DemandMod
}

// checkMilestones fires credit milestones and reports newly opened access.
func (g *Game) checkMilestones() []string {
	p := g.State.Player
	var unlocked []string
	for _, u := range p.CheckMilestones(p.Credits, g.Catalog.Milestones) {
		if !u.Changed() {
			continue
		}
		body := u.Milestone.Message
		if u.LocationAdded {
			if loc, ok := g.Catalog.Location(u.Milestone.UnlocksLocation); ok {
				body += fmt.Sprintf(" New destination: access to %s has been granted.", loc.Name)
				unlocked = append(unlocked, loc.ID)
			}
		}
		g.modal("Reputation Growth", body, "")
		slog.Info("milestone reached", "threshold", u.Milestone.Threshold, "level", p.UnlockedCommodityLevel)
	}
	return unlocked
}

// checkHull raises a toast when the ship crosses a hull alert threshold.
func (g *Game) checkHull(shipID string) {
	ship, ok := g.Catalog.Ship(shipID)
	st := g.State.Player.ShipStates[shipID]
	if !ok || st == nil {
		return
	}
	rules := g.Catalog.Rules
	if frac, fired := st.CheckHullAlerts(ship.MaxHealth, rules.HullAlertWarning, rules.HullAlertCritical); fired {
		g.toast("Hull Warning", fmt.Sprintf("System Warning: Hull Health at %d%%.", int(frac*100)))
	}
}

// Date renders the current in-game date.
func (g *Game) Date() calendar.Date {
	return calendar.FromDay(g.State.Day)
}

// Snapshot returns a deep copy of the state for presentation.
func (g *Game) Snapshot() (*State, error) {
	return g.State.Clone()
}
