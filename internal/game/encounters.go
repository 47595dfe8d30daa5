package game

import (
	"fmt"
	"log/slog"
	"slices"

	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/event"
	"github.com/talgya/orbital-trader/internal/ledger"
)

// snapshot is the read-only view encounter preconditions see.
func (g *Game) snapshot() event.Snapshot {
	p := g.State.Player
	ship, st := g.activeShip()
	inv := p.Cargo()
	return event.Snapshot{
		Credits:       p.Credits,
		Debt:          p.Debt,
		Fuel:          st.Fuel,
		MaxFuel:       ship.MaxFuel,
		Health:        st.Health,
		MaxHealth:     ship.MaxHealth,
		CargoUsed:     inv.Used(),
		CargoCapacity: ship.CargoCapacity,
		ShipClass:     ship.Class,
		Cargo:         inv.Held(),
	}
}

// ResolveEventChoice applies one choice of the pending encounter. The trip
// stays parked until ResumeTravel.
func (g *Game) ResolveEventChoice(encounterID string, choice int) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	p := g.State.Pending
	if p == nil {
		return Result{}, apperrors.New(apperrors.CodeNoPendingTravel, "No encounter is waiting for a decision.")
	}
	if p.EncounterID != encounterID {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownEvent, "Encounter %q is not pending", encounterID)
	}
	if p.Resolved {
		return Result{}, apperrors.New(apperrors.CodeInvalidChoice, "This encounter has already been resolved.")
	}
	enc, ok := event.Find(g.Catalog.Encounters, encounterID)
	if !ok {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownEvent, "Unknown encounter %q", encounterID)
	}

	res, err := event.Resolve(enc, choice, target{g}, p, g.rand)
	if err != nil {
		return Result{}, err
	}
	p.Resolved = true
	p.Outcome = res.Description
	slog.Info("encounter resolved", "encounter", enc.ID, "choice", choice, "outcome", res.OutcomeIndex, "effects", len(res.Applied))

	unlocks := g.checkMilestones()
	g.modal(enc.Title, res.Description, GateResumeTravel)
	return Result{Resolution: &res, Unlocks: unlocks, Notices: g.drain()}, nil
}

// target adapts the game to the effects an encounter outcome applies.
type target struct{ g *Game }

func (t target) Snapshot() event.Snapshot { return t.g.snapshot() }

func (t target) AdjustCredits(delta int64, cat ledger.Category, desc string) {
	t.g.State.Player.Adjust(t.g.State.Day, cat, delta, desc)
}

func (t target) AdjustFuel(delta float64) {
	ship, st := t.g.activeShip()
	st.Refuel(delta, ship.MaxFuel)
}

func (t target) AddDebt(amount int64, cat ledger.Category, desc string) {
	t.g.State.Player.AddDebt(t.g.State.Day, cat, amount, desc)
}

func (t target) ReduceDebt(amount int64, cat ledger.Category, desc string) {
	t.g.State.Player.ReduceDebt(t.g.State.Day, cat, amount, desc)
}

func (t target) AddCargo(commodityID string, qty int) bool {
	ship, _ := t.g.activeShip()
	inv := t.g.State.Player.ActiveInventory()
	if qty <= 0 || inv.Used()+qty > ship.CargoCapacity {
		return false
	}
	inv.Add(commodityID, qty)
	return true
}

func (t target) RemoveCargo(commodityID string, qty int) {
	t.g.State.Player.ActiveInventory().Remove(commodityID, qty)
}

func (t target) GalacticAverage(commodityID string) float64 {
	return t.g.State.Market.GalacticAverages[commodityID]
}

func (t target) RerouteCandidates() []string { return t.g.otherUnlocked() }

// checkAgeEvents queues every unseen age event whose trigger has been met.
func (g *Game) checkAgeEvents() {
	p := g.State.Player
	for _, ev := range g.Catalog.AgeEvents {
		if p.SeenAgeEvent(ev.ID) {
			continue
		}
		byDay := ev.Trigger.Day > 0 && g.State.Day >= ev.Trigger.Day
		byCredits := ev.Trigger.Credits > 0 && p.Credits >= ev.Trigger.Credits
		if !byDay && !byCredits {
			continue
		}
		p.SeenAgeEvents = append(p.SeenAgeEvents, ev.ID)
		g.State.AgeEventQueue = append(g.State.AgeEventQueue, ev.ID)
		g.modal(ev.Title, ev.Description, GateAgeEvent)
		slog.Info("age event", "event", ev.ID, "day", g.State.Day)
	}
}

// ChooseAgeEvent settles a queued age event by granting the chosen perk.
func (g *Game) ChooseAgeEvent(eventID string, choice int) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	idx := slices.Index(g.State.AgeEventQueue, eventID)
	if idx < 0 {
		return Result{}, apperrors.Newf(apperrors.CodeNoAgeEvent, "Age event %q is not awaiting a choice", eventID)
	}
	ev, ok := g.Catalog.AgeEvent(eventID)
	if !ok {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownEvent, "Unknown age event %q", eventID)
	}
	if choice < 0 || choice >= len(ev.Choices) {
		return Result{}, apperrors.Newf(apperrors.CodeInvalidChoice, "Age event %q has no choice %d", eventID, choice)
	}

	g.State.AgeEventQueue = slices.Delete(g.State.AgeEventQueue, idx, idx+1)
	c := ev.Choices[choice]
	p := g.State.Player
	if c.PerkID != "" {
		p.ActivePerks[c.PerkID] = true
	}
	if c.PlayerTitle != "" {
		p.Title = c.PlayerTitle
	}
	if perk, ok := g.Catalog.Perk(c.PerkID); ok && perk.GrantsShip != "" && !p.Owns(perk.GrantsShip) {
		if ship, ok := g.Catalog.Ship(perk.GrantsShip); ok {
			p.AddShip(ship)
			g.modal("Vessel Delivered", fmt.Sprintf("A new %s has been delivered to your hangar.", ship.Name), "")
		}
	}
	slog.Info("perk granted", "event", eventID, "perk", c.PerkID)
	return Result{Notices: g.drain()}, nil
}
