package autopilot

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/event"
	"github.com/talgya/orbital-trader/internal/game"
)

// Action names one API command.
type Action string

const (
	ActionNone         Action = "none"
	ActionResolveEvent Action = "resolve_event"
	ActionResumeTravel Action = "resume_travel"
	ActionCancelTravel Action = "cancel_travel"
	ActionChooseAge    Action = "choose_age_event"
	ActionRepair       Action = "repair"
	ActionRefuel       Action = "refuel"
	ActionSell         Action = "sell"
	ActionBuy          Action = "buy"
	ActionTravel       Action = "travel"
)

var actionPaths = map[Action]string{
	ActionResolveEvent: "/api/v1/events/resolve",
	ActionResumeTravel: "/api/v1/travel/resume",
	ActionCancelTravel: "/api/v1/travel/cancel",
	ActionChooseAge:    "/api/v1/age-events/choose",
	ActionRepair:       "/api/v1/repair",
	ActionRefuel:       "/api/v1/refuel",
	ActionSell:         "/api/v1/sell",
	ActionBuy:          "/api/v1/buy",
	ActionTravel:       "/api/v1/travel",
}

// Decision is one command with its request body.
type Decision struct {
	Action    Action
	Body      map[string]any
	Rationale string
	Final     bool // nothing more can be done in this game
}

const (
	buyBelowAverage = 0.85 // buy when the price is under this share of the galactic average
	creditReserve   = 500  // never spend below this on cargo
)

// Decide picks the next command. Safety comes first: encounters, then the
// hull and tank, then selling, buying and finally moving on.
func Decide(cat *catalog.Catalog, snap *Snapshot, h *ShipHealth, mem *Memory) Decision {
	st := &snap.State
	if h.Condition == ConditionLost {
		return Decision{Action: ActionNone, Rationale: "game over", Final: true}
	}

	if p := st.Pending; p != nil {
		if !p.Resolved {
			choice := safestChoice(cat, p.EncounterID)
			return Decision{
				Action:    ActionResolveEvent,
				Body:      map[string]any{"encounter_id": p.EncounterID, "choice": choice},
				Rationale: fmt.Sprintf("encounter %s, choice %d has the best expected outcome", p.EncounterID, choice),
			}
		}
		if mem.LastFailed(ActionResumeTravel) {
			return Decision{Action: ActionCancelTravel, Rationale: "trip is no longer feasible"}
		}
		return Decision{Action: ActionResumeTravel, Rationale: "encounter resolved"}
	}

	if len(st.AgeEventQueue) > 0 {
		return Decision{
			Action:    ActionChooseAge,
			Body:      map[string]any{"event_id": st.AgeEventQueue[0], "choice": 0},
			Rationale: "age event waiting",
		}
	}

	credits := st.Player.Credits
	if h.Condition == ConditionDamaged && !mem.LastFailed(ActionRepair) {
		return Decision{Action: ActionRepair, Rationale: fmt.Sprintf("hull at %.0f%%", h.Hull*100)}
	}
	if h.Fuel < 1 && (h.Condition == ConditionLowFuel || h.Condition == ConditionStranded) && !mem.LastFailed(ActionRefuel) {
		return Decision{Action: ActionRefuel, Rationale: fmt.Sprintf("fuel at %.0f%%", h.Fuel*100)}
	}

	if q, ok := bestSale(snap.Market); ok {
		return Decision{
			Action:    ActionSell,
			Body:      map[string]any{"commodity": q.CommodityID, "quantity": q.Held},
			Rationale: fmt.Sprintf("%s sells at %d over cost %.0f", q.CommodityID, q.SellPrice, q.AvgCost),
		}
	}

	if h.CargoFree > 0 && !mem.LastFailed(ActionBuy) {
		if q, qty, ok := bestPurchase(snap.Market, credits, h.CargoFree); ok {
			return Decision{
				Action:    ActionBuy,
				Body:      map[string]any{"commodity": q.CommodityID, "quantity": qty},
				Rationale: fmt.Sprintf("%s at %d vs galactic average %.0f", q.CommodityID, q.BuyPrice, q.GalacticAverage),
			}
		}
	}

	if r, ok := nextRoute(snap.Routes, mem); ok {
		return Decision{
			Action:    ActionTravel,
			Body:      map[string]any{"destination": r.LocationID},
			Rationale: fmt.Sprintf("heading to %s (%d days)", r.Name, r.Days),
		}
	}
	return Decision{Action: ActionNone, Rationale: "nothing to do"}
}

// safestChoice scores each choice by the expected credit value of its
// outcomes and picks the highest.
func safestChoice(cat *catalog.Catalog, encounterID string) int {
	enc, ok := event.Find(cat.Encounters, encounterID)
	if !ok {
		return 0
	}
	best, bestScore := 0, math.Inf(-1)
	for i, ch := range enc.Choices {
		var score float64
		for _, o := range ch.Outcomes {
			score += o.Chance * effectsValue(o.Effects)
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// effectsValue prices effects in rough credits.
func effectsValue(effects event.Effects) float64 {
	const (
		perFuel     = 120
		perHullPct  = 150
		perDay      = 80
		perUnit     = 100
		perCargoPct = 40
	)
	var v float64
	for _, e := range effects {
		switch e := e.(type) {
		case event.Credits:
			v += float64(e.Amount)
		case event.Fuel:
			v += e.Delta * perFuel
		case event.HullDamagePercent:
			v -= (e.Min + e.Max) / 2 * perHullPct
		case event.TravelTimeAdd:
			v -= float64(e.Days) * perDay
		case event.TravelTimeAddPercent:
			v -= e.Fraction * 10 * perDay
		case event.AddDebt:
			v -= float64(e.Amount)
		case event.AddCargo:
			v += float64(e.Quantity) * perUnit
		case event.LoseCargo:
			v -= float64(e.Quantity) * perUnit
		case event.LoseRandomCargoPercent:
			v -= e.Fraction * 100 * perCargoPct
		case event.SellRandomCargoPremium:
			v += (e.Multiplier - 1) * 100 * perCargoPct
		case event.SpaceRace:
			v -= e.WagerPercent * 1000 * (1 - 2*e.DefaultWinChance)
		case event.AdriftPassenger:
			v -= e.FuelCost * perFuel
		}
	}
	return v
}

// bestSale is the held stack with the largest gain over its cost basis.
func bestSale(market []game.Quote) (game.Quote, bool) {
	var best game.Quote
	var bestGain float64
	for _, q := range market {
		if q.Held == 0 {
			continue
		}
		gain := (float64(q.SellPrice) - q.AvgCost) * float64(q.Held)
		if gain > bestGain {
			best, bestGain = q, gain
		}
	}
	return best, bestGain > 0
}

// bestPurchase is the cheapest commodity relative to its galactic average,
// sized to credits, stock and free cargo.
func bestPurchase(market []game.Quote, credits int64, cargoFree int) (game.Quote, int, bool) {
	var candidates []game.Quote
	for _, q := range market {
		if q.Locked || q.Stock <= 0 || q.BuyPrice <= 0 || q.GalacticAverage <= 0 {
			continue
		}
		if float64(q.BuyPrice) < q.GalacticAverage*buyBelowAverage {
			candidates = append(candidates, q)
		}
	}
	slices.SortFunc(candidates, func(a, b game.Quote) int {
		return cmp.Compare(float64(a.BuyPrice)/a.GalacticAverage, float64(b.BuyPrice)/b.GalacticAverage)
	})
	budget := credits - creditReserve
	for _, q := range candidates {
		qty := min(q.Stock, cargoFree, int(budget/q.BuyPrice))
		if qty > 0 {
			return q, qty, true
		}
	}
	return game.Quote{}, 0, false
}

// nextRoute prefers the reachable location visited longest ago, then the
// shorter trip.
func nextRoute(routes []game.Route, mem *Memory) (game.Route, bool) {
	var reachable []game.Route
	for _, r := range routes {
		if r.Reachable {
			reachable = append(reachable, r)
		}
	}
	if len(reachable) == 0 {
		return game.Route{}, false
	}
	slices.SortFunc(reachable, func(a, b game.Route) int {
		if c := cmp.Compare(mem.LastVisit(a.LocationID), mem.LastVisit(b.LocationID)); c != 0 {
			return c
		}
		return cmp.Compare(a.Days, b.Days)
	})
	return reachable[0], true
}
