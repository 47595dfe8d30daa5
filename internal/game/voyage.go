package game

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/orbital-trader/internal/calendar"
	"github.com/talgya/orbital-trader/internal/entropy"
	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/event"
	"github.com/talgya/orbital-trader/internal/ledger"
	"github.com/talgya/orbital-trader/internal/tutorial"
)

// Trip reports a completed or failed voyage.
type Trip struct {
	From              string  `json:"from"`
	To                string  `json:"to"`
	Days              int     `json:"days"`
	FuelUsed          int     `json:"fuel_used"`
	HullDamagePercent float64 `json:"hull_damage_percent"`
	Destroyed         bool    `json:"destroyed"`
	Arrived           bool    `json:"arrived"`
}

// Route is one reachable destination from the current location.
type Route struct {
	LocationID string `json:"location_id"`
	Name       string `json:"name"`
	Days       int    `json:"days"`
	Fuel       int    `json:"fuel"`
	Reachable  bool   `json:"reachable"`
}

// baseCost is the perk-adjusted time and fuel for a leg, before event modifiers.
func (g *Game) baseCost(from, to string) (days, fuel int, ok bool) {
	edge, ok := g.Graph.Edge(from, to)
	if !ok {
		return 0, 0, false
	}
	mods := g.perkMods()
	days = int(math.Round(float64(edge.Time) * mods.TravelTime))
	fuel = int(math.Round(float64(edge.FuelCost) * mods.Fuel))
	return days, fuel, true
}

// Routes lists unlocked destinations with their current cost.
func (g *Game) Routes() []Route {
	p := g.State.Player
	ship, st := g.activeShip()
	var out []Route
	for _, loc := range g.Catalog.Locations {
		if loc.ID == g.State.CurrentLocationID || !p.LocationUnlocked(loc.ID) {
			continue
		}
		days, fuel, ok := g.baseCost(g.State.CurrentLocationID, loc.ID)
		if !ok {
			continue
		}
		out = append(out, Route{
			LocationID: loc.ID,
			Name:       loc.Name,
			Days:       days,
			Fuel:       fuel,
			Reachable:  ship != nil && st != nil && float64(fuel) <= st.Fuel && float64(fuel) <= ship.MaxFuel,
		})
	}
	return out
}

// Travel starts a trip. It either completes the trip or parks it behind an
// encounter that must be resolved first.
func (g *Game) Travel(destinationID string) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	if g.State.Pending != nil {
		return Result{}, apperrors.New(apperrors.CodeTravelPending, "Resolve the current encounter before plotting a new course.")
	}
	dest, ok := g.Catalog.Location(destinationID)
	if !ok {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownLocation, "Unknown location %q", destinationID)
	}
	if !g.State.Player.LocationUnlocked(dest.ID) {
		return Result{}, apperrors.Newf(apperrors.CodeLocationLocked, "%s is not open to you yet.", dest.Name)
	}
	if dest.ID == g.State.CurrentLocationID {
		return Result{}, nil
	}

	_, fuel, _ := g.baseCost(g.State.CurrentLocationID, dest.ID)
	ship, st := g.activeShip()
	if ship.MaxFuel < float64(fuel) {
		return Result{}, apperrors.Newf(apperrors.CodeFuelCapacity,
			"Your ship's fuel tank is too small. This trip requires %d fuel, but you can only hold %d.", fuel, int(ship.MaxFuel))
	}
	if st.Fuel < float64(fuel) {
		return Result{}, apperrors.Newf(apperrors.CodeInsufficientFuel,
			"You need %d fuel but only have %d.", fuel, int(math.Floor(st.Fuel)))
	}

	if enc := g.rollEncounter(); enc != nil {
		g.State.Pending = &event.Pending{DestinationID: dest.ID, EncounterID: enc.ID}
		slog.Info("trip intercepted", "encounter", enc.ID, "destination", dest.ID, "day", g.State.Day)
		return Result{Encounter: enc, Notices: g.drain()}, nil
	}
	return g.execute(dest.ID, event.Modifiers{})
}

func (g *Game) rollEncounter() *event.Encounter {
	force, id := g.forceEncounter, g.forceEncounterID
	g.forceEncounter, g.forceEncounterID = false, ""

	snap := g.snapshot()
	if force && id != "" {
		if enc, ok := event.Find(g.Catalog.Encounters, id); ok && enc.When.Predicate()(snap) {
			return enc
		}
	}
	return event.Roll(g.Catalog.Encounters, snap, g.Catalog.Rules.EventChance, force, g.rand)
}

// ResumeTravel executes the parked trip with the modifiers its encounter left.
// When the modifiers make the trip infeasible the pending trip is kept.
func (g *Game) ResumeTravel() (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	p := g.State.Pending
	if p == nil {
		return Result{}, apperrors.New(apperrors.CodeNoPendingTravel, "There is no trip waiting to resume.")
	}
	if !p.Resolved {
		return Result{}, apperrors.New(apperrors.CodeTravelPending, "Choose how to handle the encounter first.")
	}
	return g.execute(p.DestinationID, p.Modifiers)
}

// CancelTravel abandons the parked trip without moving. Effects already
// applied by the encounter stay applied.
func (g *Game) CancelTravel() (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	if g.State.Pending == nil {
		return Result{}, apperrors.New(apperrors.CodeNoPendingTravel, "There is no trip to cancel.")
	}
	dest := g.State.Pending.DestinationID
	g.State.Pending = nil
	g.toast("Course Abandoned", "You hold position and stay docked.")
	slog.Info("trip cancelled", "destination", dest, "day", g.State.Day)
	return Result{Notices: g.drain()}, nil
}

// execute applies time, fuel and hull costs, then advances the clock.
// Order: perk-adjusted base, then event time modifiers, then the fuel check.
func (g *Game) execute(destID string, mods event.Modifiers) (Result, error) {
	from := g.State.CurrentLocationID
	base, fuel, ok := g.baseCost(from, destID)
	if !ok {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownLocation, "No route to %q", destID)
	}
	days := mods.ApplyTime(base)

	ship, st := g.activeShip()
	if st.Fuel < float64(fuel) {
		return Result{}, apperrors.Newf(apperrors.CodeInsufficientFuel,
			"Trip modifications left you without enough fuel. You need %d but only have %d.", fuel, int(math.Floor(st.Fuel)))
	}

	decay := float64(days) * g.Catalog.Rules.HullDecayPerDay * g.perkMods().HullDecay
	damage := decay + ship.MaxHealth*mods.HullDamagePercent/100
	trip := &Trip{
		From:              from,
		To:                destID,
		Days:              days,
		FuelUsed:          fuel,
		HullDamagePercent: damage / ship.MaxHealth * 100,
	}

	destroyed := st.Damage(damage)
	g.checkHull(ship.ID)
	if destroyed {
		trip.Destroyed = true
		g.State.Pending = nil
		g.destroyShip(ship.ID)
		return Result{Trip: trip, Notices: g.drain()}, nil
	}

	st.Refuel(-float64(fuel), ship.MaxFuel)
	g.advanceDays(days)
	if g.State.IsGameOver {
		return Result{Trip: trip, Notices: g.drain()}, nil
	}

	g.State.CurrentLocationID = destID
	g.State.Pending = nil
	g.rollRareOffers()
	trip.Arrived = true
	slog.Info("trip complete", "from", from, "to", destID, "days", days, "fuel", fuel, "day", g.State.Day)

	res := Result{Trip: trip}
	res.Tutorial, _ = g.reportTutorial(tutorial.Action{Type: tutorial.PlayerAct, Action: "travel"})
	res.Notices = g.drain()
	return res, nil
}

// destroyShip purges a lost ship. Losing the last ship ends the game.
func (g *Game) destroyShip(shipID string) {
	p := g.State.Player
	ship, _ := g.Catalog.Ship(shipID)
	p.RemoveShip(shipID)
	if len(p.OwnedShipIDs) == 0 {
		g.gameOver(fmt.Sprintf("Your last ship, the %s, was destroyed. Your trading career ends here.", ship.Name))
		return
	}
	p.ActiveShipID = p.OwnedShipIDs[0]
	next, _ := g.Catalog.Ship(p.ActiveShipID)
	g.modal("Vessel Lost", fmt.Sprintf(
		"The %s suffered a catastrophic hull breach and was destroyed. All cargo was lost. You now command your backup vessel, the %s.",
		ship.Name, next.Name), "")
	slog.Info("ship destroyed", "ship", shipID, "active", p.ActiveShipID, "day", g.State.Day)
}

func (g *Game) gameOver(msg string) {
	g.State.IsGameOver = true
	g.modal("Game Over", msg, GateRestart)
	slog.Info("game over", "day", g.State.Day, "credits", g.State.Player.Credits)
}

// advanceDays steps the clock one day at a time so every daily rule fires
// on its own boundary.
func (g *Game) advanceDays(n int) {
	st := g.State
	rules := g.Catalog.Rules
	p := st.Player
	for i := 0; i < n; i++ {
		if st.IsGameOver {
			return
		}
		st.Day++

		if calendar.DayOfYear(st.Day) == rules.BirthdayDayOfYear && calendar.Year(st.Day) > p.LastBirthdayYear {
			p.Age++
			p.BirthdayProfitBonus += rules.BirthdayProfitBonus
			p.LastBirthdayYear = calendar.Year(st.Day)
			g.modal(fmt.Sprintf("%s %s", p.Title, p.Name),
				fmt.Sprintf("You are now %d. You feel older and wiser. Your experience now grants you an additional %.0f%% profit on all trades.",
					p.Age, rules.BirthdayProfitBonus*100), "")
		}

		g.checkAgeEvents()

		if st.Day-st.LastMarketUpdateDay >= rules.MarketUpdateInterval {
			g.market.Evolve(st.Market, st.Day, p.UnlockedCommodityLevel)
			g.market.Replenish(st.Market, p.UnlockedCommodityLevel)
			g.garnish()
			st.LastMarketUpdateDay = st.Day
			slog.Debug("market evolved", "day", st.Day)
		}

		if st.Intel.Active != nil && st.Day > st.Intel.Active.EndDay {
			st.Intel.Active = nil
		}

		for _, id := range p.OwnedShipIDs {
			if id == p.ActiveShipID {
				continue
			}
			if ship, ok := g.Catalog.Ship(id); ok {
				p.ShipStates[id].Repair(ship.MaxHealth*rules.PassiveRepairRate, ship.MaxHealth)
			}
		}

		if _, charged := p.AccrueInterest(st.Day, st.LastInterestChargeDay, rules.InterestInterval); charged {
			st.LastInterestChargeDay = st.Day
		}
	}
}

func (g *Game) garnish() {
	p := g.State.Player
	rule := g.Catalog.Rules.Garnishment()
	taken, first := p.Garnish(g.State.Day, rule)
	if taken > 0 {
		g.toast("Garnishment", fmt.Sprintf("%.0f%% of credits garnished: -%s", rule.Percent*100, ledger.FormatAmount(taken)))
	}
	if first {
		g.modal("Credit Garnishment Notice", fmt.Sprintf(
			"Your loan is delinquent. Your lender is now garnishing %.0f%% of your credits weekly until the debt is paid.", rule.Percent*100), "")
	}
}

// rollRareOffers decides which rare ships are for sale during this visit.
func (g *Game) rollRareOffers() {
	offers := make(map[string]bool)
	for _, ship := range g.Catalog.Ships {
		if ship.Rare && ship.SaleLocationID == g.State.CurrentLocationID && g.rand.Float64() < g.Catalog.Rules.RareShipChance {
			offers[ship.ID] = true
		}
	}
	g.State.RareOffers = offers
}

// pickOther chooses a random unlocked location other than the current one.
func (g *Game) pickOther() (string, bool) {
	return entropy.Pick(g.rand, g.otherUnlocked())
}

func (g *Game) otherUnlocked() []string {
	var ids []string
	for _, loc := range g.Catalog.Locations {
		if loc.ID != g.State.CurrentLocationID && g.State.Player.LocationUnlocked(loc.ID) {
			ids = append(ids, loc.ID)
		}
	}
	return ids
}
