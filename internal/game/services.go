package game

import (
	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/ledger"
)

// RefuelTick buys one tick of fuel at the local price. Value is the cost.
// Each call is a complete transaction, so held-button repeats are safe.
func (g *Game) RefuelTick() (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	ship, st := g.activeShip()
	if st.Fuel >= ship.MaxFuel {
		return Result{}, apperrors.New(apperrors.CodeTankFull, "Your fuel tank is full.")
	}
	discount, _ := g.serviceDiscount()
	rules := g.Catalog.Rules
	cost := ledger.Round(g.currentLocation().FuelPrice / rules.RefuelCostDivisor * (1 - discount))
	if err := g.State.Player.Spend(g.State.Day, ledger.CategoryFuel, cost, "Purchased fuel"); err != nil {
		return Result{}, err
	}
	st.Refuel(rules.RefuelPerTick, ship.MaxFuel)
	return Result{Value: cost, Notices: g.drain()}, nil
}

// RepairTick restores a fixed share of max hull. Value is the cost.
func (g *Game) RepairTick() (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	ship, st := g.activeShip()
	if st.Health >= ship.MaxHealth {
		return Result{}, apperrors.New(apperrors.CodeHullFull, "Your hull is already at full integrity.")
	}
	_, discount := g.serviceDiscount()
	rules := g.Catalog.Rules
	amount := ship.MaxHealth * rules.RepairPercentPerTick / 100
	cost := ledger.Round(amount * rules.RepairCostPerHP * (1 - discount))
	if err := g.State.Player.Spend(g.State.Day, ledger.CategoryRepair, cost, "Hull repairs"); err != nil {
		return Result{}, err
	}
	st.Repair(amount, ship.MaxHealth)
	g.checkHull(ship.ID)
	return Result{Value: cost, Notices: g.drain()}, nil
}
