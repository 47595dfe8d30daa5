package game

import (
	"fmt"
	"log/slog"

	"github.com/talgya/orbital-trader/internal/catalog"
	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/ledger"
	"github.com/talgya/orbital-trader/internal/tutorial"
)

// ShipyardOffers lists ships for sale here that the player does not own.
// Rare ships appear only when this visit's roll put them on the floor.
func (g *Game) ShipyardOffers() []catalog.Ship {
	var out []catalog.Ship
	for _, ship := range g.Catalog.Ships {
		if ship.SaleLocationID != g.State.CurrentLocationID || g.State.Player.Owns(ship.ID) {
			continue
		}
		if ship.Rare && !g.State.RareOffers[ship.ID] {
			continue
		}
		out = append(out, ship)
	}
	return out
}

func (g *Game) offered(id string) bool {
	for _, s := range g.ShipyardOffers() {
		if s.ID == id {
			return true
		}
	}
	return false
}

// BuyShip buys an offered ship. It arrives with full tanks and hull.
func (g *Game) BuyShip(shipID string) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	ship, ok := g.Catalog.Ship(shipID)
	if !ok {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownShip, "Unknown ship %q", shipID)
	}
	p := g.State.Player
	if p.Owns(ship.ID) {
		return Result{}, apperrors.Newf(apperrors.CodeAlreadyOwned, "The %s is already in your hangar.", ship.Name)
	}
	if !g.offered(ship.ID) {
		return Result{}, apperrors.Newf(apperrors.CodeNotForSale, "The %s is not for sale here.", ship.Name)
	}
	if err := p.Spend(g.State.Day, ledger.CategoryShip, ship.Price, "Purchased "+ship.Name); err != nil {
		return Result{}, err
	}
	p.AddShip(ship)
	g.modal("Acquisition Complete", fmt.Sprintf("The %s has been transferred to your hangar.", ship.Name), "")
	slog.Info("ship bought", "ship", ship.ID, "price", ship.Price, "day", g.State.Day)

	res := Result{Value: ship.Price}
	res.Tutorial, _ = g.reportTutorial(tutorial.Action{Type: tutorial.PlayerAct, Action: "buy-ship"})
	res.Notices = g.drain()
	return res, nil
}

// SellShip sells an idle, empty ship at the resale rate. Value is the sale price.
func (g *Game) SellShip(shipID string) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	ship, ok := g.Catalog.Ship(shipID)
	if !ok {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownShip, "Unknown ship %q", shipID)
	}
	p := g.State.Player
	switch {
	case !p.Owns(ship.ID):
		return Result{}, apperrors.Newf(apperrors.CodeNotOwned, "You do not own the %s.", ship.Name)
	case len(p.OwnedShipIDs) <= 1:
		return Result{}, apperrors.New(apperrors.CodeLastShip, "You cannot sell your last remaining ship.")
	case ship.ID == p.ActiveShipID:
		return Result{}, apperrors.New(apperrors.CodeActiveShip, "You cannot sell your active ship.")
	case p.Inventories[ship.ID].Used() > 0:
		return Result{}, apperrors.New(apperrors.CodeCargoNotEmpty, "This vessel's cargo hold is not empty.")
	}

	price := ledger.Floor(float64(ship.Price) * g.Catalog.Rules.ShipSellModifier)
	p.Adjust(g.State.Day, ledger.CategoryShip, price, "Sold "+ship.Name)
	p.RemoveShip(ship.ID)
	g.modal("Vessel Sold", fmt.Sprintf("You sold the %s for %s.", ship.Name, ledger.FormatCredits(price)), "")
	slog.Info("ship sold", "ship", ship.ID, "price", price, "day", g.State.Day)

	res := Result{Value: price, Unlocks: g.checkMilestones()}
	res.Tutorial, _ = g.reportTutorial(tutorial.Action{Type: tutorial.PlayerAct, Action: "sell-ship"})
	res.Notices = g.drain()
	return res, nil
}

// SelectActiveShip makes an owned ship the one that flies and trades.
func (g *Game) SelectActiveShip(shipID string) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	p := g.State.Player
	if !p.Owns(shipID) {
		return Result{}, apperrors.Newf(apperrors.CodeNotOwned, "You do not own ship %q.", shipID)
	}
	p.ActiveShipID = shipID
	res := Result{}
	res.Tutorial, _ = g.reportTutorial(tutorial.Action{Type: tutorial.PlayerAct, Action: "select-ship"})
	res.Notices = g.drain()
	return res, nil
}
