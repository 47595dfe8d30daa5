package game

import (
	"fmt"

	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/ledger"
	"github.com/talgya/orbital-trader/internal/tutorial"
)

// Quote is one market row at the current location.
type Quote struct {
	CommodityID     string  `json:"commodity_id"`
	Name            string  `json:"name"`
	Tier            int     `json:"tier"`
	BuyPrice        int64   `json:"buy_price"`
	SellPrice       int64   `json:"sell_price"`
	Stock           int     `json:"stock"`
	GalacticAverage float64 `json:"galactic_average"`
	Held            int     `json:"held"`
	AvgCost         float64 `json:"avg_cost"`
	Locked          bool    `json:"locked"`
	SpecialDemand   string  `json:"special_demand,omitempty"`
}

// Market lists every commodity as priced here and now.
func (g *Game) Market() []Quote {
	st := g.State
	loc := g.currentLocation()
	inv := st.Player.Cargo()
	out := make([]Quote, 0, len(g.Catalog.Commodities))
	for _, c := range g.Catalog.Commodities {
		q := Quote{
			CommodityID:     c.ID,
			Name:            c.Name,
			Tier:            c.Tier,
			BuyPrice:        g.market.BuyPrice(st.Market, loc.ID, c.ID, g.intelMod(c.ID)),
			SellPrice:       g.market.SellPrice(st.Market, loc.ID, c.ID, g.intelMod(c.ID)),
			Stock:           st.Market.Available(loc.ID, c.ID),
			GalacticAverage: st.Market.GalacticAverages[c.ID],
			Locked:          c.UnlockLevel > st.Player.UnlockedCommodityLevel,
		}
		if h, ok := inv[c.ID]; ok {
			q.Held, q.AvgCost = h.Quantity, h.AvgCost
		}
		if sd, ok := loc.Special(c.ID); ok {
			q.SpecialDemand = sd.Lore
		}
		out = append(out, q)
	}
	return out
}

// BuyItem buys qty units at the quoted price. Value is the total cost.
func (g *Game) BuyItem(commodityID string, qty int) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	if qty <= 0 {
		return Result{}, apperrors.New(apperrors.CodeInvalidQuantity, "Quantity must be positive.")
	}
	c, ok := g.Catalog.Commodity(commodityID)
	if !ok {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownCommodity, "Unknown commodity %q", commodityID)
	}
	st := g.State
	p := st.Player
	if c.UnlockLevel > p.UnlockedCommodityLevel {
		return Result{}, apperrors.Newf(apperrors.CodeCommodityLocked, "%s is not yet available to you.", c.Name)
	}

	loc := st.CurrentLocationID
	stock := st.Market.Available(loc, c.ID)
	if stock <= 0 {
		return Result{}, apperrors.Newf(apperrors.CodeOutOfStock, "This station has no more %s available.", c.Name)
	}
	if qty > stock {
		return Result{}, apperrors.Newf(apperrors.CodeLimitedStock, "This station only has %d units available.", stock)
	}
	ship, _ := g.activeShip()
	inv := p.ActiveInventory()
	if inv.Used()+qty > ship.CargoCapacity {
		return Result{}, apperrors.New(apperrors.CodeCargoFull, "You don't have enough space.")
	}

	price := g.market.BuyPrice(st.Market, loc, c.ID, g.intelMod(c.ID))
	total := price * int64(qty)
	if err := p.Spend(st.Day, ledger.CategoryTrade, total, fmt.Sprintf("Bought %dx %s", qty, c.Name)); err != nil {
		return Result{}, err
	}
	st.Market.Take(loc, c.ID, qty)
	inv.Buy(c.ID, qty, float64(price))

	res := Result{Value: total, Unlocks: g.checkMilestones()}
	res.Tutorial, _ = g.reportTutorial(tutorial.Action{Type: tutorial.PlayerAct, Action: "buy-item"})
	res.Notices = g.drain()
	return res, nil
}

// SellItem sells qty held units. Value is the credited sale value: the
// quoted price times qty plus any profit bonus on the gain over average cost,
// floored.
func (g *Game) SellItem(commodityID string, qty int) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	if qty <= 0 {
		return Result{}, apperrors.New(apperrors.CodeInvalidQuantity, "Quantity must be positive.")
	}
	c, ok := g.Catalog.Commodity(commodityID)
	if !ok {
		return Result{}, apperrors.Newf(apperrors.CodeUnknownCommodity, "Unknown commodity %q", commodityID)
	}
	st := g.State
	p := st.Player
	inv := p.ActiveInventory()
	if held := inv.Quantity(c.ID); held < qty {
		return Result{}, apperrors.Newf(apperrors.CodeNotHeld, "You only hold %d units of %s.", held, c.Name)
	}

	loc := st.CurrentLocationID
	price := g.market.SellPrice(st.Market, loc, c.ID, g.intelMod(c.ID))
	sale := float64(price) * float64(qty)
	if profit := sale - inv[c.ID].AvgCost*float64(qty); profit > 0 {
		sale += profit * p.ProfitBonus(g.Catalog)
	}
	value := ledger.Floor(sale)

	st.Market.Restock(loc, c.ID, qty)
	inv.Remove(c.ID, qty)
	p.Adjust(st.Day, ledger.CategoryTrade, value, fmt.Sprintf("Sold %dx %s", qty, c.Name))

	res := Result{Value: value, Unlocks: g.checkMilestones()}
	res.Tutorial, _ = g.reportTutorial(tutorial.Action{Type: tutorial.PlayerAct, Action: "sell-item"})
	res.Notices = g.drain()
	return res, nil
}
