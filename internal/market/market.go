// Package market owns per-location prices and stock.
//
// Prices follow a mean-reverting walk toward the commodity's galactic average
// scaled by the location modifier. Evolution runs once per market week for
// every commodity the player has unlocked; each run appends one point to a
// bounded price history.
package market

import (
	"math"

	"github.com/talgya/orbital-trader/internal/catalog"
	"github.com/talgya/orbital-trader/internal/entropy"
)

// PricePoint is one history sample.
type PricePoint struct {
	Day   int   `json:"day"`
	Price int64 `json:"price"`
}

// State is the persisted market block.
type State struct {
	Prices           map[string]map[string]int64        `json:"prices"`
	Stock            map[string]map[string]int          `json:"stock"`
	History          map[string]map[string][]PricePoint `json:"history"`
	GalacticAverages map[string]float64                 `json:"galactic_averages"`
}

// Price returns the current price at a location.
func (s *State) Price(locationID, commodityID string) int64 {
	return s.Prices[locationID][commodityID]
}

// Available returns the stock at a location.
func (s *State) Available(locationID, commodityID string) int {
	return s.Stock[locationID][commodityID]
}

// Engine applies market rules from a catalog using a random source.
type Engine struct {
	Catalog *catalog.Catalog
	Rand    entropy.Source
}

// NewEngine returns an engine over cat drawing from src.
func NewEngine(cat *catalog.Catalog, src entropy.Source) *Engine {
	return &Engine{Catalog: cat, Rand: src}
}

// Seed creates the opening market: stock from the tier range skewed by
// SkewedRandom, boosted where the location pays a premium and zero where it
// has special demand; price jittered around the galactic average.
func (e *Engine) Seed(day, unlockedLevel int) *State {
	rules := e.Catalog.Rules
	s := &State{
		Prices:           make(map[string]map[string]int64, len(e.Catalog.Locations)),
		Stock:            make(map[string]map[string]int, len(e.Catalog.Locations)),
		History:          make(map[string]map[string][]PricePoint, len(e.Catalog.Locations)),
		GalacticAverages: make(map[string]float64, len(e.Catalog.Commodities)),
	}
	for _, c := range e.Catalog.Commodities {
		s.GalacticAverages[c.ID] = c.GalacticAverage()
	}
	for _, loc := range e.Catalog.Locations {
		s.Prices[loc.ID] = make(map[string]int64, len(e.Catalog.Commodities))
		s.Stock[loc.ID] = make(map[string]int, len(e.Catalog.Commodities))
		for _, c := range e.Catalog.Commodities {
			r := rules.TierRange(c.Tier)
			mod := loc.Modifier(c.ID)

			stock := entropy.SkewedRandom(e.Rand, r.Min, r.Max)
			if mod > 1.0 {
				stock = int(math.Floor(float64(stock) * rules.DemandStockBoost))
			}
			if _, special := loc.Special(c.ID); special {
				stock = 0
			}
			s.Stock[loc.ID][c.ID] = stock

			jitter := 1 + (e.Rand.Float64()-0.5)*2*rules.PriceJitter
			s.Prices[loc.ID][c.ID] = clampPrice(s.GalacticAverages[c.ID] * jitter * mod)
		}
	}
	e.RecordHistory(s, day, unlockedLevel)
	return s
}

// Evolve moves every unlocked price one step:
// price + price*noise + (baseline - price)*reversion, with noise uniform in
// [-V, V]. The result is rounded and never below 1. History is recorded after.
func (e *Engine) Evolve(s *State, day, unlockedLevel int) {
	rules := e.Catalog.Rules
	for _, loc := range e.Catalog.Locations {
		for _, c := range e.Catalog.Commodities {
			if c.UnlockLevel > unlockedLevel {
				continue
			}
			price := float64(s.Prices[loc.ID][c.ID])
			baseline := s.GalacticAverages[c.ID] * loc.Modifier(c.ID)
			volatility := (e.Rand.Float64() - 0.5) * 2 * rules.PriceVolatility
			reversion := (baseline - price) * rules.MeanReversion
			s.Prices[loc.ID][c.ID] = clampPrice(price + price*volatility + reversion)
		}
	}
	e.RecordHistory(s, day, unlockedLevel)
}

// Replenish tops up unlocked stock by a fraction of the tier maximum, capped
// at that maximum. Special-demand stock is forced back to zero.
func (e *Engine) Replenish(s *State, unlockedLevel int) {
	rules := e.Catalog.Rules
	for _, loc := range e.Catalog.Locations {
		for _, c := range e.Catalog.Commodities {
			if c.UnlockLevel > unlockedLevel {
				continue
			}
			ceiling := rules.TierRange(c.Tier).Max
			q := s.Stock[loc.ID][c.ID]
			if q < ceiling {
				q = min(ceiling, q+int(math.Ceil(float64(ceiling)*rules.ReplenishFraction)))
			}
			if _, special := loc.Special(c.ID); special {
				q = 0
			}
			s.Stock[loc.ID][c.ID] = q
		}
	}
}

// RecordHistory appends the current price of every unlocked commodity and
// drops the oldest points beyond the configured length.
func (e *Engine) RecordHistory(s *State, day, unlockedLevel int) {
	limit := e.Catalog.Rules.PriceHistoryLength
	for _, loc := range e.Catalog.Locations {
		if s.History[loc.ID] == nil {
			s.History[loc.ID] = make(map[string][]PricePoint)
		}
		for _, c := range e.Catalog.Commodities {
			if c.UnlockLevel > unlockedLevel {
				continue
			}
			h := append(s.History[loc.ID][c.ID], PricePoint{Day: day, Price: s.Prices[loc.ID][c.ID]})
			if over := len(h) - limit; over > 0 {
				h = append([]PricePoint(nil), h[over:]...)
			}
			s.History[loc.ID][c.ID] = h
		}
	}
}

// BuyPrice is what a location charges per unit: the market price times any
// intel multiplier, rounded, at least 1.
func (e *Engine) BuyPrice(s *State, locationID, commodityID string, intelMod float64) int64 {
	price := float64(s.Price(locationID, commodityID))
	if intelMod > 0 {
		price *= intelMod
	}
	return clampPrice(price)
}

// SellPrice is what a location pays per unit: the market price times the
// special-demand bonus and any intel multiplier, rounded, at least 1.
func (e *Engine) SellPrice(s *State, locationID, commodityID string, intelMod float64) int64 {
	price := float64(s.Price(locationID, commodityID))
	if loc, ok := e.Catalog.Location(locationID); ok {
		if sd, special := loc.Special(commodityID); special {
			price *= sd.Bonus
		}
	}
	if intelMod > 0 {
		price *= intelMod
	}
	return clampPrice(price)
}

// Restock adds units sold by the player to a location's stock.
func (s *State) Restock(locationID, commodityID string, qty int) {
	s.Stock[locationID][commodityID] += qty
}

// Take removes units bought by the player.
func (s *State) Take(locationID, commodityID string, qty int) {
	s.Stock[locationID][commodityID] = max(0, s.Stock[locationID][commodityID]-qty)
}

func clampPrice(p float64) int64 {
	return max(1, int64(math.Round(p)))
}
