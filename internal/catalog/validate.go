package catalog

import (
	"errors"
	"fmt"

	"github.com/talgya/orbital-trader/internal/event"
)

// Validate checks ranges and cross references.
func (c *Catalog) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if len(c.Commodities) == 0 || len(c.Locations) < 2 || len(c.Ships) == 0 {
		add("catalog needs commodities, at least two locations and a ship")
	}
	if len(c.commodities) != len(c.Commodities) || len(c.locations) != len(c.Locations) || len(c.ships) != len(c.Ships) {
		add("duplicate ids in catalog")
	}
	for _, m := range c.Commodities {
		if m.PriceMin <= 0 || m.PriceMax < m.PriceMin {
			add("commodity %q: bad price range [%d, %d]", m.ID, m.PriceMin, m.PriceMax)
		}
	}
	for _, l := range c.Locations {
		if l.FuelPrice <= 0 {
			add("location %q: fuel price must be positive", l.ID)
		}
		for id := range l.Modifiers {
			if _, ok := c.Commodity(id); !ok {
				add("location %q: modifier for unknown commodity %q", l.ID, id)
			}
		}
		for id, sd := range l.SpecialDemand {
			if _, ok := c.Commodity(id); !ok {
				add("location %q: special demand for unknown commodity %q", l.ID, id)
			}
			if sd.Bonus <= 0 {
				add("location %q: special demand bonus must be positive", l.ID)
			}
		}
	}
	for _, s := range c.Ships {
		if s.MaxHealth <= 0 || s.MaxFuel <= 0 || s.CargoCapacity <= 0 {
			add("ship %q: stats must be positive", s.ID)
		}
		if s.SaleLocationID != "" {
			if _, ok := c.Location(s.SaleLocationID); !ok {
				add("ship %q: unknown sale location %q", s.ID, s.SaleLocationID)
			}
		}
	}
	for _, p := range c.Perks {
		if p.GrantsShip != "" {
			if _, ok := c.Ship(p.GrantsShip); !ok {
				add("perk %q grants unknown ship %q", p.ID, p.GrantsShip)
			}
		}
	}
	for _, ev := range c.AgeEvents {
		for _, ch := range ev.Choices {
			if _, ok := c.Perk(ch.PerkID); !ok {
				add("age event %q: unknown perk %q", ev.ID, ch.PerkID)
			}
		}
	}
	for _, m := range c.Milestones {
		if m.UnlocksLocation != "" {
			if _, ok := c.Location(m.UnlocksLocation); !ok {
				add("milestone %d: unknown location %q", m.Threshold, m.UnlocksLocation)
			}
		}
	}
	if _, ok := c.Location(c.Start.LocationID); !ok {
		add("start location %q unknown", c.Start.LocationID)
	}
	if _, ok := c.Ship(c.Start.ShipID); !ok {
		add("start ship %q unknown", c.Start.ShipID)
	}
	for _, id := range append(append([]string{}, c.Start.UnlockedLocations...), c.ShortHop...) {
		if _, ok := c.Location(id); !ok {
			add("unknown location %q", id)
		}
	}
	if len(c.ShortHop) != 0 && len(c.ShortHop) != 2 {
		add("short_hop must name exactly two locations")
	}
	if c.Rules.PriceHistoryLength <= 0 || c.Rules.MarketUpdateInterval <= 0 || c.Rules.InterestInterval <= 0 {
		add("history length and tick intervals must be positive")
	}
	if err := event.Validate(c.Encounters, func(id string) bool { _, ok := c.Commodity(id); return ok }); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
