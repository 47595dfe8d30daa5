// Package event selects and resolves random travel encounters.
//
// A trip that rolls an encounter is parked in a Pending record. The player
// picks a choice, one outcome is sampled, and its effects either change the
// player's books and hold through a Target or accumulate on the Pending
// Modifiers, which the voyage applies once when the trip resumes.
package event

import (
	"fmt"
	"math"

	"github.com/talgya/orbital-trader/internal/entropy"
)

// Encounter is a random event definition.
type Encounter struct {
	ID       string       `yaml:"id" json:"id"`
	Title    string       `yaml:"title" json:"title"`
	Scenario string       `yaml:"scenario" json:"scenario"`
	When     Precondition `yaml:"when" json:"-"`
	Choices  []Choice     `yaml:"choices" json:"choices"`
}

type Choice struct {
	Title    string    `yaml:"title" json:"title"`
	Outcomes []Outcome `yaml:"outcomes" json:"-"`
}

type Outcome struct {
	Chance      float64 `yaml:"chance"`
	Description string  `yaml:"description"`
	Effects     Effects `yaml:"effects"`
}

// Snapshot is the read-only view preconditions are evaluated against.
type Snapshot struct {
	Credits       int64
	Debt          int64
	Fuel          float64
	MaxFuel       float64
	Health        float64
	MaxHealth     float64
	CargoUsed     int
	CargoCapacity int
	ShipClass     string
	Cargo         map[string]int // held quantities, zero stacks omitted
}

// Holds reports the quantity held of a commodity.
func (s Snapshot) Holds(id string) int { return s.Cargo[id] }

// Precondition is a declarative eligibility rule. Zero fields are ignored;
// all set fields must hold.
type Precondition struct {
	MinFuel         float64      `yaml:"min_fuel"`
	MinHullFraction float64      `yaml:"hull_above_fraction"` // strictly above
	CreditsAbove    int64        `yaml:"credits_above"`       // strictly above
	HasCargo        bool         `yaml:"has_cargo"`
	MinHolding      *HoldingRule `yaml:"min_holding"`
}

type HoldingRule struct {
	Commodity string `yaml:"commodity"`
	Quantity  int    `yaml:"quantity"`
}

// Predicate compiles the rule into a pure function of a snapshot.
func (p Precondition) Predicate() func(Snapshot) bool {
	return func(s Snapshot) bool {
		if p.MinFuel > 0 && s.Fuel < p.MinFuel {
			return false
		}
		if p.MinHullFraction > 0 && s.Health <= s.MaxHealth*p.MinHullFraction {
			return false
		}
		if p.CreditsAbove > 0 && s.Credits <= p.CreditsAbove {
			return false
		}
		if p.HasCargo && s.CargoUsed <= 0 {
			return false
		}
		if p.MinHolding != nil && s.Holds(p.MinHolding.Commodity) < p.MinHolding.Quantity {
			return false
		}
		return true
	}
}

// Eligible filters encounters whose precondition holds for s, keeping order.
func Eligible(encounters []Encounter, s Snapshot) []*Encounter {
	var out []*Encounter
	for i := range encounters {
		if encounters[i].When.Predicate()(s) {
			out = append(out, &encounters[i])
		}
	}
	return out
}

// Roll decides whether a trip is intercepted. Without force, an encounter
// happens when the draw does not exceed chance. Returns nil for no encounter.
func Roll(encounters []Encounter, s Snapshot, chance float64, force bool, src entropy.Source) *Encounter {
	if !force && src.Float64() > chance {
		return nil
	}
	picked, ok := entropy.Pick(src, Eligible(encounters, s))
	if !ok {
		return nil
	}
	return picked
}

// PickOutcome samples one outcome index by subtracting chances from a uniform
// draw until it goes negative. Falls back to the last outcome, so exactly one
// is always chosen whatever the chances sum to.
func PickOutcome(outcomes []Outcome, src entropy.Source) int {
	if len(outcomes) == 0 {
		return -1
	}
	r := src.Float64()
	for i, o := range outcomes {
		r -= o.Chance
		if r < 0 {
			return i
		}
	}
	return len(outcomes) - 1
}

// Modifiers accumulate event changes to a pending trip.
type Modifiers struct {
	TimeAdd           int     `json:"time_add"`
	TimeAddPercent    float64 `json:"time_add_percent"`
	TimeOverride      *int    `json:"time_override,omitempty"`
	HullDamagePercent float64 `json:"hull_damage_percent"`
}

// Empty reports whether no modifier has been contributed.
func (m Modifiers) Empty() bool {
	return m.TimeAdd == 0 && m.TimeAddPercent == 0 && m.TimeOverride == nil && m.HullDamagePercent == 0
}

// ApplyTime folds the time modifiers into a base duration: an override
// replaces the base, then the additive days, then the percentage. Never below 1.
func (m Modifiers) ApplyTime(base int) int {
	t := float64(base)
	if m.TimeOverride != nil {
		t = float64(*m.TimeOverride)
	}
	t += float64(m.TimeAdd)
	t *= 1 + m.TimeAddPercent
	days := int(math.Round(t))
	if days < 1 {
		days = 1
	}
	return days
}

// Pending is a trip parked by an encounter.
type Pending struct {
	DestinationID string    `json:"destination_id"`
	EncounterID   string    `json:"encounter_id"`
	Resolved      bool      `json:"resolved"`
	Outcome       string    `json:"outcome,omitempty"`
	Modifiers     Modifiers `json:"modifiers"`
}

// Find returns the encounter with id.
func Find(encounters []Encounter, id string) (*Encounter, bool) {
	for i := range encounters {
		if encounters[i].ID == id {
			return &encounters[i], true
		}
	}
	return nil, false
}

// Validate checks structure and commodity references.
func Validate(encounters []Encounter, commodityExists func(string) bool) error {
	seen := make(map[string]bool)
	for _, enc := range encounters {
		if enc.ID == "" {
			return fmt.Errorf("encounter without id")
		}
		if seen[enc.ID] {
			return fmt.Errorf("duplicate encounter %q", enc.ID)
		}
		seen[enc.ID] = true
		if len(enc.Choices) == 0 {
			return fmt.Errorf("encounter %q has no choices", enc.ID)
		}
		if h := enc.When.MinHolding; h != nil && !commodityExists(h.Commodity) {
			return fmt.Errorf("encounter %q: unknown commodity %q", enc.ID, h.Commodity)
		}
		for ci, ch := range enc.Choices {
			if len(ch.Outcomes) == 0 {
				return fmt.Errorf("encounter %q choice %d has no outcomes", enc.ID, ci)
			}
			for _, o := range ch.Outcomes {
				if o.Chance < 0 {
					return fmt.Errorf("encounter %q choice %d: negative chance", enc.ID, ci)
				}
				for _, e := range o.Effects {
					if id := cargoRef(e); id != "" && !commodityExists(id) {
						return fmt.Errorf("encounter %q: unknown commodity %q", enc.ID, id)
					}
				}
			}
		}
	}
	return nil
}

func cargoRef(e Effect) string {
	switch e := e.(type) {
	case AddCargo:
		return e.CommodityID
	case LoseCargo:
		return e.CommodityID
	case AdriftPassenger:
		return e.GiftCommodity
	}
	return ""
}
