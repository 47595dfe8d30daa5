package event

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind names an effect variant.
type Kind string

const (
	KindCredits                Kind = "credits"
	KindFuel                   Kind = "fuel"
	KindHullDamagePercent      Kind = "hull_damage_percent"
	KindTravelTimeAdd          Kind = "travel_time_add"
	KindTravelTimeAddPercent   Kind = "travel_time_add_percent"
	KindSetTravelTime          Kind = "set_travel_time"
	KindAddDebt                Kind = "add_debt"
	KindAddCargo               Kind = "add_cargo"
	KindLoseCargo              Kind = "lose_cargo"
	KindLoseRandomCargoPercent Kind = "lose_random_cargo_percent"
	KindSellRandomCargoPremium Kind = "sell_random_cargo_premium"
	KindNewRandomDestination   Kind = "set_new_random_destination"
	KindSpaceRace              Kind = "space_race"
	KindAdriftPassenger        Kind = "adrift_passenger"
)

// Effect is a closed union; only the types in this file implement it.
type Effect interface {
	Kind() Kind
	effect()
}

type Credits struct{ Amount int64 }
type Fuel struct{ Delta float64 }

// HullDamagePercent adds Min..Max percent of max hull to the pending trip's damage.
// Min == Max is a fixed amount.
type HullDamagePercent struct{ Min, Max float64 }

type TravelTimeAdd struct{ Days int }
type TravelTimeAddPercent struct{ Fraction float64 }
type SetTravelTime struct{ Days int }
type AddDebt struct{ Amount int64 }

type AddCargo struct {
	CommodityID string
	Quantity    int
}

type LoseCargo struct {
	CommodityID string
	Quantity    int
}

type LoseRandomCargoPercent struct{ Fraction float64 }
type SellRandomCargoPremium struct{ Multiplier float64 }
type NewRandomDestination struct{}

// SpaceRace wagers a share of credits on a race won with a per-ship-class chance.
type SpaceRace struct {
	WagerPercent     float64
	WinChance        map[string]float64
	DefaultWinChance float64
}

// AdriftPassenger costs fuel, then pays back with the first option that fits:
// a cargo gift, debt relief, or a credit gift.
type AdriftPassenger struct {
	FuelCost       float64
	GiftCommodity  string
	GiftQuantity   int
	DebtRelief     float64 // share of debt forgiven
	CreditGiftRate float64 // share of credits paid
}

func (Credits) Kind() Kind                { return KindCredits }
func (Fuel) Kind() Kind                   { return KindFuel }
func (HullDamagePercent) Kind() Kind      { return KindHullDamagePercent }
func (TravelTimeAdd) Kind() Kind          { return KindTravelTimeAdd }
func (TravelTimeAddPercent) Kind() Kind   { return KindTravelTimeAddPercent }
func (SetTravelTime) Kind() Kind          { return KindSetTravelTime }
func (AddDebt) Kind() Kind                { return KindAddDebt }
func (AddCargo) Kind() Kind               { return KindAddCargo }
func (LoseCargo) Kind() Kind              { return KindLoseCargo }
func (LoseRandomCargoPercent) Kind() Kind { return KindLoseRandomCargoPercent }
func (SellRandomCargoPremium) Kind() Kind { return KindSellRandomCargoPremium }
func (NewRandomDestination) Kind() Kind   { return KindNewRandomDestination }
func (SpaceRace) Kind() Kind              { return KindSpaceRace }
func (AdriftPassenger) Kind() Kind        { return KindAdriftPassenger }

func (Credits) effect()                {}
func (Fuel) effect()                   {}
func (HullDamagePercent) effect()      {}
func (TravelTimeAdd) effect()          {}
func (TravelTimeAddPercent) effect()   {}
func (SetTravelTime) effect()          {}
func (AddDebt) effect()                {}
func (AddCargo) effect()               {}
func (LoseCargo) effect()              {}
func (LoseRandomCargoPercent) effect() {}
func (SellRandomCargoPremium) effect() {}
func (NewRandomDestination) effect()   {}
func (SpaceRace) effect()              {}
func (AdriftPassenger) effect()        {}

// Effects decodes a YAML sequence of tagged effect maps. Unknown types are an error.
type Effects []Effect

type effectYAML struct {
	Type             string             `yaml:"type"`
	Value            yaml.Node          `yaml:"value"`
	Commodity        string             `yaml:"commodity"`
	Quantity         int                `yaml:"quantity"`
	WagerPercent     float64            `yaml:"wager_percent"`
	WinChance        map[string]float64 `yaml:"win_chance"`
	DefaultWinChance float64            `yaml:"default_win_chance"`
	FuelCost         float64            `yaml:"fuel_cost"`
	GiftQuantity     int                `yaml:"gift_quantity"`
	DebtRelief       float64            `yaml:"debt_relief"`
	CreditGift       float64            `yaml:"credit_gift"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (es *Effects) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: effects must be a list", node.Line)
	}
	out := make(Effects, 0, len(node.Content))
	for _, item := range node.Content {
		var raw effectYAML
		if err := item.Decode(&raw); err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		e, err := raw.build()
		if err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		out = append(out, e)
	}
	*es = out
	return nil
}

func (r effectYAML) build() (Effect, error) {
	switch Kind(r.Type) {
	case KindCredits:
		v, err := r.number()
		return Credits{Amount: int64(v)}, err
	case KindFuel:
		v, err := r.number()
		return Fuel{Delta: v}, err
	case KindHullDamagePercent:
		if r.Value.Kind == yaml.SequenceNode {
			var bounds []float64
			if err := r.Value.Decode(&bounds); err != nil {
				return nil, err
			}
			if len(bounds) != 2 || bounds[0] > bounds[1] {
				return nil, fmt.Errorf("hull_damage_percent range must be [min, max]")
			}
			return HullDamagePercent{Min: bounds[0], Max: bounds[1]}, nil
		}
		v, err := r.number()
		return HullDamagePercent{Min: v, Max: v}, err
	case KindTravelTimeAdd:
		v, err := r.number()
		return TravelTimeAdd{Days: int(v)}, err
	case KindTravelTimeAddPercent:
		v, err := r.number()
		return TravelTimeAddPercent{Fraction: v}, err
	case KindSetTravelTime:
		v, err := r.number()
		if err == nil && v < 1 {
			err = fmt.Errorf("set_travel_time must be at least 1 day")
		}
		return SetTravelTime{Days: int(v)}, err
	case KindAddDebt:
		v, err := r.number()
		return AddDebt{Amount: int64(v)}, err
	case KindAddCargo:
		if r.Commodity == "" || r.Quantity <= 0 {
			return nil, fmt.Errorf("add_cargo needs commodity and positive quantity")
		}
		return AddCargo{CommodityID: r.Commodity, Quantity: r.Quantity}, nil
	case KindLoseCargo:
		if r.Commodity == "" || r.Quantity <= 0 {
			return nil, fmt.Errorf("lose_cargo needs commodity and positive quantity")
		}
		return LoseCargo{CommodityID: r.Commodity, Quantity: r.Quantity}, nil
	case KindLoseRandomCargoPercent:
		v, err := r.number()
		return LoseRandomCargoPercent{Fraction: v}, err
	case KindSellRandomCargoPremium:
		v, err := r.number()
		return SellRandomCargoPremium{Multiplier: v}, err
	case KindNewRandomDestination:
		return NewRandomDestination{}, nil
	case KindSpaceRace:
		if r.WagerPercent <= 0 || r.WagerPercent > 1 {
			return nil, fmt.Errorf("space_race wager_percent must be in (0, 1]")
		}
		return SpaceRace{WagerPercent: r.WagerPercent, WinChance: r.WinChance, DefaultWinChance: r.DefaultWinChance}, nil
	case KindAdriftPassenger:
		if r.Commodity == "" {
			return nil, fmt.Errorf("adrift_passenger needs a gift commodity")
		}
		return AdriftPassenger{
			FuelCost:       r.FuelCost,
			GiftCommodity:  r.Commodity,
			GiftQuantity:   r.GiftQuantity,
			DebtRelief:     r.DebtRelief,
			CreditGiftRate: r.CreditGift,
		}, nil
	case "":
		return nil, fmt.Errorf("effect is missing its type")
	}
	return nil, fmt.Errorf("unknown effect type %q", r.Type)
}

func (r effectYAML) number() (float64, error) {
	if r.Value.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("%s needs a numeric value", r.Type)
	}
	var v float64
	if err := r.Value.Decode(&v); err != nil {
		return 0, fmt.Errorf("%s: %w", r.Type, err)
	}
	return v, nil
}
