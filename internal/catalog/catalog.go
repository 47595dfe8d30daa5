// Package catalog holds the game's static reference data: rules, commodities,
// locations, ships, perks, milestones, age events, encounters and tutorials.
// The default catalog is embedded; Load reads an override from disk.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/event"
	"github.com/talgya/orbital-trader/internal/ledger"
	"github.com/talgya/orbital-trader/internal/tutorial"
)

//go:embed catalog.yaml
var defaultYAML []byte

// StockRange bounds generated stock for a tier.
type StockRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Rules are the numeric game rules.
type Rules struct {
	RepairCostPerHP      float64            `yaml:"repair_cost_per_hp"`
	RepairPercentPerTick float64            `yaml:"repair_percent_per_tick"`
	InterestInterval     int                `yaml:"interest_interval"`
	MarketUpdateInterval int                `yaml:"market_update_interval"`
	PassiveRepairRate    float64            `yaml:"passive_repair_rate"`
	HullDecayPerDay      float64            `yaml:"hull_decay_per_day"`
	ShipSellModifier     float64            `yaml:"ship_sell_modifier"`
	RareShipChance       float64            `yaml:"rare_ship_chance"`
	PriceHistoryLength   int                `yaml:"price_history_length"`
	FinanceHistoryLength int                `yaml:"finance_history_length"`
	PriceVolatility      float64            `yaml:"price_volatility"`
	MeanReversion        float64            `yaml:"mean_reversion"`
	PriceJitter          float64            `yaml:"price_jitter"`
	DemandStockBoost     float64            `yaml:"demand_stock_boost"`
	ReplenishFraction    float64            `yaml:"replenish_fraction"`
	GarnishmentDays      int                `yaml:"garnishment_days"`
	GarnishmentPercent   float64            `yaml:"garnishment_percent"`
	EventChance          float64            `yaml:"event_chance"`
	RefuelPerTick        float64            `yaml:"refuel_per_tick"`
	RefuelCostDivisor    float64            `yaml:"refuel_cost_divisor"`
	HullAlertWarning     float64            `yaml:"hull_alert_warning"`
	HullAlertCritical    float64            `yaml:"hull_alert_critical"`
	BirthdayDayOfYear    int                `yaml:"birthday_day_of_year"`
	BirthdayProfitBonus  float64            `yaml:"birthday_profit_bonus"`
	TutorialMinCredits   int64              `yaml:"tutorial_min_credits"`
	TierStock            map[int]StockRange `yaml:"tier_stock"`
	DefaultStock         StockRange         `yaml:"default_stock"`
}

// TierRange returns the stock range for a commodity tier.
func (r Rules) TierRange(tier int) StockRange {
	if sr, ok := r.TierStock[tier]; ok {
		return sr
	}
	return r.DefaultStock
}

// Garnishment returns the ledger's view of the delinquency rules.
func (r Rules) Garnishment() ledger.GarnishRule {
	return ledger.GarnishRule{AfterDays: r.GarnishmentDays, Percent: r.GarnishmentPercent}
}

type IntelRules struct {
	CostPercent   float64 `yaml:"cost_percent"`
	MinCredits    int64   `yaml:"min_credits"`
	Chance        float64 `yaml:"chance"`
	DemandMod     float64 `yaml:"demand_mod"`
	DepressionMod float64 `yaml:"depression_mod"`
	DurationDays  int     `yaml:"duration_days"`
}

// Start describes a new game.
type Start struct {
	Credits           int64    `yaml:"credits"`
	LocationID        string   `yaml:"location"`
	ShipID            string   `yaml:"ship"`
	Age               int      `yaml:"age"`
	Title             string   `yaml:"title"`
	CommodityLevel    int      `yaml:"commodity_level"`
	UnlockedLocations []string `yaml:"unlocked_locations"`
}

type Commodity struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Tier        int    `yaml:"tier" json:"tier"`
	UnlockLevel int    `yaml:"unlock_level" json:"unlock_level"`
	PriceMin    int64  `yaml:"price_min" json:"price_min"`
	PriceMax    int64  `yaml:"price_max" json:"price_max"`
}

// GalacticAverage is the midpoint of the base price range.
func (c Commodity) GalacticAverage() float64 {
	return float64(c.PriceMin+c.PriceMax) / 2
}

type SpecialDemand struct {
	Bonus float64 `yaml:"bonus" json:"bonus"`
	Lore  string  `yaml:"lore" json:"lore"`
}

type Location struct {
	ID            string                   `yaml:"id" json:"id"`
	Name          string                   `yaml:"name" json:"name"`
	Description   string                   `yaml:"description" json:"description"`
	FuelPrice     float64                  `yaml:"fuel_price" json:"fuel_price"`
	Modifiers     map[string]float64       `yaml:"modifiers" json:"modifiers"`
	SpecialDemand map[string]SpecialDemand `yaml:"special_demand" json:"special_demand,omitempty"`
}

// Modifier returns the price multiplier for a commodity, 1.0 when unset.
func (l Location) Modifier(commodityID string) float64 {
	if m, ok := l.Modifiers[commodityID]; ok {
		return m
	}
	return 1.0
}

// Special returns the special-demand entry for a commodity.
func (l Location) Special(commodityID string) (SpecialDemand, bool) {
	sd, ok := l.SpecialDemand[commodityID]
	return sd, ok
}

type Ship struct {
	ID             string  `yaml:"id" json:"id"`
	Name           string  `yaml:"name" json:"name"`
	Class          string  `yaml:"class" json:"class"`
	Price          int64   `yaml:"price" json:"price"`
	MaxHealth      float64 `yaml:"max_health" json:"max_health"`
	CargoCapacity  int     `yaml:"cargo_capacity" json:"cargo_capacity"`
	MaxFuel        float64 `yaml:"max_fuel" json:"max_fuel"`
	SaleLocationID string  `yaml:"sale_location" json:"sale_location,omitempty"`
	Rare           bool    `yaml:"rare" json:"rare,omitempty"`
}

// Perk is a permanent modifier. Zero-valued mods mean "no effect".
type Perk struct {
	ID               string  `yaml:"id" json:"id"`
	ProfitBonus      float64 `yaml:"profit_bonus" json:"profit_bonus,omitempty"`
	FuelMod          float64 `yaml:"fuel_mod" json:"fuel_mod,omitempty"`
	HullDecayMod     float64 `yaml:"hull_decay_mod" json:"hull_decay_mod,omitempty"`
	TravelTimeMod    float64 `yaml:"travel_time_mod" json:"travel_time_mod,omitempty"`
	FuelDiscount     float64 `yaml:"fuel_discount" json:"fuel_discount,omitempty"`
	RepairDiscount   float64 `yaml:"repair_discount" json:"repair_discount,omitempty"`
	DiscountLocation string  `yaml:"discount_location" json:"discount_location,omitempty"`
	GrantsShip       string  `yaml:"grants_ship" json:"grants_ship,omitempty"`
}

type AgeTrigger struct {
	Day     int   `yaml:"day" json:"day,omitempty"`
	Credits int64 `yaml:"credits" json:"credits,omitempty"`
}

type AgeChoice struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	PerkID      string `yaml:"perk" json:"perk"`
	PlayerTitle string `yaml:"player_title" json:"player_title,omitempty"`
}

// AgeEvent is a one-time narrative choice gated on day count or credits.
type AgeEvent struct {
	ID          string      `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Trigger     AgeTrigger  `yaml:"trigger" json:"trigger"`
	Choices     []AgeChoice `yaml:"choices" json:"choices"`
}

// Catalog is the full static data set. Treat it as read-only after Load.
type Catalog struct {
	Rules       Rules              `yaml:"rules"`
	Intel       IntelRules         `yaml:"intel"`
	Start       Start              `yaml:"start"`
	ShortHop    []string           `yaml:"short_hop"`
	Perks       []Perk             `yaml:"perks"`
	Milestones  []ledger.Milestone `yaml:"milestones"`
	AgeEvents   []AgeEvent         `yaml:"age_events"`
	Commodities []Commodity        `yaml:"commodities"`
	Locations   []Location         `yaml:"locations"`
	Ships       []Ship             `yaml:"ships"`
	Encounters  []event.Encounter  `yaml:"encounters"`
	Tutorials   []tutorial.Batch   `yaml:"tutorials"`

	commodities map[string]int
	locations   map[string]int
	ships       map[string]int
	perks       map[string]int
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// MustDefault is Default for callers that cannot recover, such as tests and main.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog file, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidCatalog, "decode catalog", err)
	}
	c.index()
	if err := c.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidCatalog, "validate catalog", err)
	}
	return &c, nil
}

func (c *Catalog) index() {
	c.commodities = make(map[string]int, len(c.Commodities))
	for i, x := range c.Commodities {
		c.commodities[x.ID] = i
	}
	c.locations = make(map[string]int, len(c.Locations))
	for i, x := range c.Locations {
		c.locations[x.ID] = i
	}
	c.ships = make(map[string]int, len(c.Ships))
	for i, x := range c.Ships {
		c.ships[x.ID] = i
	}
	c.perks = make(map[string]int, len(c.Perks))
	for i, x := range c.Perks {
		c.perks[x.ID] = i
	}
}

func (c *Catalog) Commodity(id string) (*Commodity, bool) {
	i, ok := c.commodities[id]
	if !ok {
		return nil, false
	}
	return &c.Commodities[i], true
}

func (c *Catalog) Location(id string) (*Location, bool) {
	i, ok := c.locations[id]
	if !ok {
		return nil, false
	}
	return &c.Locations[i], true
}

func (c *Catalog) Ship(id string) (*Ship, bool) {
	i, ok := c.ships[id]
	if !ok {
		return nil, false
	}
	return &c.Ships[i], true
}

func (c *Catalog) Perk(id string) (*Perk, bool) {
	i, ok := c.perks[id]
	if !ok {
		return nil, false
	}
	return &c.Perks[i], true
}

// AgeEvent looks up an age event by id.
func (c *Catalog) AgeEvent(id string) (*AgeEvent, bool) {
	for i := range c.AgeEvents {
		if c.AgeEvents[i].ID == id {
			return &c.AgeEvents[i], true
		}
	}
	return nil, false
}

// LocationIndex is the position of a location in catalog order.
func (c *Catalog) LocationIndex(id string) int {
	if i, ok := c.locations[id]; ok {
		return i
	}
	return -1
}
