package event

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/entropy"
	"github.com/talgya/orbital-trader/internal/ledger"
)

// Target is the game state effects act on.
type Target interface {
	Snapshot() Snapshot
	AdjustCredits(delta int64, cat ledger.Category, desc string)
	AdjustFuel(delta float64) // clamps to [0, max]
	AddDebt(amount int64, cat ledger.Category, desc string)
	ReduceDebt(amount int64, cat ledger.Category, desc string)
	AddCargo(commodityID string, qty int) bool // false when it does not fit
	RemoveCargo(commodityID string, qty int)    // clamps at zero
	GalacticAverage(commodityID string) float64
	RerouteCandidates() []string // unlocked locations other than the current one
}

// Resolution reports what a choice did.
type Resolution struct {
	EncounterID  string `json:"encounter_id"`
	ChoiceIndex  int    `json:"choice_index"`
	OutcomeIndex int    `json:"outcome_index"`
	Description  string `json:"description"`
	Applied      []Kind `json:"applied"`
}

// Resolve samples one outcome of the chosen option and applies each of its
// effects exactly once, in order.
func Resolve(enc *Encounter, choice int, t Target, p *Pending, src entropy.Source) (Resolution, error) {
	if choice < 0 || choice >= len(enc.Choices) {
		return Resolution{}, apperrors.Newf(apperrors.CodeInvalidChoice, "Encounter %q has no choice %d", enc.ID, choice)
	}
	outcomes := enc.Choices[choice].Outcomes
	idx := PickOutcome(outcomes, src)
	out := outcomes[idx]

	res := Resolution{
		EncounterID:  enc.ID,
		ChoiceIndex:  choice,
		OutcomeIndex: idx,
		Description:  out.Description,
		Applied:      make([]Kind, 0, len(out.Effects)),
	}
	for _, e := range out.Effects {
		desc, err := Apply(e, t, p, src)
		if err != nil {
			return res, err
		}
		if desc != "" {
			res.Description = desc
		}
		res.Applied = append(res.Applied, e.Kind())
	}
	return res, nil
}

// Apply runs one effect. A non-empty string replaces the outcome description.
func Apply(e Effect, t Target, p *Pending, src entropy.Source) (string, error) {
	switch e := e.(type) {
	case Credits:
		t.AdjustCredits(e.Amount, ledger.CategoryEvent, "Received credits from event")
	case Fuel:
		t.AdjustFuel(e.Delta)
	case HullDamagePercent:
		pct := e.Min
		if e.Max > e.Min {
			pct = entropy.Uniform(src, e.Min, e.Max)
		}
		p.Modifiers.HullDamagePercent += pct
	case TravelTimeAdd:
		p.Modifiers.TimeAdd += e.Days
	case TravelTimeAddPercent:
		p.Modifiers.TimeAddPercent += e.Fraction
	case SetTravelTime:
		days := e.Days
		p.Modifiers.TimeOverride = &days
	case AddDebt:
		t.AddDebt(e.Amount, ledger.CategoryLoan, "Incurred debt from event")
	case AddCargo:
		t.AddCargo(e.CommodityID, e.Quantity)
	case LoseCargo:
		t.RemoveCargo(e.CommodityID, e.Quantity)
	case LoseRandomCargoPercent:
		id, qty, ok := randomHolding(t.Snapshot(), src)
		if ok {
			t.RemoveCargo(id, int(math.Ceil(float64(qty)*e.Fraction)))
		}
	case SellRandomCargoPremium:
		id, qty, ok := randomHolding(t.Snapshot(), src)
		if ok {
			value := ledger.Round(t.GalacticAverage(id) * e.Multiplier * float64(qty))
			t.RemoveCargo(id, qty)
			t.AdjustCredits(value, ledger.CategoryTrade, "Emergency supply drop sale")
		}
	case NewRandomDestination:
		if dest, ok := entropy.Pick(src, t.RerouteCandidates()); ok {
			p.DestinationID = dest
		}
	case SpaceRace:
		return spaceRace(e, t, src), nil
	case AdriftPassenger:
		return adriftPassenger(e, t), nil
	default:
		return "", fmt.Errorf("unhandled effect %T", e)
	}
	return "", nil
}

// randomHolding picks one held stack. Ids are sorted so a seeded source is reproducible.
func randomHolding(s Snapshot, src entropy.Source) (string, int, bool) {
	ids := make([]string, 0, len(s.Cargo))
	for id, q := range s.Cargo {
		if q > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	id, ok := entropy.Pick(src, ids)
	if !ok {
		return "", 0, false
	}
	return id, s.Cargo[id], true
}

func spaceRace(e SpaceRace, t Target, src entropy.Source) string {
	s := t.Snapshot()
	wager := ledger.Floor(float64(s.Credits) * e.WagerPercent)
	chance, ok := e.WinChance[s.ShipClass]
	if !ok {
		chance = e.DefaultWinChance
	}
	if src.Float64() < chance {
		t.AdjustCredits(wager, ledger.CategoryEvent, "Won space race wager")
		return fmt.Sprintf("Your Class %s ship wins! You gain %s.", s.ShipClass, ledger.FormatCredits(wager))
	}
	t.AdjustCredits(-wager, ledger.CategoryEvent, "Lost space race wager")
	return fmt.Sprintf("The luxury ship was too fast. You lose %s.", ledger.FormatCredits(wager))
}

func adriftPassenger(e AdriftPassenger, t Target) string {
	t.AdjustFuel(-e.FuelCost)
	s := t.Snapshot()
	switch {
	case s.CargoUsed+e.GiftQuantity <= s.CargoCapacity && t.AddCargo(e.GiftCommodity, e.GiftQuantity):
		return fmt.Sprintf("In gratitude, the passenger gives you a crate of %d units.", e.GiftQuantity)
	case s.Debt > 0:
		paid := ledger.Floor(float64(s.Debt) * e.DebtRelief)
		t.ReduceDebt(paid, ledger.CategoryEvent, "Passenger paid off debt")
		return fmt.Sprintf("Seeing your tight cargo, the passenger pays off part of your debt, reducing it by %s.", ledger.FormatCredits(paid))
	default:
		gift := ledger.Floor(float64(s.Credits) * e.CreditGiftRate)
		t.AdjustCredits(gift, ledger.CategoryEvent, "Passenger payment")
		return fmt.Sprintf("With no room and no debt, the passenger transfers you %s.", ledger.FormatCredits(gift))
	}
}
