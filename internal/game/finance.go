package game

import (
	"fmt"
	"log/slog"

	"github.com/talgya/orbital-trader/internal/entropy"
	apperrors "github.com/talgya/orbital-trader/internal/errors"
	"github.com/talgya/orbital-trader/internal/ledger"
)

// Finance is the finance screen: balances, offers and recent log lines.
type Finance struct {
	Credits        int64                     `json:"credits"`
	Debt           int64                     `json:"debt"`
	WeeklyInterest int64                     `json:"weekly_interest"`
	LoanStartDay   *int                      `json:"loan_start_day"`
	Offers         []ledger.Loan             `json:"offers,omitempty"`
	Recent         []ledger.Entry            `json:"recent"`
	Totals         map[ledger.Category]int64 `json:"totals"`
}

// Finance summarises the books.
func (g *Game) Finance() Finance {
	p := g.State.Player
	f := Finance{
		Credits:        p.Credits,
		Debt:           p.Debt,
		WeeklyInterest: p.WeeklyInterest,
		LoanStartDay:   p.LoanStartDay,
		Recent:         p.FinanceLog.Recent(g.Catalog.Rules.FinanceHistoryLength),
		Totals:         p.FinanceLog.Summary(),
	}
	if p.Debt == 0 {
		f.Offers = ledger.LoanOffers(p.Credits)
	}
	return f
}

// TakeLoan takes a financing offer. The interest clock starts today.
func (g *Game) TakeLoan(loan ledger.Loan) (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	if err := g.State.Player.TakeLoan(g.State.Day, loan); err != nil {
		return Result{}, err
	}
	g.State.LastInterestChargeDay = g.State.Day
	g.modal("Loan Acquired", fmt.Sprintf("You've acquired a loan of %s. A financing fee of %s was deducted.",
		ledger.FormatCredits(loan.Amount), ledger.FormatCredits(loan.Fee)), "")
	slog.Info("loan taken", "amount", loan.Amount, "fee", loan.Fee, "day", g.State.Day)
	return Result{Value: loan.Amount - loan.Fee, Unlocks: g.checkMilestones(), Notices: g.drain()}, nil
}

// PayDebt pays off the whole debt. Value is the amount paid.
func (g *Game) PayDebt() (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	paid, err := g.State.Player.PayOff(g.State.Day)
	if err != nil {
		return Result{}, err
	}
	slog.Info("debt paid", "amount", paid, "day", g.State.Day)
	return Result{Value: paid, Unlocks: g.checkMilestones(), Notices: g.drain()}, nil
}

// IntelOffer is the intel broker's quote at the current location.
type IntelOffer struct {
	Available bool   `json:"available"`
	Cost      int64  `json:"cost"`
	Active    *Intel `json:"active,omitempty"`
}

// IntelOffer quotes intel here: offered where the broker is present and the
// player holds at least the minimum credits.
func (g *Game) IntelOffer() IntelOffer {
	p := g.State.Player
	rules := g.Catalog.Intel
	return IntelOffer{
		Available: g.State.Intel.Available[g.State.CurrentLocationID] && p.Credits >= rules.MinCredits,
		Cost:      ledger.Floor(float64(p.Credits) * rules.CostPercent),
		Active:    g.State.Intel.Active,
	}
}

// PurchaseIntel buys a demand tip on a random unlocked commodity at a random
// other unlocked location at the current offer's price. Value is the cost
// paid.
func (g *Game) PurchaseIntel() (Result, error) {
	if err := g.checkActive(); err != nil {
		return Result{}, err
	}
	offer := g.IntelOffer()
	if !offer.Available {
		return Result{}, apperrors.New(apperrors.CodeIntelUnavailable, "No intel is for sale here.")
	}
	cost := offer.Cost
	if cost <= 0 {
		return Result{}, apperrors.New(apperrors.CodeInvalidQuantity, "Intel cost must be positive.")
	}
	st := g.State
	if err := st.Player.Spend(st.Day, ledger.CategoryIntel, cost, "Purchased market intel"); err != nil {
		return Result{}, err
	}
	st.Intel.Available[st.CurrentLocationID] = false

	var commodities []string
	for _, c := range g.Catalog.Commodities {
		if c.UnlockLevel <= st.Player.UnlockedCommodityLevel {
			commodities = append(commodities, c.ID)
		}
	}
	targetLoc, okLoc := g.pickOther()
	commodityID, okCom := entropy.Pick(g.rand, commodities)
	if okLoc && okCom {
		st.Intel.Active = &Intel{
			TargetLocationID: targetLoc,
			CommodityID:      commodityID,
			Kind:             IntelDemand,
			StartDay:         st.Day,
			EndDay:           st.Day + g.Catalog.Intel.DurationDays,
		}
		slog.Info("intel purchased", "location", targetLoc, "commodity", commodityID, "cost", cost)
	}
	return Result{Value: cost, Notices: g.drain()}, nil
}
