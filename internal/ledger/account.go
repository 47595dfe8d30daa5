package ledger

import (
	"fmt"

	apperrors "github.com/talgya/orbital-trader/internal/errors"
)

// Account is the player's money: credits, the single loan and the log.
type Account struct {
	Credits                int64 `json:"credits"`
	Debt                   int64 `json:"debt"`
	WeeklyInterest         int64 `json:"weekly_interest"`
	LoanStartDay           *int  `json:"loan_start_day"`
	SeenGarnishmentWarning bool  `json:"seen_garnishment_warning"`
	FinanceLog             Log   `json:"finance_log"`
}

// Loan describes a financing offer.
type Loan struct {
	Amount   int64 `json:"amount"`
	Fee      int64 `json:"fee"`
	Interest int64 `json:"interest"`
}

// GarnishRule configures delinquency handling.
type GarnishRule struct {
	AfterDays int     // days a loan may run before garnishment starts
	Percent   float64 // share of current credits taken per weekly tick
}

// StandardLoan is the fixed financing offer.
var StandardLoan = Loan{Amount: 10000, Fee: 600, Interest: 125}

// DynamicLoan scales an offer to the player's current credits.
func DynamicLoan(credits int64) Loan {
	amount := Floor(float64(credits) * 3.5)
	return Loan{
		Amount:   amount,
		Fee:      Floor(float64(amount) * 0.1),
		Interest: Floor(float64(amount) * 0.01),
	}
}

// LoanOffers lists what a debt-free player may take.
func LoanOffers(credits int64) []Loan {
	return []Loan{StandardLoan, DynamicLoan(credits)}
}

// Record appends an entry stamped with the current balance.
func (a *Account) Record(day int, cat Category, amount int64, desc string) {
	a.FinanceLog.Append(Entry{Day: day, Category: cat, Amount: amount, Balance: a.Credits, Description: desc})
}

// Adjust moves credits by delta and records it.
func (a *Account) Adjust(day int, cat Category, delta int64, desc string) {
	a.Credits += delta
	a.Record(day, cat, delta, desc)
}

// Spend deducts cost after checking funds.
func (a *Account) Spend(day int, cat Category, cost int64, desc string) error {
	if cost > a.Credits {
		return apperrors.WithMetadata(apperrors.CodeInsufficientFunds,
			fmt.Sprintf("Insufficient credits: need %s, have %s", FormatCredits(cost), FormatCredits(a.Credits)),
			map[string]string{"cost": fmt.Sprint(cost)})
	}
	a.Adjust(day, cat, -cost, desc)
	return nil
}

// TakeLoan deducts the fee, credits the principal and starts the loan clock.
func (a *Account) TakeLoan(day int, loan Loan) error {
	if loan.Amount <= 0 || loan.Fee < 0 || loan.Interest < 0 {
		return apperrors.New(apperrors.CodeInvalidQuantity, "Loan terms must be positive")
	}
	if a.Debt > 0 {
		return apperrors.New(apperrors.CodeLoanActive, "You must pay off your existing debt first.")
	}
	if a.Credits < loan.Fee {
		return apperrors.Newf(apperrors.CodeInsufficientFunds,
			"The financing fee is %s, but you only have %s.", FormatCredits(loan.Fee), FormatCredits(a.Credits))
	}
	a.Adjust(day, CategoryLoan, -loan.Fee, fmt.Sprintf("Financing fee for %s loan", FormatCredits(loan.Amount)))
	a.Adjust(day, CategoryLoan, loan.Amount, fmt.Sprintf("Acquired %s loan", FormatCredits(loan.Amount)))
	a.Debt += loan.Amount
	a.WeeklyInterest = loan.Interest
	start := day
	a.LoanStartDay = &start
	a.SeenGarnishmentWarning = false
	return nil
}

// PayOff clears the whole debt at once.
func (a *Account) PayOff(day int) (int64, error) {
	if a.Debt <= 0 {
		return 0, apperrors.New(apperrors.CodeNoDebt, "You have no outstanding debt.")
	}
	if a.Credits < a.Debt {
		return 0, apperrors.Newf(apperrors.CodeInsufficientFunds,
			"Paying off %s requires more credits than you hold.", FormatCredits(a.Debt))
	}
	paid := a.Debt
	a.Adjust(day, CategoryLoan, -paid, fmt.Sprintf("Paid off %s debt", FormatCredits(paid)))
	a.Debt = 0
	a.WeeklyInterest = 0
	a.LoanStartDay = nil
	return paid, nil
}

// AccrueInterest adds the weekly interest to the principal once interval days
// have passed since lastCharge. Reports whether a charge happened.
func (a *Account) AccrueInterest(day, lastCharge, interval int) (int64, bool) {
	if a.Debt <= 0 || a.WeeklyInterest <= 0 || day-lastCharge < interval {
		return 0, false
	}
	a.Debt += a.WeeklyInterest
	a.Record(day, CategoryLoan, a.WeeklyInterest, "Weekly interest charge")
	return a.WeeklyInterest, true
}

// Garnish seizes a share of current credits from a delinquent borrower.
// firstNotice is true the first time garnishment activates for this loan.
func (a *Account) Garnish(day int, rule GarnishRule) (taken int64, firstNotice bool) {
	if a.Debt <= 0 || a.LoanStartDay == nil || day-*a.LoanStartDay < rule.AfterDays {
		return 0, false
	}
	taken = Floor(float64(a.Credits) * rule.Percent)
	if taken > 0 {
		a.Adjust(day, CategoryDebt, -taken, "Weekly credit garnishment")
	}
	if !a.SeenGarnishmentWarning {
		a.SeenGarnishmentWarning = true
		firstNotice = true
	}
	return taken, firstNotice
}

// ReduceDebt lowers the principal without touching credits, e.g. a gift.
func (a *Account) ReduceDebt(day int, cat Category, amount int64, desc string) {
	if amount > a.Debt {
		amount = a.Debt
	}
	if amount <= 0 {
		return
	}
	a.Debt -= amount
	a.Record(day, cat, amount, desc)
	if a.Debt == 0 {
		a.WeeklyInterest = 0
		a.LoanStartDay = nil
	}
}

// AddDebt grows the principal without touching credits.
func (a *Account) AddDebt(day int, cat Category, amount int64, desc string) {
	if amount <= 0 {
		return
	}
	a.Debt += amount
	a.Record(day, cat, amount, desc)
}
