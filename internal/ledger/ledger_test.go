package ledger

import (
	"testing"

	apperrors "github.com/talgya/orbital-trader/internal/errors"
)

func TestTakeLoanScenario(t *testing.T) {
	a := &Account{Credits: 8000}
	if err := a.TakeLoan(5, StandardLoan); err != nil {
		t.Fatalf("TakeLoan: %v", err)
	}
	if a.Credits != 8000+10000-600 {
		t.Fatalf("credits = %d, want %d", a.Credits, 8000+10000-600)
	}
	if a.Debt != 10000 || a.WeeklyInterest != 125 {
		t.Fatalf("debt = %d, interest = %d", a.Debt, a.WeeklyInterest)
	}
	if a.LoanStartDay == nil || *a.LoanStartDay != 5 {
		t.Fatalf("loan start day = %v", a.LoanStartDay)
	}
	if len(a.FinanceLog) != 2 || a.FinanceLog[0].Amount != -600 || a.FinanceLog[1].Amount != 10000 {
		t.Fatalf("finance log = %+v", a.FinanceLog)
	}
	if a.FinanceLog[1].Balance != a.Credits {
		t.Fatalf("balance = %d, want %d", a.FinanceLog[1].Balance, a.Credits)
	}
}

func TestTakeLoanRejections(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		loan    Loan
		code    apperrors.Code
	}{
		{"existing debt", Account{Credits: 9000, Debt: 1}, StandardLoan, apperrors.CodeLoanActive},
		{"cannot cover fee", Account{Credits: 599}, StandardLoan, apperrors.CodeInsufficientFunds},
		{"non-positive amount", Account{Credits: 1000}, Loan{}, apperrors.CodeInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.account
			before := a
			err := a.TakeLoan(1, tt.loan)
			if !apperrors.Is(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
			if a.Credits != before.Credits || a.Debt != before.Debt || len(a.FinanceLog) != 0 {
				t.Fatal("rejected loan mutated the account")
			}
		})
	}
}

func TestPayOff(t *testing.T) {
	start := 3
	a := &Account{Credits: 12000, Debt: 10000, WeeklyInterest: 125, LoanStartDay: &start}
	paid, err := a.PayOff(10)
	if err != nil || paid != 10000 {
		t.Fatalf("PayOff = %d, %v", paid, err)
	}
	if a.Credits != 2000 || a.Debt != 0 || a.WeeklyInterest != 0 || a.LoanStartDay != nil {
		t.Fatalf("account after payoff = %+v", a)
	}

	poor := &Account{Credits: 10, Debt: 100}
	if _, err := poor.PayOff(1); !apperrors.Is(err, apperrors.CodeInsufficientFunds) {
		t.Fatalf("err = %v", err)
	}
	if _, err := (&Account{}).PayOff(1); !apperrors.Is(err, apperrors.CodeNoDebt) {
		t.Fatalf("err = %v", err)
	}
}

func TestAccrueInterest(t *testing.T) {
	a := &Account{Debt: 1000, WeeklyInterest: 125}
	if _, ok := a.AccrueInterest(7, 1, 7); ok {
		t.Fatal("charged before the interval elapsed")
	}
	amt, ok := a.AccrueInterest(8, 1, 7)
	if !ok || amt != 125 || a.Debt != 1125 {
		t.Fatalf("AccrueInterest = %d, %v, debt %d", amt, ok, a.Debt)
	}
	free := &Account{WeeklyInterest: 125}
	if _, ok := free.AccrueInterest(100, 1, 7); ok {
		t.Fatal("charged interest without debt")
	}
}

func TestGarnish(t *testing.T) {
	rule := GarnishRule{AfterDays: 180, Percent: 0.14}
	start := 1

	t.Run("before threshold", func(t *testing.T) {
		a := &Account{Credits: 10000, Debt: 500, LoanStartDay: &start}
		taken, notice := a.Garnish(180, rule)
		if taken != 0 || notice || a.Credits != 10000 {
			t.Fatalf("garnished early: %d %v", taken, notice)
		}
	})

	t.Run("at threshold takes percent of current credits", func(t *testing.T) {
		a := &Account{Credits: 10001, Debt: 500, LoanStartDay: &start}
		taken, notice := a.Garnish(181, rule)
		if taken != 1400 || !notice {
			t.Fatalf("taken = %d, notice = %v", taken, notice)
		}
		if a.Credits != 8601 || a.Debt != 500 {
			t.Fatalf("credits = %d, debt = %d", a.Credits, a.Debt)
		}
		taken, notice = a.Garnish(188, rule)
		if notice {
			t.Fatal("warning fired twice")
		}
		if max := int64(float64(8601) * 0.14); taken > max {
			t.Fatalf("took %d, more than %d", taken, max)
		}
	})

	t.Run("no debt", func(t *testing.T) {
		a := &Account{Credits: 10000, LoanStartDay: &start}
		if taken, _ := a.Garnish(400, rule); taken != 0 {
			t.Fatalf("garnished without debt: %d", taken)
		}
	})
}

func TestDynamicLoan(t *testing.T) {
	got := DynamicLoan(8000)
	want := Loan{Amount: 28000, Fee: 2800, Interest: 280}
	if got != want {
		t.Fatalf("DynamicLoan = %+v, want %+v", got, want)
	}
}

func TestCheckMilestones(t *testing.T) {
	ms := []Milestone{
		{Threshold: 30000, UnlockLevel: 2},
		{Threshold: 300000, UnlockLevel: 3, UnlocksLocation: "loc_uranus"},
		{Threshold: 100000000, UnlocksLocation: "loc_kepler"},
	}
	p := &Progress{UnlockedCommodityLevel: 1, UnlockedLocationIDs: []string{"loc_mars"}}

	if fired := p.CheckMilestones(29999, ms); len(fired) != 0 {
		t.Fatalf("fired below threshold: %+v", fired)
	}
	fired := p.CheckMilestones(400000, ms)
	if len(fired) != 2 || !fired[0].LevelRaised || !fired[1].LocationAdded {
		t.Fatalf("fired = %+v", fired)
	}
	if p.UnlockedCommodityLevel != 3 || !p.LocationUnlocked("loc_uranus") {
		t.Fatalf("progress = %+v", p)
	}
	if again := p.CheckMilestones(400000, ms); len(again) != 0 {
		t.Fatal("milestones re-fired")
	}

	// Levels never go down.
	p.UnlockedCommodityLevel = 5
	p.CheckMilestones(1e9, []Milestone{{Threshold: 1, UnlockLevel: 2}})
	if p.UnlockedCommodityLevel != 5 {
		t.Fatalf("level lowered to %d", p.UnlockedCommodityLevel)
	}
}

func TestRecentAndSummary(t *testing.T) {
	var l Log
	l.Append(Entry{Day: 1, Category: CategoryTrade, Amount: -100})
	l.Append(Entry{Day: 2, Category: CategoryTrade, Amount: 250})
	l.Append(Entry{Day: 3, Category: CategoryFuel, Amount: -63})

	recent := l.Recent(2)
	if len(recent) != 2 || recent[0].Day != 3 || recent[1].Day != 2 {
		t.Fatalf("Recent = %+v", recent)
	}
	sum := l.Summary()
	if sum[CategoryTrade] != 150 || sum[CategoryFuel] != -63 {
		t.Fatalf("Summary = %+v", sum)
	}
	if l[0].Day != 1 {
		t.Fatal("storage order changed")
	}
}

func TestFormatCredits(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{950, "⌬ 950"},
		{12500, "⌬ 12.5k"},
		{3200000, "⌬ 3.20M"},
		{1000000000, "⌬ 1.00B"},
		{2000000000000, "⌬ 2.00T"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatCredits(tt.in); got != tt.want {
				t.Fatalf("FormatCredits(%d) = %q", tt.in, got)
			}
		})
	}
}

func TestRound(t *testing.T) {
	if Round(62.5) != 63 || Round(62.4) != 62 || Floor(9.99) != 9 {
		t.Fatal("rounding helpers disagree")
	}
}
