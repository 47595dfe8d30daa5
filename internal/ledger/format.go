package ledger

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// CreditSymbol prefixes formatted amounts.
const CreditSymbol = "⌬"

// FormatCredits renders an amount with the credit symbol and a magnitude suffix.
func FormatCredits(amount int64) string {
	return CreditSymbol + " " + FormatAmount(amount)
}

// FormatAmount renders an amount without the symbol: 950, 12.5k, 3.20M, 1.00B, 2.00T.
func FormatAmount(amount int64) string {
	n := float64(amount)
	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%.2fT", n/1e12)
	case amount >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case amount >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case amount >= 1e3:
		return fmt.Sprintf("%.1fk", n/1e3)
	}
	return humanize.Comma(amount)
}
