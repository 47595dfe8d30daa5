// Package ledger keeps the player's books: the append-only finance log,
// the loan lifecycle, garnishment and the credit milestones that unlock
// commodity tiers and destinations.
package ledger

import (
	"github.com/shopspring/decimal"
)

// Category tags a finance log entry.
type Category string

const (
	CategoryTrade  Category = "trade"
	CategoryShip   Category = "ship"
	CategoryLoan   Category = "loan"
	CategoryDebt   Category = "debt"
	CategoryEvent  Category = "event"
	CategoryFuel   Category = "fuel"
	CategoryRepair Category = "repair"
	CategoryIntel  Category = "intel"
)

// Entry is one finance log line. Balance is the credit balance after the entry.
type Entry struct {
	Day         int      `json:"day"`
	Category    Category `json:"category"`
	Amount      int64    `json:"amount"`
	Balance     int64    `json:"balance"`
	Description string   `json:"description"`
}

// Log is append-only and stored oldest first.
type Log []Entry

// Append adds e to the end of the log.
func (l *Log) Append(e Entry) {
	*l = append(*l, e)
}

// Recent returns up to n entries newest first. n <= 0 returns all of them.
func (l Log) Recent(n int) []Entry {
	if n <= 0 || n > len(l) {
		n = len(l)
	}
	out := make([]Entry, 0, n)
	for i := len(l) - 1; i >= len(l)-n; i-- {
		out = append(out, l[i])
	}
	return out
}

// Summary totals amounts per category.
func (l Log) Summary() map[Category]int64 {
	totals := make(map[Category]decimal.Decimal)
	for _, e := range l {
		totals[e.Category] = totals[e.Category].Add(decimal.NewFromInt(e.Amount))
	}
	out := make(map[Category]int64, len(totals))
	for c, d := range totals {
		out[c] = d.IntPart()
	}
	return out
}

// Round converts a fractional credit amount to whole credits, half away from zero.
func Round(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(0).IntPart()
}

// Floor truncates a non-negative credit amount toward zero and floors negatives.
func Floor(amount float64) int64 {
	return decimal.NewFromFloat(amount).Floor().IntPart()
}
