package player

import (
	"maps"
	"slices"
)

// Holding is one commodity stack with its average purchase cost.
type Holding struct {
	Quantity int     `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

// Inventory is a ship's hold keyed by commodity id.
type Inventory map[string]*Holding

// Used is the number of units aboard.
func (inv Inventory) Used() int {
	n := 0
	for _, h := range inv {
		n += h.Quantity
	}
	return n
}

// Quantity returns the units held of a commodity.
func (inv Inventory) Quantity(id string) int {
	if h, ok := inv[id]; ok {
		return h.Quantity
	}
	return 0
}

// Held returns the non-empty stacks, for snapshots.
func (inv Inventory) Held() map[string]int {
	out := make(map[string]int, len(inv))
	for id, h := range inv {
		if h.Quantity > 0 {
			out[id] = h.Quantity
		}
	}
	return out
}

// IDs returns commodity ids with a non-empty stack, sorted.
func (inv Inventory) IDs() []string {
	return slices.Sorted(maps.Keys(inv.Held()))
}

// Buy adds qty units at unitPrice, folding them into the weighted average cost.
func (inv Inventory) Buy(id string, qty int, unitPrice float64) {
	h := inv.holding(id)
	total := float64(h.Quantity)*h.AvgCost + float64(qty)*unitPrice
	h.Quantity += qty
	h.AvgCost = total / float64(h.Quantity)
}

// Add puts units aboard without a purchase; the average cost is kept.
func (inv Inventory) Add(id string, qty int) {
	inv.holding(id).Quantity += qty
}

// Remove takes up to qty units off a stack. The average cost resets when the
// stack empties. Returns the units actually removed.
func (inv Inventory) Remove(id string, qty int) int {
	h, ok := inv[id]
	if !ok || qty <= 0 {
		return 0
	}
	qty = min(qty, h.Quantity)
	h.Quantity -= qty
	if h.Quantity == 0 {
		h.AvgCost = 0
	}
	return qty
}

func (inv Inventory) holding(id string) *Holding {
	h, ok := inv[id]
	if !ok {
		h = &Holding{}
		inv[id] = h
	}
	return h
}
