package expenses

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Totals is the monthly cost picture of one owner.
type Totals struct {
	FixedMonthly     decimal.Decimal
	EquipmentMonthly decimal.Decimal
	ByCategory       map[string]decimal.Decimal
}

// OtherMonthly is the aggregate fed to the break-even calculator.
func (t Totals) OtherMonthly() decimal.Decimal {
	return t.FixedMonthly.Add(t.EquipmentMonthly)
}

// ComputeTotals sums the monthly amounts of every fixed cost and piece of
// equipment. Records without a category are grouped under "uncategorized".
func ComputeTotals(fixed []FixedCost, equipment []Equipment) Totals {
	t := Totals{
		FixedMonthly:     decimal.Zero,
		EquipmentMonthly: decimal.Zero,
		ByCategory:       make(map[string]decimal.Decimal),
	}
	for _, c := range fixed {
		m := c.MonthlyAmount()
		t.FixedMonthly = t.FixedMonthly.Add(m)
		t.addCategory(c.Category, m)
	}
	for _, e := range equipment {
		m := e.MonthlyAmount()
		t.EquipmentMonthly = t.EquipmentMonthly.Add(m)
		t.addCategory(e.Category, m)
	}
	return t
}

// TotalOtherMonthlyExpenses is the float64 aggregate the billing engine takes.
func TotalOtherMonthlyExpenses(fixed []FixedCost, equipment []Equipment) float64 {
	return ComputeTotals(fixed, equipment).OtherMonthly().InexactFloat64()
}

func (t *Totals) addCategory(category string, amount decimal.Decimal) {
	if category == "" {
		category = "uncategorized"
	}
	t.ByCategory[category] = t.ByCategory[category].Add(amount)
}

// SortFixedCosts orders by rank, then name.
func SortFixedCosts(costs []FixedCost) {
	sort.SliceStable(costs, func(i, j int) bool {
		if costs[i].Rank != costs[j].Rank {
			return costs[i].Rank < costs[j].Rank
		}
		return costs[i].Name < costs[j].Name
	})
}

// SortEquipment orders by rank, then name.
func SortEquipment(items []Equipment) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Rank != items[j].Rank {
			return items[i].Rank < items[j].Rank
		}
		return items[i].Name < items[j].Name
	})
}

// CheckOrder verifies that ids is a permutation of existing and returns the
// new rank of each id.
func CheckOrder(existing, ids []string) (map[string]int, error) {
	if len(existing) != len(ids) {
		return nil, ErrInvalidOrder
	}
	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	ranks := make(map[string]int, len(ids))
	for i, id := range ids {
		if !known[id] {
			return nil, ErrInvalidOrder
		}
		if _, dup := ranks[id]; dup {
			return nil, ErrInvalidOrder
		}
		ranks[id] = i
	}
	return ranks, nil
}
