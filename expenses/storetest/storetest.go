// Package storetest holds the behavior every expenses.Store must share.
// Store implementations call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/expenses"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) expenses.Store

// Run exercises the full Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("FixedCostLifecycle", func(t *testing.T) { testFixedCostLifecycle(t, newStore(t)) })
	t.Run("EquipmentLifecycle", func(t *testing.T) { testEquipmentLifecycle(t, newStore(t)) })
	t.Run("Reorder", func(t *testing.T) { testReorder(t, newStore(t)) })
	t.Run("OwnerIsolation", func(t *testing.T) { testOwnerIsolation(t, newStore(t)) })
	t.Run("BillableSettings", func(t *testing.T) { testBillableSettings(t, newStore(t)) })
	t.Run("Preferences", func(t *testing.T) { testPreferences(t, newStore(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newStore(t)) })
}

func rent(owner expenses.Owner) expenses.FixedCost {
	return expenses.FixedCost{
		Owner:     owner,
		Name:      "Rent",
		Category:  "office",
		Amount:    decimal.RequireFromString("850.50"),
		Frequency: expenses.FrequencyMonthly,
	}
}

func laptop(owner expenses.Owner) expenses.Equipment {
	return expenses.Equipment{
		Owner:          owner,
		Name:           "Laptop",
		Cost:           decimal.RequireFromString("2400"),
		LifespanMonths: 36,
	}
}

func testFixedCostLifecycle(t *testing.T, s expenses.Store) {
	ctx := context.Background()

	// GIVEN: a created fixed cost
	created, err := s.CreateFixedCost(ctx, rent("acme"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	// WHEN: read back
	got, err := s.GetFixedCost(ctx, "acme", created.ID)
	require.NoError(t, err)

	// THEN
	assert.Equal(t, "Rent", got.Name)
	assert.Equal(t, "office", got.Category)
	assert.True(t, decimal.RequireFromString("850.50").Equal(got.Amount))
	assert.Equal(t, expenses.FrequencyMonthly, got.Frequency)

	// Update keeps the rank
	got.Amount = decimal.RequireFromString("900")
	got.Frequency = expenses.FrequencyQuarterly
	got.Rank = 42
	updated, err := s.UpdateFixedCost(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, created.Rank, updated.Rank)

	list, err := s.ListFixedCosts(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.RequireFromString("300").Equal(list[0].MonthlyAmount()))

	require.NoError(t, s.DeleteFixedCost(ctx, "acme", created.ID))
	_, err = s.GetFixedCost(ctx, "acme", created.ID)
	assert.ErrorIs(t, err, expenses.ErrNotFound)

	assert.ErrorIs(t, s.DeleteFixedCost(ctx, "acme", created.ID), expenses.ErrNotFound)

	missing := rent("acme")
	missing.ID = "does-not-exist"
	_, err = s.UpdateFixedCost(ctx, missing)
	assert.ErrorIs(t, err, expenses.ErrNotFound)
}

func testEquipmentLifecycle(t *testing.T, s expenses.Store) {
	ctx := context.Background()

	created, err := s.CreateEquipment(ctx, laptop("acme"))
	require.NoError(t, err)

	got, err := s.GetEquipment(ctx, "acme", created.ID)
	require.NoError(t, err)
	assert.Equal(t, 36, got.LifespanMonths)
	assert.True(t, decimal.RequireFromString("2400").Equal(got.Cost))

	got.LifespanMonths = 24
	_, err = s.UpdateEquipment(ctx, got)
	require.NoError(t, err)

	list, err := s.ListEquipment(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.RequireFromString("100").Equal(list[0].MonthlyAmount()))

	require.NoError(t, s.DeleteEquipment(ctx, "acme", created.ID))
	_, err = s.GetEquipment(ctx, "acme", created.ID)
	assert.ErrorIs(t, err, expenses.ErrNotFound)
}

func testReorder(t *testing.T, s expenses.Store) {
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Rent", "Internet", "Software"} {
		c := rent("acme")
		c.Name = name
		created, err := s.CreateFixedCost(ctx, c)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	list, err := s.ListFixedCosts(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rent", "Internet", "Software"}, fixedNames(list), "creation order")

	// WHEN: move the last item first
	require.NoError(t, s.ReorderFixedCosts(ctx, "acme", []string{ids[2], ids[0], ids[1]}))

	list, err = s.ListFixedCosts(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"Software", "Rent", "Internet"}, fixedNames(list))

	// Incomplete orders are rejected and change nothing
	err = s.ReorderFixedCosts(ctx, "acme", []string{ids[0]})
	assert.ErrorIs(t, err, expenses.ErrInvalidOrder)
	list, err = s.ListFixedCosts(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"Software", "Rent", "Internet"}, fixedNames(list))

	a, err := s.CreateEquipment(ctx, laptop("acme"))
	require.NoError(t, err)
	b := laptop("acme")
	b.Name = "Monitor"
	bCreated, err := s.CreateEquipment(ctx, b)
	require.NoError(t, err)

	require.NoError(t, s.ReorderEquipment(ctx, "acme", []string{bCreated.ID, a.ID}))
	eq, err := s.ListEquipment(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, eq, 2)
	assert.Equal(t, "Monitor", eq[0].Name)
}

func testOwnerIsolation(t *testing.T, s expenses.Store) {
	ctx := context.Background()

	created, err := s.CreateFixedCost(ctx, rent("acme"))
	require.NoError(t, err)

	_, err = s.GetFixedCost(ctx, "globex", created.ID)
	assert.ErrorIs(t, err, expenses.ErrNotFound)

	list, err := s.ListFixedCosts(ctx, "globex")
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, s.DeleteFixedCost(ctx, "globex", created.ID), expenses.ErrNotFound)
}

func testBillableSettings(t *testing.T, s expenses.Store) {
	ctx := context.Background()

	// GIVEN: nothing saved
	got, err := s.GetBillableSettings(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, billing.DefaultWorkSchedule(), got.Schedule)
	assert.Equal(t, expenses.Owner("acme"), got.Owner)

	// WHEN
	settings := expenses.BillableSettings{
		Owner: "acme",
		Schedule: billing.WorkSchedule{
			WorkDaysPerWeek: 4, HoursPerDay: 7.5,
			HolidayDaysPerYear: 10, VacationDaysPerYear: 25, SickLeaveDaysPerYear: 5,
		},
		Compensation: billing.CompensationInput{
			MonthlySalary: 6200.5, TaxRatePercent: 22, FeeRatePercent: 3, MarginRatePercent: 12.5,
		},
	}
	require.NoError(t, s.SaveBillableSettings(ctx, settings))

	// THEN
	got, err = s.GetBillableSettings(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, settings.Schedule, got.Schedule)
	assert.Equal(t, settings.Compensation, got.Compensation)

	// Saving again overwrites
	settings.Compensation.MonthlySalary = 7000
	require.NoError(t, s.SaveBillableSettings(ctx, settings))
	got, err = s.GetBillableSettings(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 7000.0, got.Compensation.MonthlySalary)
}

func testPreferences(t *testing.T, s expenses.Store) {
	ctx := context.Background()

	got, err := s.GetPreferences(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, expenses.DefaultPreferences("acme").Panels, got.Panels)

	prefs := expenses.DefaultPreferences("acme").WithPanel(expenses.PanelEquipment, false)
	prefs.View = expenses.ViewCards
	prefs.Currency = "EUR"
	prefs.Locale = "fr"
	require.NoError(t, s.SavePreferences(ctx, prefs))

	got, err = s.GetPreferences(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, expenses.ViewCards, got.View)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "fr", got.Locale)
	assert.False(t, got.PanelVisible(expenses.PanelEquipment))
}

func testReset(t *testing.T, s expenses.Store) {
	ctx := context.Background()

	_, err := s.CreateFixedCost(ctx, rent("acme"))
	require.NoError(t, err)
	_, err = s.CreateEquipment(ctx, laptop("acme"))
	require.NoError(t, err)
	other, err := s.CreateFixedCost(ctx, rent("globex"))
	require.NoError(t, err)
	require.NoError(t, s.SaveBillableSettings(ctx, expenses.BillableSettings{
		Owner:        "acme",
		Schedule:     billing.DefaultWorkSchedule(),
		Compensation: billing.CompensationInput{MonthlySalary: 1},
	}))

	require.NoError(t, s.Reset(ctx, "acme"))

	snap, err := expenses.LoadSnapshot(ctx, s, "acme")
	require.NoError(t, err)
	assert.Empty(t, snap.FixedCosts)
	assert.Empty(t, snap.Equipment)
	assert.Equal(t, 0.0, snap.Settings.Compensation.MonthlySalary)
	assert.Equal(t, 0.0, snap.OtherMonthly())

	_, err = s.GetFixedCost(ctx, "globex", other.ID)
	assert.NoError(t, err, "other owners untouched")
}

func fixedNames(costs []expenses.FixedCost) []string {
	names := make([]string, len(costs))
	for i, c := range costs {
		names[i] = c.Name
	}
	return names
}
