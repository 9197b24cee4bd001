package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/expenses"
	"github.com/warp/breakeven-engine/expenses/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) expenses.Store {
		return newTestStore(t)
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "breakeven.db")

	// GIVEN: data written by one process
	s, err := New(path)
	require.NoError(t, err)

	bought := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.CreateEquipment(ctx, expenses.Equipment{
		Owner:          "acme",
		Name:           "Camera",
		Cost:           decimal.RequireFromString("1799.99"),
		PurchaseDate:   bought,
		LifespanMonths: 48,
	})
	require.NoError(t, err)
	require.NoError(t, s.SaveBillableSettings(ctx, expenses.BillableSettings{
		Owner:        "acme",
		Schedule:     billing.DefaultWorkSchedule(),
		Compensation: billing.CompensationInput{MonthlySalary: 4200},
	}))
	require.NoError(t, s.Close())

	// WHEN: reopened (migrations run again as a no-op)
	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	// THEN
	items, err := s.ListEquipment(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decimal.RequireFromString("1799.99").Equal(items[0].Cost))
	assert.True(t, bought.Equal(items[0].PurchaseDate))

	settings, err := s.GetBillableSettings(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 4200.0, settings.Compensation.MonthlySalary)
	assert.False(t, settings.UpdatedAt.IsZero())
}

func TestSQLiteStore_Ping(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
