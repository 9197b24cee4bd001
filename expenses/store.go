package expenses

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists expense records. Every method is scoped to one owner;
// records of other owners are invisible.
//
// Create assigns an ID when the record has none, places the record last in
// rank order and stamps CreatedAt/UpdatedAt. Update keeps the rank and
// CreatedAt of the stored record and returns ErrNotFound for unknown IDs.
//
// Billable settings and preferences never return ErrNotFound: an owner that
// has not saved any gets the defaults.
type Store interface {
	ListFixedCosts(ctx context.Context, owner Owner) ([]FixedCost, error)
	GetFixedCost(ctx context.Context, owner Owner, id string) (FixedCost, error)
	CreateFixedCost(ctx context.Context, c FixedCost) (FixedCost, error)
	UpdateFixedCost(ctx context.Context, c FixedCost) (FixedCost, error)
	DeleteFixedCost(ctx context.Context, owner Owner, id string) error
	ReorderFixedCosts(ctx context.Context, owner Owner, ids []string) error

	ListEquipment(ctx context.Context, owner Owner) ([]Equipment, error)
	GetEquipment(ctx context.Context, owner Owner, id string) (Equipment, error)
	CreateEquipment(ctx context.Context, e Equipment) (Equipment, error)
	UpdateEquipment(ctx context.Context, e Equipment) (Equipment, error)
	DeleteEquipment(ctx context.Context, owner Owner, id string) error
	ReorderEquipment(ctx context.Context, owner Owner, ids []string) error

	GetBillableSettings(ctx context.Context, owner Owner) (BillableSettings, error)
	SaveBillableSettings(ctx context.Context, s BillableSettings) error

	GetPreferences(ctx context.Context, owner Owner) (Preferences, error)
	SavePreferences(ctx context.Context, p Preferences) error

	// Reset removes every record of the owner.
	Reset(ctx context.Context, owner Owner) error

	Close() error
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is everything needed to price one owner's time.
type Snapshot struct {
	FixedCosts []FixedCost
	Equipment  []Equipment
	Settings   BillableSettings
	Totals     Totals
}

// LoadSnapshot reads the owner's costs and settings concurrently.
func LoadSnapshot(ctx context.Context, s Store, owner Owner) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fixed, err := s.ListFixedCosts(ctx, owner)
		if err != nil {
			return fmt.Errorf("list fixed costs: %w", err)
		}
		snap.FixedCosts = fixed
		return nil
	})
	g.Go(func() error {
		equipment, err := s.ListEquipment(ctx, owner)
		if err != nil {
			return fmt.Errorf("list equipment: %w", err)
		}
		snap.Equipment = equipment
		return nil
	})
	g.Go(func() error {
		settings, err := s.GetBillableSettings(ctx, owner)
		if err != nil {
			return fmt.Errorf("get billable settings: %w", err)
		}
		snap.Settings = settings
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.Totals = ComputeTotals(snap.FixedCosts, snap.Equipment)
	return snap, nil
}

// OtherMonthly is the float64 aggregate for the billing engine.
func (s Snapshot) OtherMonthly() float64 {
	return s.Totals.OtherMonthly().InexactFloat64()
}
