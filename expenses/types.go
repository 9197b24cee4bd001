/*
Package expenses defines the records a business owner maintains: fixed costs,
equipment, billable-rate settings and display preferences.

PURPOSE:
  These are the inputs the billing engine never sees directly. The engine
  only receives their aggregate (TotalOtherMonthlyExpenses) and the billable
  settings; this package owns how that aggregate is derived.

KEY TYPES:
  - FixedCost:        Recurring cost (rent, software, insurance)
  - Equipment:        Purchased asset amortized over its lifespan
  - BillableSettings: Work schedule + compensation for one owner
  - Preferences:      Panel visibility, view mode, currency, locale

MONEY:
  Amounts are decimal.Decimal so that summing many small costs does not
  drift. They are converted to float64 only at the billing boundary.

OWNERSHIP:
  Every record belongs to an Owner (a workspace identifier). Stores scope
  every query by owner.

SEE ALSO:
  - totals.go: Monthly normalization and aggregation
  - store.go: Persistence interface
  - billing/: The calculation engine these records feed
*/
package expenses

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/breakeven-engine/billing"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type Owner string

// DefaultOwner is used when a request does not name a workspace.
const DefaultOwner Owner = "default"

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// =============================================================================
// FIXED COSTS
// =============================================================================

// Frequency is how often a fixed cost is billed.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// MonthsPer returns how many months one billing period covers.
func (f Frequency) MonthsPer() int64 {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 1
	}
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// FixedCost is a recurring business cost.
type FixedCost struct {
	ID        string
	Owner     Owner
	Name      string
	Category  string
	Amount    decimal.Decimal
	Frequency Frequency
	Rank      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MonthlyAmount normalizes the cost to a per-month figure.
func (c FixedCost) MonthlyAmount() decimal.Decimal {
	return c.Amount.Div(decimal.NewFromInt(c.Frequency.MonthsPer()))
}

func (c FixedCost) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if c.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	if !c.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalid, c.Frequency)
	}
	return nil
}

// =============================================================================
// EQUIPMENT
// =============================================================================

// Equipment is a purchased asset whose cost is spread over its lifespan.
type Equipment struct {
	ID             string
	Owner          Owner
	Name           string
	Category       string
	Cost           decimal.Decimal
	PurchaseDate   time.Time
	LifespanMonths int
	Rank           int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MonthlyAmount is the straight-line monthly depreciation. Equipment with no
// lifespan contributes nothing.
func (e Equipment) MonthlyAmount() decimal.Decimal {
	if e.LifespanMonths <= 0 {
		return decimal.Zero
	}
	return e.Cost.Div(decimal.NewFromInt(int64(e.LifespanMonths)))
}

// FullyDepreciated reports whether the lifespan has elapsed at asOf.
func (e Equipment) FullyDepreciated(asOf time.Time) bool {
	if e.PurchaseDate.IsZero() || e.LifespanMonths <= 0 {
		return false
	}
	return !asOf.Before(e.PurchaseDate.AddDate(0, e.LifespanMonths, 0))
}

func (e Equipment) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if e.Cost.IsNegative() {
		return fmt.Errorf("%w: cost must not be negative", ErrInvalid)
	}
	if e.LifespanMonths < 1 {
		return fmt.Errorf("%w: lifespan must be at least one month", ErrInvalid)
	}
	return nil
}

// =============================================================================
// BILLABLE SETTINGS
// =============================================================================

// BillableSettings is the per-owner configuration of the billing engine.
type BillableSettings struct {
	Owner        Owner
	Schedule     billing.WorkSchedule
	Compensation billing.CompensationInput
	UpdatedAt    time.Time
}

// DefaultBillableSettings returns the settings a new owner starts with.
func DefaultBillableSettings(owner Owner) BillableSettings {
	return BillableSettings{
		Owner:    owner,
		Schedule: billing.DefaultWorkSchedule(),
	}
}

// =============================================================================
// PREFERENCES
// =============================================================================

// View is how cost lists are displayed.
type View string

const (
	ViewTable View = "table"
	ViewCards View = "cards"
)

// Panel names for Preferences.Panels.
const (
	PanelFixedCosts = "fixed_costs"
	PanelEquipment  = "equipment"
	PanelBillable   = "billable"
	PanelSummary    = "summary"
)

// Preferences holds per-owner display state.
type Preferences struct {
	Owner     Owner
	Panels    map[string]bool
	View      View
	Currency  string
	Locale    string
	UpdatedAt time.Time
}

// DefaultPreferences returns the initial display state.
func DefaultPreferences(owner Owner) Preferences {
	return Preferences{
		Owner: owner,
		Panels: map[string]bool{
			PanelFixedCosts: true,
			PanelEquipment:  true,
			PanelBillable:   true,
			PanelSummary:    true,
		},
		View:     ViewTable,
		Currency: "USD",
		Locale:   "en",
	}
}

// PanelVisible reports whether a panel is shown. Unknown panels are shown.
func (p Preferences) PanelVisible(name string) bool {
	visible, ok := p.Panels[name]
	return !ok || visible
}

// Clone returns a copy that shares no map with p.
func (p Preferences) Clone() Preferences {
	panels := make(map[string]bool, len(p.Panels)+1)
	for k, v := range p.Panels {
		panels[k] = v
	}
	p.Panels = panels
	return p
}

// WithPanel returns a copy with one panel toggled.
func (p Preferences) WithPanel(name string, visible bool) Preferences {
	p = p.Clone()
	p.Panels[name] = visible
	return p
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a record does not exist for the owner.
	ErrNotFound = errors.New("record not found")

	// ErrInvalid is returned when a record fails validation.
	ErrInvalid = errors.New("invalid record")

	// ErrInvalidOrder is returned when a reorder request does not list
	// exactly the owner's records.
	ErrInvalidOrder = errors.New("reorder must list every record exactly once")
)

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalid) || errors.Is(err, ErrInvalidOrder)
}
