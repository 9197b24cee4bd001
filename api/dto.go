/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Cost amounts are decimal.Decimal and travel as JSON strings ("850.50").
  Numbers are accepted on input too. Calculator outputs are plain numbers
  already rounded to cents.

VALIDATION:
  Request types carry go-playground/validator tags. Ranges match the
  sliders of the billable form. Messages are translated to the request
  locale (see i18n/validate.go).

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/expenses"
)

// Error codes returned in ErrorResponse.Code. Each has a translation under
// errors.<code>.
const (
	CodeZeroBillableHours = "zero_billable_hours"
	CodeResultOutOfRange  = "result_out_of_range"
	CodeNotFound          = "not_found"
	CodeInvalidInput      = "invalid_input"
	CodeInvalidOrder      = "invalid_order"
	CodeInternal          = "internal"
)

// =============================================================================
// FIXED COSTS
// =============================================================================

// FixedCostDTO represents a fixed cost in API responses.
type FixedCostDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Frequency     string          `json:"frequency"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	Rank          int             `json:"rank"`
	CreatedAt     string          `json:"created_at,omitempty"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
}

// FixedCostRequest creates or replaces a fixed cost.
type FixedCostRequest struct {
	Name      string          `json:"name" validate:"required,max=120"`
	Category  string          `json:"category" validate:"max=60"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency string          `json:"frequency" validate:"required,oneof=monthly quarterly yearly"`
}

func (req FixedCostRequest) toDomain(owner expenses.Owner, id string) expenses.FixedCost {
	return expenses.FixedCost{
		ID:        id,
		Owner:     owner,
		Name:      req.Name,
		Category:  req.Category,
		Amount:    req.Amount,
		Frequency: expenses.Frequency(req.Frequency),
	}
}

func toFixedCostDTO(c expenses.FixedCost) FixedCostDTO {
	return FixedCostDTO{
		ID:            c.ID,
		Name:          c.Name,
		Category:      c.Category,
		Amount:        c.Amount,
		Frequency:     string(c.Frequency),
		MonthlyAmount: c.MonthlyAmount().Round(2),
		Rank:          c.Rank,
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
	}
}

// =============================================================================
// EQUIPMENT
// =============================================================================

// EquipmentDTO represents equipment in API responses.
type EquipmentDTO struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Cost             decimal.Decimal `json:"cost"`
	PurchaseDate     string          `json:"purchase_date,omitempty"`
	LifespanMonths   int             `json:"lifespan_months"`
	MonthlyAmount    decimal.Decimal `json:"monthly_amount"`
	FullyDepreciated bool            `json:"fully_depreciated"`
	Rank             int             `json:"rank"`
	CreatedAt        string          `json:"created_at,omitempty"`
	UpdatedAt        string          `json:"updated_at,omitempty"`
}

// EquipmentRequest creates or replaces equipment.
type EquipmentRequest struct {
	Name           string          `json:"name" validate:"required,max=120"`
	Category       string          `json:"category" validate:"max=60"`
	Cost           decimal.Decimal `json:"cost"`
	PurchaseDate   string          `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	LifespanMonths int             `json:"lifespan_months" validate:"required,min=1,max=600"`
}

func (req EquipmentRequest) toDomain(owner expenses.Owner, id string) expenses.Equipment {
	e := expenses.Equipment{
		ID:             id,
		Owner:          owner,
		Name:           req.Name,
		Category:       req.Category,
		Cost:           req.Cost,
		LifespanMonths: req.LifespanMonths,
	}
	if req.PurchaseDate != "" {
		e.PurchaseDate, _ = time.Parse(time.DateOnly, req.PurchaseDate)
	}
	return e
}

func toEquipmentDTO(e expenses.Equipment, asOf time.Time) EquipmentDTO {
	dto := EquipmentDTO{
		ID:               e.ID,
		Name:             e.Name,
		Category:         e.Category,
		Cost:             e.Cost,
		LifespanMonths:   e.LifespanMonths,
		MonthlyAmount:    e.MonthlyAmount().Round(2),
		FullyDepreciated: e.FullyDepreciated(asOf),
		Rank:             e.Rank,
		CreatedAt:        formatTime(e.CreatedAt),
		UpdatedAt:        formatTime(e.UpdatedAt),
	}
	if !e.PurchaseDate.IsZero() {
		dto.PurchaseDate = e.PurchaseDate.Format(time.DateOnly)
	}
	return dto
}

// ReorderRequest lists every record ID in the new display order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// =============================================================================
// BILLABLE
// =============================================================================

// ScheduleRequest is a work schedule as entered. Omitted fields use defaults.
type ScheduleRequest struct {
	WorkDaysPerWeek      *float64 `json:"work_days_per_week" validate:"omitempty,gte=1,lte=7"`
	HoursPerDay          *float64 `json:"hours_per_day" validate:"omitempty,gte=1,lte=24"`
	HolidayDaysPerYear   *float64 `json:"holiday_days_per_year" validate:"omitempty,gte=0,lte=360"`
	VacationDaysPerYear  *float64 `json:"vacation_days_per_year" validate:"omitempty,gte=0,lte=360"`
	SickLeaveDaysPerYear *float64 `json:"sick_leave_days_per_year" validate:"omitempty,gte=0,lte=180"`
}

func (s ScheduleRequest) toInput() billing.WorkScheduleInput {
	return billing.WorkScheduleInput{
		WorkDaysPerWeek:      s.WorkDaysPerWeek,
		HoursPerDay:          s.HoursPerDay,
		HolidayDaysPerYear:   s.HolidayDaysPerYear,
		VacationDaysPerYear:  s.VacationDaysPerYear,
		SickLeaveDaysPerYear: s.SickLeaveDaysPerYear,
	}
}

// CompensationRequest is the money side of the billable form.
type CompensationRequest struct {
	MonthlySalary     float64 `json:"monthly_salary" validate:"gte=0,lte=10000000"`
	TaxRatePercent    float64 `json:"tax_rate_percent" validate:"gte=0,lte=100"`
	FeeRatePercent    float64 `json:"fee_rate_percent" validate:"gte=0,lte=100"`
	MarginRatePercent float64 `json:"margin_rate_percent" validate:"gte=0,lte=1000"`
}

func (c CompensationRequest) toDomain() billing.CompensationInput {
	return billing.CompensationInput{
		MonthlySalary:     c.MonthlySalary,
		TaxRatePercent:    c.TaxRatePercent,
		FeeRatePercent:    c.FeeRatePercent,
		MarginRatePercent: c.MarginRatePercent,
	}
}

// BillableRequest updates the owner's billable settings.
type BillableRequest struct {
	Schedule     ScheduleRequest     `json:"schedule"`
	Compensation CompensationRequest `json:"compensation"`
}

func (req BillableRequest) toDomain(owner expenses.Owner) expenses.BillableSettings {
	return expenses.BillableSettings{
		Owner:        owner,
		Schedule:     req.Schedule.toInput().Resolve(),
		Compensation: req.Compensation.toDomain(),
	}
}

// BillableDTO is the full state of the billable form.
type BillableDTO struct {
	Schedule             billing.WorkSchedule          `json:"schedule"`
	Compensation         billing.CompensationInput     `json:"compensation"`
	OtherMonthlyExpenses float64                       `json:"other_monthly_expenses"`
	Metrics              billing.BillableMetricsResult `json:"metrics"`
	BreakEven            *billing.BreakEvenResult      `json:"break_even"`
	Formatted            *FormattedRatesDTO            `json:"formatted,omitempty"`
	Warning              *ErrorResponse                `json:"warning,omitempty"`
	Saved                bool                          `json:"saved"`
	UpdatedAt            string                        `json:"updated_at,omitempty"`
}

// FormattedRatesDTO holds the rates rendered for display.
type FormattedRatesDTO struct {
	Currency            string `json:"currency"`
	BreakEvenYearlyCost string `json:"break_even_yearly_cost"`
	HourlyRate          string `json:"hourly_rate"`
	DayRate             string `json:"day_rate"`
	WeekRate            string `json:"week_rate"`
	MonthlyRate         string `json:"monthly_rate"`
}

// MetricsRequest is the stateless metrics calculator input.
type MetricsRequest struct {
	ScheduleRequest
}

// BreakEvenRequest is the stateless break-even calculator input. Either
// billable_hours_per_year is given, or it is derived from schedule.
type BreakEvenRequest struct {
	Schedule                  ScheduleRequest     `json:"schedule"`
	Compensation              CompensationRequest `json:"compensation"`
	TotalOtherMonthlyExpenses float64             `json:"total_other_monthly_expenses" validate:"gte=0,lte=10000000"`
	BillableHoursPerYear      *float64            `json:"billable_hours_per_year" validate:"omitempty,gte=0,lte=8784"`
}

// =============================================================================
// PREFERENCES
// =============================================================================

// PreferencesDTO is the owner's display state.
type PreferencesDTO struct {
	Panels    map[string]bool `json:"panels"`
	View      string          `json:"view"`
	Currency  string          `json:"currency"`
	Locale    string          `json:"locale"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// PreferencesRequest updates the display state. Omitted fields keep their
// stored value; panels are merged.
type PreferencesRequest struct {
	Panels   map[string]bool `json:"panels"`
	View     string          `json:"view" validate:"omitempty,oneof=table cards"`
	Currency string          `json:"currency" validate:"omitempty,oneof=USD EUR GBP CAD"`
	Locale   string          `json:"locale" validate:"omitempty,oneof=en fr"`
}

func toPreferencesDTO(p expenses.Preferences) PreferencesDTO {
	panels := p.Panels
	if panels == nil {
		panels = map[string]bool{}
	}
	return PreferencesDTO{
		Panels:    panels,
		View:      string(p.View),
		Currency:  p.Currency,
		Locale:    p.Locale,
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest selects a demo dataset.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
