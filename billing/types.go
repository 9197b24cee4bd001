/*
Package billing provides the break-even calculation engine.

PURPOSE:
  Turns a work schedule and a compensation structure into the figures a
  small business needs to price its time: billable hours per year, the
  yearly cost to break even, and the hourly/day/week/month rates that
  cover it.

KEY CONCEPTS IN THIS FILE (types.go):
  - WorkScheduleInput: Raw, possibly incomplete schedule (form state)
  - WorkSchedule: Resolved schedule with every field set
  - CompensationInput: Salary and percentage rates
  - BillableMetricsResult / BreakEvenInput / BreakEvenResult: Value objects

DESIGN PRINCIPLES:
  1. Purity: No I/O, no clocks, no globals. Same input, same output.
  2. Totality: Missing fields resolve to defaults instead of NaN.
  3. Explicit failure: Zero billable hours is a named error, never +Inf.
  4. Money rounding: Outputs are rounded to cents with shopspring/decimal.

USAGE:
  metrics := billing.CalculateBillableMetrics(billing.WorkScheduleInput{
      WorkDaysPerWeek: billing.Float(5),
  })
  result, err := billing.CalculateBreakEven(billing.BreakEvenInput{
      BillableHoursPerYear: metrics.BillableHoursPerYear,
      MonthlySalary:        5000,
      HoursPerDay:          6,
      WorkDaysPerWeek:      5,
  })

SEE ALSO:
  - metrics.go: Billable hours
  - breakeven.go: Break-even rates
  - calculator.go: Memoizing wrapper used by the API
*/
package billing

import "math"

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultWorkDaysPerWeek      = 5
	DefaultHoursPerDay          = 6
	DefaultHolidayDaysPerYear   = 12
	DefaultVacationDaysPerYear  = 30
	DefaultSickLeaveDaysPerYear = 3

	// WeeksPerYear is the scheduling year used for work-day totals.
	WeeksPerYear = 52
	// MonthsPerYear converts monthly figures to yearly ones and back.
	MonthsPerYear = 12
)

// =============================================================================
// WORK SCHEDULE
// =============================================================================

// WorkScheduleInput is the schedule as entered by a user. Nil fields are
// treated as missing.
type WorkScheduleInput struct {
	WorkDaysPerWeek      *float64 `json:"work_days_per_week,omitempty"`
	HoursPerDay          *float64 `json:"hours_per_day,omitempty"`
	HolidayDaysPerYear   *float64 `json:"holiday_days_per_year,omitempty"`
	VacationDaysPerYear  *float64 `json:"vacation_days_per_year,omitempty"`
	SickLeaveDaysPerYear *float64 `json:"sick_leave_days_per_year,omitempty"`
}

// WorkSchedule is a fully resolved schedule. It is comparable and can be
// used as a cache key.
type WorkSchedule struct {
	WorkDaysPerWeek      float64 `json:"work_days_per_week"`
	HoursPerDay          float64 `json:"hours_per_day"`
	HolidayDaysPerYear   float64 `json:"holiday_days_per_year"`
	VacationDaysPerYear  float64 `json:"vacation_days_per_year"`
	SickLeaveDaysPerYear float64 `json:"sick_leave_days_per_year"`
}

// DefaultWorkSchedule returns the schedule used when nothing was entered.
func DefaultWorkSchedule() WorkSchedule {
	return WorkSchedule{
		WorkDaysPerWeek:      DefaultWorkDaysPerWeek,
		HoursPerDay:          DefaultHoursPerDay,
		HolidayDaysPerYear:   DefaultHolidayDaysPerYear,
		VacationDaysPerYear:  DefaultVacationDaysPerYear,
		SickLeaveDaysPerYear: DefaultSickLeaveDaysPerYear,
	}
}

// Resolve fills every missing, NaN or infinite field with its default.
func (in WorkScheduleInput) Resolve() WorkSchedule {
	return WorkSchedule{
		WorkDaysPerWeek:      orDefault(in.WorkDaysPerWeek, DefaultWorkDaysPerWeek),
		HoursPerDay:          orDefault(in.HoursPerDay, DefaultHoursPerDay),
		HolidayDaysPerYear:   orDefault(in.HolidayDaysPerYear, DefaultHolidayDaysPerYear),
		VacationDaysPerYear:  orDefault(in.VacationDaysPerYear, DefaultVacationDaysPerYear),
		SickLeaveDaysPerYear: orDefault(in.SickLeaveDaysPerYear, DefaultSickLeaveDaysPerYear),
	}
}

// Input converts a resolved schedule back into input form.
func (ws WorkSchedule) Input() WorkScheduleInput {
	return WorkScheduleInput{
		WorkDaysPerWeek:      Float(ws.WorkDaysPerWeek),
		HoursPerDay:          Float(ws.HoursPerDay),
		HolidayDaysPerYear:   Float(ws.HolidayDaysPerYear),
		VacationDaysPerYear:  Float(ws.VacationDaysPerYear),
		SickLeaveDaysPerYear: Float(ws.SickLeaveDaysPerYear),
	}
}

// Float returns a pointer to v, for building WorkScheduleInput literals.
func Float(v float64) *float64 { return &v }

func orDefault(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return def
	}
	return *v
}

// =============================================================================
// COMPENSATION
// =============================================================================

// CompensationInput holds the salary and the percentage rates applied to it.
// Rates are percentages (15 means 15%).
type CompensationInput struct {
	MonthlySalary     float64 `json:"monthly_salary"`
	TaxRatePercent    float64 `json:"tax_rate_percent"`
	FeeRatePercent    float64 `json:"fee_rate_percent"`
	MarginRatePercent float64 `json:"margin_rate_percent"`
}

// =============================================================================
// RESULTS
// =============================================================================

// BillableMetricsResult is derived from a WorkSchedule.
type BillableMetricsResult struct {
	TimeOffDays          float64 `json:"time_off_days"`
	WorkDaysPerYear      float64 `json:"work_days_per_year"`
	ActualWorkDays       float64 `json:"actual_work_days"`
	BillableHoursPerYear float64 `json:"billable_hours_per_year"`
}

// BreakEvenInput aggregates everything the break-even formula consumes.
type BreakEvenInput struct {
	BillableHoursPerYear      float64 `json:"billable_hours_per_year"`
	MonthlySalary             float64 `json:"monthly_salary"`
	TaxRatePercent            float64 `json:"tax_rate_percent"`
	FeeRatePercent            float64 `json:"fee_rate_percent"`
	MarginRatePercent         float64 `json:"margin_rate_percent"`
	TotalOtherMonthlyExpenses float64 `json:"total_other_monthly_expenses"`
	HoursPerDay               float64 `json:"hours_per_day"`
	WorkDaysPerWeek           float64 `json:"work_days_per_week"`
}

// NewBreakEvenInput assembles a BreakEvenInput from its three sources.
func NewBreakEvenInput(schedule WorkSchedule, metrics BillableMetricsResult, comp CompensationInput, otherMonthly float64) BreakEvenInput {
	return BreakEvenInput{
		BillableHoursPerYear:      metrics.BillableHoursPerYear,
		MonthlySalary:             comp.MonthlySalary,
		TaxRatePercent:            comp.TaxRatePercent,
		FeeRatePercent:            comp.FeeRatePercent,
		MarginRatePercent:         comp.MarginRatePercent,
		TotalOtherMonthlyExpenses: otherMonthly,
		HoursPerDay:               schedule.HoursPerDay,
		WorkDaysPerWeek:           schedule.WorkDaysPerWeek,
	}
}

// BreakEvenResult holds the break-even cost and rates, rounded to cents.
type BreakEvenResult struct {
	BreakEvenYearlyCost float64 `json:"break_even_yearly_cost"`
	HourlyRate          float64 `json:"hourly_rate"`
	DayRate             float64 `json:"day_rate"`
	WeekRate            float64 `json:"week_rate"`
	MonthlyRate         float64 `json:"monthly_rate"`
}
