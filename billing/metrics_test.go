package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillableMetrics_DefaultSchedule(t *testing.T) {
	// GIVEN: 5 days/week, 6 hours/day, 12 holidays, 30 vacation, 3 sick
	in := WorkScheduleInput{
		WorkDaysPerWeek:      Float(5),
		HoursPerDay:          Float(6),
		HolidayDaysPerYear:   Float(12),
		VacationDaysPerYear:  Float(30),
		SickLeaveDaysPerYear: Float(3),
	}

	// WHEN
	got := CalculateBillableMetrics(in)

	// THEN
	assert.Equal(t, 45.0, got.TimeOffDays)
	assert.Equal(t, 260.0, got.WorkDaysPerYear)
	assert.Equal(t, 215.0, got.ActualWorkDays)
	assert.Equal(t, 1290.0, got.BillableHoursPerYear)
}

func TestBillableMetrics_MissingFieldsUseDefaults(t *testing.T) {
	empty := CalculateBillableMetrics(WorkScheduleInput{})
	explicit := CalculateBillableMetrics(DefaultWorkSchedule().Input())

	assert.Equal(t, explicit, empty)
	assert.Equal(t, 1290.0, empty.BillableHoursPerYear)
}

func TestBillableMetrics_PartialInput(t *testing.T) {
	// Only hours changed; everything else defaults
	got := CalculateBillableMetrics(WorkScheduleInput{HoursPerDay: Float(8)})
	assert.Equal(t, 215.0*8, got.BillableHoursPerYear)
}

func TestBillableMetrics_NaNAndInfResolveToDefaults(t *testing.T) {
	in := WorkScheduleInput{
		WorkDaysPerWeek: Float(math.NaN()),
		HoursPerDay:     Float(math.Inf(1)),
	}

	got := CalculateBillableMetrics(in)

	assert.False(t, math.IsNaN(got.BillableHoursPerYear))
	assert.Equal(t, 1290.0, got.BillableHoursPerYear)
}

func TestBillableMetrics_TimeOffExceedsWorkYear(t *testing.T) {
	// GIVEN: 500 days off against a 260-day work year
	in := WorkScheduleInput{
		HolidayDaysPerYear:   Float(200),
		VacationDaysPerYear:  Float(200),
		SickLeaveDaysPerYear: Float(100),
	}

	got := CalculateBillableMetrics(in)

	assert.Equal(t, 500.0, got.TimeOffDays)
	assert.Equal(t, 0.0, got.ActualWorkDays, "clamped, not negative")
	assert.Equal(t, 0.0, got.BillableHoursPerYear)
}

func TestBillableMetrics_NeverNegative(t *testing.T) {
	for days := 1.0; days <= 7; days++ {
		for hours := 1.0; hours <= 24; hours += 5 {
			for off := 0.0; off <= 720; off += 60 {
				got := CalculateBillableMetrics(WorkScheduleInput{
					WorkDaysPerWeek:      Float(days),
					HoursPerDay:          Float(hours),
					HolidayDaysPerYear:   Float(off),
					VacationDaysPerYear:  Float(0),
					SickLeaveDaysPerYear: Float(0),
				})
				assert.GreaterOrEqual(t, got.ActualWorkDays, 0.0)
				assert.GreaterOrEqual(t, got.BillableHoursPerYear, 0.0)
			}
		}
	}
}

func TestBillableMetrics_Deterministic(t *testing.T) {
	in := WorkScheduleInput{WorkDaysPerWeek: Float(4), HoursPerDay: Float(7.5)}
	assert.Equal(t, CalculateBillableMetrics(in), CalculateBillableMetrics(in))
}
