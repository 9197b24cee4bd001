package billing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// salaryOnly is the 5000/month, no-overhead profile over 1290 billable hours.
func salaryOnly() BreakEvenInput {
	return BreakEvenInput{
		BillableHoursPerYear: 1290,
		MonthlySalary:        5000,
		HoursPerDay:          6,
		WorkDaysPerWeek:      5,
	}
}

func TestBreakEven_SalaryOnly(t *testing.T) {
	got, err := CalculateBreakEven(salaryOnly())
	require.NoError(t, err)

	assert.Equal(t, 60000.0, got.BreakEvenYearlyCost)
	assert.Equal(t, 46.51, got.HourlyRate)
	assert.Equal(t, 279.07, got.DayRate)
	assert.Equal(t, 1395.35, got.WeekRate)
	assert.Equal(t, 5000.0, got.MonthlyRate, "monthly rate reconstructs the salary")
}

func TestBreakEven_MarginScalesEveryRate(t *testing.T) {
	base, err := CalculateBreakEven(salaryOnly())
	require.NoError(t, err)

	in := salaryOnly()
	in.MarginRatePercent = 15
	got, err := CalculateBreakEven(in)
	require.NoError(t, err)

	assert.Equal(t, 53.49, got.HourlyRate)
	assert.Equal(t, 320.93, got.DayRate)
	assert.Equal(t, 1604.65, got.WeekRate)
	assert.Equal(t, 5750.0, got.MonthlyRate)
	assert.Equal(t, base.BreakEvenYearlyCost, got.BreakEvenYearlyCost, "margin does not change cost")

	assert.InDelta(t, base.DayRate*1.15, got.DayRate, 0.01)
	assert.InDelta(t, base.WeekRate*1.15, got.WeekRate, 0.01)
}

func TestBreakEven_TaxAppliesToSalaryAndOverhead(t *testing.T) {
	in := salaryOnly()
	in.TotalOtherMonthlyExpenses = 1000
	in.TaxRatePercent = 25

	got, err := CalculateBreakEven(in)
	require.NoError(t, err)

	// (60000 + 12000) * 1.25
	assert.Equal(t, 90000.0, got.BreakEvenYearlyCost)
	assert.Equal(t, RoundCents(90000.0/1290), got.HourlyRate)
	assert.Equal(t, 7500.0, got.MonthlyRate)
}

func TestBreakEven_FeeRateDoesNotAffectRates(t *testing.T) {
	withoutFee, err := CalculateBreakEven(salaryOnly())
	require.NoError(t, err)

	in := salaryOnly()
	in.FeeRatePercent = 40
	withFee, err := CalculateBreakEven(in)
	require.NoError(t, err)

	assert.Equal(t, withoutFee, withFee)
}

func TestBreakEven_ZeroBillableHours(t *testing.T) {
	in := salaryOnly()
	in.BillableHoursPerYear = 0

	got, err := CalculateBreakEven(in)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZeroBillableHours))
	assert.True(t, IsZeroBillableHours(err))

	var divErr *DivisionByZeroError
	require.ErrorAs(t, err, &divErr)
	assert.Equal(t, 60000.0, divErr.TotalYearlyCost)
	assert.Equal(t, BreakEvenResult{}, got, "no numeric result on failure")
}

func TestBreakEven_OverflowIsAnError(t *testing.T) {
	cases := []struct {
		name string
		edit func(*BreakEvenInput)
	}{
		{"huge salary", func(in *BreakEvenInput) { in.MonthlySalary = 1e308 }},
		{"huge overhead", func(in *BreakEvenInput) { in.TotalOtherMonthlyExpenses = math.MaxFloat64 }},
		{"tiny hours", func(in *BreakEvenInput) { in.MonthlySalary = 1e300; in.BillableHoursPerYear = 1e-300 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := salaryOnly()
			tc.edit(&in)

			got, err := CalculateBreakEven(in)

			require.ErrorIs(t, err, ErrNonFiniteResult)
			assert.True(t, IsNonFiniteResult(err))
			assert.False(t, IsZeroBillableHours(err))
			assert.Equal(t, BreakEvenResult{}, got)
		})
	}
}

func TestBreakEven_ZeroHoursFromOverbookedSchedule(t *testing.T) {
	metrics := CalculateBillableMetrics(WorkScheduleInput{
		HolidayDaysPerYear:   Float(200),
		VacationDaysPerYear:  Float(200),
		SickLeaveDaysPerYear: Float(100),
	})
	in := NewBreakEvenInput(DefaultWorkSchedule(), metrics, CompensationInput{MonthlySalary: 5000}, 0)

	_, err := CalculateBreakEven(in)
	assert.ErrorIs(t, err, ErrZeroBillableHours)
}

func TestBreakEven_SalaryMonotonic(t *testing.T) {
	prev, err := CalculateBreakEven(salaryOnly())
	require.NoError(t, err)

	for salary := 5500.0; salary <= 20000; salary += 500 {
		in := salaryOnly()
		in.MonthlySalary = salary
		got, err := CalculateBreakEven(in)
		require.NoError(t, err)

		assert.Greater(t, got.HourlyRate, prev.HourlyRate)
		assert.Greater(t, got.DayRate, prev.DayRate)
		assert.Greater(t, got.WeekRate, prev.WeekRate)
		assert.Greater(t, got.MonthlyRate, prev.MonthlyRate)
		prev = got
	}
}

func TestBreakEven_Deterministic(t *testing.T) {
	in := salaryOnly()
	in.TaxRatePercent = 13.5
	in.MarginRatePercent = 7.25
	in.TotalOtherMonthlyExpenses = 432.10

	a, errA := CalculateBreakEven(in)
	b, errB := CalculateBreakEven(in)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestRoundCents(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{23.4567, 23.46},
		{23.005, 23.01},
		{-23.005, -23.01},
		{2.675, 2.68},
		{1.004, 1.0},
		{0, 0},
		{1395.3488372093022, 1395.35},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RoundCents(tc.in), "RoundCents(%v)", tc.in)
	}

	assert.True(t, math.IsNaN(RoundCents(math.NaN())))
}
