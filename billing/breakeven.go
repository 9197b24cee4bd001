package billing

import (
	"math"

	"github.com/shopspring/decimal"
)

// CalculateBreakEven computes the yearly cost of the business and the rates
// needed to cover it at the requested margin.
//
// FeeRatePercent is carried on the input but does not enter the formula.
//
// Returns a *DivisionByZeroError (errors.Is ErrZeroBillableHours) when
// BillableHoursPerYear is not positive, and ErrNonFiniteResult when a rate
// overflows.
func CalculateBreakEven(in BreakEvenInput) (BreakEvenResult, error) {
	yearlySalary := in.MonthlySalary * MonthsPerYear
	yearlyOther := in.TotalOtherMonthlyExpenses * MonthsPerYear
	beforeTax := yearlySalary + yearlyOther
	yearlyTaxes := beforeTax * (in.TaxRatePercent / 100)
	totalYearlyCost := yearlySalary + yearlyTaxes + yearlyOther

	if !(in.BillableHoursPerYear > 0) {
		return BreakEvenResult{}, &DivisionByZeroError{
			TotalYearlyCost:      totalYearlyCost,
			BillableHoursPerYear: in.BillableHoursPerYear,
		}
	}

	baseHourly := totalYearlyCost / in.BillableHoursPerYear
	hourly := baseHourly * (1 + in.MarginRatePercent/100)
	day := hourly * in.HoursPerDay
	week := day * in.WorkDaysPerWeek
	monthly := hourly * in.BillableHoursPerYear / MonthsPerYear

	for _, v := range []float64{totalYearlyCost, hourly, day, week, monthly} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return BreakEvenResult{}, ErrNonFiniteResult
		}
	}

	return BreakEvenResult{
		BreakEvenYearlyCost: RoundCents(totalYearlyCost),
		HourlyRate:          RoundCents(hourly),
		DayRate:             RoundCents(day),
		WeekRate:            RoundCents(week),
		MonthlyRate:         RoundCents(monthly),
	}, nil
}

// RoundCents rounds v to two decimal places, half away from zero.
// The float is read through its shortest decimal representation, so 23.005
// rounds to 23.01 even though its binary value sits just below.
func RoundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
