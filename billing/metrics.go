package billing

import "math"

// CalculateBillableMetrics converts a work schedule into yearly time-off and
// billable-hour figures. Missing fields take their defaults; results that
// would go negative (more time off than work days) are clamped to zero.
func CalculateBillableMetrics(in WorkScheduleInput) BillableMetricsResult {
	return billableMetrics(in.Resolve())
}

func billableMetrics(ws WorkSchedule) BillableMetricsResult {
	timeOff := ws.HolidayDaysPerYear + ws.VacationDaysPerYear + ws.SickLeaveDaysPerYear
	workDaysPerYear := ws.WorkDaysPerWeek * WeeksPerYear
	actual := math.Max(0, workDaysPerYear-timeOff)
	billable := math.Max(0, actual*ws.HoursPerDay)

	return BillableMetricsResult{
		TimeOffDays:          timeOff,
		WorkDaysPerYear:      workDaysPerYear,
		ActualWorkDays:       actual,
		BillableHoursPerYear: billable,
	}
}
