package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/i18n"
)

var (
	accentColor = lipgloss.Color("#4ECDC4")
	errorColor  = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(errorColor)
)

type metricsOutput struct {
	Schedule billing.WorkSchedule          `json:"schedule"`
	Metrics  billing.BillableMetricsResult `json:"metrics"`
}

type breakEvenOutput struct {
	Input    billing.BreakEvenInput  `json:"input"`
	Result   billing.BreakEvenResult `json:"result"`
	Currency string                  `json:"currency"`
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

type row struct {
	label string
	value string
}

func printTable(w io.Writer, title string, rows []row) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", labelStyle.Render(r.label), valueStyle.Render(r.value)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func number(v float64) string {
	return fmt.Sprintf("%g", billing.RoundCents(v))
}

func (e *env) label(key, fallback string) string {
	return e.catalog.Lookup(e.locale, key, fallback)
}

func (e *env) printMetrics(w io.Writer, out metricsOutput) error {
	return printTable(w, e.label("panels.billable", "Billable time"), []row{
		{e.label("billable.work_days_per_week", "Work days per week"), number(out.Schedule.WorkDaysPerWeek)},
		{e.label("billable.hours_per_day", "Billable hours per day"), number(out.Schedule.HoursPerDay)},
		{e.label("billable.time_off_days", "Time off days"), number(out.Metrics.TimeOffDays)},
		{e.label("billable.work_days_per_year", "Work days per year"), number(out.Metrics.WorkDaysPerYear)},
		{e.label("billable.actual_work_days", "Days worked per year"), number(out.Metrics.ActualWorkDays)},
		{e.label("billable.billable_hours_per_year", "Billable hours per year"), number(out.Metrics.BillableHoursPerYear)},
	})
}

func (e *env) printBreakEven(w io.Writer, out breakEvenOutput) error {
	money := func(v float64) string {
		s, err := i18n.FormatCurrency(e.locale, out.Currency, v)
		if err != nil {
			return number(v)
		}
		return s
	}
	r := out.Result
	return printTable(w, e.label("panels.summary", "Summary"), []row{
		{e.label("billable.billable_hours_per_year", "Billable hours per year"), number(out.Input.BillableHoursPerYear)},
		{e.label("rates.yearly_cost", "Yearly cost to cover"), money(r.BreakEvenYearlyCost)},
		{e.label("rates.hourly", "Hourly rate"), money(r.HourlyRate)},
		{e.label("rates.daily", "Day rate"), money(r.DayRate)},
		{e.label("rates.weekly", "Week rate"), money(r.WeekRate)},
		{e.label("rates.monthly", "Monthly rate"), money(r.MonthlyRate)},
	})
}
