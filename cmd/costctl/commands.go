package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/i18n"
)

// =============================================================================
// FLAGS
// =============================================================================

// scheduleArgs holds the schedule flags. Tags name the flags in validation
// messages.
type scheduleArgs struct {
	WorkDays float64 `json:"work-days" validate:"gte=1,lte=7"`
	Hours    float64 `json:"hours" validate:"gte=1,lte=24"`
	Holidays float64 `json:"holidays" validate:"gte=0,lte=360"`
	Vacation float64 `json:"vacation" validate:"gte=0,lte=360"`
	Sick     float64 `json:"sick" validate:"gte=0,lte=180"`
}

func (a *scheduleArgs) register(cmd *cobra.Command) {
	def := billing.DefaultWorkSchedule()
	f := cmd.Flags()
	f.Float64Var(&a.WorkDays, "work-days", def.WorkDaysPerWeek, "work days per week")
	f.Float64Var(&a.Hours, "hours", def.HoursPerDay, "billable hours per day")
	f.Float64Var(&a.Holidays, "holidays", def.HolidayDaysPerYear, "public holidays per year")
	f.Float64Var(&a.Vacation, "vacation", def.VacationDaysPerYear, "vacation days per year")
	f.Float64Var(&a.Sick, "sick", def.SickLeaveDaysPerYear, "sick days per year")
}

// input leaves flags that were not given unset so defaults apply.
func (a *scheduleArgs) input(cmd *cobra.Command) billing.WorkScheduleInput {
	var in billing.WorkScheduleInput
	set := func(name string, v float64, dst **float64) {
		if cmd.Flags().Changed(name) {
			*dst = billing.Float(v)
		}
	}
	set("work-days", a.WorkDays, &in.WorkDaysPerWeek)
	set("hours", a.Hours, &in.HoursPerDay)
	set("holidays", a.Holidays, &in.HolidayDaysPerYear)
	set("vacation", a.Vacation, &in.VacationDaysPerYear)
	set("sick", a.Sick, &in.SickLeaveDaysPerYear)
	return in
}

type compensationArgs struct {
	Salary        float64 `json:"salary" validate:"gte=0,lte=10000000"`
	Tax           float64 `json:"tax" validate:"gte=0,lte=100"`
	Fee           float64 `json:"fee" validate:"gte=0,lte=100"`
	Margin        float64 `json:"margin" validate:"gte=0,lte=1000"`
	Other         float64 `json:"other" validate:"gte=0,lte=10000000"`
	BillableHours float64 `json:"billable-hours" validate:"gte=0,lte=8784"`
}

func (a *compensationArgs) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&a.Salary, "salary", 0, "monthly salary")
	f.Float64Var(&a.Tax, "tax", 0, "tax rate in percent")
	f.Float64Var(&a.Fee, "fee", 0, "fee rate in percent (recorded, not applied)")
	f.Float64Var(&a.Margin, "margin", 0, "margin in percent")
	f.Float64Var(&a.Other, "other", 0, "other monthly expenses")
	f.Float64Var(&a.BillableHours, "billable-hours", 0, "billable hours per year (overrides the schedule)")
}

// env bundles what every command needs.
type env struct {
	opts      *rootOptions
	catalog   *i18n.Catalog
	validator *i18n.Validator
	locale    string
}

func newEnv(opts *rootOptions) (*env, error) {
	catalog, err := i18n.Load("en")
	if err != nil {
		return nil, err
	}
	validator, err := i18n.NewValidator("en")
	if err != nil {
		return nil, err
	}
	opts.currency = strings.ToUpper(opts.currency)
	if !i18n.SupportsCurrency(opts.currency) {
		return nil, fmt.Errorf("unsupported currency %q (supported: %s)", opts.currency, strings.Join(i18n.Currencies(), ", "))
	}
	return &env{opts: opts, catalog: catalog, validator: validator, locale: catalog.Match(opts.locale)}, nil
}

// validate checks flag ranges and reports every bad flag in one error.
func (e *env) validate(args ...any) error {
	var problems []string
	for _, a := range args {
		err := e.validator.Struct(e.locale, a)
		if err == nil {
			continue
		}
		var verr *i18n.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for flag, msg := range verr.Fields {
			problems = append(problems, fmt.Sprintf("--%s: %s", flag, msg))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// =============================================================================
// COMMANDS
// =============================================================================

func metricsCmd(opts *rootOptions) *cobra.Command {
	var schedule scheduleArgs
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Billable days and hours per year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(opts)
			if err != nil {
				return err
			}
			if err := e.validate(&schedule); err != nil {
				return err
			}

			in := schedule.input(cmd)
			result := metricsOutput{
				Schedule: in.Resolve(),
				Metrics:  billing.CalculateBillableMetrics(in),
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), result)
			}
			return e.printMetrics(cmd.OutOrStdout(), result)
		},
	}
	schedule.register(cmd)
	return cmd
}

func breakEvenCmd(opts *rootOptions) *cobra.Command {
	var (
		schedule     scheduleArgs
		compensation compensationArgs
	)
	cmd := &cobra.Command{
		Use:   "breakeven",
		Short: "Yearly cost and the rates that cover it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(opts)
			if err != nil {
				return err
			}
			if err := e.validate(&schedule, &compensation); err != nil {
				return err
			}

			in := schedule.input(cmd)
			ws := in.Resolve()
			metrics := billing.CalculateBillableMetrics(in)
			if cmd.Flags().Changed("billable-hours") {
				metrics.BillableHoursPerYear = compensation.BillableHours
			}
			comp := billing.CompensationInput{
				MonthlySalary:     compensation.Salary,
				TaxRatePercent:    compensation.Tax,
				FeeRatePercent:    compensation.Fee,
				MarginRatePercent: compensation.Margin,
			}

			beIn := billing.NewBreakEvenInput(ws, metrics, comp, compensation.Other)
			result, err := billing.CalculateBreakEven(beIn)
			if err != nil {
				switch {
				case billing.IsZeroBillableHours(err):
					return fmt.Errorf("%s (%w)", e.catalog.Lookup(e.locale, "errors.zero_billable_hours"), err)
				case billing.IsNonFiniteResult(err):
					return fmt.Errorf("%s (%w)", e.catalog.Lookup(e.locale, "errors.result_out_of_range"), err)
				}
				return err
			}

			out := breakEvenOutput{Input: beIn, Result: result, Currency: opts.currency}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), out)
			}
			return e.printBreakEven(cmd.OutOrStdout(), out)
		},
	}
	schedule.register(cmd)
	compensation.register(cmd)
	return cmd
}
