/*
costctl - Command-line break-even calculator

PURPOSE:
  Runs the billable-metrics and break-even calculators without a server,
  for quick what-if checks and scripting.

COMMANDS:
  metrics     Billable days and hours from a work schedule
  breakeven   Yearly cost and hourly/day/week/month rates

EXAMPLES:
  costctl metrics --work-days 5 --hours 6
  costctl breakeven --salary 5000 --other 800 --margin 15
  costctl breakeven --salary 5000 --billable-hours 1200 --json
  costctl breakeven --salary 5000 --locale fr --currency EUR

Omitted schedule flags use the same defaults as the server.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	json     bool
	locale   string
	currency string
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "costctl",
		Short: "Break-even rate calculator",
		Long: `costctl computes how many hours you can bill in a year and the rates you
must charge to cover your salary, taxes and other expenses.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)

	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of text")
	cmd.PersistentFlags().StringVar(&opts.locale, "locale", "en", "locale for labels and amounts (en, fr)")
	cmd.PersistentFlags().StringVar(&opts.currency, "currency", "USD", "currency for amounts (USD, EUR, GBP, CAD)")

	cmd.AddCommand(metricsCmd(opts))
	cmd.AddCommand(breakEvenCmd(opts))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
