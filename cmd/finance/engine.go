package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// ONE-SHOT ENGINE COMMANDS - run over a TOML state file
// =============================================================================

func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().String("state", "state.toml", "TOML state file (see \"finance init\")")
	cmd.Flags().String("today", "", "reference date YYYY-MM-DD (default: current date)")
}

func loadState(cmd *cobra.Command) (finance.State, generic.Date, error) {
	path, _ := cmd.Flags().GetString("state")
	state, err := factory.LoadStateFile(path)
	if err != nil {
		return finance.State{}, generic.Date{}, err
	}
	today, err := dateFlag(cmd, "today", generic.DateOf(time.Now()))
	if err != nil {
		return finance.State{}, generic.Date{}, err
	}
	logger.WithFields(logrus.Fields{
		"state":        path,
		"expenses":     len(state.Expenses),
		"transactions": len(state.Transactions),
		"today":        today.String(),
	}).Debug("state loaded")
	return state, today, nil
}

func dateFlag(cmd *cobra.Command, name string, def generic.Date) (generic.Date, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return def, nil
	}
	d, err := generic.ParseDate(s)
	if err != nil {
		return generic.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// newProjector applies the configured projection limit. An explicit
// --max-days wins even when no config was loaded.
func newProjector(cmd *cobra.Command) finance.EventProjector {
	var p finance.EventProjector
	if appConfig != nil {
		p.MaxDays = appConfig.Projection.MaxDays
	}
	if cmd.Flags().Changed("max-days") {
		p.MaxDays, _ = cmd.Flags().GetInt("max-days")
	}
	return p
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return generic.RoundMoney(d).StringFixed(generic.CurrencyPlaces)
}

// next ------------------------------------------------------------------------

func nextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next due date of the salary and every recurring expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, today, err := loadState(cmd)
			if err != nil {
				return err
			}
			from, err := dateFlag(cmd, "from", today)
			if err != nil {
				return err
			}

			var due finance.DueDateCalculator
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAME\tKIND\tFREQUENCY\tAMOUNT\tNEXT")
			if state.Salary != nil {
				next, err := due.NextOccurrence(state.Salary.RecurrenceRule, from)
				if err != nil {
					return fmt.Errorf("salary: %w", err)
				}
				fmt.Fprintf(tw, "%s\tincome\t%s\t%s\t%s\n",
					nameOr(state.Salary.Description, "Salary"), state.Salary.Frequency, money(state.Salary.Amount), next)
			}
			for _, e := range state.Expenses {
				next, err := due.NextOccurrence(e.RecurrenceRule, from)
				if err != nil {
					return fmt.Errorf("recurring expense %s: %w", e.ID, err)
				}
				fmt.Fprintf(tw, "%s\texpense\t%s\t%s\t%s\n",
					nameOr(e.Description, string(e.ID)), e.Frequency, money(e.Amount), next)
			}
			return tw.Flush()
		},
	}
	addStateFlags(cmd)
	cmd.Flags().String("from", "", "find occurrences strictly after this date (default: today)")
	return cmd
}

// project ---------------------------------------------------------------------

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the balance up to a future date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, today, err := loadState(cmd)
			if err != nil {
				return err
			}
			to, err := dateFlag(cmd, "to", generic.Date{})
			if err != nil {
				return err
			}
			if to.IsZero() {
				return fmt.Errorf("--to is required")
			}
			from, err := dateFlag(cmd, "from", today)
			if err != nil {
				return err
			}

			projector := newProjector(cmd)
			delta, err := projector.ProjectBalance(state.Rules(), state.Transactions, from, to, today)
			if err != nil {
				return err
			}
			projected, err := projector.ProjectedBalanceAt(state.Rules(), state.Transactions, to, today)
			if err != nil {
				return err
			}
			current := finance.BalanceBefore(state.Transactions, today)

			out := cmd.OutOrStdout()
			tw := newTable(out)
			fmt.Fprintf(tw, "Today\t%s\n", today)
			fmt.Fprintf(tw, "Range\t%s .. %s\n", from, to)
			fmt.Fprintf(tw, "Current balance\t%s\n", money(current))
			fmt.Fprintf(tw, "Projected change\t%s\n", money(delta))
			fmt.Fprintf(tw, "Projected balance\t%s\n", money(projected))
			if err := tw.Flush(); err != nil {
				return err
			}

			if detail, _ := cmd.Flags().GetBool("detail"); !detail {
				return nil
			}
			timeline, err := projector.Timeline(state.Rules(), state.Transactions, from, to, today)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			tw = newTable(out)
			fmt.Fprintln(tw, "DATE\tEVENT\tAMOUNT\tCUMULATIVE")
			for _, day := range timeline {
				for _, e := range day.Events {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", day.Date, eventName(e), money(e.Signed()), money(day.Cumulative))
				}
			}
			return tw.Flush()
		},
	}
	addStateFlags(cmd)
	cmd.Flags().String("to", "", "last day of the projection (required)")
	cmd.Flags().String("from", "", "first day of the projection (default: today)")
	cmd.Flags().Bool("detail", false, "list every event in the range")
	cmd.Flags().Int("max-days", finance.DefaultMaxProjectionDays, "longest range one projection may walk")
	return cmd
}

// simulate --------------------------------------------------------------------

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the savings goal month by month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, today, err := loadState(cmd)
			if err != nil {
				return err
			}
			if state.Goal == nil {
				return generic.ErrNoSavingsGoal
			}

			raw, _ := cmd.Flags().GetString("contribution")
			var contribution decimal.Decimal
			if raw == "" {
				// Default to everything the rules leave over each month
				budget, err := finance.PotentialMonthlySavings(state.Rules())
				if err != nil {
					return err
				}
				contribution = budget.Potential
			} else if contribution, err = generic.ParseDecimal(raw); err != nil {
				return err
			}

			var sim finance.SavingsSimulator
			res, err := sim.Simulate(*state.Goal, contribution, today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := newTable(out)
			fmt.Fprintf(tw, "Target\t%s by %s\n", money(state.Goal.TargetAmount), state.Goal.Deadline)
			fmt.Fprintf(tw, "Months remaining\t%d\n", res.MonthsRemaining)
			fmt.Fprintf(tw, "Required monthly\t%s\n", money(res.RequiredMonthly))
			fmt.Fprintf(tw, "Contribution\t%s\n", money(contribution))
			fmt.Fprintf(tw, "Feasible\t%t\n", res.Feasible)
			fmt.Fprintf(tw, "Final savings\t%s\n", money(res.FinalSavings))
			fmt.Fprintf(tw, "Goal reached\t%t\n", res.GoalReached)
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			tw = newTable(out)
			fmt.Fprintln(tw, "MONTH\tSAVED\tOF GOAL")
			for _, p := range res.Series {
				fmt.Fprintf(tw, "%s\t%s\t%s%%\n", p.Label, money(p.Cumulative), p.PercentOfGoal.StringFixed(1))
			}
			return tw.Flush()
		},
	}
	addStateFlags(cmd)
	cmd.Flags().String("contribution", "", "monthly contribution (default: potential monthly savings)")
	return cmd
}

// calendar --------------------------------------------------------------------

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show which days of a month have events, or the events of one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, today, err := loadState(cmd)
			if err != nil {
				return err
			}
			var projector finance.EventProjector
			out := cmd.OutOrStdout()

			if dayFlag, _ := cmd.Flags().GetString("day"); dayFlag != "" {
				day, err := generic.ParseDate(dayFlag)
				if err != nil {
					return fmt.Errorf("--day: %w", err)
				}
				events, err := projector.DayEvents(state.Rules(), state.Transactions, day)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintf(out, "Nothing on %s\n", day)
					return nil
				}
				tw := newTable(out)
				fmt.Fprintln(tw, "EVENT\tSOURCE\tAMOUNT")
				for _, e := range events {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", eventName(e), e.Source, money(e.Signed()))
				}
				return tw.Flush()
			}

			year, month := today.Year(), today.Month()
			if m, _ := cmd.Flags().GetString("month"); m != "" {
				t, err := time.Parse("2006-01", m)
				if err != nil {
					return fmt.Errorf("--month: use YYYY-MM: %w", err)
				}
				year, month = t.Year(), t.Month()
			}

			flags, err := projector.MonthEvents(state.Rules(), state.Transactions, year, month)
			if err != nil {
				return err
			}
			printMonth(out, year, month, flags)
			return nil
		},
	}
	addStateFlags(cmd)
	cmd.Flags().String("month", "", "month to show, YYYY-MM (default: current month)")
	cmd.Flags().String("day", "", "list the events of one day instead, YYYY-MM-DD")
	return cmd
}

// printMonth draws a Sunday-first grid; days with events are marked with *.
func printMonth(w io.Writer, year int, month time.Month, flags []finance.DayFlag) {
	fmt.Fprintf(w, "%s %d\n", month, year)
	fmt.Fprintln(w, " Su  Mo  Tu  We  Th  Fr  Sa")
	if len(flags) == 0 {
		return
	}
	col := int(flags[0].Date.Weekday())
	for i := 0; i < col; i++ {
		fmt.Fprint(w, "    ")
	}
	for _, f := range flags {
		mark := " "
		if f.HasEvent {
			mark = "*"
		}
		fmt.Fprintf(w, "%3d%s", f.Date.Day(), mark)
		col++
		if col == 7 {
			fmt.Fprintln(w)
			col = 0
		}
	}
	if col != 0 {
		fmt.Fprintln(w)
	}
}

// reminders -------------------------------------------------------------------

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List recurring expenses due soon and whether today is payday",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, today, err := loadState(cmd)
			if err != nil {
				return err
			}
			days, _ := cmd.Flags().GetInt("days")

			upcoming, err := finance.UpcomingPayments(state.Expenses, today, days)
			if err != nil {
				return err
			}
			payday, err := finance.IsPayday(state.Salary, today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if payday {
				fmt.Fprintln(out, "Today is payday.")
			}
			if len(upcoming) == 0 {
				fmt.Fprintf(out, "No payments due in the next %d days.\n", days)
				return nil
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "DUE\tIN DAYS\tNAME\tAMOUNT")
			for _, p := range upcoming {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", p.DueDate, p.InDays, nameOr(p.Expense.Description, string(p.Expense.ID)), money(p.Expense.Amount))
			}
			return tw.Flush()
		},
	}
	addStateFlags(cmd)
	cmd.Flags().Int("days", finance.DefaultReminderWindow, "look-ahead window in days")
	return cmd
}

// budget ----------------------------------------------------------------------

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show monthly equivalents of every rule and the potential savings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, _, err := loadState(cmd)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAME\tFREQUENCY\tAMOUNT\tPER MONTH")
			if state.Salary != nil {
				m, err := finance.MonthlyEquivalent(state.Salary.RecurrenceRule)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t+%s\n", nameOr(state.Salary.Description, "Salary"), state.Salary.Frequency, money(state.Salary.Amount), money(m))
			}
			for _, e := range state.Expenses {
				m, err := finance.MonthlyEquivalent(e.RecurrenceRule)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t-%s\n", nameOr(e.Description, string(e.ID)), e.Frequency, money(e.Amount), money(m))
			}

			budget, err := finance.PotentialMonthlySavings(state.Rules())
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "\t\t\t\n")
			fmt.Fprintf(tw, "Potential savings\t\t\t%s\n", money(budget.Potential))
			return tw.Flush()
		},
	}
	addStateFlags(cmd)
	return cmd
}

// stats -----------------------------------------------------------------------

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded income vs expenses for this week, month or year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, today, err := loadState(cmd)
			if err != nil {
				return err
			}
			period, _ := cmd.Flags().GetString("period")
			view, err := finance.ParseStatsView(period)
			if err != nil {
				return err
			}

			st := finance.BuildStatistics(state.Transactions, view, today)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "FROM\tTO\tINCOME\tEXPENSE\tNET")
			for _, b := range st.Series {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.Period.Start, b.Period.End, money(b.Income), money(b.Expense), money(b.Net))
			}
			fmt.Fprintf(tw, "Total\t\t%s\t%s\t%s\n", money(st.Total.Income), money(st.Total.Expense), money(st.Total.Net))
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(st.ExpenseByCategory) == 0 {
				return nil
			}
			categories := make([]string, 0, len(st.ExpenseByCategory))
			for c := range st.ExpenseByCategory {
				categories = append(categories, c)
			}
			sort.Strings(categories)

			fmt.Fprintln(cmd.OutOrStdout())
			tw = newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "CATEGORY\tSPENT")
			for _, c := range categories {
				fmt.Fprintf(tw, "%s\t%s\n", nameOr(c, "uncategorized"), money(st.ExpenseByCategory[c]))
			}
			return tw.Flush()
		},
	}
	addStateFlags(cmd)
	cmd.Flags().String("period", "month", "week, month or year")
	return cmd
}

func eventName(e finance.Event) string {
	if e.Description != "" {
		return e.Description
	}
	if e.Ref != "" {
		return e.Ref
	}
	return string(e.Source)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
