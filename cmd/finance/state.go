package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/finance-engine/factory"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/generic"
)

// =============================================================================
// STATE FILE COMMANDS - init, import, export
// =============================================================================

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example state file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("state")
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			state, err := exampleState(generic.DateOf(time.Now()))
			if err != nil {
				return err
			}
			if err := factory.SaveStateFile(path, state); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().String("state", "state.toml", "state file to create")
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a state file into the configured store",
		Long: `import replaces the salary and savings goal, upserts recurring expenses and
appends transactions. Transactions whose ID is already stored are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("state")
			state, err := factory.LoadStateFile(path)
			if err != nil {
				return err
			}

			st, closeStore, err := openStore(appConfig)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			if state.Salary != nil {
				if err := st.SetSalary(ctx, *state.Salary); err != nil {
					return err
				}
			}
			for _, e := range state.Expenses {
				if err := st.PutRecurringExpense(ctx, e); err != nil {
					return err
				}
			}
			added, skipped := 0, 0
			for _, tx := range state.Transactions {
				err := st.AppendTransaction(ctx, tx)
				switch {
				case errors.Is(err, generic.ErrDuplicateTransaction):
					skipped++
				case err != nil:
					return fmt.Errorf("transaction %s: %w", tx.ID, err)
				default:
					added++
				}
			}
			if state.Goal != nil {
				if err := st.SetSavingsGoal(ctx, *state.Goal); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d recurring expenses, %d transactions (%d already present)\n",
				len(state.Expenses), added, skipped)
			return nil
		},
	}
	cmd.Flags().String("state", "state.toml", "state file to import")
	cmd.Flags().String("db", "./data/finance.db", "SQLite database path")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configured store to a state file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("state")

			st, closeStore, err := openStore(appConfig)
			if err != nil {
				return err
			}
			defer closeStore()

			state, err := finance.LoadState(cmd.Context(), st)
			if err != nil {
				return err
			}
			if err := factory.SaveStateFile(path, state); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().String("state", "state.toml", "state file to write")
	cmd.Flags().String("db", "./data/finance.db", "SQLite database path")
	return cmd
}

// exampleState builds a small, valid state anchored on today.
func exampleState(today generic.Date) (finance.State, error) {
	f := factory.NewRuleFactory()

	salary, err := f.ParseSalary(factory.MonthlySalaryJSON("3000", 25))
	if err != nil {
		return finance.State{}, err
	}
	var expenses []finance.RecurringExpense
	for _, js := range []string{
		factory.RentJSON("rent", "1200", 1),
		factory.SubscriptionJSON("streaming", "Streaming", "15.99", 12),
	} {
		e, err := f.ParseExpense(js)
		if err != nil {
			return finance.State{}, err
		}
		expenses = append(expenses, e)
	}

	return finance.State{
		Salary:   &salary,
		Expenses: expenses,
		Transactions: []finance.Transaction{
			{ID: "opening", Kind: finance.KindIncome, Amount: generic.MustParseDecimal("2500"), Date: today.AddDays(-1), Description: "Opening balance"},
		},
		Goal: &finance.SavingsGoal{
			TargetAmount: generic.MustParseDecimal("5000"),
			Deadline:     today.AddMonths(6),
			CurrentSaved: generic.MustParseDecimal("500"),
		},
	}, nil
}
