// Command finance runs the recurring finance projection engine as an HTTP
// server or as one-shot commands over a TOML state file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/warp/finance-engine/config"
)

var (
	cfgFile string
	version = "dev"

	appConfig *config.Config
	logger    *logrus.Logger

	rootCmd = &cobra.Command{
		Use:   "finance",
		Short: "Recurring finance projection engine",
		Long: `finance projects salary, recurring expenses and recorded transactions
forward in time: next due dates, a calendar of events, the projected balance
for any future date and a month-by-month savings goal simulation.

Run "finance serve" for the HTTP API, or use the one-shot commands with a
TOML state file (see "finance init").`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/finance/finance.yaml or ./finance.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(nextCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(remindersCmd())
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps flag names to config keys. Flags are bound per invocation so
// that subcommands sharing a flag name do not overwrite each other's binding.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"port":       "server.port",
	"db":         "db.path",
	"db-backend": "db.backend",
	"reminders":  "reminders.enabled",
	"max-days":   "projection.max_days",
}

func initConfig(cmd *cobra.Command, _ []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	l, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	appConfig = cfg
	logger = l
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finance %s\n", version)
		},
	}
}
