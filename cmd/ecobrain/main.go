package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ecobrain/internal/cli"
	"ecobrain/internal/log"
)

var (
	version = "dev"
	logger  *log.Logger
	rootCmd = &cobra.Command{
		Use:   "ecobrain",
		Short: "Personal finance API",
		Long: `ecobrain serves the personal finance REST API: transactions, budgets,
goals, investments and the dashboards built on them.

Running it without a subcommand starts the server.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: initRuntime,
		RunE:              runServe,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initRuntime runs before every subcommand: .env first, so LOG_LEVEL and
// LOG_FORMAT from it reach the logger.
func initRuntime(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	logger = cli.SetupLogger(log.ComponentApp)
	cmd.SetContext(log.NewContext(cmd.Context(), logger))
	return nil
}
