package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"ecobrain/internal/auth"
	"ecobrain/internal/cli"
	"ecobrain/internal/core"
	"ecobrain/internal/services"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo account with sample data",
		Long: `Create the demo/password account with the default categories and three
months of sample transactions, budgets, goals and investments.

Does nothing when the demo account already exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := cli.LoadAndValidateConfig(logger)
			repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
			defer repo.Close()

			accounts := services.NewAuthService(repo, auth.NewHasher(cfg.BcryptCost), auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL))
			ledger := services.NewLedgerService(repo, nil)

			user, err := services.SeedDemo(cmd.Context(), accounts, ledger, time.Now().UTC())
			if errors.Is(err, core.ErrConflict) {
				logger.Info("Demo account already exists, nothing to seed", "username", services.DemoUser.Username)
				return nil
			}
			if err != nil {
				return err
			}
			logger.Info("Demo account ready", "username", user.Username, "password", services.DemoUser.Password)
			return nil
		},
	}
}
