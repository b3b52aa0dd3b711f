package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/buytown/admin-console/config"
	"github.com/buytown/admin-console/internal/app"
	"github.com/buytown/admin-console/internal/logging"
)

var (
	envName        string
	restoreTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "buytown",
	Short:         "BuyTown admin console from the terminal",
	Long:          "Log in to the BuyTown admin API and run catalog chores without the browser.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultEnv := os.Getenv("APP_ENV")
	if defaultEnv == "" {
		defaultEnv = "local"
	}
	rootCmd.PersistentFlags().StringVar(&envName, "env", defaultEnv, "config environment (config/envs/<env>.yaml)")
	rootCmd.PersistentFlags().DurationVar(&restoreTimeout, "restore-timeout", 10*time.Second, "how long to wait for the stored session to load")
}

// openApp loads config, restores the stored session and hands the app to fn.
func openApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.Load(envName)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Restore(ctx, restoreTimeout)
	return fn(a)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
