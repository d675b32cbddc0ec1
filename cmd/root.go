package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetopt/app"
	"github.com/kilianp07/fleetopt/config"
	"github.com/kilianp07/fleetopt/core/scheduler"
	"github.com/kilianp07/fleetopt/infra/logger"
	"github.com/kilianp07/fleetopt/infra/sqlite"
)

var (
	cfgPath       string
	schedulerPath string
)

var rootCmd = &cobra.Command{
	Use:          "fleetopt",
	Short:        "Predictive fleet optimization service",
	SilenceUsage: true,
	RunE:         run,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the optimization API",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&schedulerPath, "scheduler-config", "", "standalone scheduler file replacing the optimizer section")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// keep stdout for command output
		if cmd != rootCmd && cmd != serveCmd {
			logger.SetOutput(os.Stderr)
		}
	}
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}

// loadConfig reads --config and, when set, replaces the optimizer section
// with the --scheduler-config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if schedulerPath != "" {
		sc, err := scheduler.LoadConfig(schedulerPath)
		if err != nil {
			return nil, fmt.Errorf("load scheduler config: %w", err)
		}
		cfg.Optimizer = sc
	}
	return cfg, nil
}

// openStore loads the configuration and opens the store it points at.
func openStore() (*sqlite.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := sqlite.Open(cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func closeStore(cmd *cobra.Command, st *sqlite.Store) {
	if err := st.Close(); err != nil {
		if _, ferr := fmt.Fprintf(cmd.ErrOrStderr(), "error while closing store: %v\n", err); ferr != nil {
			fmt.Println("failed to write to stderr:", ferr)
		}
	}
}
