package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetopt/core/optimizer"
	"github.com/kilianp07/fleetopt/core/scheduler"
	"github.com/kilianp07/fleetopt/infra/logger"
	"github.com/kilianp07/fleetopt/pkg/export"
)

var (
	reportHorizon int
	reportFormat  string
	reportPersist bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute an optimization report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportHorizon, "horizon", optimizer.DefaultHorizonDays, "forecast horizon in days")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", export.FormatJSON, "output format (json or csv)")
	reportCmd.Flags().BoolVar(&reportPersist, "persist", false, "save the suggestions as pending recommendations")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := export.ValidateFormat(reportFormat); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(cmd, st)

	engine, err := optimizer.NewEngine(st, st, logger.New("optimizer"))
	if err != nil {
		return err
	}
	orch, err := scheduler.New(engine, st, logger.New("scheduler"))
	if err != nil {
		return err
	}
	var rep *optimizer.Report
	if reportPersist {
		rep, err = orch.RunCycle(cmd.Context(), reportHorizon)
	} else {
		rep, err = orch.ComputeReport(cmd.Context(), reportHorizon)
	}
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return export.WriteReport(cmd.OutOrStdout(), reportFormat, rep)
}
