package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetopt/infra/sqlite"
)

var importCmd = &cobra.Command{
	Use:   "import <dataset.json>",
	Short: "Load users, vehicles, trips, reservations, incidents, searches and rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	ds, err := sqlite.DecodeDataset(f)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(cmd, st)

	if err := st.Import(cmd.Context(), ds); err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d vehicles, %d trips, %d reservations, %d incidents, %d rules\n",
		len(ds.Vehicles), len(ds.Trips), len(ds.Reservations), len(ds.Incidents), len(ds.Rules))
	return nil
}
