package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/pkg/export"
)

var recsCmd = &cobra.Command{
	Use:     "recommendations",
	Aliases: []string{"recs"},
	Short:   "Review persisted recommendations",
}

var recsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recommendations",
	RunE:  runRecsLs,
}

var (
	recsStatus string
	recsFormat string
)

func init() {
	recsLsCmd.Flags().StringVar(&recsStatus, "status", "", "filter by status (pending, approved, rejected)")
	recsLsCmd.Flags().StringVarP(&recsFormat, "format", "f", export.FormatJSON, "output format (json or csv)")

	recsCmd.AddCommand(recsLsCmd,
		reviewCommand("approve", model.StatusApproved),
		reviewCommand("reject", model.StatusRejected),
	)
	rootCmd.AddCommand(recsCmd)
}

func runRecsLs(cmd *cobra.Command, args []string) error {
	if err := export.ValidateFormat(recsFormat); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(cmd, st)

	recs, err := st.ListRecommendations(cmd.Context(), recsStatus)
	if err != nil {
		return err
	}
	if recsFormat == export.FormatCSV {
		return export.WriteRecommendationsCSV(cmd.OutOrStdout(), recs)
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return export.WriteJSON(cmd.OutOrStdout(), recs)
}

func reviewCommand(use, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: fmt.Sprintf("Mark pending recommendations as %s", status),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore(cmd, st)
			for _, id := range args {
				if err := st.UpdateRecommendationStatus(cmd.Context(), id, status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, status)
			}
			return nil
		},
	}
}
