package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/pkg/export"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage optimization rules",
}

var rulesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List optimization rules",
	RunE:  runRulesLs,
}

var rulesSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace an optimization rule",
	RunE:  runRulesSet,
}

var (
	rulesFormat string
	ruleFlags   model.OptimizationRule
)

func init() {
	rulesLsCmd.Flags().StringVarP(&rulesFormat, "format", "f", "table", "output format (table or json)")

	f := rulesSetCmd.Flags()
	f.StringVar(&ruleFlags.ID, "id", "", "rule id")
	f.StringVar(&ruleFlags.Name, "name", "", "rule name")
	f.BoolVar(&ruleFlags.Enabled, "enabled", true, "whether the rule is active")
	f.StringVar(&ruleFlags.RoutePattern, "pattern", "", "case-insensitive route pattern, e.g. paris")
	f.Float64Var(&ruleFlags.Threshold, "threshold", 0, "recipient occupancy ratio that triggers the rule")
	f.BoolVar(&ruleFlags.AutoApply, "auto-apply", false, "mark matching suggestions for automatic application")
	f.Float64Var(&ruleFlags.MinRestHours, "min-rest-hours", 0, "minimum driver rest hours")
	f.StringVar(&ruleFlags.ServiceWindow, "service-window", "", "service window, e.g. 06:00-10:00")
	f.StringToStringVar(&ruleFlags.Metadata, "meta", nil, "metadata key=value pairs")
	_ = rulesSetCmd.MarkFlagRequired("id")

	rulesCmd.AddCommand(rulesLsCmd, rulesSetCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesLs(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(cmd, st)

	rules, err := st.Rules(cmd.Context())
	if err != nil {
		return err
	}
	if rulesFormat == export.FormatJSON {
		if rules == nil {
			rules = []model.OptimizationRule{}
		}
		return export.WriteJSON(cmd.OutOrStdout(), rules)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tENABLED\tPATTERN\tTHRESHOLD\tAUTO-APPLY")
	for _, r := range rules {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%.2f\t%t\n", r.ID, r.Name, r.Enabled, r.RoutePattern, r.EffectiveThreshold(), r.AutoApply)
	}
	return tw.Flush()
}

func runRulesSet(cmd *cobra.Command, args []string) error {
	if ruleFlags.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative")
	}
	rule := ruleFlags
	if rule.Name == "" {
		rule.Name = rule.ID
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(cmd, st)

	if err := st.UpsertRule(cmd.Context(), rule); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rule %s saved\n", rule.ID)
	return nil
}
