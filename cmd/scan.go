package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/kpilens/internal/analysis"
	"github.com/KaramelBytes/kpilens/internal/dataset"
	"github.com/KaramelBytes/kpilens/internal/utils"
)

var (
	scanJSON        bool
	scanImpactFloor float64
	scanTopN        int
)

var scanCmd = &cobra.Command{
	Use:   "scan <consolidated|yearly>",
	Short: "Flag items that cross the variance thresholds",
	Long: `scan evaluates each row of a dataset against the anomaly rule: plan variance
of 5% or more, month-over-month or year-over-year change of 10% or more, or a
top-3 variance amount. Column names come from the scan_*_column settings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		name, err := dataset.ParseName(args[0])
		if err != nil {
			return err
		}
		ds, err := newAccessor(c).Fetch(cmd.Context(), name)
		if err != nil {
			return err
		}

		policy := scanPolicy(c)
		if cmd.Flags().Changed("impact-floor") {
			policy.ImpactFloor = scanImpactFloor
		}
		if cmd.Flags().Changed("top") {
			policy.TopN = scanTopN
		}
		s := analysis.Run(string(name), ds, scanColumns(c), policy)

		if scanJSON {
			b, err := utils.PrettyJSON(s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), s.Markdown())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the scan as JSON")
	scanCmd.Flags().Float64Var(&scanImpactFloor, "impact-floor", 0, "also flag items whose variance amount reaches this value (overrides config)")
	scanCmd.Flags().IntVar(&scanTopN, "top", 3, "number of largest variance amounts to flag (0 disables)")
}
