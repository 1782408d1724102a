package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/kpilens/internal/dataset"
	"github.com/KaramelBytes/kpilens/internal/utils"
)

var (
	fetchAll    bool
	fetchOutput string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [consolidated|yearly]",
	Short: "Print a dataset as JSON records",
	Example: `  kpilens fetch consolidated
  kpilens fetch yearly --output yearly.json
  kpilens fetch --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchAll == (len(args) == 1) {
			return fmt.Errorf("name one dataset or pass --all")
		}
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		acc := newAccessor(c)

		var out any
		if fetchAll {
			all, err := acc.FetchAll(cmd.Context(), dataset.Names...)
			if err != nil {
				return err
			}
			out = all
		} else {
			name, err := dataset.ParseName(args[0])
			if err != nil {
				return err
			}
			ds, err := acc.Fetch(cmd.Context(), name)
			if err != nil {
				return err
			}
			out = ds
		}

		b, err := utils.PrettyJSON(out)
		if err != nil {
			return err
		}
		if fetchOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		if err := utils.SafeWriteFile(fetchOutput, append(b, '\n')); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "💾 Saved dataset to %s\n", fetchOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "fetch both datasets as {consolidated, yearlySummary}")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "write JSON to a file instead of stdout")
}
