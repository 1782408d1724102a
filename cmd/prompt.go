package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/kpilens/internal/ai"
	"github.com/KaramelBytes/kpilens/internal/utils"
)

var (
	promptDataFile string
	promptDataset  string
)

var promptCmd = &cobra.Command{
	Use:   "prompt <question>",
	Short: "Print the request payload without calling the model",
	Example: `  kpilens prompt "今月の売上は？" --data-file snapshot.json
  kpilens prompt "前年差の要因は？" --dataset yearly`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		question := strings.Join(args, " ")
		dataContext, err := loadDataContext(cmd.Context(), c, promptDataFile, promptDataset)
		if err != nil {
			return err
		}
		req := ai.BuildPrompt(question, dataContext)
		b, err := utils.PrettyJSON(req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))

		bd := utils.TokenBreakdown(map[string]string{
			"instructions": ai.Instructions(""),
			"data":         dataContext,
			"question":     question,
		})
		fmt.Fprintf(cmd.ErrOrStderr(), "Tokens: total≈%d (instructions≈%d, data≈%d, question≈%d)\n",
			utils.CountTokens(req.Text()), bd["instructions"], bd["data"], bd["question"])
		fmt.Fprintf(cmd.ErrOrStderr(), "Model: %s (not called)\n", c.LLMModel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVar(&promptDataFile, "data-file", "", "read the data context from a file (used verbatim)")
	promptCmd.Flags().StringVar(&promptDataset, "dataset", "consolidated", "dataset to send as data context")
}
