package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/kpilens/internal/config"
	"github.com/KaramelBytes/kpilens/internal/dataset"
	"github.com/KaramelBytes/kpilens/internal/web"
)

var (
	askDataFile string
	askDataset  string
	askHTML     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the analyst a question about a dataset",
	Example: `  kpilens ask "今月の売上は？"
  kpilens ask "前年差の要因は？" --dataset yearly
  kpilens ask "計画比で未達の項目は？" --data-file snapshot.json --html`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		question := strings.Join(args, " ")
		dataContext, err := loadDataContext(cmd.Context(), c, askDataFile, askDataset)
		if err != nil {
			return err
		}
		answer, err := newProxy(c).Ask(cmd.Context(), question, dataContext)
		if err != nil {
			return err
		}
		if askHTML {
			fmt.Fprint(cmd.OutOrStdout(), web.RenderMarkdown(answer))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askDataFile, "data-file", "", "read the data context from a file (used verbatim)")
	askCmd.Flags().StringVar(&askDataset, "dataset", "consolidated", "dataset to send as data context")
	askCmd.Flags().BoolVar(&askHTML, "html", false, "render the answer as HTML")
}

// loadDataContext returns the file contents when dataFile is set, otherwise
// the named dataset serialized as JSON.
func loadDataContext(ctx context.Context, c *cfgpkg.Global, dataFile, datasetName string) (string, error) {
	if dataFile != "" {
		b, err := os.ReadFile(dataFile)
		if err != nil {
			return "", fmt.Errorf("read data file: %w", err)
		}
		return string(b), nil
	}
	name, err := dataset.ParseName(datasetName)
	if err != nil {
		return "", err
	}
	ds, err := newAccessor(c).Fetch(ctx, name)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("marshal dataset: %w", err)
	}
	return string(b), nil
}
