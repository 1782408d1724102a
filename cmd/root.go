package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/kpilens/internal/ai"
	"github.com/KaramelBytes/kpilens/internal/analysis"
	cfgpkg "github.com/KaramelBytes/kpilens/internal/config"
	"github.com/KaramelBytes/kpilens/internal/dataset"
	"github.com/KaramelBytes/kpilens/internal/logging"
)

var (
	// Global flags
	cfgFile            string
	debug              bool
	flagHTTPTimeoutSec int
	flagStoreID        string

	// Loaded configuration and logger
	cfg    *cfgpkg.Global
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kpilens",
	Short: "kpilens: business KPI datasets with an AI analyst on top",
	Long: `kpilens reads the consolidated and yearly KPI sheets from a workbook store,
serves them to a single-page report, and forwards questions about the figures
to a Gemini model under a fixed analysis contract.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.kpilens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStoreID, "store", "", "workbook store identifier (overrides STORE_ID)")
}

func loadConfig() {
	if _, err := ensureConfig(); err != nil {
		// Non-fatal: config show/set still work on a broken file
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	}
}

// ensureConfig loads the configuration once and applies CLI overrides.
func ensureConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		c.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("store") && flagStoreID != "" {
		c.StoreID = flagStoreID
	}
	cfg = c
	return cfg, nil
}

func appLogger() *zap.Logger {
	if logger != nil {
		return logger
	}
	l, err := logging.New(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		l = zap.NewNop()
	}
	logger = l
	return logger
}

func httpTimeout(c *cfgpkg.Global) time.Duration {
	if c.HTTPTimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func newAccessor(c *cfgpkg.Global) *dataset.Accessor {
	return dataset.NewAccessor(c, nil, dataset.SheetsFromConfig(c), appLogger())
}

func newProxy(c *cfgpkg.Global) *ai.Proxy {
	rc := ai.RuntimeConfig{BaseURL: c.LLMBaseURL, Model: c.LLMModel, HTTPTimeout: httpTimeout(c)}
	return ai.NewProxy(c, rc, nil, appLogger())
}

func scanColumns(c *cfgpkg.Global) analysis.Columns {
	return analysis.Columns{
		Item:       c.ScanItemColumn,
		Actual:     c.ScanActualColumn,
		Plan:       c.ScanPlanColumn,
		PriorMonth: c.ScanPriorMonthColumn,
		PriorYear:  c.ScanPriorYearColumn,
	}
}

func scanPolicy(c *cfgpkg.Global) analysis.Policy {
	p := analysis.DefaultPolicy()
	p.ImpactFloor = c.ScanImpactFloor
	return p
}
