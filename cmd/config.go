package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/kpilens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set kpilens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "store_id: %s\n", mask(c.StoreID))
		fmt.Fprintf(w, "llm_api_key: %s\n", mask(c.LLMAPIKey))
		fmt.Fprintf(w, "llm_base_url: %s\n", c.LLMBaseURL)
		fmt.Fprintf(w, "llm_model: %s\n", c.LLMModel)
		fmt.Fprintf(w, "consolidated_sheet: %s\n", c.ConsolidatedSheet)
		fmt.Fprintf(w, "yearly_sheet: %s\n", c.YearlySheet)
		fmt.Fprintf(w, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(w, "page_title: %s\n", c.PageTitle)
		fmt.Fprintf(w, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Fprintf(w, "scan_item_column: %s\n", c.ScanItemColumn)
		fmt.Fprintf(w, "scan_actual_column: %s\n", c.ScanActualColumn)
		fmt.Fprintf(w, "scan_plan_column: %s\n", c.ScanPlanColumn)
		fmt.Fprintf(w, "scan_prior_month_column: %s\n", c.ScanPriorMonthColumn)
		fmt.Fprintf(w, "scan_prior_year_column: %s\n", c.ScanPriorYearColumn)
		if c.ScanImpactFloor > 0 {
			fmt.Fprintf(w, "scan_impact_floor: %g\n", c.ScanImpactFloor)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		switch key {
		case "store_id":
			c.StoreID = val
		case "llm_api_key":
			c.LLMAPIKey = val
		case "llm_base_url":
			c.LLMBaseURL = val
		case "llm_model":
			c.LLMModel = val
		case "consolidated_sheet":
			c.ConsolidatedSheet = val
		case "yearly_sheet":
			c.YearlySheet = val
		case "listen_addr":
			c.ListenAddr = val
		case "page_title":
			c.PageTitle = val
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			c.HTTPTimeoutSec = i
		case "scan_item_column":
			c.ScanItemColumn = val
		case "scan_actual_column":
			c.ScanActualColumn = val
		case "scan_plan_column":
			c.ScanPlanColumn = val
		case "scan_prior_month_column":
			c.ScanPriorMonthColumn = val
		case "scan_prior_year_column":
			c.ScanPriorYearColumn = val
		case "scan_impact_floor":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for scan_impact_floor: %v", val)
			}
			c.ScanImpactFloor = f
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
