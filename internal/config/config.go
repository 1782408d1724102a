package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	StoreID    string `mapstructure:"store_id" yaml:"store_id"`
	LLMAPIKey  string `mapstructure:"llm_api_key" yaml:"llm_api_key"`
	LLMBaseURL string `mapstructure:"llm_base_url" yaml:"llm_base_url"`
	LLMModel   string `mapstructure:"llm_model" yaml:"llm_model"`

	// Sheet names backing the two logical datasets
	ConsolidatedSheet string `mapstructure:"consolidated_sheet" yaml:"consolidated_sheet"`
	YearlySheet       string `mapstructure:"yearly_sheet" yaml:"yearly_sheet"`

	// Web front controller
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	PageTitle  string `mapstructure:"page_title" yaml:"page_title"`

	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Anomaly scan column mapping
	ScanItemColumn       string  `mapstructure:"scan_item_column" yaml:"scan_item_column"`
	ScanActualColumn     string  `mapstructure:"scan_actual_column" yaml:"scan_actual_column"`
	ScanPlanColumn       string  `mapstructure:"scan_plan_column" yaml:"scan_plan_column"`
	ScanPriorMonthColumn string  `mapstructure:"scan_prior_month_column" yaml:"scan_prior_month_column"`
	ScanPriorYearColumn  string  `mapstructure:"scan_prior_year_column" yaml:"scan_prior_year_column"`
	ScanImpactFloor      float64 `mapstructure:"scan_impact_floor" yaml:"scan_impact_floor"`
}

// Secret implements Secrets over the loaded configuration.
func (c *Global) Secret(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	var v string
	switch key {
	case KeyStoreID:
		v = c.StoreID
	case KeyLLMAPIKey:
		v = c.LLMAPIKey
	}
	return v, v != ""
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.kpilens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from .env, file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is applied to the process environment first.
func Load(cfgFile string) (*Global, error) {
	// optional; an absent .env is the normal case in production
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KPILENS")
	v.AutomaticEnv()
	// The bare names are what deployments historically set.
	_ = v.BindEnv("store_id", "KPILENS_STORE_ID", KeyStoreID, "SPREADSHEET_ID")
	_ = v.BindEnv("llm_api_key", "KPILENS_LLM_API_KEY", KeyLLMAPIKey, "GEMINI_API_KEY")

	v.SetDefault("store_id", "")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm_model", "gemini-3-flash-preview")
	v.SetDefault("consolidated_sheet", "統合データ")
	v.SetDefault("yearly_sheet", "年度集計")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("page_title", "経営実績レポート")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("scan_item_column", "項目")
	v.SetDefault("scan_actual_column", "実績")
	v.SetDefault("scan_plan_column", "計画")
	v.SetDefault("scan_prior_month_column", "前月")
	v.SetDefault("scan_prior_year_column", "前年")
	v.SetDefault("scan_impact_floor", 0.0)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// A missing file is fine (config set creates it); a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".kpilens"), nil
}
