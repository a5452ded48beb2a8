// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvFootballDataAPIKey = "FOOTBALL_DATA_API_KEY"
	EnvGeminiAPIKey       = "GEMINI_API_KEY"
	EnvLLMAPIKey          = "LLM_API_KEY"
)

// Load reads .env, configs/config.yaml and config.<APP_ENVIRONMENT>.yaml, then applies
// env overrides and defaults. Missing credentials fail here, not at the first remote call.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("football_data.unfold_goals", true)
	v.SetDefault("pipeline.catalog_fallback", true)
	v.SetDefault("pipeline.plan_fallback", true)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			// godotenv.Load never overrides variables already set in the process.
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials from their well-known env names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.FootballData.APIKey == "" {
		cfg.FootballData.APIKey = os.Getenv(EnvFootballDataAPIKey)
	}

	if cfg.LLM.APIKey == "" {
		if val := os.Getenv(EnvGeminiAPIKey); val != "" {
			cfg.LLM.APIKey = val
		} else {
			cfg.LLM.APIKey = os.Getenv(EnvLLMAPIKey)
		}
	}

	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "football-buddy"
	}

	if cfg.FootballData.BaseURL == "" {
		cfg.FootballData.BaseURL = "https://api.football-data.org/v4"
	}
	if cfg.FootballData.Timeout == 0 {
		cfg.FootballData.Timeout = 15000
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.0-flash"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}

	if cfg.Pipeline.MaxToolCalls == 0 {
		cfg.Pipeline.MaxToolCalls = 3
	}
	if cfg.Pipeline.MaxContextBytes == 0 {
		cfg.Pipeline.MaxContextBytes = 60000
	}
	if cfg.Pipeline.HeadToHeadLimit == 0 {
		cfg.Pipeline.HeadToHeadLimit = 10
	}
	if cfg.Pipeline.Planner == "" {
		cfg.Pipeline.Planner = "rules"
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 5
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.FootballData.APIKey) == "" {
		return fmt.Errorf("football_data.api_key is required (set %s)", EnvFootballDataAPIKey)
	}
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required (set %s)", EnvGeminiAPIKey)
	}

	if cfg.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}
	if cfg.Pipeline.MaxToolCalls < 0 {
		return fmt.Errorf("pipeline.max_tool_calls must not be negative")
	}
	if cfg.Pipeline.HeadToHeadLimit < 0 {
		return fmt.Errorf("pipeline.head_to_head_limit must not be negative")
	}
	if cfg.Pipeline.MaxContextBytes < 0 {
		return fmt.Errorf("pipeline.max_context_bytes must not be negative")
	}
	if cfg.Pipeline.Planner != "rules" && cfg.Pipeline.Planner != "model" {
		return fmt.Errorf("pipeline.planner must be \"rules\" or \"model\", got %q", cfg.Pipeline.Planner)
	}

	if cfg.Database.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when the catalog database is enabled")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when the catalog database is enabled")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
