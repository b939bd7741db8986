package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverBigQuery = "bigquery"
)

// Mirror targets.
const (
	MirrorNone   = "none"
	MirrorSheets = "sheets"
	MirrorNotion = "notion"
)

// EnvPrefix prefixes every environment variable the application reads.
const EnvPrefix = "EXPENSE"

// Config holds application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Mirror  MirrorConfig  `mapstructure:"mirror"`
	Sheets  SheetsConfig  `mapstructure:"sheets"`
	Notion  NotionConfig  `mapstructure:"notion"`
	Log     LogConfig     `mapstructure:"log"`
	API     APIConfig     `mapstructure:"api"`
}

// StorageConfig selects and configures the transaction repository.
type StorageConfig struct {
	Driver          string `mapstructure:"driver"` // memory, postgres or bigquery
	DatabaseURL     string `mapstructure:"database_url"`
	BigQueryProject string `mapstructure:"bigquery_project"`
	BigQueryDataset string `mapstructure:"bigquery_dataset"`
}

// GeminiConfig configures the language model. An empty APIKey disables the assistant.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MirrorConfig configures replication of stored transactions.
type MirrorConfig struct {
	Target    string        `mapstructure:"target"` // none, sheets or notion
	Timeout   time.Duration `mapstructure:"timeout"`
	QueueSize int           `mapstructure:"queue_size"`
}

// SheetsConfig identifies the Google Sheets mirror.
type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// NotionConfig identifies the Notion mirror.
type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("storage.database_url", "postgres://localhost:5432/expenses?sslmode=disable")
	v.SetDefault("storage.bigquery_project", "")
	v.SetDefault("storage.bigquery_dataset", "expenses")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", "60s")

	v.SetDefault("mirror.target", MirrorNone)
	v.SetDefault("mirror.timeout", "15s")
	v.SetDefault("mirror.queue_size", 64)

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "credentials.json")

	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database_id", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("api.port", "8080")
	v.SetDefault("api.shutdown_timeout", "10s")
}

// Load reads configuration from an optional file, a .env file if present and
// the environment, in increasing order of precedence. Environment variables
// are named EXPENSE_<SECTION>_<KEY>, e.g. EXPENSE_STORAGE_DRIVER.
func Load(configPath string) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short aliases for the settings most often provided by the environment.
	aliases := map[string][]string{
		"storage.database_url": {"EXPENSE_STORAGE_DATABASE_URL", "EXPENSE_DATABASE_URL", "DATABASE_URL"},
		"gemini.api_key":       {"EXPENSE_GEMINI_API_KEY", "GEMINI_API_KEY"},
	}
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Mirror.Target = strings.ToLower(strings.TrimSpace(cfg.Mirror.Target))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown drivers or targets and missing settings for the
// enabled backends.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("invalid config: storage.database_url is required for the postgres driver")
		}
	case DriverBigQuery:
		if c.Storage.BigQueryProject == "" || c.Storage.BigQueryDataset == "" {
			return fmt.Errorf("invalid config: storage.bigquery_project and storage.bigquery_dataset are required for the bigquery driver")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Mirror.Target {
	case MirrorNone, "":
	case MirrorSheets:
		if c.Sheets.SpreadsheetID == "" || c.Sheets.CredentialsFile == "" {
			return fmt.Errorf("invalid config: sheets.spreadsheet_id and sheets.credentials_file are required for the sheets mirror")
		}
	case MirrorNotion:
		if c.Notion.Token == "" || c.Notion.DatabaseID == "" {
			return fmt.Errorf("invalid config: notion.token and notion.database_id are required for the notion mirror")
		}
	default:
		return fmt.Errorf("invalid config: unknown mirror.target %q", c.Mirror.Target)
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json", "":
	default:
		return fmt.Errorf("invalid config: unknown log.format %q", c.Log.Format)
	}

	return nil
}

// MirrorEnabled reports whether transactions are replicated anywhere.
func (c *Config) MirrorEnabled() bool {
	return c.Mirror.Target != "" && c.Mirror.Target != MirrorNone
}

// AssistantEnabled reports whether a Gemini API key is configured.
func (c *Config) AssistantEnabled() bool {
	return c.Gemini.APIKey != ""
}
