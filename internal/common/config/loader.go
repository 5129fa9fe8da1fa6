// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "MOBILITY"

// Load reads configs/config.yaml, the environment specific overlay
// (config.<env>.yaml), .env and MOBILITY_* variables, in that order of
// increasing precedence.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := v.GetString("app.environment")
	if env == "" {
		env = "development"
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile reads a single config file; environment variables still apply.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	bindEnv(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every
	// key that may come from the environment alone is registered here.
	for _, key := range []string{
		"app.environment", "app.http_port", "app.email_domain", "app.admin_emails", "app.max_upload_bytes",
		"auth.strategy", "auth.jwt_secret", "auth.session_ttl",
		"auth.keycloak.url", "auth.keycloak.realm", "auth.keycloak.client_id", "auth.keycloak.client_secret",
		"storage.strategy", "storage.b2.account_id", "storage.b2.app_key", "storage.b2.bucket", "storage.b2.prefix",
		"database.strategy",
		"database.postgres.host", "database.postgres.port", "database.postgres.database",
		"database.postgres.user", "database.postgres.password", "database.postgres.sslmode",
		"database.elasticsearch.addresses", "database.elasticsearch.username", "database.elasticsearch.password",
		"database.elasticsearch.index",
		"database.redis.address", "database.redis.password", "database.redis.db", "database.redis.cache_ttl",
		"camunda.enabled", "camunda.broker_address", "camunda.process_id",
		"aws.region", "aws.ses.enabled", "aws.ses.from_email", "aws.sns.enabled", "aws.sns.staff_topic_arn",
		"logging.level", "logging.format",
		"export.workbook_path", "export.sheet", "export.email_column",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// A comma separated env value arrives as a single element.
	if len(cfg.Database.Elasticsearch.Addresses) == 1 && strings.Contains(cfg.Database.Elasticsearch.Addresses[0], ",") {
		cfg.Database.Elasticsearch.Addresses = strings.Split(cfg.Database.Elasticsearch.Addresses[0], ",")
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if godotenv.Load(p) == nil {
				return
			}
		}
	}
}

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
			return ""
		}
		dir = parent
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "mobility-portal"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.App.HTTPPort == 0 {
		cfg.App.HTTPPort = 8080
	}
	if cfg.App.EmailDomain == "" {
		cfg.App.EmailDomain = "centrale-casablanca.ma"
	}
	if cfg.App.MaxUploadBytes == 0 {
		cfg.App.MaxUploadBytes = 10 << 20
	}

	if cfg.Auth.Strategy == "" {
		cfg.Auth.Strategy = "mockup"
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = int((24 * time.Hour).Milliseconds())
	}
	if cfg.Storage.Strategy == "" {
		cfg.Storage.Strategy = "mockup"
	}
	if cfg.Database.Strategy == "" {
		cfg.Database.Strategy = "mockup"
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "mobility-submissions"
	}
	if cfg.Database.Elasticsearch.ListSize == 0 {
		cfg.Database.Elasticsearch.ListSize = 1000
	}

	if cfg.Camunda.ProcessID == "" {
		cfg.Camunda.ProcessID = "mobility-submission"
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Export.WorkbookPath == "" {
		cfg.Export.WorkbookPath = "tools/liste-eleves-S7-2A-25-26-copy.xlsx"
	}
	if cfg.Export.Sheet == "" {
		cfg.Export.Sheet = "S7- 2A ECC"
	}
	if cfg.Export.EmailColumn == "" {
		cfg.Export.EmailColumn = "E"
	}
	if cfg.Export.Columns.School1 == "" {
		cfg.Export.Columns.School1 = "J"
	}
	if cfg.Export.Columns.Details1 == "" {
		cfg.Export.Columns.Details1 = "K"
	}
	if cfg.Export.Columns.School2 == "" {
		cfg.Export.Columns.School2 = "L"
	}
	if cfg.Export.Columns.Details2 == "" {
		cfg.Export.Columns.Details2 = "M"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for name, w := range cfg.Workers {
		if w.MaxJobsActive == 0 {
			w.MaxJobsActive = 5
		}
		if w.Timeout == 0 {
			w.Timeout = 30000
		}
		if w.MaxRetries == 0 {
			w.MaxRetries = 3
		}
		cfg.Workers[name] = w
	}
}

// validateConfig only checks what the selected strategies need.
func validateConfig(cfg *Config) error {
	switch cfg.Auth.Strategy {
	case "jwt":
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required for the jwt strategy")
		}
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the jwt strategy")
		}
	case "mockup":
	default:
		return fmt.Errorf("unknown auth.strategy %q", cfg.Auth.Strategy)
	}

	switch cfg.Storage.Strategy {
	case "b2":
		if cfg.Storage.B2.AccountID == "" || cfg.Storage.B2.AppKey == "" || cfg.Storage.B2.Bucket == "" {
			return fmt.Errorf("storage.b2.account_id, app_key and bucket are required for the b2 strategy")
		}
	case "mockup":
	default:
		return fmt.Errorf("unknown storage.strategy %q", cfg.Storage.Strategy)
	}

	switch cfg.Database.Strategy {
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case "elasticsearch":
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses is required")
		}
	case "mockup":
	default:
		return fmt.Errorf("unknown database.strategy %q", cfg.Database.Strategy)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	if strings.Contains(cfg.App.EmailDomain, "@") {
		return fmt.Errorf("app.email_domain must not contain '@'")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the named worker's settings, or defaults.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if w, ok := cfg.Workers[workerName]; ok {
		return w
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if w, ok := cfg.Workers[workerName]; ok {
		return w.Enabled
	}
	return true
}
