// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration of the mobility portal.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Auth     AuthConfig              `mapstructure:"auth"`
	Storage  StorageConfig           `mapstructure:"storage"`
	Database DatabaseConfig          `mapstructure:"database"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	AWS      AWSConfig               `mapstructure:"aws"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Export   ExportConfig            `mapstructure:"export"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPPort    int    `mapstructure:"http_port"`
	// EmailDomain is the organizational domain applicant emails must belong to.
	EmailDomain string `mapstructure:"email_domain"`
	// AdminEmails is a comma separated allow-list.
	AdminEmails    string `mapstructure:"admin_emails"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// AdminList splits AdminEmails into lower-cased addresses.
func (a AppConfig) AdminList() []string {
	var out []string
	for _, e := range strings.Split(a.AdminEmails, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

type AuthConfig struct {
	Strategy   string `mapstructure:"strategy"` // jwt | mockup
	JWTSecret  string `mapstructure:"jwt_secret"`
	SessionTTL int    `mapstructure:"session_ttl"` // milliseconds
	Keycloak   struct {
		URL          string `mapstructure:"url"`
		Realm        string `mapstructure:"realm"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"keycloak"`
}

type StorageConfig struct {
	Strategy string `mapstructure:"strategy"` // b2 | mockup
	B2       struct {
		AccountID string `mapstructure:"account_id"`
		AppKey    string `mapstructure:"app_key"`
		Bucket    string `mapstructure:"bucket"`
		Prefix    string `mapstructure:"prefix"`
	} `mapstructure:"b2"`
}

type DatabaseConfig struct {
	Strategy      string              `mapstructure:"strategy"` // postgres | elasticsearch | mockup
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the lib/pq connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	// ListSize is the page size ListAllSubmissions fetches per search.
	ListSize int `mapstructure:"list_size"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds, 0 disables the submission cache
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	ProcessID      string `mapstructure:"process_id"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
	SES    struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
	SNS struct {
		Enabled       bool   `mapstructure:"enabled"`
		StaffTopicARN string `mapstructure:"staff_topic_arn"`
	} `mapstructure:"sns"`
}

// WorkerConfig holds the settings shared by every Camunda worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExportConfig drives the spreadsheet export tool.
type ExportConfig struct {
	WorkbookPath string `mapstructure:"workbook_path"`
	Sheet        string `mapstructure:"sheet"`
	EmailColumn  string `mapstructure:"email_column"`
	Columns      struct {
		School1  string `mapstructure:"school1"`
		Details1 string `mapstructure:"details1"`
		School2  string `mapstructure:"school2"`
		Details2 string `mapstructure:"details2"`
	} `mapstructure:"columns"`
}
