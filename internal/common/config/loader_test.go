package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: portal-test\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "portal-test", cfg.App.Name)
	assert.Equal(t, "centrale-casablanca.ma", cfg.App.EmailDomain)
	assert.Equal(t, int64(10<<20), cfg.App.MaxUploadBytes)
	assert.Equal(t, "mockup", cfg.Auth.Strategy)
	assert.Equal(t, "mockup", cfg.Storage.Strategy)
	assert.Equal(t, "mockup", cfg.Database.Strategy)
	assert.Equal(t, "S7- 2A ECC", cfg.Export.Sheet)
	assert.Equal(t, "E", cfg.Export.EmailColumn)
	assert.Equal(t, "K", cfg.Export.Columns.Details1)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, "app:\n  email_domain: example.org\n")
	t.Setenv("MOBILITY_APP_EMAIL_DOMAIN", "school.example")
	t.Setenv("MOBILITY_APP_ADMIN_EMAILS", " Staff@school.example, ops@school.example ,")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "school.example", cfg.App.EmailDomain)
	assert.Equal(t, []string{"staff@school.example", "ops@school.example"}, cfg.App.AdminList())
}

func TestLoadFromFile_StrategyValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "jwt without secret",
			body:    "auth:\n  strategy: jwt\n",
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "postgres without host",
			body:    "database:\n  strategy: postgres\n",
			wantErr: "database.postgres.host",
		},
		{
			name:    "unknown storage",
			body:    "storage:\n  strategy: ftp\n",
			wantErr: "unknown storage.strategy",
		},
		{
			name:    "camunda enabled without broker",
			body:    "camunda:\n  enabled: true\n",
			wantErr: "camunda.broker_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"send-submission-confirmation": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "send-submission-confirmation"))
	assert.True(t, IsWorkerEnabled(cfg, "validate-application-form"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "validate-application-form").MaxJobsActive)
	assert.Equal(t, 2, GetWorkerConfig(cfg, "send-submission-confirmation").MaxJobsActive)
}
