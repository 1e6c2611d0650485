package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "roomreports/internal/errors"
)

var envVars = []string{
	"REPORTS_SERVER_PORT",
	"REPORTS_BACKEND_BASE_URL",
	"REPORTS_BACKEND_TIMEOUT",
	"REPORTS_BACKEND_USE_PRIMARY_CLIENT",
	"REPORTS_EXPORT_OUTPUT_DIR",
	"REPORTS_LOGGING_LEVEL",
	"REPORTS_LOGGING_OUTPUT",
	"REPORTS_SCHEDULE_REFRESH_CRON",
	"REPORTS_CONFIG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		os.Unsetenv(envVar)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(t *testing.T)
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name:     "defaults with no env vars",
			setupEnv: func(t *testing.T) {},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3000, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
				assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
				assert.True(t, cfg.Backend.UsePrimaryClient)
				assert.True(t, cfg.Backend.ForceRefresh)
				assert.Equal(t, "downloads", cfg.Export.OutputDir)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Empty(t, cfg.Schedule.RefreshCron)
			},
		},
		{
			name: "environment overrides",
			setupEnv: func(t *testing.T) {
				t.Setenv("REPORTS_SERVER_PORT", "9091")
				t.Setenv("REPORTS_BACKEND_BASE_URL", "http://reports.campus.local:8080")
				t.Setenv("REPORTS_BACKEND_USE_PRIMARY_CLIENT", "false")
				t.Setenv("REPORTS_SCHEDULE_REFRESH_CRON", "*/5 * * * *")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9091, cfg.Server.Port)
				assert.Equal(t, "http://reports.campus.local:8080", cfg.Backend.BaseURL)
				assert.False(t, cfg.Backend.UsePrimaryClient)
				assert.Equal(t, "*/5 * * * *", cfg.Schedule.RefreshCron)
			},
		},
		{
			name: "invalid backend url",
			setupEnv: func(t *testing.T) {
				t.Setenv("REPORTS_BACKEND_BASE_URL", "not a url")
			},
			wantErr: true,
		},
		{
			name: "invalid log output",
			setupEnv: func(t *testing.T) {
				t.Setenv("REPORTS_LOGGING_OUTPUT", "syslog")
			},
			wantErr: true,
		},
		{
			name: "yaml file fills values left at defaults",
			setupEnv: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "reports.yaml")
				content := "backend:\n  base_url: http://file-backend:8080\n  timeout: 5s\nexport:\n  output_dir: /tmp/reports-out\n"
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				t.Setenv("REPORTS_CONFIG_FILE", path)
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://file-backend:8080", cfg.Backend.BaseURL)
				assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
				assert.Equal(t, "/tmp/reports-out", cfg.Export.OutputDir)
			},
		},
		{
			name: "environment beats yaml file",
			setupEnv: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "reports.yaml")
				content := "backend:\n  base_url: http://file-backend:8080\n"
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				t.Setenv("REPORTS_CONFIG_FILE", path)
				t.Setenv("REPORTS_BACKEND_BASE_URL", "http://env-backend:8080")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://env-backend:8080", cfg.Backend.BaseURL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			tt.setupEnv(t)

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"empty base url", func(c *Config) { c.Backend.BaseURL = "" }},
		{"zero backend timeout", func(c *Config) { c.Backend.Timeout = 0 }},
		{"no export dir", func(c *Config) { c.Export.OutputDir = "" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExportDir(t *testing.T) {
	cfg := Default()
	cfg.Export.OutputDir = "/srv/exports"
	dir, err := cfg.ExportDir()
	require.NoError(t, err)
	assert.Equal(t, "/srv/exports", dir)

	cfg.Export.OutputDir = "exports"
	dir, err = cfg.ExportDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "exports", filepath.Base(dir))

	file := filepath.Join(t.TempDir(), "exports")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	cfg.Export.OutputDir = file
	_, err = cfg.ExportDir()
	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
	assert.Contains(t, appErr.Message, "is not a directory")
}
