package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kroget/internal/core/staple"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvClientID, EnvClientSecret, EnvRedirectURI, EnvBaseURL} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "missing.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.Kroger.BaseURL)
	assert.Equal(t, staple.ModalityPickup, cfg.Defaults.Modality)
	assert.Equal(t, 20, cfg.History.MaxSessions)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "http://localhost:8400/callback", cfg.RedirectURI())
	assert.Equal(t, filepath.Join(dataDir, "lists.json"), cfg.ListsFile())
	assert.Equal(t, filepath.Join(dataDir, "sent_items.json"), cfg.SentFile())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
kroger:
  client_id: file-id
  client_secret: file-secret
  base_url: https://api-ce.kroger.com/
defaults:
  location_id: "01400943"
  modality: delivery
history:
  max_sessions: 5
http:
  timeout: 3s
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "file-id", cfg.Kroger.ClientID)
	assert.Equal(t, "https://api-ce.kroger.com", cfg.Kroger.BaseURL, "trailing slash trimmed")
	assert.Equal(t, "01400943", cfg.Defaults.LocationID)
	assert.Equal(t, staple.ModalityDelivery, cfg.Defaults.Modality)
	assert.Equal(t, 5, cfg.History.MaxSessions)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.NoError(t, cfg.RequireCredentials())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvClientSecret, "env-secret")
	t.Setenv(EnvRedirectURI, "http://localhost:9000/cb")
	t.Setenv(EnvBaseURL, "https://example.test")

	path := writeConfig(t, "kroger:\n  client_id: file-id\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Kroger.ClientID)
	assert.Equal(t, "env-secret", cfg.Kroger.ClientSecret)
	assert.Equal(t, "http://localhost:9000/cb", cfg.RedirectURI())
	assert.Equal(t, "https://example.test", cfg.Kroger.BaseURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "kroger: [")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "defaults:\n  modality: drone\nhistory:\n  max_sessions: -1\n")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, err.Error(), "defaults.modality")
	assert.Contains(t, err.Error(), "history.max_sessions")
}

func TestParse_SkipsValidation(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "defaults:\n  modality: drone\n")

	cfg, err := Parse(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "drone", string(cfg.Defaults.Modality))
	require.Error(t, cfg.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(EnvClientID))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KROGER_CLIENT_ID=dotenv-id\n"), 0o600))

	require.NoError(t, LoadEnvFile(path))
	t.Cleanup(func() { _ = os.Unsetenv(EnvClientID) })

	assert.Equal(t, "dotenv-id", os.Getenv(EnvClientID))
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestRequireCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kroger.ClientID = "id"

	err := cfg.RequireCredentials()
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), EnvClientSecret)
	assert.NotContains(t, err.Error(), EnvClientID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data_dir"},
		{name: "bad base url", mutate: func(c *Config) { c.Kroger.BaseURL = "ftp://x" }, wantErr: "kroger.base_url"},
		{name: "bad redirect", mutate: func(c *Config) { c.Kroger.RedirectURI = "localhost" }, wantErr: "kroger.redirect_uri"},
		{name: "timeout", mutate: func(c *Config) { c.HTTP.Timeout = -time.Second }, wantErr: "http.timeout"},
		{name: "port", mutate: func(c *Config) { c.Auth.CallbackPort = 70000 }, wantErr: "auth.callback_port"},
		{name: "theme", mutate: func(c *Config) { c.TUI.Theme = "neon" }, wantErr: "tui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	cfg := DefaultConfig()
	cfg.DataDir = file

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Credentials", warnings[0].Category)

	cfg.Kroger.ClientID = "id"
	cfg.Kroger.ClientSecret = "secret"
	cfg.Kroger.RedirectURI = "http://localhost:8400/callback"
	assert.Empty(t, cfg.Warnings())
}

func TestReadFile_IgnoresEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-id")
	path := writeConfig(t, "kroger:\n  client_id: file-id\n")

	cfg, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file-id", cfg.Kroger.ClientID)
	assert.Equal(t, DefaultBaseURL, cfg.Kroger.BaseURL)
}

func TestReadFile_Missing(t *testing.T) {
	cfg, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestUpdateFile_KeepsOtherSections(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "kroger:\n  client_id: old\nhistory:\n  max_sessions: 7\n")

	err := UpdateFile(path,
		KrogerConfig{ClientID: "new-id", ClientSecret: "new-secret", RedirectURI: "http://localhost:9000/cb"},
		Defaults{LocationID: "01400943", Modality: staple.ModalityDelivery},
	)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "new-id", cfg.Kroger.ClientID)
	assert.Equal(t, "new-secret", cfg.Kroger.ClientSecret)
	assert.Equal(t, "http://localhost:9000/cb", cfg.Kroger.RedirectURI)
	assert.Equal(t, DefaultBaseURL, cfg.Kroger.BaseURL)
	assert.Equal(t, "01400943", cfg.Defaults.LocationID)
	assert.Equal(t, staple.ModalityDelivery, cfg.Defaults.Modality)
	assert.Equal(t, 7, cfg.History.MaxSessions)
}

func TestUpdateFile_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, UpdateFile(path, KrogerConfig{ClientID: "id"}, Defaults{}))

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.Kroger.ClientID)
}
