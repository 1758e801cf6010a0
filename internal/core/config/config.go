// Package config handles configuration loading and validation for kroget.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/core/styles"
)

// ErrConfiguration is returned when required settings such as API
// credentials are missing. It is fatal and raised before any network call.
var ErrConfiguration = errors.New("configuration error")

// Environment variables that override the config file.
const (
	EnvClientID     = "KROGER_CLIENT_ID"
	EnvClientSecret = "KROGER_CLIENT_SECRET"
	EnvRedirectURI  = "KROGER_REDIRECT_URI"
	EnvBaseURL      = "KROGER_BASE_URL"
)

// DefaultBaseURL is the production Kroger API.
const DefaultBaseURL = "https://api.kroger.com"

// Config holds the application configuration.
type Config struct {
	Kroger   KrogerConfig  `yaml:"kroger"`
	Defaults Defaults      `yaml:"defaults"`
	History  HistoryConfig `yaml:"history"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	TUI      TUIConfig     `yaml:"tui"`
	DataDir  string        `yaml:"-"` // set by caller, not from config file
}

// KrogerConfig holds API credentials and endpoints.
type KrogerConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
}

// Defaults holds values used when a command does not specify them.
type Defaults struct {
	// LocationID is used when neither a flag nor the saved default location
	// is set.
	LocationID string          `yaml:"location_id,omitempty"`
	Modality   staple.Modality `yaml:"modality,omitempty"`
}

// HistoryConfig bounds the sent-session history.
type HistoryConfig struct {
	MaxSessions int `yaml:"max_sessions"`
}

// HTTPConfig configures the API client.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig configures the browser login flow.
type AuthConfig struct {
	CallbackPort int    `yaml:"callback_port"`
	CallbackPath string `yaml:"callback_path"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `yaml:"theme"` // built-in theme name
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Kroger: KrogerConfig{
			BaseURL: DefaultBaseURL,
		},
		Defaults: Defaults{
			Modality: staple.ModalityPickup,
		},
		History: HistoryConfig{
			MaxSessions: 20,
		},
		HTTP: HTTPConfig{
			Timeout: 20 * time.Second,
		},
		Auth: AuthConfig{
			CallbackPort: 8400,
			CallbackPath: "/callback",
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided
// dataDir. Environment variables override file values.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Parse(configPath, dataDir)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Parse is Load without validation. Commands that report or repair an
// invalid config start from it.
func Parse(configPath, dataDir string) (*Config, error) {
	cfg, err := ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()

	return &cfg, nil
}

// ReadFile returns DefaultConfig overlaid with the file at path. Environment
// overrides are not applied. A missing file yields the defaults.
func ReadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// UpdateFile rewrites the kroger and defaults sections of the config file at
// path and keeps any other sections. The file is created with mode 0600.
func UpdateFile(path string, kroger KrogerConfig, defaults Defaults) error {
	doc := map[string]any{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("read config file: %w", err)
	}

	doc["kroger"] = kroger
	doc["defaults"] = defaults

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// applyEnv overrides Kroger settings from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&c.Kroger.ClientID, EnvClientID)
	set(&c.Kroger.ClientSecret, EnvClientSecret)
	set(&c.Kroger.RedirectURI, EnvRedirectURI)
	set(&c.Kroger.BaseURL, EnvBaseURL)
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Kroger.BaseURL == "" {
		c.Kroger.BaseURL = defaults.Kroger.BaseURL
	}
	c.Kroger.BaseURL = strings.TrimRight(c.Kroger.BaseURL, "/")

	if c.Defaults.Modality == "" {
		c.Defaults.Modality = defaults.Defaults.Modality
	} else {
		c.Defaults.Modality = staple.Modality(strings.ToUpper(string(c.Defaults.Modality)))
	}
	if c.History.MaxSessions == 0 {
		c.History.MaxSessions = defaults.History.MaxSessions
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = defaults.HTTP.Timeout
	}
	if c.Auth.CallbackPort == 0 {
		c.Auth.CallbackPort = defaults.Auth.CallbackPort
	}
	if c.Auth.CallbackPath == "" {
		c.Auth.CallbackPath = defaults.Auth.CallbackPath
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// RequireCredentials reports missing API credentials as ErrConfiguration.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.Kroger.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if c.Kroger.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required settings: %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// RedirectURI returns the configured OAuth redirect URI, falling back to the
// local callback server address.
func (c *Config) RedirectURI() string {
	if c.Kroger.RedirectURI != "" {
		return c.Kroger.RedirectURI
	}
	return fmt.Sprintf("http://localhost:%d%s", c.Auth.CallbackPort, c.Auth.CallbackPath)
}

// ListsFile returns the path to the staple lists file.
func (c *Config) ListsFile() string {
	return filepath.Join(c.DataDir, "lists.json")
}

// LegacyStaplesFile returns the path to the single-list staples file that
// is migrated into ListsFile on first use.
func (c *Config) LegacyStaplesFile() string {
	return filepath.Join(c.DataDir, "staples.json")
}

// SentFile returns the path to the sent-session history.
func (c *Config) SentFile() string {
	return filepath.Join(c.DataDir, "sent_items.json")
}

// TokensFile returns the path to the stored user token.
func (c *Config) TokensFile() string {
	return filepath.Join(c.DataDir, "tokens.json")
}

// SettingsFile returns the path to settings written by commands, such as the
// default location.
func (c *Config) SettingsFile() string {
	return filepath.Join(c.DataDir, "settings.json")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "kroget.log")
}
