package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/kroget/internal/core/styles"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid. Missing
// credentials are not a validation error; see RequireCredentials.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notEmpty),
		criterio.Run("kroger.base_url", c.Kroger.BaseURL, isHTTPURL),
		c.validateRedirectURI(),
		c.validateModality(),
		c.validateLimits(),
		c.validateTheme(),
	)
}

// ValidateDeep performs Validate plus file-system checks. The configPath
// argument specifies the config file location to validate (empty string
// skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if err := c.RequireCredentials(); err != nil {
		warnings = append(warnings, ValidationWarning{
			Category: "Credentials",
			Message:  err.Error(),
		})
	}

	if c.Kroger.RedirectURI == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Credentials",
			Item:     "redirect_uri",
			Message:  fmt.Sprintf("not set; login will use %s", c.RedirectURI()),
		})
	}

	return warnings
}

func (c *Config) validateRedirectURI() error {
	if c.Kroger.RedirectURI == "" {
		return nil
	}
	return criterio.Run("kroger.redirect_uri", c.Kroger.RedirectURI, isHTTPURL)
}

func (c *Config) validateModality() error {
	if c.Defaults.Modality.IsValid() {
		return nil
	}
	return criterio.NewFieldErrors("defaults.modality", fmt.Errorf("invalid modality %q (use PICKUP or DELIVERY)", c.Defaults.Modality))
}

func (c *Config) validateTheme() error {
	if _, ok := styles.GetPalette(c.TUI.Theme); ok {
		return nil
	}
	return criterio.NewFieldErrors("tui.theme", fmt.Errorf("unknown theme %q (available: %s)", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", ")))
}

func (c *Config) validateLimits() error {
	var errs criterio.FieldErrorsBuilder
	if c.History.MaxSessions < 1 {
		errs = errs.Append("history.max_sessions", fmt.Errorf("must be at least 1"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = errs.Append("http.timeout", fmt.Errorf("must be positive"))
	}
	if c.Auth.CallbackPort < 1 || c.Auth.CallbackPort > 65535 {
		errs = errs.Append("auth.callback_port", fmt.Errorf("must be between 1 and 65535"))
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func isHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https: %q", s)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host: %q", s)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
