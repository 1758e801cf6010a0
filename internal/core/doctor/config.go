package doctor

import (
	"context"

	"github.com/hay-kot/kroget/internal/core/config"
)

// ConfigCheck validates the loaded configuration and reports warnings.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if err := c.cfg.ValidateDeep(c.configPath); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "config",
			Status: StatusFail,
			Detail: err.Error(),
		})
	} else {
		detail := c.configPath
		if detail == "" {
			detail = "defaults"
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "config",
			Status: StatusPass,
			Detail: detail,
		})
	}

	if err := c.cfg.RequireCredentials(); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "credentials",
			Status: StatusFail,
			Detail: err.Error(),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "credentials",
			Status: StatusPass,
		})
	}

	for _, w := range c.cfg.Warnings() {
		if w.Item == "" {
			// credential warnings are already reported above
			continue
		}
		result.Items = append(result.Items, CheckItem{
			Label:  w.Item,
			Status: StatusWarn,
			Detail: w.Message,
		})
	}

	if c.cfg.Defaults.LocationID == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "defaults.location_id",
			Status: StatusWarn,
			Detail: "not set; pass --location-id or run 'kroget locations set-default'",
		})
	}

	return result
}
