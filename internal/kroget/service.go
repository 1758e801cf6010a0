package kroget

import (
	"context"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/store/jsonfile"
)

// Tokens acquires access tokens. *auth.Authenticator satisfies it.
type Tokens interface {
	ClientCredentialsToken(ctx context.Context, scopes []string) (string, error)
	UserToken(ctx context.Context) (string, error)
}

// SettingsStore persists user choices made through commands.
// *jsonfile.SettingsStore satisfies it.
type SettingsStore interface {
	Load(ctx context.Context) (jsonfile.Settings, error)
	SetDefaultLocation(ctx context.Context, locationID string) error
}

// locationFor picks the store location: an explicit value, then the saved
// default, then the config file default. An empty result is allowed.
func locationFor(ctx context.Context, explicit string, settings SettingsStore, cfg *config.Config) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if settings != nil {
		s, err := settings.Load(ctx)
		if err != nil {
			return "", err
		}
		if s.DefaultLocationID != "" {
			return s.DefaultLocationID, nil
		}
	}

	return cfg.Defaults.LocationID, nil
}
