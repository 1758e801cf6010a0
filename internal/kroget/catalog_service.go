package kroget

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/validate"
	"github.com/hay-kot/kroget/internal/kroger"
	"github.com/hay-kot/kroget/internal/kroger/auth"
)

// CatalogService serves product, location, and profile lookups.
type CatalogService struct {
	client   *kroger.Client
	tokens   Tokens
	settings SettingsStore
	config   *config.Config
	log      zerolog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(client *kroger.Client, tokens Tokens, settings SettingsStore, cfg *config.Config, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		client:   client,
		tokens:   tokens,
		settings: settings,
		config:   cfg,
		log:      logger,
	}
}

func (s *CatalogService) appToken(ctx context.Context) (string, error) {
	if err := s.config.RequireCredentials(); err != nil {
		return "", err
	}
	return s.tokens.ClientCredentialsToken(ctx, auth.ClientScopes)
}

// Location returns the store location to use for explicit, falling back to
// the saved default and then the config file.
func (s *CatalogService) Location(ctx context.Context, explicit string) (string, error) {
	return locationFor(ctx, explicit, s.settings, s.config)
}

// SearchProducts searches the catalog at a location.
func (s *CatalogService) SearchProducts(ctx context.Context, term, locationID string, limit int) ([]kroger.Product, error) {
	token, err := s.appToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.SearchProducts(ctx, token, term, locationID, limit)
}

// GetProduct returns the raw product detail payload.
func (s *CatalogService) GetProduct(ctx context.Context, productID, locationID string) (json.RawMessage, error) {
	token, err := s.appToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetProduct(ctx, token, productID, locationID)
}

// Resolve runs the catalog resolver for a single term.
func (s *CatalogService) Resolve(ctx context.Context, term, locationID string) (Resolution, error) {
	token, err := s.appToken(ctx)
	if err != nil {
		return Resolution{}, err
	}
	return NewResolver(s.client.WithToken(token), s.log).Resolve(ctx, term, locationID)
}

// SearchLocations finds stores.
func (s *CatalogService) SearchLocations(ctx context.Context, q kroger.LocationQuery) ([]kroger.Location, error) {
	token, err := s.appToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.SearchLocations(ctx, token, q)
}

// GetLocation returns one store.
func (s *CatalogService) GetLocation(ctx context.Context, locationID string) (kroger.Location, error) {
	token, err := s.appToken(ctx)
	if err != nil {
		return kroger.Location{}, err
	}
	return s.client.GetLocation(ctx, token, locationID)
}

// SetDefaultLocation saves locationID as the default store.
func (s *CatalogService) SetDefaultLocation(ctx context.Context, locationID string) error {
	if err := validate.RequiredField("location_id", locationID); err != nil {
		return err
	}
	return s.settings.SetDefaultLocation(ctx, locationID)
}

// Profile returns the logged-in user's profile.
func (s *CatalogService) Profile(ctx context.Context) (kroger.Profile, error) {
	if err := s.config.RequireCredentials(); err != nil {
		return kroger.Profile{}, err
	}
	token, err := s.tokens.UserToken(ctx)
	if err != nil {
		return kroger.Profile{}, err
	}
	return s.client.Profile(ctx, token)
}
