package kroget

import (
	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/logging"
	"github.com/hay-kot/kroget/internal/core/sent"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/kroger"
	"github.com/hay-kot/kroget/internal/kroger/auth"
)

// App is the central entry point for all kroget operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Proposals *ProposalService
	Catalog   *CatalogService
	Doctor    *DoctorService

	Staples  staple.Store
	Sent     sent.Store
	Settings SettingsStore
	Auth     *auth.Authenticator
	Client   *kroger.Client
	Config   *config.Config
}

// NewApp constructs an App from explicit dependencies.
func NewApp(
	cfg *config.Config,
	staples staple.Store,
	sentStore sent.Store,
	settings SettingsStore,
	authn *auth.Authenticator,
	client *kroger.Client,
) *App {
	catalog := NewCatalogService(client, authn, settings, cfg, logging.Component("catalog"))

	proposals := NewProposalService(
		staples,
		settings,
		authn,
		func(token string) Catalog { return client.WithToken(token) },
		func(token string) Cart { return client.WithToken(token) },
		NewRecorder(sentStore, cfg.History.MaxSessions, logging.Component("recorder")),
		cfg,
		logging.Component("proposals"),
	)

	return &App{
		Proposals: proposals,
		Catalog:   catalog,
		Doctor:    NewDoctorService(cfg, authn, catalog),
		Staples:   staples,
		Sent:      sentStore,
		Settings:  settings,
		Auth:      authn,
		Client:    client,
		Config:    cfg,
	}
}
