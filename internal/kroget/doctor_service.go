package kroget

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/doctor"
	"github.com/hay-kot/kroget/internal/kroger/auth"
)

// DoctorProbeTerm is the search term used by the live product search probe.
const DoctorProbeTerm = "milk"

// DoctorService runs health checks on the kroget setup.
type DoctorService struct {
	config  *config.Config
	auth    *auth.Authenticator
	catalog *CatalogService
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(cfg *config.Config, authn *auth.Authenticator, catalog *CatalogService) *DoctorService {
	return &DoctorService{
		config:  cfg,
		auth:    authn,
		catalog: catalog,
	}
}

// RunChecks executes all doctor checks and returns results. Live API probes
// run only when online is set and credentials are configured.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, online, autofix bool) []doctor.Result {
	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewDataFilesCheck(d.config.DataDir, []string{
			filepath.Base(d.config.ListsFile()),
			filepath.Base(d.config.SentFile()),
			filepath.Base(d.config.TokensFile()),
			filepath.Base(d.config.SettingsFile()),
		}, autofix),
		doctor.NewTokenCheck(d.auth.Saved),
	}

	if online && d.config.RequireCredentials() == nil {
		checks = append(checks, doctor.NewAPICheck(d.config.HTTP.Timeout, d.probes()...))
	}

	return doctor.RunAll(ctx, checks)
}

func (d *DoctorService) probes() []doctor.Probe {
	return []doctor.Probe{
		{
			Name: "product search",
			Run: func(ctx context.Context) (string, error) {
				loc, err := d.catalog.Location(ctx, "")
				if err != nil {
					return "", err
				}
				products, err := d.catalog.SearchProducts(ctx, DoctorProbeTerm, loc, 1)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%d result(s) for %q", len(products), DoctorProbeTerm), nil
			},
		},
		{
			Name: "user token refresh",
			Run: func(ctx context.Context) (string, error) {
				st, err := d.auth.Saved(ctx)
				if err != nil {
					return "", err
				}
				if !st.Expired(time.Now(), 0) {
					return "not needed", nil
				}
				if _, err := d.auth.UserToken(ctx); err != nil {
					return "", err
				}
				return "refreshed", nil
			},
		},
	}
}
