// Package auth acquires Kroger API tokens: client credentials for catalog
// access and the authorization-code flow, with refresh, for cart access.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrAuthentication marks token acquisition, refresh, or exchange failures.
// These errors are never retried.
var ErrAuthentication = errors.New("authentication error")

// OAuth scopes used by kroget.
const (
	ScopeProductCompact = "product.compact"
	ScopeProfileCompact = "profile.compact"
	ScopeCartWrite      = "cart.basic:write"
)

var (
	// ClientScopes are requested for catalog access.
	ClientScopes = []string{ScopeProductCompact}

	// LoginScopes are requested by the browser login.
	LoginScopes = []string{ScopeProfileCompact, ScopeCartWrite, ScopeProductCompact}
)

const (
	authorizePath = "/v1/connect/oauth2/authorize"
	tokenPath     = "/v1/connect/oauth2/token"

	// refreshSkew refreshes tokens slightly before they expire.
	refreshSkew = 30 * time.Second
)

// Config holds the OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	RedirectURI  string

	// HTTPClient is used for token requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Authenticator acquires and refreshes tokens.
type Authenticator struct {
	cfg   Config
	store TokenStore
	log   zerolog.Logger
	now   func() time.Time
}

// New creates an Authenticator. store may be nil when only client
// credentials are needed.
func New(cfg Config, store TokenStore, logger zerolog.Logger) *Authenticator {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Authenticator{
		cfg:   cfg,
		store: store,
		log:   logger,
		now:   time.Now,
	}
}

func (a *Authenticator) endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   a.cfg.BaseURL + authorizePath,
		TokenURL:  a.cfg.BaseURL + tokenPath,
		AuthStyle: oauth2.AuthStyleInHeader,
	}
}

func (a *Authenticator) oauthConfig(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		Endpoint:     a.endpoint(),
		RedirectURL:  a.cfg.RedirectURI,
		Scopes:       scopes,
	}
}

// withClient attaches the configured HTTP client for the oauth2 package.
func (a *Authenticator) withClient(ctx context.Context) context.Context {
	if a.cfg.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.cfg.HTTPClient)
}

// ClientCredentialsToken returns an application access token for scopes.
func (a *Authenticator) ClientCredentialsToken(ctx context.Context, scopes []string) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		TokenURL:     a.endpoint().TokenURL,
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tok, err := cc.Token(a.withClient(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: client credentials: %w", ErrAuthentication, err)
	}

	a.log.Debug().Strs("scopes", scopes).Time("expiry", tok.Expiry).Msg("acquired client token")
	return tok.AccessToken, nil
}

// WithRedirectURI returns a copy of the Authenticator that uses uri for the
// login redirect.
func (a *Authenticator) WithRedirectURI(uri string) *Authenticator {
	c := *a
	c.cfg.RedirectURI = uri
	return &c
}

// RedirectURI returns the login redirect URI.
func (a *Authenticator) RedirectURI() string {
	return a.cfg.RedirectURI
}

// AuthCodeURL returns the browser URL that starts the login flow.
func (a *Authenticator) AuthCodeURL(state string, scopes []string) string {
	return a.oauthConfig(scopes).AuthCodeURL(state)
}

// Exchange trades an authorization code for a user token and saves it.
func (a *Authenticator) Exchange(ctx context.Context, code string, scopes []string) (StoredToken, error) {
	tok, err := a.oauthConfig(scopes).Exchange(a.withClient(ctx), code)
	if err != nil {
		return StoredToken{}, fmt.Errorf("%w: exchange code: %w", ErrAuthentication, err)
	}

	st := fromOAuth2(tok, scopes, a.now())
	if err := a.save(ctx, st); err != nil {
		return StoredToken{}, err
	}

	a.log.Info().Strs("scopes", st.Scopes).Msg("user token saved")
	return st, nil
}

// Saved returns the saved user token without refreshing it.
func (a *Authenticator) Saved(ctx context.Context) (StoredToken, error) {
	if a.store == nil {
		return StoredToken{}, fmt.Errorf("%w: %w", ErrAuthentication, ErrNoToken)
	}

	st, err := a.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return StoredToken{}, fmt.Errorf("%w: %w; run 'kroget auth login'", ErrAuthentication, err)
		}
		return StoredToken{}, fmt.Errorf("%w: load token: %w", ErrAuthentication, err)
	}
	return st, nil
}

// UserToken returns a valid user access token, refreshing and saving the
// stored token when it has expired.
func (a *Authenticator) UserToken(ctx context.Context) (string, error) {
	st, err := a.Saved(ctx)
	if err != nil {
		return "", err
	}

	if !st.Expired(a.now(), refreshSkew) {
		return st.AccessToken, nil
	}

	if st.RefreshToken == "" {
		return "", fmt.Errorf("%w: token expired and has no refresh token; run 'kroget auth login'", ErrAuthentication)
	}

	refreshed, err := a.Refresh(ctx, st)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh exchanges st's refresh token for a new token and saves it.
func (a *Authenticator) Refresh(ctx context.Context, st StoredToken) (StoredToken, error) {
	// A token with no access token is always refreshed by the token source.
	src := a.oauthConfig(st.Scopes).TokenSource(a.withClient(ctx), &oauth2.Token{RefreshToken: st.RefreshToken})

	tok, err := src.Token()
	if err != nil {
		return StoredToken{}, fmt.Errorf("%w: refresh token: %w", ErrAuthentication, err)
	}

	next := fromOAuth2(tok, st.Scopes, a.now())
	if err := a.save(ctx, next); err != nil {
		return StoredToken{}, err
	}

	a.log.Debug().Time("expiry", next.ExpiresAt).Msg("refreshed user token")
	return next, nil
}

func (a *Authenticator) save(ctx context.Context, st StoredToken) error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Save(ctx, st); err != nil {
		return fmt.Errorf("%w: save token: %w", ErrAuthentication, err)
	}
	return nil
}
