package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/kroget/internal/kroger/auth"
)

// TokenLoader returns the stored user token.
type TokenLoader func(ctx context.Context) (auth.StoredToken, error)

// TokenCheck reports whether a user token is stored and usable for cart
// operations.
type TokenCheck struct {
	load TokenLoader
	now  func() time.Time
}

// NewTokenCheck creates a new token check.
func NewTokenCheck(load TokenLoader) *TokenCheck {
	return &TokenCheck{load: load, now: time.Now}
}

func (c *TokenCheck) Name() string {
	return "User Token"
}

func (c *TokenCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	tok, err := c.load(ctx)
	switch {
	case errors.Is(err, auth.ErrNoToken):
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusWarn,
			Detail: "not logged in; run 'kroget auth login'",
		})
		return result
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	now := c.now()
	switch {
	case tok.ExpiresAt.IsZero():
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusPass,
			Detail: "no expiry recorded",
		})
	case !tok.Expired(now, 0):
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusPass,
			Detail: fmt.Sprintf("expires %s", tok.ExpiresAt.Local().Format(time.RFC1123)),
		})
	case tok.RefreshToken != "":
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusPass,
			Detail: "expired; will refresh on next use",
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusFail,
			Detail: "expired without a refresh token; run 'kroget auth login'",
		})
	}

	if !tok.HasScope(auth.ScopeCartWrite) {
		result.Items = append(result.Items, CheckItem{
			Label:  auth.ScopeCartWrite,
			Status: StatusWarn,
			Detail: "scope not granted; cart updates will fail",
		})
	}

	return result
}
