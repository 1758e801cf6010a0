package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned by a TokenStore that has no saved token.
var ErrNoToken = errors.New("no stored token")

// StoredToken is a user token persisted between runs.
type StoredToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	ObtainedAt   time.Time `json:"obtained_at"`
	Scopes       []string  `json:"scopes"`
}

// Expired reports whether the token expires within skew of now.
func (t StoredToken) Expired(now time.Time, skew time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(t.ExpiresAt)
}

// HasScope reports whether the token was granted scope.
func (t StoredToken) HasScope(scope string) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// fromOAuth2 converts a token response. The granted scope is read from the
// response when present, otherwise the requested scopes are kept.
func fromOAuth2(tok *oauth2.Token, requested []string, now time.Time) StoredToken {
	st := StoredToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.Expiry.UTC(),
		ObtainedAt:   now.UTC(),
		Scopes:       requested,
	}
	if granted, ok := tok.Extra("scope").(string); ok && granted != "" {
		st.Scopes = strings.Fields(granted)
	}
	return st
}

// TokenStore persists the user token.
type TokenStore interface {
	// Load returns the saved token or ErrNoToken.
	Load(ctx context.Context) (StoredToken, error)
	Save(ctx context.Context, token StoredToken) error
}
