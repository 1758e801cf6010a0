package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kroget/internal/kroger/auth"
)

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewTokenStore(path)

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, auth.ErrNoToken)

	want := auth.StoredToken{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		ExpiresAt:    time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC),
		ObtainedAt:   time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC),
		Scopes:       auth.LoginScopes,
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSettingsStore_Reload(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore(filepath.Join(t.TempDir(), "settings.json"))

	settings, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings.DefaultLocationID)

	require.NoError(t, store.SetDefaultLocation(ctx, "01400943"))

	settings, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01400943", settings.DefaultLocationID)
}
