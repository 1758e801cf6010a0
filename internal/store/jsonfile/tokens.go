package jsonfile

import (
	"context"
	"sync"

	"github.com/hay-kot/kroget/internal/kroger/auth"
)

// TokenStore implements auth.TokenStore using a JSON file.
type TokenStore struct {
	path string
	mu   sync.Mutex
}

// NewTokenStore creates a token store at path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the saved token or auth.ErrNoToken.
func (s *TokenStore) Load(ctx context.Context) (auth.StoredToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var token auth.StoredToken
	found, err := readFile(s.path, &token)
	if err != nil {
		return auth.StoredToken{}, err
	}
	if !found || token.AccessToken == "" {
		return auth.StoredToken{}, auth.ErrNoToken
	}
	return token, nil
}

// Save replaces the saved token.
func (s *TokenStore) Save(ctx context.Context, token auth.StoredToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeFile(s.path, token)
}

var _ auth.TokenStore = (*TokenStore)(nil)
