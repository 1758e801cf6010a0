package jsonfile

import (
	"context"
	"sync"
)

// Settings are user choices saved by commands rather than written in the
// config file.
type Settings struct {
	DefaultLocationID string `json:"default_location_id,omitempty"`
}

// SettingsStore persists Settings as a JSON file.
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

// NewSettingsStore creates a settings store at path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load returns the saved settings, or zero settings when none exist.
func (s *SettingsStore) Load(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings Settings
	if _, err := readFile(s.path, &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// SetDefaultLocation saves the default store location.
func (s *SettingsStore) SetDefaultLocation(ctx context.Context, locationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings Settings
	if _, err := readFile(s.path, &settings); err != nil {
		return err
	}
	settings.DefaultLocationID = locationID
	return writeFile(s.path, settings)
}
