package kroget

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/sent"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/kroger"
	"github.com/hay-kot/kroget/internal/store/jsonfile"
)

type searchCall struct {
	term       string
	locationID string
	limit      int
}

type fakeCatalog struct {
	products  map[string][]kroger.Product
	searchErr map[string]error
	details   map[string]string
	detailErr map[string]error

	searches     []searchCall
	detailCalls  []string
	detailCallMu sync.Mutex
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:  map[string][]kroger.Product{},
		searchErr: map[string]error{},
		details:   map[string]string{},
		detailErr: map[string]error{},
	}
}

func (f *fakeCatalog) SearchProducts(_ context.Context, term, locationID string, limit int) ([]kroger.Product, error) {
	f.searches = append(f.searches, searchCall{term: term, locationID: locationID, limit: limit})
	if err := f.searchErr[term]; err != nil {
		return nil, err
	}
	return f.products[term], nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, productID, _ string) (json.RawMessage, error) {
	f.detailCallMu.Lock()
	f.detailCalls = append(f.detailCalls, productID)
	f.detailCallMu.Unlock()

	if err := f.detailErr[productID]; err != nil {
		return nil, err
	}
	payload, ok := f.details[productID]
	if !ok {
		return nil, errors.New("not found")
	}
	return json.RawMessage(payload), nil
}

var _ Catalog = (*fakeCatalog)(nil)

func product(id, desc string, upcs ...string) kroger.Product {
	p := kroger.Product{ProductID: id, Description: desc}
	for _, u := range upcs {
		p.Items = append(p.Items, map[string]any{"upc": u})
	}
	return p
}

type cartCall struct {
	upc      string
	quantity int
	modality string
}

type fakeCart struct {
	fail  map[string]error
	calls []cartCall
}

func (f *fakeCart) AddToCart(_ context.Context, upc string, quantity int, modality string) error {
	f.calls = append(f.calls, cartCall{upc: upc, quantity: quantity, modality: modality})
	if err := f.fail[upc]; err != nil {
		return err
	}
	return nil
}

var _ Cart = (*fakeCart)(nil)

type fakeTokens struct {
	appErr   error
	userErr  error
	appCalls int
	userCall int
}

func (f *fakeTokens) ClientCredentialsToken(context.Context, []string) (string, error) {
	f.appCalls++
	if f.appErr != nil {
		return "", f.appErr
	}
	return "app-token", nil
}

func (f *fakeTokens) UserToken(context.Context) (string, error) {
	f.userCall++
	if f.userErr != nil {
		return "", f.userErr
	}
	return "user-token", nil
}

var _ Tokens = (*fakeTokens)(nil)

type memorySentStore struct {
	sessions []sent.Session
	err      error
}

func (m *memorySentStore) List(context.Context) ([]sent.Session, error) {
	return m.sessions, nil
}

func (m *memorySentStore) Get(_ context.Context, id string) (sent.Session, error) {
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return sent.Session{}, sent.ErrNotFound
}

func (m *memorySentStore) Record(_ context.Context, s sent.Session, max int) ([]sent.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sessions = append([]sent.Session{s}, m.sessions...)
	if len(m.sessions) > max {
		m.sessions = m.sessions[:max]
	}
	return m.sessions, nil
}

var _ sent.Store = (*memorySentStore)(nil)

func newTestListStore(t *testing.T) *jsonfile.ListStore {
	t.Helper()
	return jsonfile.NewListStore(filepath.Join(t.TempDir(), "lists.json"), "")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Kroger.ClientID = "client"
	cfg.Kroger.ClientSecret = "secret"
	return &cfg
}

func newStaple(name, term string, quantity int) staple.Staple {
	return staple.Staple{Name: name, Term: term, Quantity: quantity, Modality: staple.ModalityPickup}
}

func addStaples(t *testing.T, store staple.Store, list string, staples ...staple.Staple) {
	t.Helper()
	for _, s := range staples {
		require.NoError(t, store.Add(context.Background(), list, s))
	}
}
