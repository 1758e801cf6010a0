package kroget

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/sent"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/kroger"
	"github.com/hay-kot/kroget/internal/kroger/auth"
	"github.com/hay-kot/kroget/internal/store/jsonfile"
)

type serviceFixture struct {
	svc      *ProposalService
	staples  *jsonfile.ListStore
	settings *jsonfile.SettingsStore
	sent     *memorySentStore
	tokens   *fakeTokens
	catalog  *fakeCatalog
	cart     *fakeCart
	cfg      *config.Config
	tokensIn []string
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	cfg := testConfig(t)
	f := &serviceFixture{
		staples:  jsonfile.NewListStore(cfg.ListsFile(), ""),
		settings: jsonfile.NewSettingsStore(cfg.SettingsFile()),
		sent:     &memorySentStore{},
		tokens:   &fakeTokens{},
		catalog:  newFakeCatalog(),
		cart:     &fakeCart{},
		cfg:      cfg,
	}

	f.svc = NewProposalService(
		f.staples,
		f.settings,
		f.tokens,
		func(token string) Catalog {
			f.tokensIn = append(f.tokensIn, token)
			return f.catalog
		},
		func(token string) Cart {
			f.tokensIn = append(f.tokensIn, token)
			return f.cart
		},
		NewRecorder(f.sent, cfg.History.MaxSessions, zerolog.Nop()),
		cfg,
		zerolog.Nop(),
	)
	f.svc.now = fixedClock

	return f
}

func TestPropose_ActiveList(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	require.NoError(t, f.settings.SetDefaultLocation(ctx, "01400943"))

	addStaples(t, f.staples, "", newStaple("milk", "milk", 2), newStaple("eggs", "eggs", 1))
	f.catalog.products["milk"] = []kroger.Product{product("1", "Milk", "0001")}

	out := filepath.Join(t.TempDir(), "proposal.json")
	res, err := f.svc.Propose(ctx, ProposeOptions{Out: out})
	require.NoError(t, err)

	p := res.Proposal
	assert.Equal(t, "01400943", p.LocationID)
	assert.Equal(t, []string{staple.DefaultListName}, p.Sources)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "0001", p.Items[0].UPC)
	assert.False(t, p.Items[1].Resolved())
	assert.Equal(t, PinStatusAuto, res.Pinned.Status(p.Items[0]))
	assert.Equal(t, []string{"app-token"}, f.tokensIn)
	assert.Equal(t, "01400943", f.catalog.searches[0].locationID)

	loaded, err := proposal.Load(out)
	require.NoError(t, err)
	assert.Equal(t, p.CreatedAt, loaded.CreatedAt)
	assert.Len(t, loaded.Items, 2)

	staples, err := f.staples.Staples(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, staples[0].PreferredUPC, "no pin without a policy")
}

func TestPropose_MultipleListsWithFilterAndAutoPin(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	require.NoError(t, f.staples.Create(ctx, "Party"))
	addStaples(t, f.staples, staple.DefaultListName, newStaple("milk", "milk", 1), newStaple("eggs", "eggs", 1))
	addStaples(t, f.staples, "Party", newStaple("chips", "chips", 3))
	f.catalog.products["milk"] = []kroger.Product{product("1", "Milk", "0001")}
	f.catalog.products["chips"] = []kroger.Product{product("2", "Chips", "0002")}

	res, err := f.svc.Propose(ctx, ProposeOptions{
		Lists:      []string{staple.DefaultListName, "Party"},
		LocationID: "70100023",
		Only:       []string{"milk", "chips"},
		AutoPin:    true,
	})
	require.NoError(t, err)

	p := res.Proposal
	assert.Equal(t, "70100023", p.LocationID)
	assert.Equal(t, []string{staple.DefaultListName, "Party"}, p.Sources)
	require.Len(t, p.Items, 2)
	assert.Equal(t, []string{staple.DefaultListName}, p.Items[0].Sources)
	assert.Equal(t, []string{"Party"}, p.Items[1].Sources)
	assert.True(t, res.Pinned["milk"])
	assert.True(t, res.Pinned["chips"])

	party, err := f.staples.Staples(ctx, "Party")
	require.NoError(t, err)
	assert.Equal(t, "0002", party[0].PreferredUPC)
}

func TestPropose_MissingCredentials(t *testing.T) {
	f := newServiceFixture(t)
	f.cfg.Kroger.ClientSecret = ""

	_, err := f.svc.Propose(context.Background(), ProposeOptions{})
	require.ErrorIs(t, err, config.ErrConfiguration)
	assert.Zero(t, f.tokens.appCalls)
}

func TestPropose_TokenFailure(t *testing.T) {
	f := newServiceFixture(t)
	addStaples(t, f.staples, "", newStaple("milk", "milk", 1))
	f.tokens.appErr = fmt.Errorf("%w: invalid_client", auth.ErrAuthentication)

	_, err := f.svc.Propose(context.Background(), ProposeOptions{})
	require.ErrorIs(t, err, auth.ErrAuthentication)
	assert.Empty(t, f.catalog.searches)
}

func TestApplyAndRecord(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.cart.fail = map[string]error{"0002": errors.New("409")}

	p := proposal.New(fixedNow, "01400943")
	p.Sources = []string{"Staples"}
	p.Items = []proposal.Item{item("milk", "0001"), item("eggs", "0002"), item("saffron", "")}

	res, err := f.svc.ApplyAndRecord(ctx, p, false)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Outcome.Success)
	assert.Equal(t, 2, res.Outcome.Failed)
	assert.Equal(t, []string{"user-token"}, f.tokensIn)

	s := res.Session
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, fixedNow, s.StartedAt)
	assert.Equal(t, fixedNow, s.FinishedAt)
	assert.Equal(t, "01400943", s.LocationID)
	assert.Equal(t, []string{"Staples"}, s.Sources)
	require.Len(t, s.Items, 3)
	assert.Equal(t, proposal.StatusSuccess, s.Items[0].Status)
	assert.Equal(t, "409", s.Items[1].ErrorMessage())
	assert.Equal(t, "missing upc", s.Items[2].ErrorMessage())

	history, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	got, err := f.svc.Session(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = f.svc.Session(ctx, "missing")
	require.ErrorIs(t, err, sent.ErrNotFound)
}

func TestApplyAndRecord_StopOnErrorRecordsAttempted(t *testing.T) {
	f := newServiceFixture(t)

	p := proposal.New(fixedNow, "01400943")
	p.Items = []proposal.Item{item("milk", ""), item("eggs", "0002")}

	res, err := f.svc.ApplyAndRecord(context.Background(), p, true)
	require.NoError(t, err)

	assert.True(t, res.Outcome.Halted)
	assert.Equal(t, 1, res.Outcome.Failed)
	assert.Empty(t, f.cart.calls)

	require.Len(t, res.Session.Items, 1)
	assert.Equal(t, "milk", res.Session.Items[0].Name)
	require.Len(t, f.sent.sessions, 1)
	assert.Len(t, f.sent.sessions[0].Items, 1)
}

func TestApplyAndRecord_UserTokenFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.tokens.userErr = fmt.Errorf("%w: not logged in", auth.ErrAuthentication)

	p := proposal.New(fixedNow, "")
	p.Items = []proposal.Item{item("milk", "0001")}

	_, err := f.svc.ApplyAndRecord(context.Background(), p, false)
	require.ErrorIs(t, err, auth.ErrAuthentication)
	assert.Empty(t, f.cart.calls)
	assert.Empty(t, f.sent.sessions)
}

func TestApplyAndRecord_RecordFailureKeepsOutcome(t *testing.T) {
	f := newServiceFixture(t)
	f.sent.err = errors.New("read-only")

	p := proposal.New(fixedNow, "")
	p.Items = []proposal.Item{item("milk", "0001")}

	res, err := f.svc.ApplyAndRecord(context.Background(), p, false)
	require.Error(t, err)
	assert.Equal(t, 1, res.Outcome.Success)
	assert.Len(t, f.cart.calls, 1)
}

func TestRecorder_Bound(t *testing.T) {
	ctx := context.Background()
	store := &memorySentStore{}
	r := NewRecorder(store, 20, zerolog.Nop())

	for i := range 25 {
		_, err := r.Record(ctx, sent.Session{ID: fmt.Sprintf("s%02d", i), Sources: []string{}})
		require.NoError(t, err)
	}

	history, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, history, 20)
	assert.Equal(t, "s24", history[0].ID)
	assert.Equal(t, "s05", history[19].ID)
}

func TestNewRecorder_DefaultMax(t *testing.T) {
	r := NewRecorder(&memorySentStore{}, 0, zerolog.Nop())
	assert.Equal(t, sent.MaxSessions, r.max)
}
