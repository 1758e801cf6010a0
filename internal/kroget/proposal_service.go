package kroget

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/logging"
	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/sent"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/kroger/auth"
)

// ProposeOptions controls proposal generation.
type ProposeOptions struct {
	// Lists to draw staples from, in order. Empty uses the active list.
	Lists []string

	// LocationID overrides the saved default store.
	LocationID string

	// Only keeps staples whose names match one of these globs.
	Only []string

	// AutoPin pins every resolved UPC without asking.
	AutoPin bool

	// Confirm is asked per resolved UPC when AutoPin is off. Nil never pins.
	Confirm func(ctx context.Context, s staple.Staple, upc string) bool

	// Out is the file the proposal is written to. Empty skips saving.
	Out string
}

// ProposeResult is a built proposal and its pin states.
type ProposeResult struct {
	Proposal proposal.Proposal
	Pinned   Pinned
}

// ApplyResult is the outcome of applying a proposal and the session recorded
// for it.
type ApplyResult struct {
	Outcome ApplyOutcome
	Session sent.Session
}

// ProposalService builds proposals from staple lists and applies them to the
// user's cart.
type ProposalService struct {
	staples  staple.Store
	settings SettingsStore
	tokens   Tokens
	catalog  func(token string) Catalog
	cart     func(token string) Cart
	recorder *Recorder
	config   *config.Config
	log      zerolog.Logger
	now      func() time.Time
}

// NewProposalService creates a ProposalService. catalog and cart bind an
// access token to the API capabilities.
func NewProposalService(
	staples staple.Store,
	settings SettingsStore,
	tokens Tokens,
	catalog func(token string) Catalog,
	cart func(token string) Cart,
	recorder *Recorder,
	cfg *config.Config,
	logger zerolog.Logger,
) *ProposalService {
	return &ProposalService{
		staples:  staples,
		settings: settings,
		tokens:   tokens,
		catalog:  catalog,
		cart:     cart,
		recorder: recorder,
		config:   cfg,
		log:      logger,
		now:      time.Now,
	}
}

// Propose builds a proposal for the requested lists. Missing credentials and
// token failures are returned before any staple is resolved.
func (s *ProposalService) Propose(ctx context.Context, opts ProposeOptions) (ProposeResult, error) {
	if err := s.config.RequireCredentials(); err != nil {
		return ProposeResult{}, err
	}

	locationID, err := locationFor(ctx, opts.LocationID, s.settings, s.config)
	if err != nil {
		return ProposeResult{}, err
	}
	if locationID == "" {
		s.log.Warn().Msg("no store location set; results will not be store specific")
	}

	lists, err := s.lists(ctx, opts.Lists)
	if err != nil {
		return ProposeResult{}, err
	}

	token, err := s.tokens.ClientCredentialsToken(ctx, auth.ClientScopes)
	if err != nil {
		return ProposeResult{}, err
	}

	builder := NewBuilder(
		NewResolver(s.catalog(token), s.log),
		StorePinner{Store: s.staples},
		s.log,
		WithClock(s.now),
	)

	policy := NeverPin()
	switch {
	case opts.AutoPin:
		policy = AlwaysPin()
	case opts.Confirm != nil:
		policy = AskPin(opts.Confirm)
	}

	result := ProposeResult{
		Proposal: proposal.New(s.now(), locationID),
		Pinned:   Pinned{},
	}

	for _, list := range lists {
		listCtx := logging.WithList(ctx, list)

		staples, err := s.staples.Staples(listCtx, list)
		if err != nil {
			return ProposeResult{}, err
		}
		staples, err = FilterStaples(staples, opts.Only)
		if err != nil {
			return ProposeResult{}, err
		}

		p, pinned, err := builder.Build(listCtx, BuildInput{
			Staples:    staples,
			LocationID: locationID,
			ListName:   list,
			Pin:        policy,
		})
		if err != nil {
			return ProposeResult{}, err
		}

		s.log.Info().Ctx(listCtx).
			Int("items", len(p.Items)).
			Int("unresolved", len(p.Unresolved())).
			Msg("list resolved")

		result.Proposal.Items = append(result.Proposal.Items, p.Items...)
		result.Proposal.Sources = append(result.Proposal.Sources, list)
		for name, ok := range pinned {
			result.Pinned[name] = result.Pinned[name] || ok
		}
	}

	if opts.Out != "" {
		if err := result.Proposal.Save(opts.Out); err != nil {
			return ProposeResult{}, fmt.Errorf("save proposal: %w", err)
		}
	}

	return result, nil
}

func (s *ProposalService) lists(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	active, err := s.staples.Active(ctx)
	if err != nil {
		return nil, err
	}
	return []string{active}, nil
}

// ApplyAndRecord adds the proposal's items to the user's cart and records
// the run in the sent history. A missing or unusable user token is returned
// before any cart call. The outcome is returned even when recording fails.
func (s *ProposalService) ApplyAndRecord(ctx context.Context, p proposal.Proposal, stopOnError bool) (ApplyResult, error) {
	if err := s.config.RequireCredentials(); err != nil {
		return ApplyResult{}, err
	}

	id := uuid.NewString()
	ctx = logging.WithSentSessionID(ctx, id)

	startedAt := s.now()

	token, err := s.tokens.UserToken(ctx)
	if err != nil {
		return ApplyResult{}, err
	}

	outcome := NewApplier(s.cart(token), s.log).Apply(ctx, p.Items, stopOnError)
	finishedAt := s.now()

	session, err := s.recorder.RecordResults(ctx, id, outcome, p, startedAt, finishedAt)
	result := ApplyResult{Outcome: outcome, Session: session}
	if err != nil {
		return result, err
	}

	s.log.Info().Ctx(ctx).
		Int("success", outcome.Success).
		Int("failed", outcome.Failed).
		Msg("proposal applied")

	return result, nil
}

// History returns the recorded sent sessions, most recent first.
func (s *ProposalService) History(ctx context.Context) ([]sent.Session, error) {
	return s.recorder.store.List(ctx)
}

// Session returns one recorded sent session.
func (s *ProposalService) Session(ctx context.Context, id string) (sent.Session, error) {
	return s.recorder.store.Get(ctx, id)
}
