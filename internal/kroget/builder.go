package kroget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/hay-kot/kroget/internal/core/config"
	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/kroger/auth"
)

// CatalogResolver resolves a search term to UPCs. *Resolver satisfies it.
type CatalogResolver interface {
	Resolve(ctx context.Context, term, locationID string) (Resolution, error)
}

// PinPolicy decides whether a freshly resolved UPC becomes the staple's
// preferred UPC.
type PinPolicy interface {
	ShouldPin(ctx context.Context, s staple.Staple, upc string) bool
}

// PinFunc adapts a function to a PinPolicy.
type PinFunc func(ctx context.Context, s staple.Staple, upc string) bool

func (f PinFunc) ShouldPin(ctx context.Context, s staple.Staple, upc string) bool {
	return f(ctx, s, upc)
}

// AlwaysPin pins every resolved UPC.
func AlwaysPin() PinPolicy {
	return PinFunc(func(context.Context, staple.Staple, string) bool { return true })
}

// NeverPin leaves staples untouched.
func NeverPin() PinPolicy {
	return PinFunc(func(context.Context, staple.Staple, string) bool { return false })
}

// AskPin defers each decision to ask, typically an interactive prompt.
func AskPin(ask func(ctx context.Context, s staple.Staple, upc string) bool) PinPolicy {
	return PinFunc(ask)
}

// Pinner persists a preferred UPC for a staple of a list.
type Pinner interface {
	Pin(ctx context.Context, list string, s staple.Staple, upc string) error
}

// StorePinner pins through a staple.Store.
type StorePinner struct {
	Store staple.Store
}

func (p StorePinner) Pin(ctx context.Context, list string, s staple.Staple, upc string) error {
	_, err := p.Store.Update(ctx, list, s.Name, staple.Patch{PreferredUPC: &upc})
	return err
}

// PinStatus is the display state of a proposal item.
type PinStatus string

const (
	PinStatusPinned  PinStatus = "pinned"
	PinStatusAuto    PinStatus = "auto"
	PinStatusMissing PinStatus = "missing"
)

// Pinned maps staple names to whether their UPC is the staple's preferred
// UPC after the build.
type Pinned map[string]bool

// Status returns the display state of item.
func (p Pinned) Status(item proposal.Item) PinStatus {
	switch {
	case !item.Resolved():
		return PinStatusMissing
	case p[item.Name]:
		return PinStatusPinned
	default:
		return PinStatusAuto
	}
}

// PinnedFromProposal reconstructs pin states from a saved proposal, where
// only items taken from a preferred UPC are known to be pinned.
func PinnedFromProposal(p proposal.Proposal) Pinned {
	pinned := Pinned{}
	for _, it := range p.Items {
		pinned[it.Name] = it.Source == proposal.SourcePreferred && it.Resolved()
	}
	return pinned
}

// BuildInput is the input of one build.
type BuildInput struct {
	Staples    []staple.Staple
	LocationID string

	// ListName is the list the staples came from. It is recorded on each
	// item and is the list pins are written to.
	ListName string

	// Sources is stamped on the proposal. Defaults to ListName when empty.
	Sources []string

	// Pin decides auto-pinning. Nil never pins.
	Pin PinPolicy
}

// Builder turns staples into a proposal.
type Builder struct {
	resolver CatalogResolver
	pinner   Pinner
	log      zerolog.Logger
	now      func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder. pinner may be nil when no policy ever pins.
func NewBuilder(resolver CatalogResolver, pinner Pinner, logger zerolog.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		resolver: resolver,
		pinner:   pinner,
		log:      logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves every staple in order. Staples with a preferred UPC are
// used as is without a catalog lookup. A staple that cannot be resolved
// becomes an item without a UPC and never stops the build. Only
// authentication, configuration, and cancellation errors are returned.
func (b *Builder) Build(ctx context.Context, in BuildInput) (proposal.Proposal, Pinned, error) {
	p := proposal.New(b.now(), in.LocationID)
	switch {
	case len(in.Sources) > 0:
		p.Sources = append(p.Sources, in.Sources...)
	case in.ListName != "":
		p.Sources = append(p.Sources, in.ListName)
	}

	pinned := Pinned{}
	for _, s := range in.Staples {
		item, isPinned, err := b.buildItem(ctx, in, s)
		if err != nil {
			return proposal.Proposal{}, nil, err
		}
		p.Items = append(p.Items, item)
		pinned[s.Name] = isPinned
	}

	return p, pinned, nil
}

func (b *Builder) buildItem(ctx context.Context, in BuildInput, s staple.Staple) (proposal.Item, bool, error) {
	item := proposal.Item{
		Name:         s.Name,
		Quantity:     s.Quantity,
		Modality:     s.Modality,
		Sources:      []string{},
		Alternatives: []proposal.Alternative{},
	}
	if in.ListName != "" {
		item.Sources = append(item.Sources, in.ListName)
	}

	if s.HasPreferredUPC() {
		item.UPC = s.PreferredUPC
		item.Source = proposal.SourcePreferred
		return item, true, nil
	}

	item.Source = proposal.SourceSearch

	res, err := b.resolver.Resolve(ctx, s.Term, in.LocationID)
	if err != nil {
		if isFatal(err) || ctx.Err() != nil {
			return proposal.Item{}, false, err
		}
		b.log.Warn().Err(err).Str("staple", s.Name).Msg("staple resolution failed")
		item.Notes = err.Error()
		return item, false, nil
	}

	item.Alternatives = res.Alternatives
	if res.ChosenUPC == "" {
		item.Notes = fmt.Sprintf("no product with a UPC found for %q", s.Term)
		return item, false, nil
	}
	item.UPC = res.ChosenUPC

	return item, b.pin(ctx, in, s, res.ChosenUPC), nil
}

func (b *Builder) pin(ctx context.Context, in BuildInput, s staple.Staple, upc string) bool {
	if in.Pin == nil || !in.Pin.ShouldPin(ctx, s, upc) {
		return false
	}
	if b.pinner == nil {
		b.log.Warn().Str("staple", s.Name).Msg("pin requested without a pinner")
		return false
	}
	if err := b.pinner.Pin(ctx, in.ListName, s, upc); err != nil {
		b.log.Warn().Err(err).Str("staple", s.Name).Str("upc", upc).Msg("failed to pin preferred upc")
		return false
	}
	return true
}

func isFatal(err error) bool {
	return errors.Is(err, auth.ErrAuthentication) || errors.Is(err, config.ErrConfiguration)
}

// FilterStaples keeps staples whose name matches any of the glob patterns.
// No patterns keeps everything.
func FilterStaples(staples []staple.Staple, patterns []string) ([]staple.Staple, error) {
	if len(patterns) == 0 {
		return staples, nil
	}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid staple filter %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	out := make([]staple.Staple, 0, len(staples))
	for _, s := range staples {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, s.Name); ok {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}
