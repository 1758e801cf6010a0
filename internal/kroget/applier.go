package kroget

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/kroget/internal/core/proposal"
)

// Cart adds items to the user's cart. kroger.TokenClient satisfies it.
type Cart interface {
	AddToCart(ctx context.Context, upc string, quantity int, modality string) error
}

// ApplyOutcome tallies an apply run. Success+Failed always equals
// len(Results).
type ApplyOutcome struct {
	Success int
	Failed  int
	Errors  []string
	Results []proposal.ApplyItemResult

	// Halted is set when stopOnError ended the run early.
	Halted bool
}

// OK reports whether every attempted item was added.
func (o ApplyOutcome) OK() bool {
	return o.Failed == 0
}

// Applier sends proposal items to a cart one at a time.
type Applier struct {
	cart Cart
	log  zerolog.Logger
}

// NewApplier creates an Applier over cart.
func NewApplier(cart Cart, logger zerolog.Logger) *Applier {
	return &Applier{cart: cart, log: logger}
}

// Apply adds items in order. A failed item never prevents later items from
// being attempted unless stopOnError is set.
func (a *Applier) Apply(ctx context.Context, items []proposal.Item, stopOnError bool) ApplyOutcome {
	out := ApplyOutcome{
		Errors:  []string{},
		Results: make([]proposal.ApplyItemResult, 0, len(items)),
	}

	for _, item := range items {
		res := a.applyItem(ctx, item, &out)
		out.Results = append(out.Results, res)

		if !res.OK() && stopOnError {
			out.Halted = len(out.Results) < len(items)
			break
		}
	}

	a.log.Info().Ctx(ctx).
		Int("success", out.Success).
		Int("failed", out.Failed).
		Bool("halted", out.Halted).
		Msg("apply finished")

	return out
}

func (a *Applier) applyItem(ctx context.Context, item proposal.Item, out *ApplyOutcome) proposal.ApplyItemResult {
	if !item.Resolved() {
		out.Failed++
		out.Errors = append(out.Errors, fmt.Sprintf("Missing UPC for %s", item.Name))
		return proposal.ApplyItemResult{Item: item, Status: proposal.StatusFailed, Error: "missing upc"}
	}

	if err := a.cart.AddToCart(ctx, item.UPC, item.Quantity, string(item.Modality)); err != nil {
		a.log.Warn().Ctx(ctx).Err(err).Str("item", item.Name).Str("upc", item.UPC).Msg("add to cart failed")
		out.Failed++
		out.Errors = append(out.Errors, fmt.Sprintf("Failed to add %s: %s", item.Name, err))
		return proposal.ApplyItemResult{Item: item, Status: proposal.StatusFailed, Error: err.Error()}
	}

	out.Success++
	return proposal.ApplyItemResult{Item: item, Status: proposal.StatusSuccess}
}
