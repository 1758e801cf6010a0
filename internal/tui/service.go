package tui

import (
	"context"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/kroget"
)

// Proposer builds and applies proposals for the Model.
type Proposer interface {
	Propose(ctx context.Context, opts kroget.ProposeOptions) (kroget.ProposeResult, error)
	ApplyAndRecord(ctx context.Context, p proposal.Proposal, stopOnError bool) (kroget.ApplyResult, error)
}

// StapleLister provides read access to staple lists.
type StapleLister interface {
	Active(ctx context.Context) (string, error)
	Staples(ctx context.Context, list string) ([]staple.Staple, error)
}

// Compile-time checks.
var (
	_ Proposer     = (*kroget.ProposalService)(nil)
	_ StapleLister = (staple.Store)(nil)
)
