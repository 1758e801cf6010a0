package kroget

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/sent"
)

// Recorder appends apply sessions to the bounded sent history.
type Recorder struct {
	store sent.Store
	max   int
	log   zerolog.Logger
}

// NewRecorder creates a Recorder keeping at most max sessions. A
// non-positive max uses sent.MaxSessions.
func NewRecorder(store sent.Store, max int, logger zerolog.Logger) *Recorder {
	if max <= 0 {
		max = sent.MaxSessions
	}
	return &Recorder{store: store, max: max, log: logger}
}

// Record prepends session to the history and returns the stored history,
// most recent first.
func (r *Recorder) Record(ctx context.Context, session sent.Session) ([]sent.Session, error) {
	history, err := r.store.Record(ctx, session, r.max)
	if err != nil {
		return nil, fmt.Errorf("record sent session: %w", err)
	}

	r.log.Debug().Ctx(ctx).
		Str("session_id", session.ID).
		Int("items", len(session.Items)).
		Int("history", len(history)).
		Msg("sent session recorded")

	return history, nil
}

// RecordResults builds a session from an apply outcome and records it. An
// empty id gets a generated one.
func (r *Recorder) RecordResults(ctx context.Context, id string, outcome ApplyOutcome, p proposal.Proposal, startedAt, finishedAt time.Time) (sent.Session, error) {
	session := sent.FromApplyResults(outcome.Results, sent.SessionOptions{
		ID:         id,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		LocationID: p.LocationID,
		Sources:    p.Sources,
	})

	if _, err := r.Record(ctx, session); err != nil {
		return session, err
	}
	return session, nil
}
