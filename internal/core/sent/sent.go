// Package sent defines the audit records written after a proposal is applied
// to the cart.
package sent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hay-kot/kroget/internal/core/proposal"
)

// MaxSessions bounds the rolling history.
const MaxSessions = 20

// ErrNotFound is returned when a session id is not in the history.
var ErrNotFound = errors.New("sent session not found")

// Item is a flattened apply result.
type Item struct {
	Name     string          `json:"name"`
	UPC      string          `json:"upc"`
	Quantity int             `json:"quantity"`
	Modality string          `json:"modality"`
	Status   proposal.Status `json:"status"`
	Error    *string         `json:"error"`
}

// ErrorMessage returns the failure message, or "" on success.
func (i Item) ErrorMessage() string {
	if i.Error == nil {
		return ""
	}
	return *i.Error
}

// Session records one apply run. Sessions are never modified after they are
// recorded.
type Session struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	LocationID string
	Sources    []string
	Items      []Item
}

// Counts returns the number of successful and failed items.
func (s Session) Counts() (ok, failed int) {
	for _, it := range s.Items {
		if it.Status == proposal.StatusSuccess {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Duration is the wall time between start and finish.
func (s Session) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

type sessionJSON struct {
	SessionID  string   `json:"session_id"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at"`
	LocationID *string  `json:"location_id"`
	Sources    []string `json:"sources"`
	Items      []Item   `json:"items"`
}

// MarshalJSON writes the history file format.
func (s Session) MarshalJSON() ([]byte, error) {
	out := sessionJSON{
		SessionID:  s.ID,
		StartedAt:  s.StartedAt.UTC().Format(proposal.TimeFormat),
		FinishedAt: s.FinishedAt.UTC().Format(proposal.TimeFormat),
		Sources:    s.Sources,
		Items:      s.Items,
	}
	if s.LocationID != "" {
		out.LocationID = &s.LocationID
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if out.Items == nil {
		out.Items = []Item{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Session) UnmarshalJSON(data []byte) error {
	var in sessionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	started, err := parseTime(in.StartedAt)
	if err != nil {
		return fmt.Errorf("parse started_at: %w", err)
	}
	finished, err := parseTime(in.FinishedAt)
	if err != nil {
		return fmt.Errorf("parse finished_at: %w", err)
	}

	*s = Session{
		ID:         in.SessionID,
		StartedAt:  started,
		FinishedAt: finished,
		Sources:    in.Sources,
		Items:      in.Items,
	}
	if in.LocationID != nil {
		s.LocationID = *in.LocationID
	}
	return nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Store persists the rolling history, most recent first.
type Store interface {
	// List returns all recorded sessions, most recent first.
	List(ctx context.Context) ([]Session, error)

	// Get returns the session with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)

	// Record prepends a session, keeps at most max entries, and returns the
	// resulting history.
	Record(ctx context.Context, session Session, max int) ([]Session, error)
}

// SessionOptions carries the session metadata not found in apply results.
// Zero values are filled in by FromApplyResults.
type SessionOptions struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	LocationID string
	Sources    []string

	// Now is used for missing timestamps. Defaults to time.Now.
	Now func() time.Time
}

// FromApplyResults builds a session from apply results in apply order. A new
// UUID is assigned when opts.ID is empty.
func FromApplyResults(results []proposal.ApplyItemResult, opts SessionOptions) Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := Session{
		ID:         opts.ID,
		StartedAt:  opts.StartedAt,
		FinishedAt: opts.FinishedAt,
		LocationID: opts.LocationID,
		Sources:    opts.Sources,
		Items:      make([]Item, 0, len(results)),
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = now()
	}
	if s.FinishedAt.IsZero() {
		s.FinishedAt = now()
	}
	s.StartedAt = s.StartedAt.UTC().Truncate(time.Second)
	s.FinishedAt = s.FinishedAt.UTC().Truncate(time.Second)
	if s.Sources == nil {
		s.Sources = []string{}
	}

	for _, r := range results {
		it := Item{
			Name:     r.Item.Name,
			UPC:      r.Item.UPC,
			Quantity: r.Item.Quantity,
			Modality: string(r.Item.Modality),
			Status:   r.Status,
		}
		if r.Error != "" {
			msg := r.Error
			it.Error = &msg
		}
		s.Items = append(s.Items, it)
	}

	return s
}
