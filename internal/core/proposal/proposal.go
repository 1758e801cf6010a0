// Package proposal defines the proposal document: a UPC-resolved shopping
// list built from staples and optionally applied to a cart.
package proposal

import (
	"fmt"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/core/validate"
)

// Version is the schema tag written to every proposal.
const Version = "1"

// MaxAlternatives caps the non-chosen candidates kept per item.
const MaxAlternatives = 3

// TimeFormat is the UTC timestamp layout used in proposal and history files.
const TimeFormat = "2006-01-02T15:04:05Z"

// Source records where an item's UPC came from.
type Source string

const (
	SourcePreferred Source = "preferred"
	SourceSearch    Source = "search"
)

// Alternative is a candidate the user may re-pin to.
type Alternative struct {
	UPC         string
	Description string
}

// Item is one resolved line of a proposal. An empty UPC means resolution
// failed; Notes usually carries the reason.
type Item struct {
	Name         string
	Quantity     int
	Modality     staple.Modality
	UPC          string
	Source       Source
	Sources      []string
	Notes        string
	Alternatives []Alternative
}

// Resolved reports whether the item has a UPC to add to the cart.
func (i Item) Resolved() bool {
	return i.UPC != ""
}

// Proposal is the unit of work for one shopping session.
type Proposal struct {
	Version    string
	CreatedAt  time.Time
	LocationID string
	Items      []Item
	Sources    []string
}

// New returns an empty proposal stamped with the current version and the
// given creation time, truncated to whole seconds in UTC.
func New(createdAt time.Time, locationID string) Proposal {
	return Proposal{
		Version:    Version,
		CreatedAt:  createdAt.UTC().Truncate(time.Second),
		LocationID: locationID,
		Items:      []Item{},
		Sources:    []string{},
	}
}

// Unresolved returns the items that have no UPC.
func (p Proposal) Unresolved() []Item {
	var out []Item
	for _, it := range p.Items {
		if !it.Resolved() {
			out = append(out, it)
		}
	}
	return out
}

// Validate checks the document version and every item.
func (p Proposal) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if p.Version != Version {
		errs = errs.Append("version", fmt.Errorf("unsupported version %q", p.Version))
	}

	for i, it := range p.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if err := validate.Required(it.Name); err != nil {
			errs = errs.Append(prefix+".name", err)
		}
		if err := validate.Positive(it.Quantity); err != nil {
			errs = errs.Append(prefix+".quantity", err)
		}
		if !it.Modality.IsValid() {
			errs = errs.Append(prefix+".modality", fmt.Errorf("invalid modality %q (use PICKUP or DELIVERY)", it.Modality))
		}
		if it.Source == SourcePreferred && it.UPC == "" {
			errs = errs.Append(prefix+".upc", fmt.Errorf("preferred item has no upc"))
		}
		if len(it.Alternatives) > MaxAlternatives {
			errs = errs.Append(prefix+".alternatives", fmt.Errorf("at most %d alternatives, got %d", MaxAlternatives, len(it.Alternatives)))
		}
	}

	return validate.Wrap(errs.ToError())
}

// RemoveItem deletes the item at index.
func (p *Proposal) RemoveItem(index int) error {
	if index < 0 || index >= len(p.Items) {
		return validate.Errorf("item index %d out of range", index)
	}
	p.Items = append(p.Items[:index], p.Items[index+1:]...)
	return nil
}

// Repin points the item at index to one of its alternatives and marks the
// choice as preferred. The updated item is returned.
func (p *Proposal) Repin(index, alternative int) (Item, error) {
	if index < 0 || index >= len(p.Items) {
		return Item{}, validate.Errorf("item index %d out of range", index)
	}

	it := &p.Items[index]
	if alternative < 0 || alternative >= len(it.Alternatives) {
		return Item{}, validate.Errorf("alternative %d out of range for %q", alternative, it.Name)
	}

	it.UPC = it.Alternatives[alternative].UPC
	it.Source = SourcePreferred
	it.Notes = ""
	return *it, nil
}
