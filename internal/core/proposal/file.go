package proposal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hay-kot/kroget/internal/core/staple"
)

type alternativeJSON struct {
	UPC         string  `json:"upc"`
	Description *string `json:"description"`
}

type itemJSON struct {
	Name         string            `json:"name"`
	Quantity     int               `json:"quantity"`
	Modality     string            `json:"modality"`
	UPC          *string           `json:"upc"`
	Source       *string           `json:"source"`
	Sources      []string          `json:"sources"`
	Notes        *string           `json:"notes"`
	Alternatives []alternativeJSON `json:"alternatives"`
}

type proposalJSON struct {
	Version    string     `json:"version"`
	CreatedAt  string     `json:"created_at"`
	LocationID *string    `json:"location_id"`
	Items      []itemJSON `json:"items"`
	Sources    []string   `json:"sources"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// MarshalJSON writes the alternative with a null description when absent.
func (a Alternative) MarshalJSON() ([]byte, error) {
	return json.Marshal(alternativeJSON{UPC: a.UPC, Description: nullable(a.Description)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Alternative) UnmarshalJSON(data []byte) error {
	var in alternativeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Alternative{UPC: in.UPC, Description: deref(in.Description)}
	return nil
}

func (i Item) toJSON() itemJSON {
	out := itemJSON{
		Name:         i.Name,
		Quantity:     i.Quantity,
		Modality:     string(i.Modality),
		UPC:          nullable(i.UPC),
		Source:       nullable(string(i.Source)),
		Sources:      orEmpty(i.Sources),
		Notes:        nullable(i.Notes),
		Alternatives: make([]alternativeJSON, 0, len(i.Alternatives)),
	}
	for _, a := range i.Alternatives {
		out.Alternatives = append(out.Alternatives, alternativeJSON{UPC: a.UPC, Description: nullable(a.Description)})
	}
	return out
}

func (in itemJSON) toItem() Item {
	it := Item{
		Name:         in.Name,
		Quantity:     in.Quantity,
		Modality:     staple.Modality(strings.ToUpper(strings.TrimSpace(in.Modality))),
		UPC:          deref(in.UPC),
		Source:       Source(deref(in.Source)),
		Sources:      orEmpty(in.Sources),
		Notes:        deref(in.Notes),
		Alternatives: make([]Alternative, 0, len(in.Alternatives)),
	}
	for _, a := range in.Alternatives {
		it.Alternatives = append(it.Alternatives, Alternative{UPC: a.UPC, Description: deref(a.Description)})
	}
	return it
}

// MarshalJSON writes optional fields as null when absent.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.toJSON())
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Item) UnmarshalJSON(data []byte) error {
	var in itemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*i = in.toItem()
	return nil
}

// MarshalJSON writes the proposal file format.
func (p Proposal) MarshalJSON() ([]byte, error) {
	out := proposalJSON{
		Version:    p.Version,
		CreatedAt:  p.CreatedAt.UTC().Format(TimeFormat),
		LocationID: nullable(p.LocationID),
		Items:      make([]itemJSON, 0, len(p.Items)),
		Sources:    orEmpty(p.Sources),
	}
	for _, it := range p.Items {
		out.Items = append(out.Items, it.toJSON())
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. created_at accepts any RFC 3339
// timestamp and is normalized to UTC.
func (p *Proposal) UnmarshalJSON(data []byte) error {
	var in proposalJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var createdAt time.Time
	if in.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, in.CreatedAt)
		if err != nil {
			return fmt.Errorf("parse created_at: %w", err)
		}
		createdAt = t.UTC()
	}

	*p = Proposal{
		Version:    in.Version,
		CreatedAt:  createdAt,
		LocationID: deref(in.LocationID),
		Items:      make([]Item, 0, len(in.Items)),
		Sources:    orEmpty(in.Sources),
	}
	for _, it := range in.Items {
		p.Items = append(p.Items, it.toItem())
	}
	return nil
}

// Load reads a proposal file.
func Load(path string) (Proposal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Proposal{}, fmt.Errorf("read proposal: %w", err)
	}

	var p Proposal
	if err := json.Unmarshal(data, &p); err != nil {
		return Proposal{}, fmt.Errorf("parse proposal %s: %w", path, err)
	}
	return p, nil
}

// Save writes the proposal as indented JSON.
func (p Proposal) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write proposal: %w", err)
	}
	return nil
}
