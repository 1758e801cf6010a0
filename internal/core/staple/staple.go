// Package staple defines staple items, the recurring wants a user keeps
// stocked, and the interface for the lists that hold them.
package staple

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/kroget/internal/core/validate"
)

// Modality is the fulfillment method for a cart item.
type Modality string

const (
	ModalityPickup   Modality = "PICKUP"
	ModalityDelivery Modality = "DELIVERY"
)

// ParseModality parses a modality name case-insensitively.
func ParseModality(s string) (Modality, error) {
	switch Modality(strings.ToUpper(strings.TrimSpace(s))) {
	case ModalityPickup:
		return ModalityPickup, nil
	case ModalityDelivery:
		return ModalityDelivery, nil
	}
	return "", validate.Errorf("invalid modality %q (use PICKUP or DELIVERY)", s)
}

// IsValid reports whether m is a known modality.
func (m Modality) IsValid() bool {
	return m == ModalityPickup || m == ModalityDelivery
}

// Staple is a recurring item the user wants to keep stocked. Name is unique
// within its list.
type Staple struct {
	Name         string   `json:"name"`
	Term         string   `json:"term"`
	Quantity     int      `json:"quantity"`
	PreferredUPC string   `json:"preferred_upc"`
	Modality     Modality `json:"modality"`
}

// HasPreferredUPC reports whether a UPC has been pinned to the staple.
func (s Staple) HasPreferredUPC() bool {
	return s.PreferredUPC != ""
}

// Matches reports whether identifier names the staple, either by name or by
// its preferred UPC.
func (s Staple) Matches(identifier string) bool {
	return s.Name == identifier || (s.PreferredUPC != "" && s.PreferredUPC == identifier)
}

// Validate checks the staple's fields.
func (s Staple) Validate() error {
	err := criterio.ValidateStruct(
		validate.RequiredField("name", s.Name),
		validate.RequiredField("term", s.Term),
		validate.PositiveField("quantity", s.Quantity),
		validateModality(s.Modality),
	)
	return validate.Wrap(err)
}

func validateModality(m Modality) error {
	if !m.IsValid() {
		return criterio.NewFieldErrors("modality", fmt.Errorf("invalid modality %q", m))
	}
	return nil
}

// stapleJSON mirrors Staple with nullable fields so files written by hand or
// by older versions still decode.
type stapleJSON struct {
	Name         string  `json:"name"`
	Term         string  `json:"term"`
	Quantity     *int    `json:"quantity"`
	PreferredUPC *string `json:"preferred_upc"`
	Modality     string  `json:"modality"`
}

// MarshalJSON writes an absent preferred UPC as null.
func (s Staple) MarshalJSON() ([]byte, error) {
	out := stapleJSON{
		Name:     s.Name,
		Term:     s.Term,
		Quantity: &s.Quantity,
		Modality: string(s.Modality),
	}
	if s.PreferredUPC != "" {
		out.PreferredUPC = &s.PreferredUPC
	}
	return json.Marshal(out)
}

// UnmarshalJSON applies file defaults: quantity 1 and PICKUP modality.
func (s *Staple) UnmarshalJSON(data []byte) error {
	var in stapleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*s = Staple{
		Name:     in.Name,
		Term:     in.Term,
		Quantity: 1,
		Modality: ModalityPickup,
	}
	if in.Quantity != nil {
		s.Quantity = *in.Quantity
	}
	if in.PreferredUPC != nil {
		s.PreferredUPC = *in.PreferredUPC
	}
	if in.Modality != "" {
		s.Modality = Modality(strings.ToUpper(in.Modality))
	}
	return nil
}
