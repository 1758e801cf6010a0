package staple

import "context"

// DefaultListName is the list created on first use and the migration target
// for the legacy single-list staples file.
const DefaultListName = "Staples"

// Patch describes a partial update to a staple. Nil fields are left unchanged.
type Patch struct {
	Term         *string
	Quantity     *int
	PreferredUPC *string
	Modality     *Modality
}

// Apply returns a copy of s with the patch applied.
func (p Patch) Apply(s Staple) Staple {
	if p.Term != nil {
		s.Term = *p.Term
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	if p.PreferredUPC != nil {
		s.PreferredUPC = *p.PreferredUPC
	}
	if p.Modality != nil {
		s.Modality = *p.Modality
	}
	return s
}

// Store persists named lists of staples. An empty list name refers to the
// active list. Unknown lists or staples are reported as validation errors.
type Store interface {
	// ListNames returns all list names in sorted order.
	ListNames(ctx context.Context) ([]string, error)

	// Active returns the name of the active list.
	Active(ctx context.Context) (string, error)

	// SetActive marks an existing list as active.
	SetActive(ctx context.Context, name string) error

	// Create adds a new empty list.
	Create(ctx context.Context, name string) error

	// Rename renames a list, keeping it active if it was.
	Rename(ctx context.Context, oldName, newName string) error

	// Delete removes a list. The last remaining list cannot be deleted.
	Delete(ctx context.Context, name string) error

	// Staples returns the staples of a list in stored order.
	Staples(ctx context.Context, list string) ([]Staple, error)

	// Add appends a staple to a list. Names must be unique within a list.
	Add(ctx context.Context, list string, s Staple) error

	// Update applies a patch to the named staple.
	Update(ctx context.Context, list, name string, patch Patch) (Staple, error)

	// Remove deletes a staple identified by name or preferred UPC.
	Remove(ctx context.Context, list, identifier string) error

	// Move transfers a staple identified by name or preferred UPC between lists.
	Move(ctx context.Context, from, to, identifier string) error
}
