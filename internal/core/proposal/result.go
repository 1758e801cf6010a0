package proposal

// Status is the outcome of adding one item to the cart.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ApplyItemResult is the outcome of one cart attempt. It is consumed by the
// sent-session recorder and never persisted directly.
type ApplyItemResult struct {
	Item   Item
	Status Status
	Error  string
}

// OK reports whether the item was added.
func (r ApplyItemResult) OK() bool {
	return r.Status == StatusSuccess
}
