package doctor

import (
	"context"
	"time"
)

// Probe is one live API call made by the API check. Run returns a short
// detail on success.
type Probe struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

// APICheck runs live probes against the retailer API.
type APICheck struct {
	probes  []Probe
	timeout time.Duration
}

// NewAPICheck creates a new API check. Each probe gets its own timeout.
func NewAPICheck(timeout time.Duration, probes ...Probe) *APICheck {
	return &APICheck{probes: probes, timeout: timeout}
}

func (c *APICheck) Name() string {
	return "Kroger API"
}

func (c *APICheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if len(c.probes) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "api",
			Status: StatusWarn,
			Detail: "skipped",
		})
		return result
	}

	for _, p := range c.probes {
		result.Items = append(result.Items, c.runProbe(ctx, p))
	}

	return result
}

func (c *APICheck) runProbe(ctx context.Context, p Probe) CheckItem {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	detail, err := p.Run(ctx)
	if err != nil {
		return CheckItem{Label: p.Name, Status: StatusFail, Detail: err.Error()}
	}
	return CheckItem{Label: p.Name, Status: StatusPass, Detail: detail}
}
