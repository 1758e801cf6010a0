// Package doctor runs health checks over the local setup and the retailer
// API.
package doctor

import (
	"context"
	"encoding/json"
)

// Status is the outcome of one check item.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is one line of a check result.
type CheckItem struct {
	Label   string
	Status  Status
	Detail  string
	Fixable bool
}

// MarshalJSON writes the item with its status as a string.
func (i CheckItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label   string `json:"label"`
		Status  Status `json:"status"`
		Detail  string `json:"detail,omitempty"`
		Fixable bool   `json:"fixable,omitempty"`
	}{i.Label, i.Status, i.Detail, i.Fixable})
}

// needsFix reports whether --autofix could change the item.
func (i CheckItem) needsFix() bool {
	return i.Fixable && i.Status != StatusPass
}

// Result groups the items produced by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Check is a single health check.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll runs checks in order. A canceled context stops before the next check.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if ctx.Err() != nil {
			results = append(results, Result{
				Name:  check.Name(),
				Items: []CheckItem{{Label: "Skipped", Status: StatusWarn, Detail: ctx.Err().Error()}},
			})
			continue
		}
		results = append(results, check.Run(ctx))
	}
	return results
}

// Tally counts item statuses across results.
type Tally struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"-"`
}

// Healthy reports whether no item failed.
func (t Tally) Healthy() bool {
	return t.Failed == 0
}

// Count tallies the items of results.
func Count(results []Result) Tally {
	var t Tally
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				t.Passed++
			case StatusWarn:
				t.Warned++
			case StatusFail:
				t.Failed++
			}
			if item.needsFix() {
				t.Fixable++
			}
		}
	}
	return t
}
