package harness

import "github.com/Arterning/style-mirror/internal/model"

// StepTrace records what one step did.
type StepTrace struct {
	Index int    `json:"index"`
	Op    string `json:"op"`
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every step behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Trace has one record per step, in order.
	Trace []StepTrace `json:"trace"`

	// Placements are the placement keys in add order.
	Placements []string `json:"placements"`

	// Positions are the final placement positions, indexed like Placements.
	Positions []model.Position `json:"positions"`

	// Layers are the final placement keys back to front.
	Layers []string `json:"layers"`

	// Entries is the stored journal in append order.
	Entries []model.JournalEntry `json:"entries"`

	// Pending is the number of commits whose write has not succeeded.
	Pending int `json:"pending"`

	// Journal is the raw journal document left in the store,
	// or "[]" if none was written.
	Journal []byte `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Errors:     []string{},
		Trace:      []StepTrace{},
		Placements: []string{},
		Positions:  []model.Position{},
		Layers:     []string{},
		Entries:    []model.JournalEntry{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
