package app

import "context"

// DefaultNode is the node that owns the workspaces when the job doesn't name one.
const DefaultNode = "local"

// Job is a model that represents a CI job and its promotion processes.
type Job struct {
	Name       string             `json:"name"`
	SCM        string             `json:"scm"`
	RootModule string             `json:"rootModule,omitempty"`
	Node       string             `json:"node"`
	Processes  []PromotionProcess `json:"promotions"`
}

// PromotionProcess is a model that represents a promotion process configured for a job.
type PromotionProcess struct {
	Name      string           `json:"name"`
	Patterns  BranchPatternSet `json:"patterns"`
	Checkout  bool             `json:"checkout"`
	PinCommit bool             `json:"pinCommit"`
	Label     string           `json:"label,omitempty"`
}

// Process returns the promotion process by name.
func (j Job) Process(name string) (PromotionProcess, bool) {
	for _, p := range j.Processes {
		if p.Name == name {
			return p, true
		}
	}
	return PromotionProcess{}, false
}

// JobRepo describes the access to the job definitions.
type JobRepo interface {
	FindAll(ctx context.Context) ([]Job, error)
	FindByName(ctx context.Context, name string) (Job, error)
}
