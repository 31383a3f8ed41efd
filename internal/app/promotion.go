package app

import (
	"context"
	"time"
)

const (
	// PromotionStatusEnqueued defines the status that means the build qualified and the promotion awaits processing.
	PromotionStatusEnqueued = "enqueued"
	// PromotionStatusRunning defines the status that means the checkout or the hook is in progress.
	PromotionStatusRunning = "running"
	// PromotionStatusReady defines the status that means the promotion process completed successfully.
	PromotionStatusReady = "ready"
	// PromotionStatusFailed defines the status that means the checkout or the hook failed.
	PromotionStatusFailed = "failed"
)

const (
	// PromotionEventMatched is published when a build qualifies for a promotion process.
	PromotionEventMatched = "promotion.matched"
	// PromotionEventReady is published when the promotion process completes.
	PromotionEventReady = "promotion.ready"
	// PromotionEventFailed is published when the promotion process fails.
	PromotionEventFailed = "promotion.failed"
)

// BranchPatternSet is the ordered list of branch globs of a promotion process.
type BranchPatternSet struct {
	Patterns        []string `json:"patterns"`
	IncludeUnstable bool     `json:"includeUnstable"`
}

// PromotionDecision is the result of the gate evaluation of a single build.
type PromotionDecision struct {
	Matched        bool    `json:"matched"`
	MatchedPattern *string `json:"matchedPattern,omitempty"`
	SourceBranch   *string `json:"sourceBranch,omitempty"`
}

// Promotion is a model that represents a promotion of a build by a specific process.
type Promotion struct {
	ID             uint64    `json:"id"`
	Process        string    `json:"process"`
	Job            string    `json:"job"`
	BuildID        string    `json:"buildId"`
	Branch         string    `json:"branch"`
	MatchedPattern string    `json:"matchedPattern"`
	Commit         string    `json:"commit"`
	Status         string    `json:"status"`
	Workspace      string    `json:"workspace,omitempty"`
	Console        string    `json:"console,omitempty"`
	ErrorMsg       *string   `json:"errorMsg,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Evaluation is a dry-run result of the gate for one promotion process.
type Evaluation struct {
	Process  string            `json:"process"`
	Decision PromotionDecision `json:"decision"`
}

// PromotionEvent is published to the downstream listeners.
type PromotionEvent struct {
	Type      string    `json:"type"`
	Promotion Promotion `json:"promotion"`
	Time      time.Time `json:"time"`
}

// GateSvc describes the promotion gate.
type GateSvc interface {
	Evaluate(outcome BuildOutcome, includeUnstable bool, branch *string, patterns []string) PromotionDecision
}

// PromotionSvc describes the promotion service.
type PromotionSvc interface {
	BuildCompleted(ctx context.Context, b Build) ([]Promotion, error)
	Evaluate(ctx context.Context, b Build) ([]Evaluation, error)
	List(ctx context.Context) ([]Promotion, error)
	Get(ctx context.Context, id uint64) (Promotion, error)
	Retry(ctx context.Context, id uint64) (Promotion, error)
	Recover(ctx context.Context) error
	PromoteJob(ctx context.Context) error
}

// PromotionRepo describes interactions with the promotion DB.
type PromotionRepo interface {
	FindAll(ctx context.Context) ([]Promotion, error)
	FindByID(ctx context.Context, id uint64) (Promotion, error)
	// Claim atomically switches the oldest enqueued promotion to running and returns it.
	Claim(ctx context.Context, at time.Time) (Promotion, error)
	// Add saves a new promotion unless the build was already promoted by the same process.
	Add(ctx context.Context, p Promotion) (Promotion, bool, error)
	Update(ctx context.Context, p Promotion) (Promotion, error)
	FailRunning(ctx context.Context, errorMsg string, at time.Time) (int64, error)
}

// EventPublisher describes the promotion events sink.
type EventPublisher interface {
	Publish(ctx context.Context, ev PromotionEvent) error
}

// TranscriptArchive describes the storage of the promotion console transcripts.
type TranscriptArchive interface {
	Archive(ctx context.Context, p Promotion) (string, error)
}
