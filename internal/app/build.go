package app

import (
	"context"
	"strings"
	"time"
)

// BuildOutcome is the final result of a CI build.
type BuildOutcome string

const (
	// OutcomeSuccess defines the result of a stable build.
	OutcomeSuccess BuildOutcome = "SUCCESS"
	// OutcomeUnstable defines the result of a build that completed with test failures.
	OutcomeUnstable BuildOutcome = "UNSTABLE"
	// OutcomeFailure defines the result of a broken build.
	OutcomeFailure BuildOutcome = "FAILURE"
	// OutcomeOther defines any other result (aborted, not built, etc.).
	OutcomeOther BuildOutcome = "OTHER"
)

// SCMGit defines the only source control kind that can be checked out.
const SCMGit = "git"

// ParseOutcome converts the CI result to the outcome; unrecognized values are OTHER.
func ParseOutcome(s string) BuildOutcome {
	o := BuildOutcome(strings.ToUpper(strings.TrimSpace(s)))
	switch o {
	case OutcomeSuccess, OutcomeUnstable, OutcomeFailure:
		return o
	}
	return OutcomeOther
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *BuildOutcome) UnmarshalText(text []byte) error {
	*o = ParseOutcome(string(text))
	return nil
}

// ModuleCoordinates identifies a module produced by the build.
type ModuleCoordinates struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

// Key returns the "groupId:artifactId" form used for the root module designation.
func (m ModuleCoordinates) Key() string {
	return m.GroupID + ":" + m.ArtifactID
}

// Build is a model that represents a completed CI build. It is also the payload of the build-completion event.
type Build struct {
	ID            string              `json:"id"`
	Job           string              `json:"job"`
	Number        uint64              `json:"number"`
	Outcome       BuildOutcome        `json:"outcome"`
	Branch        *string             `json:"branch"`
	Commit        string              `json:"commit"`
	RepositoryURL string              `json:"repositoryUrl"`
	SCM           string              `json:"scm"`
	Modules       []ModuleCoordinates `json:"modules"`
	CompletedAt   time.Time           `json:"completedAt"`
}

// BuildRepo describes interactions with the build DB.
type BuildRepo interface {
	FindByID(ctx context.Context, id string) (Build, error)
	Save(ctx context.Context, b Build) error
}
