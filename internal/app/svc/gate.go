package svc

import (
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/antpath"
	"github.com/rs/zerolog/log"
)

// NewGate creates a new instance of the promotion gate.
func NewGate() app.GateSvc {
	return Gate{}
}

// Gate decides whether a completed build qualifies for the promotion.
type Gate struct{}

// Evaluate matches the build branch against the patterns; the first matching pattern wins.
func (g Gate) Evaluate(
	outcome app.BuildOutcome,
	includeUnstable bool,
	branch *string,
	patterns []string,
) app.PromotionDecision {
	if !Qualifies(outcome, includeUnstable) {
		return app.PromotionDecision{}
	}
	if branch == nil {
		log.Warn().Msg("The build has no source branch, skipping the promotion")
		return app.PromotionDecision{}
	}
	source := *branch
	for _, p := range patterns {
		matched, err := antpath.Match(p, source)
		if err != nil {
			log.Error().Err(err).Str("pattern", p).Msg("svc.Gate.Evaluate: invalid branch pattern")
			continue
		}
		if matched {
			pattern := p
			return app.PromotionDecision{Matched: true, MatchedPattern: &pattern, SourceBranch: &source}
		}
	}
	return app.PromotionDecision{SourceBranch: &source}
}

// Qualifies reports whether the build outcome allows the promotion at all.
func Qualifies(outcome app.BuildOutcome, includeUnstable bool) bool {
	switch outcome {
	case app.OutcomeSuccess:
		return true
	case app.OutcomeUnstable:
		return includeUnstable
	}
	return false
}
