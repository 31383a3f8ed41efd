package svc

import (
	"context"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/pkg"
	"github.com/rs/zerolog/log"
)

// NopPublisher drops the promotion events when no broker is configured.
type NopPublisher struct{}

// Publish logs the event.
func (NopPublisher) Publish(_ context.Context, ev app.PromotionEvent) error {
	log.Debug().Str("event", ev.Type).Msgf("Promotion #%d", ev.Promotion.ID)
	return nil
}

// NopArchive keeps the transcripts in the promotions store only.
type NopArchive struct{}

// Archive does nothing.
func (NopArchive) Archive(context.Context, app.Promotion) (string, error) {
	return "", nil
}

// LocalHook completes the promotions when no hook handler is configured.
type LocalHook struct{}

// Promote reports the promotion as ready.
func (LocalHook) Promote(_ context.Context, req pkg.HookPromoteReq) (pkg.HookPromoteResp, error) {
	log.Info().Str("branch", req.Branch).Str("label", req.Label).
		Msgf("No hook handler configured, the promotion #%d is completed locally", req.PromotionID)
	return pkg.HookPromoteResp{Status: app.PromotionStatusReady}, nil
}
