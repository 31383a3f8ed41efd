package pkg

import "context"

// HookPromoteReq contains request data for invoking the promotion process in the hook handler.
type HookPromoteReq struct {
	PromotionID    uint64
	Process        string
	Job            string
	BuildID        string
	Branch         string
	MatchedPattern string
	Commit         string
	Workspace      string
	Label          string
}

// HookPromoteResp contains response data from the hook handler.
type HookPromoteResp struct {
	Status   string
	ErrorMsg *string
}

// HookSvc describes the interactions with the hook handler.
type HookSvc interface {
	Promote(ctx context.Context, req HookPromoteReq) (HookPromoteResp, error)
}
