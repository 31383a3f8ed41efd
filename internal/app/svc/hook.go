package svc

import (
	"context"
	"github.com/beldeveloper/gitflow-promoter/pkg"
	"github.com/beldeveloper/go-errors-context"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewHook creates a new instance of the hook client.
func NewHook(conn grpc.ClientConnInterface) pkg.HookSvc {
	return Hook{conn: conn}
}

// Hook implements a hook client.
type Hook struct {
	conn grpc.ClientConnInterface
}

// Promote calls hook handler in order to run the downstream promotion process.
func (s Hook) Promote(ctx context.Context, req pkg.HookPromoteReq) (pkg.HookPromoteResp, error) {
	var res pkg.HookPromoteResp
	in, err := pkg.EncodeHookPromoteReq(req)
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{Path: "svc.Hook.Promote.encode"})
	}
	out := new(structpb.Struct)
	err = s.conn.Invoke(ctx, pkg.HookPromoteMethod, in, out)
	if err != nil {
		return res, errors.WrapContext(err, errors.Context{
			Path:   "svc.Hook.Promote",
			Params: errors.Params{"promotion": req.PromotionID},
		})
	}
	return pkg.DecodeHookPromoteResp(out), nil
}
