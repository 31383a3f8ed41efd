package pkg

import (
	"context"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// HookPromoteMethod is the full name of the unary RPC that invokes the promotion process.
const HookPromoteMethod = "/promoter.hook.Hook/Promote"

// HookServiceDesc describes the hook service for the hook handlers implemented in Go.
var HookServiceDesc = grpc.ServiceDesc{
	ServiceName: "promoter.hook.Hook",
	HandlerType: (*HookSvc)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Promote",
			Handler:    hookPromoteHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "promoter/hook.proto",
}

// RegisterHookServer registers the hook handler in the gRPC server.
func RegisterHookServer(s grpc.ServiceRegistrar, h HookSvc) {
	s.RegisterService(&HookServiceDesc, h)
}

// EncodeHookPromoteReq converts the request to the wire struct.
func EncodeHookPromoteReq(req HookPromoteReq) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"promotion": req.PromotionID,
		"process":   req.Process,
		"job":       req.Job,
		"build":     req.BuildID,
		"branch":    req.Branch,
		"matched":   req.MatchedPattern,
		"commit":    req.Commit,
		"workspace": req.Workspace,
		"label":     req.Label,
	})
}

// DecodeHookPromoteReq converts the wire struct to the request.
func DecodeHookPromoteReq(s *structpb.Struct) HookPromoteReq {
	f := s.GetFields()
	return HookPromoteReq{
		PromotionID:    uint64(f["promotion"].GetNumberValue()),
		Process:        f["process"].GetStringValue(),
		Job:            f["job"].GetStringValue(),
		BuildID:        f["build"].GetStringValue(),
		Branch:         f["branch"].GetStringValue(),
		MatchedPattern: f["matched"].GetStringValue(),
		Commit:         f["commit"].GetStringValue(),
		Workspace:      f["workspace"].GetStringValue(),
		Label:          f["label"].GetStringValue(),
	}
}

// EncodeHookPromoteResp converts the response to the wire struct.
func EncodeHookPromoteResp(resp HookPromoteResp) (*structpb.Struct, error) {
	m := map[string]interface{}{"status": resp.Status}
	if resp.ErrorMsg != nil {
		m["errorMsg"] = *resp.ErrorMsg
	}
	return structpb.NewStruct(m)
}

// DecodeHookPromoteResp converts the wire struct to the response.
func DecodeHookPromoteResp(s *structpb.Struct) HookPromoteResp {
	f := s.GetFields()
	res := HookPromoteResp{Status: f["status"].GetStringValue()}
	if msg := f["errorMsg"].GetStringValue(); msg != "" {
		res.ErrorMsg = &msg
	}
	return res
}

func hookPromoteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		res, err := srv.(HookSvc).Promote(ctx, DecodeHookPromoteReq(req.(*structpb.Struct)))
		if err != nil {
			return nil, err
		}
		return EncodeHookPromoteResp(res)
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HookPromoteMethod,
	}
	return interceptor(ctx, in, info, call)
}
