package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName      = "plone.tus.hooks.v1.HookHandler"
	invokeHookMethod = "/" + serviceName + "/InvokeHook"
)

// HookHandlerServer is the receiving side of GrpcHook.
type HookHandlerServer interface {
	InvokeHook(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// RegisterHookHandlerServer registers srv as the HookHandler service on s.
func RegisterHookHandlerServer(s grpc.ServiceRegistrar, srv HookHandlerServer) {
	s.RegisterService(&hookHandlerServiceDesc, srv)
}

func invokeHookHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HookHandlerServer).InvokeHook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: invokeHookMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HookHandlerServer).InvokeHook(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var hookHandlerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*HookHandlerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "InvokeHook",
			Handler:    invokeHookHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}
