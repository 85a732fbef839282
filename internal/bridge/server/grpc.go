package server

import (
	"context"

	"github.com/msto63/scenebridge/internal/bridge/service"
	coreGrpc "github.com/msto63/scenebridge/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// BridgeServiceName is the fully qualified gRPC service name
const BridgeServiceName = "scenebridge.v1.Bridge"

// ExecuteMethod is the full method name of the Execute RPC
const ExecuteMethod = "/" + BridgeServiceName + "/Execute"

// BridgeServer is the server API for the Bridge service
type BridgeServer interface {
	// Execute runs one command line and returns its result string
	Execute(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// BridgeServiceDesc describes the Bridge service for grpc.Server.RegisterService
var BridgeServiceDesc = grpc.ServiceDesc{
	ServiceName: BridgeServiceName,
	HandlerType: (*BridgeServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Execute",
			Handler:    bridgeExecuteHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scenebridge/v1/bridge.proto",
}

// RegisterBridgeServer registers srv on s
func RegisterBridgeServer(s grpc.ServiceRegistrar, srv BridgeServer) {
	s.RegisterService(&BridgeServiceDesc, srv)
}

func bridgeExecuteHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BridgeServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ExecuteMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BridgeServer).Execute(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// BridgeClient is the client API for the Bridge service
type BridgeClient interface {
	Execute(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type bridgeClient struct {
	cc grpc.ClientConnInterface
}

// NewBridgeClient creates a client on an established connection
func NewBridgeClient(cc grpc.ClientConnInterface) BridgeClient {
	return &bridgeClient{cc: cc}
}

func (c *bridgeClient) Execute(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, ExecuteMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// grpcBridge adapts the service to BridgeServer
type grpcBridge struct {
	service *service.Service
}

// Ensure grpcBridge implements BridgeServer
var _ BridgeServer = (*grpcBridge)(nil)

// Execute implements BridgeServer.Execute. Command failures travel in
// the result string, so the RPC itself only fails on transport errors.
func (b *grpcBridge) Execute(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	result := b.service.Execute(ctx, service.Request{
		Line:      req.GetValue(),
		Transport: service.TransportGRPC,
		RequestID: coreGrpc.GetRequestID(ctx),
	})
	return wrapperspb.String(result), nil
}
