package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sensorboard.control.v1.DashboardControl"

// -----------------------------------------------------------------------------
// Server side
// -----------------------------------------------------------------------------

// DashboardControlServer is implemented by ControlService. Messages are
// protobuf well-known types so no generated code is needed.
type DashboardControlServer interface {
	ListIntervals(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SelectInterval(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Refresh(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterDashboardControlServer(s grpc.ServiceRegistrar, srv DashboardControlServer) {
	s.RegisterService(&DashboardControl_ServiceDesc, srv)
}

var DashboardControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListIntervals", Handler: listIntervalsHandler},
		{MethodName: "SelectInterval", Handler: selectIntervalHandler},
		{MethodName: "Refresh", Handler: refreshHandler},
		{MethodName: "GetStatus", Handler: getStatusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sensorboard/control/v1/control.proto",
}

// -----------------------------------------------------------------------------

func unary[Req any](method string, call func(DashboardControlServer, context.Context, *Req) (interface{}, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DashboardControlServer), ctx, req.(*Req))
		})
	}
}

var (
	listIntervalsHandler = unary("ListIntervals", func(s DashboardControlServer, ctx context.Context, in *emptypb.Empty) (interface{}, error) {
		return s.ListIntervals(ctx, in)
	})
	selectIntervalHandler = unary("SelectInterval", func(s DashboardControlServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
		return s.SelectInterval(ctx, in)
	})
	refreshHandler = unary("Refresh", func(s DashboardControlServer, ctx context.Context, in *emptypb.Empty) (interface{}, error) {
		return s.Refresh(ctx, in)
	})
	getStatusHandler = unary("GetStatus", func(s DashboardControlServer, ctx context.Context, in *emptypb.Empty) (interface{}, error) {
		return s.GetStatus(ctx, in)
	})
)

// -----------------------------------------------------------------------------
// Client side
// -----------------------------------------------------------------------------

type DashboardControlClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardControlClient(cc grpc.ClientConnInterface) *DashboardControlClient {
	return &DashboardControlClient{cc: cc}
}

func (c *DashboardControlClient) ListIntervals(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/ListIntervals", &emptypb.Empty{}, out, opts...)
	return out, err
}

func (c *DashboardControlClient) SelectInterval(ctx context.Context, name string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/SelectInterval", wrapperspb.String(name), out, opts...)
	return out, err
}

func (c *DashboardControlClient) Refresh(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/Refresh", &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *DashboardControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetStatus", &emptypb.Empty{}, out, opts...)
	return out, err
}
