package vinrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "vinscanner.VehicleService"

const (
	PingMethod          = "/" + ServiceName + "/Ping"
	InsertVehicleMethod = "/" + ServiceName + "/InsertVehicle"
	ListVehiclesMethod  = "/" + ServiceName + "/ListVehicles"
)

// VehicleServiceServer is implemented by the remote store.
type VehicleServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	InsertVehicle(context.Context, *InsertVehicleRequest) (*InsertVehicleResponse, error)
	ListVehicles(context.Context, *ListVehiclesRequest) (*ListVehiclesResponse, error)
}

// UnimplementedVehicleServiceServer can be embedded for forward compatibility.
type UnimplementedVehicleServiceServer struct{}

func (UnimplementedVehicleServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedVehicleServiceServer) InsertVehicle(context.Context, *InsertVehicleRequest) (*InsertVehicleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method InsertVehicle not implemented")
}

func (UnimplementedVehicleServiceServer) ListVehicles(context.Context, *ListVehiclesRequest) (*ListVehiclesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListVehicles not implemented")
}

func RegisterVehicleServiceServer(s grpc.ServiceRegistrar, srv VehicleServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VehicleServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PingMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VehicleServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func insertVehicleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(InsertVehicleRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VehicleServiceServer).InsertVehicle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InsertVehicleMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VehicleServiceServer).InsertVehicle(ctx, req.(*InsertVehicleRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listVehiclesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListVehiclesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VehicleServiceServer).ListVehicles(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListVehiclesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VehicleServiceServer).ListVehicles(ctx, req.(*ListVehiclesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VehicleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "InsertVehicle", Handler: insertVehicleHandler},
		{MethodName: "ListVehicles", Handler: listVehiclesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vinscanner/vehicle_service",
}

// VehicleServiceClient is the client side of VehicleServiceServer.
type VehicleServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	InsertVehicle(ctx context.Context, in *InsertVehicleRequest, opts ...grpc.CallOption) (*InsertVehicleResponse, error)
	ListVehicles(ctx context.Context, in *ListVehiclesRequest, opts ...grpc.CallOption) (*ListVehiclesResponse, error)
}

type vehicleServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVehicleServiceClient(cc grpc.ClientConnInterface) VehicleServiceClient {
	return &vehicleServiceClient{cc: cc}
}

func (c *vehicleServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, PingMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vehicleServiceClient) InsertVehicle(ctx context.Context, in *InsertVehicleRequest, opts ...grpc.CallOption) (*InsertVehicleResponse, error) {
	out := new(InsertVehicleResponse)
	if err := c.cc.Invoke(ctx, InsertVehicleMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vehicleServiceClient) ListVehicles(ctx context.Context, in *ListVehiclesRequest, opts ...grpc.CallOption) (*ListVehiclesResponse, error) {
	out := new(ListVehiclesResponse)
	if err := c.cc.Invoke(ctx, ListVehiclesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
