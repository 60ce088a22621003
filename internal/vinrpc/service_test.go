package vinrpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type echoServer struct {
	UnimplementedVehicleServiceServer
}

func (echoServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (echoServer) InsertVehicle(_ context.Context, in *InsertVehicleRequest) (*InsertVehicleResponse, error) {
	return &InsertVehicleResponse{Vehicle: &Vehicle{ID: "r-1", VIN: in.VIN, OwnerID: in.OwnerID, CreatedAt: in.CreatedAt}}, nil
}

func dial(t *testing.T, opts ...grpc.ServerOption) VehicleServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer(opts...)
	RegisterVehicleServiceServer(srv, echoServer{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		CallOption(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewVehicleServiceClient(conn)
}

func TestCodecRegistered(t *testing.T) {
	assert.NotNil(t, encoding.GetCodec("json"))
}

func TestRoundTrip(t *testing.T) {
	c := dial(t)
	ctx := context.Background()

	pong, err := c.Ping(ctx, &PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", pong.Status)

	at := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)
	resp, err := c.InsertVehicle(ctx, &InsertVehicleRequest{VIN: "1HGCM82633A004352", OwnerID: "o-1", CreatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, "r-1", resp.Vehicle.ID)
	assert.Equal(t, "1HGCM82633A004352", resp.Vehicle.VIN)
	assert.True(t, at.Equal(resp.Vehicle.CreatedAt))

	_, err = c.ListVehicles(ctx, &ListVehiclesRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestRoundTrip_WithInterceptor(t *testing.T) {
	var seen []string
	c := dial(t, grpc.UnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}))
	ctx := context.Background()

	_, err := c.Ping(ctx, &PingRequest{})
	require.NoError(t, err)
	_, err = c.InsertVehicle(ctx, &InsertVehicleRequest{VIN: "x"})
	require.NoError(t, err)
	_, _ = c.ListVehicles(ctx, &ListVehiclesRequest{})

	assert.Equal(t, []string{PingMethod, InsertVehicleMethod, ListVehiclesMethod}, seen)
}
