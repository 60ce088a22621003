package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/vinscanner/internal/client/models"
	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/vinrpc"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      vinrpc.VehicleServiceClient
	tokens      TokenSource
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	var token string
	if s.tokens != nil {
		t, err := s.tokens(ctx)
		if err != nil && !errors.Is(err, common.ErrNoIdentity) {
			return fmt.Errorf("resolve access token: %w", err)
		}
		token = t
	}

	return invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a lazily connecting client for endpointURL.
func NewGRPCClient(endpointURL string, tokens TokenSource) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, tokens: tokens}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		vinrpc.CallOption(),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = vinrpc.NewVehicleServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &vinrpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) InsertVehicle(ctx context.Context, vin, ownerID string, createdAt time.Time) (*models.RemoteVehicle, error) {
	req := &vinrpc.InsertVehicleRequest{VIN: vin, OwnerID: ownerID, CreatedAt: createdAt.UTC()}

	resp, err := s.client.InsertVehicle(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Vehicle == nil {
		return nil, fmt.Errorf("%w: empty vehicle in response", ErrRejected)
	}

	return toModel(resp.Vehicle), nil
}

// ListVehicles returns one page of the owner's remote records, newest first.
// The server caps limit, so a full listing pages with offset until a short
// page comes back.
func (s *GRPCClient) ListVehicles(ctx context.Context, ownerID string, limit, offset int) ([]*models.RemoteVehicle, error) {
	req := &vinrpc.ListVehiclesRequest{OwnerID: ownerID, Limit: limit, Offset: offset}
	resp, err := s.client.ListVehicles(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	out := make([]*models.RemoteVehicle, 0, len(resp.Vehicles))
	for _, v := range resp.Vehicles {
		out = append(out, toModel(v))
	}
	return out, nil
}

func toModel(v *vinrpc.Vehicle) *models.RemoteVehicle {
	return &models.RemoteVehicle{
		RemoteID:  v.ID,
		VIN:       v.VIN,
		OwnerID:   v.OwnerID,
		CreatedAt: v.CreatedAt,
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
