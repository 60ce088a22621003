// Package grpc exposes the remote vehicle store over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/vinscanner/internal/logging"
	"github.com/dmitrijs2005/vinscanner/internal/server/models"
	"github.com/dmitrijs2005/vinscanner/internal/vinrpc"
)

// VehicleService is the part of the store the handlers need.
type VehicleService interface {
	Insert(ctx context.Context, ownerID, vin string, createdAt time.Time) (*models.Vehicle, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*models.Vehicle, error)
}

type GRPCServer struct {
	vinrpc.UnimplementedVehicleServiceServer
	address   string
	vehicles  VehicleService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, vs VehicleService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		vehicles:  vs,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	vinrpc.RegisterVehicleServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-done:
		}
	}()

	if err := srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}

	return nil
}
