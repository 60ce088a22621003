package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/server/models"
	"github.com/dmitrijs2005/vinscanner/internal/vinrpc"
)

func (s *GRPCServer) Ping(ctx context.Context, req *vinrpc.PingRequest) (*vinrpc.PingResponse, error) {

	return &vinrpc.PingResponse{Status: "OK"}, nil

}

// authorizedOwner checks that requested matches the token subject. An empty
// request owner means the caller's own records.
func authorizedOwner(ctx context.Context, requested string) (string, error) {
	owner, ok := ownerFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "no identity")
	}
	if requested != "" && requested != owner {
		return "", status.Error(codes.PermissionDenied, common.ErrOwnerMismatch.Error())
	}
	return owner, nil
}

func (s *GRPCServer) InsertVehicle(ctx context.Context, req *vinrpc.InsertVehicleRequest) (*vinrpc.InsertVehicleResponse, error) {

	owner, err := authorizedOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	v, err := s.vehicles.Insert(ctx, owner, req.VIN, req.CreatedAt)
	if err != nil {
		if errors.Is(err, common.ErrInvalidArgument) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.logger.Error(ctx, "insert failed", "owner", owner, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.logger.Info(ctx, "Vehicle stored", "id", v.ID, "owner", owner)
	return &vinrpc.InsertVehicleResponse{Vehicle: toWire(v)}, nil

}

func (s *GRPCServer) ListVehicles(ctx context.Context, req *vinrpc.ListVehiclesRequest) (*vinrpc.ListVehiclesResponse, error) {

	owner, err := authorizedOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	list, err := s.vehicles.List(ctx, owner, req.Limit, req.Offset)
	if err != nil {
		s.logger.Error(ctx, "list failed", "owner", owner, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	out := make([]*vinrpc.Vehicle, 0, len(list))
	for _, v := range list {
		out = append(out, toWire(v))
	}

	return &vinrpc.ListVehiclesResponse{Vehicles: out}, nil

}

func toWire(v *models.Vehicle) *vinrpc.Vehicle {
	return &vinrpc.Vehicle{
		ID:        v.ID,
		VIN:       v.VIN,
		OwnerID:   v.OwnerID,
		CreatedAt: v.CreatedAt.UTC(),
	}
}
