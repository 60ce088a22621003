// Package client talks to the remote vehicle store.
//
// # Overview
//
// Client is the transport-agnostic contract used by the sync engine and the
// submit path: Ping for reachability, InsertVehicle to append one captured
// VIN, ListVehicles for the operator's inventory. GRPCClient implements it
// over gRPC, attaching the identity provider's access token to every call
// through a unary interceptor.
//
// # Error Handling
//
// gRPC status codes are mapped to sentinel errors matched with errors.Is:
// Unavailable and DeadlineExceeded become ErrUnavailable, Unauthenticated and
// PermissionDenied become ErrUnauthorized, InvalidArgument becomes
// ErrRejected. Anything else is wrapped as a generic rpc error.
package client
