// Package common defines constants and sentinel errors shared by the client
// and server sides of vinscanner. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Local queue errors.
	ErrEnqueueFailed = errors.New("failed to enqueue VIN")

	// Remote store errors.
	ErrRemoteAppend = errors.New("failed to append VIN to remote store")
	ErrUnavailable  = errors.New("remote store unavailable")

	// Identity errors.
	ErrNoIdentity      = errors.New("no resolved identity")
	ErrInvalidToken    = errors.New("invalid token")
	ErrOwnerMismatch   = errors.New("owner does not match token subject")
	ErrInternal        = errors.New("internal error")
	ErrInvalidArgument = errors.New("invalid argument")
)
