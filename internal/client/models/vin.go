// Package models defines client-side data models used by the field client.
package models

import "time"

// VinRecord is a captured VIN waiting in, or already drained from, the
// local durable queue.
type VinRecord struct {
	// LocalID is assigned by the store, increases monotonically and is never
	// reused.
	LocalID int64

	// VIN is always a validated, normalized 17 character VIN.
	VIN string

	// CapturedAt is the UTC time the VIN was enqueued.
	CapturedAt time.Time

	// Synced flips to true once the remote store accepted the record.
	Synced bool

	// SyncedAt is set together with Synced.
	SyncedAt *time.Time
}

// RemoteVehicle is a row of the remote append-only store.
type RemoteVehicle struct {
	RemoteID  string
	VIN       string
	OwnerID   string
	CreatedAt time.Time
}
