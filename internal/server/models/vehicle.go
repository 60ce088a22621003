package models

import "time"

// Vehicle is one row of the append-only remote store.
type Vehicle struct {
	ID        string    `db:"id"`
	VIN       string    `db:"vin"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}
