// Package vins is the durable local queue of captured VINs.
//
// Every accepted VIN is written here before the caller is told it was
// recorded, so it survives restarts and power loss until the sync engine
// has appended it to the remote store and flipped its synced flag. The
// queue owns the record lifecycle (create, mark synced, delete); nothing
// else writes the vin_records table.
//
// Records are drained oldest first. Local ids come from an AUTOINCREMENT
// key and are never reused, even after deletes.
package vins
