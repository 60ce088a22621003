// Package cli provides the interactive vinscanner field client.
//
// The REPL captures VINs from a directory of camera frames, a photo or
// manual entry, and shows the state of the local queue and of the sync
// engine. Connectivity monitoring and periodic sync run in the background
// and are wired by cmd/client; the REPL only talks to the services.
//
// Commands:
//   - login / logout   paste or forget the identity provider token
//   - camera <dir>     scan replayed frames until a valid VIN is found
//   - photo <file>     read a VIN from a still image
//   - manual [vin]     type a VIN
//   - status, sync     sync state and a manual sync run
//   - queue, purge     local records and removal of old synced ones
//   - recent, inventory [filter], export [file]   remote inventory
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
