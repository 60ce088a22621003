package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-i", "-l", "-s", "-f", "-debounce", "-log-level", "-log-format"}

// parseFlags overlays cfg with command-line flags.
//
//	-a string     address:port of the remote store
//	-d string     path of the local SQLite queue
//	-i int        connectivity probe interval (seconds)
//	-l string     listen address of the local HTTP API ("" disables it)
//	-s int        periodic sync interval (seconds, 0 disables)
//	-f string     barcode formats, comma separated
//	-debounce     connectivity debounce window (e.g. 500ms)
//	-log-level    debug, info, warn or error
//	-log-format   text or json
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.HTTPAddr, "l", cfg.HTTPAddr, "local HTTP API listen address")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Seconds()), "periodic sync interval (in seconds)")
	fs.StringVar(&cfg.BarcodeFormats, "f", cfg.BarcodeFormats, "barcode formats")
	fs.DurationVar(&cfg.DebounceWindow, "debounce", cfg.DebounceWindow, "connectivity debounce window")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
	return nil
}
