package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-s", "-t", "-log-level", "-log-format"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string       gRPC bind address (e.g., ":50051")
//	-d string       PostgreSQL DSN
//	-s string       JWT HMAC secret key
//	-t int          devtoken validity, minutes
//	-log-level      debug, info, warn or error
//	-log-format     text or json
//
// Only the flags listed above are passed to the flag set, see
// flagx.FilterArgs.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	return nil
}
