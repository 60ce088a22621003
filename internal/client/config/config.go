package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the field client.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	HTTPAddr           string

	// Connectivity probing.
	OnlineCheckInterval time.Duration
	ProbeTimeout        time.Duration
	DebounceWindow      time.Duration

	// Sync engine.
	RemoteTimeout    time.Duration
	SyncInterval     time.Duration
	StatusResetDelay time.Duration

	// Capture.
	BarcodeFormats    string
	MaxImageDimension int
	MaxPhotoBytes     int64

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "vinscanner.db"
	c.HTTPAddr = ""

	c.OnlineCheckInterval = 3 * time.Second
	c.ProbeTimeout = 3 * time.Second
	c.DebounceWindow = time.Second

	c.RemoteTimeout = 10 * time.Second
	c.SyncInterval = 5 * time.Minute
	c.StatusResetDelay = 3 * time.Second

	c.BarcodeFormats = "code39,code128,datamatrix,qr"
	c.MaxImageDimension = 2000
	c.MaxPhotoBytes = 5 << 20

	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Load builds a Config from defaults, then the JSON file named by -c/-config
// (if any), then the command-line flags in args. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
