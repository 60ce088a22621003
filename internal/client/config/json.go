package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vinscanner/internal/flagx"
	"github.com/dmitrijs2005/vinscanner/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent keys leave the
// current value untouched.
type JsonConfig struct {
	ServerEndpointAddr  *string         `json:"server_endpoint_addr"`
	DatabasePath        *string         `json:"database_path"`
	HTTPAddr            *string         `json:"http_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	ProbeTimeout        *timex.Duration `json:"probe_timeout"`
	DebounceWindow      *timex.Duration `json:"debounce_window"`
	RemoteTimeout       *timex.Duration `json:"remote_timeout"`
	SyncInterval        *timex.Duration `json:"sync_interval"`
	StatusResetDelay    *timex.Duration `json:"status_reset_delay"`
	BarcodeFormats      *string         `json:"barcode_formats"`
	MaxImageDimension   *int            `json:"max_image_dimension"`
	MaxPhotoBytes       *int64          `json:"max_photo_bytes"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.HTTPAddr, jc.HTTPAddr)
	setString(&cfg.BarcodeFormats, jc.BarcodeFormats)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.ProbeTimeout != nil {
		cfg.ProbeTimeout = jc.ProbeTimeout.Duration
	}
	if jc.DebounceWindow != nil {
		cfg.DebounceWindow = jc.DebounceWindow.Duration
	}
	if jc.RemoteTimeout != nil {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.StatusResetDelay != nil {
		cfg.StatusResetDelay = jc.StatusResetDelay.Duration
	}
	if jc.MaxImageDimension != nil {
		cfg.MaxImageDimension = *jc.MaxImageDimension
	}
	if jc.MaxPhotoBytes != nil {
		cfg.MaxPhotoBytes = *jc.MaxPhotoBytes
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
