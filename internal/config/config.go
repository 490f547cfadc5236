package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	// Beacon tracking
	DefaultExpiration = 10 * time.Second // Drop beacons not refreshed for this long

	// Display
	TargetFPS      = 10 // Snapshot refresh rate of the TUI
	EventLogSize   = 64 // Lifecycle events kept in the event log panel
	TempHistoryLen = 60 // Telemetry samples kept per beacon

	// Demo mode
	DemoBeacons  = 10
	DemoInterval = 250 * time.Millisecond

	// App
	AppName    = "EDDYSTONE-RADAR"
	AppVersion = "1.0"

	// EnvPrefix prefixes environment overrides, e.g. BEACON_RADAR_EXPIRATION.
	EnvPrefix = "BEACON_RADAR"
)

// Flag names.
const (
	FlagDemo        = "demo"
	FlagAdapter     = "adapter"
	FlagExpiration  = "expiration"
	FlagHeadless    = "headless"
	FlagLogFile     = "log-file"
	FlagLogLevel    = "log-level"
	FlagMetricsAddr = "metrics-addr"
)

// Config is the runtime configuration assembled from flags and environment.
type Config struct {
	Demo        bool
	Adapter     string
	Expiration  time.Duration
	Headless    bool
	LogFile     string
	LogLevel    zapcore.Level
	MetricsAddr string
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Bool(FlagDemo, false, "Run in demo mode with fake beacons (no Bluetooth required)")
	fs.String(FlagAdapter, "hci0", "Bluetooth adapter to use")
	fs.Duration(FlagExpiration, DefaultExpiration, "Drop beacons not refreshed within this window")
	fs.Bool(FlagHeadless, false, "Log beacon events instead of starting the terminal UI")
	fs.String(FlagLogFile, "", "Write logs to this file (TUI mode discards logs otherwise)")
	fs.String(FlagLogLevel, "info", "Log level (debug, info, warn, error)")
	fs.String(FlagMetricsAddr, "", "Serve prometheus metrics on this address, e.g. :9102")
}

// Load reads the configuration from the parsed flags in fs, letting
// BEACON_RADAR_* environment variables override unset flags.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}

	cfg := Config{
		Demo:        v.GetBool(FlagDemo),
		Adapter:     v.GetString(FlagAdapter),
		Expiration:  v.GetDuration(FlagExpiration),
		Headless:    v.GetBool(FlagHeadless),
		LogFile:     v.GetString(FlagLogFile),
		MetricsAddr: v.GetString(FlagMetricsAddr),
	}

	if cfg.Expiration < 0 {
		return Config{}, fmt.Errorf("invalid %s %v: must not be negative", FlagExpiration, cfg.Expiration)
	}
	if cfg.Expiration == 0 {
		cfg.Expiration = DefaultExpiration
	}

	level, err := zapcore.ParseLevel(v.GetString(FlagLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FlagLogLevel, err)
	}
	cfg.LogLevel = level

	return cfg, nil
}
