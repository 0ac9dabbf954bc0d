// Package config resolves settings for the ergonomics commands.
// Priority (highest to lowest): CLI flags > environment variables > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
	"github.com/teslashibe/go-moto-ergo/pkg/ergonomics"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables.
const (
	EnvPort        = "PORT"
	EnvDataPath    = "ERGO_DATA"
	EnvZonesFile   = "ERGO_ZONES_FILE"
	EnvRidingStyle = "ERGO_RIDING_STYLE"
	EnvLogLevel    = "LOG_LEVEL"

	EnvShoulderOffsetRatio = "ERGO_SHOULDER_OFFSET_RATIO"
)

// DefaultPort is the HTTP port when neither flag nor PORT is set.
const DefaultPort = 8080

// Config holds the resolved settings.
type Config struct {
	// Port is the HTTP listen port
	Port int `json:"port"`

	// DataPath is the comparison store file. Empty keeps comparisons in memory.
	DataPath string `json:"data_path"`

	// ZonesFile is an optional YAML comfort table replacing the built-in one
	ZonesFile string `json:"zones_file,omitempty"`

	// RidingStyle is used when a request names none
	RidingStyle comfort.RidingStyle `json:"riding_style"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level"`

	// ShoulderOffsetRatio is the share of torso length subtracted from the
	// seat-bar distance when estimating arm reach
	ShoulderOffsetRatio float64 `json:"shoulder_offset_ratio"`
}

// Overrides carries CLI flag values. nil fields were not given.
type Overrides struct {
	Port        *int
	DataPath    *string
	ZonesFile   *string
	RidingStyle *string
	LogLevel    *string

	ShoulderOffsetRatio *float64
}

// DefaultDataPath returns ~/.moto-ergo/comparisons.json, or a relative path
// when the home directory is unknown.
func DefaultDataPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".moto-ergo", "comparisons.json")
	}
	return filepath.Join(homeDir, ".moto-ergo", "comparisons.json")
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port:        DefaultPort,
		DataPath:    DefaultDataPath(),
		RidingStyle: comfort.DefaultStyle,
		LogLevel:    "info",

		ShoulderOffsetRatio: ergonomics.DefaultShoulderOffsetRatio,
	}
}

// Load applies environment variables on top of the defaults.
func Load() (Config, error) {
	return LoadWithOverrides(Overrides{})
}

// LoadWithOverrides applies environment variables and then CLI flags on top
// of the defaults, and validates the result.
func LoadWithOverrides(o Overrides) (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvPort, v)
		}
		cfg.Port = port
	}
	if v, ok := os.LookupEnv(EnvDataPath); ok {
		cfg.DataPath = v
	}
	if v := os.Getenv(EnvZonesFile); v != "" {
		cfg.ZonesFile = v
	}
	if v := os.Getenv(EnvRidingStyle); v != "" {
		cfg.RidingStyle = comfort.RidingStyle(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvShoulderOffsetRatio); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvShoulderOffsetRatio, v)
		}
		cfg.ShoulderOffsetRatio = ratio
	}

	if o.Port != nil {
		cfg.Port = *o.Port
	}
	if o.DataPath != nil {
		cfg.DataPath = *o.DataPath
	}
	if o.ZonesFile != nil {
		cfg.ZonesFile = *o.ZonesFile
	}
	if o.RidingStyle != nil {
		cfg.RidingStyle = comfort.RidingStyle(*o.RidingStyle)
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.ShoulderOffsetRatio != nil {
		cfg.ShoulderOffsetRatio = *o.ShoulderOffsetRatio
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges and enum values.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port)
	}
	if _, ok := comfort.ParseRidingStyle(string(c.RidingStyle)); !ok {
		return fmt.Errorf("%w: unknown riding style %q", ErrInvalid, c.RidingStyle)
	}
	if err := c.angles().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c Config) angles() ergonomics.Config {
	return ergonomics.Config{ShoulderOffsetRatio: c.ShoulderOffsetRatio}
}

// Calculator returns an angle calculator using ShoulderOffsetRatio.
func (c Config) Calculator() (*ergonomics.Calculator, error) {
	calc, err := ergonomics.NewCalculator(c.angles())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return calc, nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Zones loads ZonesFile, or returns the built-in table when it is empty.
func (c Config) Zones() (*comfort.Table, error) {
	if c.ZonesFile == "" {
		return comfort.Default(), nil
	}
	return comfort.LoadFile(c.ZonesFile)
}
