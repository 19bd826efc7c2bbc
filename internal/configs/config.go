package configs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/PolarWolf314/tact/internal/artifacts"
	"github.com/PolarWolf314/tact/internal/frames"
	"github.com/PolarWolf314/tact/internal/qr"
)

// Config is the contents of config.toml.
type Config struct {
	Transfer TransferConfig `toml:"transfer" json:"transfer"`
	Import   ImportConfig   `toml:"import" json:"import"`
}

// TransferConfig controls how exports are split and rendered.
type TransferConfig struct {
	Capacity        int    `toml:"capacity" json:"capacity"`
	Overhead        int    `toml:"overhead" json:"overhead"`
	ImageSize       int    `toml:"image_size" json:"image_size"`
	FrameIntervalMS int    `toml:"frame_interval_ms" json:"frame_interval_ms"`
	Format          string `toml:"format" json:"format"`
}

// ImportConfig controls reassembly on the receiving side.
type ImportConfig struct {
	SessionIdleTimeout Duration `toml:"session_idle_timeout" json:"session_idle_timeout"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Transfer: TransferConfig{
			Capacity:        frames.DefaultCapacity,
			Overhead:        frames.DefaultOverhead,
			ImageSize:       qr.DefaultSize,
			FrameIntervalMS: int(artifacts.DefaultFrameInterval / time.Millisecond),
			Format:          string(artifacts.FormatAuto),
		},
		Import: ImportConfig{
			SessionIdleTimeout: Duration{10 * time.Minute},
		},
	}
}

// FrameOptions returns the split options described by the config.
func (c *Config) FrameOptions() frames.Options {
	return frames.Options{Capacity: c.Transfer.Capacity, Overhead: c.Transfer.Overhead}
}

// FrameInterval is the display time of one animation frame.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Transfer.FrameIntervalMS) * time.Millisecond
}

// Validate rejects values no export or import could work with.
func (c *Config) Validate() error {
	var errs []error

	if err := c.FrameOptions().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("transfer: %w", err))
	}
	if c.Transfer.ImageSize < 64 {
		errs = append(errs, fmt.Errorf("transfer.image_size must be at least 64, got %d", c.Transfer.ImageSize))
	}
	if c.Transfer.FrameIntervalMS < 10 {
		errs = append(errs, fmt.Errorf("transfer.frame_interval_ms must be at least 10, got %d", c.Transfer.FrameIntervalMS))
	}
	if _, err := artifacts.ParseFormat(c.Transfer.Format); err != nil {
		errs = append(errs, fmt.Errorf("transfer.format: %w", err))
	}
	if c.Import.SessionIdleTimeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("import.session_idle_timeout must not be negative"))
	}

	return errors.Join(errs...)
}

// LoadConfig reads config.toml, filling unset values from the defaults.
// A missing file yields the defaults.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(UserTactSettings.ConfigFile())
}

// LoadConfigFile is LoadConfig for an explicit path.
func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes config.toml.
func SaveConfig(config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	if err := SaveTOML(UserTactSettings.ConfigFile(), config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
