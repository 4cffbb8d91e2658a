// Package config loads the YAML configuration used by the example programs.
//
// A minimal file:
//
//	device:
//	  bus: "1"
//	  address: 0x51
//	request:
//	  voltage_mv: 9000
//	log:
//	  level: debug
//
// Fields left out of the file take their value from Default.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-pdsink/protocol"
	"github.com/moffa90/go-pdsink/sink"
)

// Config is the top-level configuration.
type Config struct {
	Device      DeviceConfig      `yaml:"device"`
	Request     RequestConfig     `yaml:"request"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Log         LogConfig         `yaml:"log"`
	Trace       TraceConfig       `yaml:"trace"`
}

// DeviceConfig selects the controller on the I2C bus.
type DeviceConfig struct {
	// Bus is the periph bus name; empty opens the first bus found.
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// RequestConfig is the power contract to request after negotiation.
type RequestConfig struct {
	VoltageMV uint16 `yaml:"voltage_mv"`
	// CurrentMA of zero keeps the maximum current offered by the source.
	CurrentMA uint16 `yaml:"current_ma"`
}

// CalibrationConfig holds the thermistor and derating settings.
type CalibrationConfig struct {
	NTC       NTCConfig `yaml:"ntc"`
	DeratingC uint8     `yaml:"derating_c"`
}

// NTCConfig is the thermistor resistance, in ohms, at four temperatures.
type NTCConfig struct {
	TR25  uint16 `yaml:"tr25"`
	TR50  uint16 `yaml:"tr50"`
	TR75  uint16 `yaml:"tr75"`
	TR100 uint16 `yaml:"tr100"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TraceConfig enables recording of register transfers.
type TraceConfig struct {
	// Path of the CBOR trace file. Empty disables tracing.
	Path string `yaml:"path"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Address: protocol.DefaultAddress,
		},
		Request: RequestConfig{
			VoltageMV: 9000,
		},
		Calibration: CalibrationConfig{
			NTC: NTCConfig{
				TR25:  sink.DefaultNTC.TR25,
				TR50:  sink.DefaultNTC.TR50,
				TR75:  sink.DefaultNTC.TR75,
				TR100: sink.DefaultNTC.TR100,
			},
			DeratingC: 120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML configuration file and fills unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()

	if c.Device.Address == 0 {
		c.Device.Address = d.Device.Address
	}
	if c.Request.VoltageMV == 0 {
		c.Request.VoltageMV = d.Request.VoltageMV
	}
	if c.Calibration.NTC == (NTCConfig{}) {
		c.Calibration.NTC = d.Calibration.NTC
	}
	if c.Calibration.DeratingC == 0 {
		c.Calibration.DeratingC = d.Calibration.DeratingC
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks values that cannot be corrected by defaults.
func (c *Config) Validate() error {
	if c.Device.Address > 0x7F {
		return fmt.Errorf("device.address 0x%X is not a 7-bit address", c.Device.Address)
	}
	if n := c.Calibration.NTC; n.TR25 == 0 || n.TR50 == 0 || n.TR75 == 0 || n.TR100 == 0 {
		return errors.New("calibration.ntc: all four resistances must be set")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	return nil
}

// NTCTable returns the thermistor table in the form sink.Session.SetNTC takes.
func (c *Config) NTCTable() sink.NTCTable {
	n := c.Calibration.NTC
	return sink.NTCTable{TR25: n.TR25, TR50: n.TR50, TR75: n.TR75, TR100: n.TR100}
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger returns a logger writing to w in the configured format and level.
// An invalid level falls back to info.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
