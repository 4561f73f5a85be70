// Package shearscfg loads the shears device's YAML configuration, following
// the teacher's internal/config Load/default/validate shape.
package shearscfg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shears configuration document.
type Config struct {
	Radio     RadioConfig     `yaml:"radio"`
	GPS       GPSConfig       `yaml:"gps"`
	CSV       CSVConfig       `yaml:"csv"`
	Button    ButtonConfig    `yaml:"button"`
	Indicator IndicatorConfig `yaml:"indicator"`
}

// IndicatorConfig names the GPIO chip/line backing the connection-state LED.
// An empty Line means no physical indicator is wired and the caller should
// fall back to indicator.NullLine.
type IndicatorConfig struct {
	Chip string `yaml:"chip"`
	Line string `yaml:"line"`
}

// RadioConfig names the peripheral's advertised identity.
type RadioConfig struct {
	LocalName string `yaml:"local_name"`
	ServiceID uint16 `yaml:"service_id"`
}

// GPSConfig points at the serial device feeding the line assembler.
type GPSConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// CSVConfig names the persisted log file path.
type CSVConfig struct {
	Path string `yaml:"path"`
}

// ButtonConfig names the GPIO chip/line backing the save-request interrupt.
type ButtonConfig struct {
	Chip string `yaml:"chip"`
	Line string `yaml:"line"`
}

// SaveWorkerTick is how often the save coordinator polls its flag; fixed at
// ~100Hz rather than user-configurable, kept here only as a documented
// constant for callers that want to display it.
const SaveWorkerTick = 10 * time.Millisecond

// Load reads, defaults, and validates the shears configuration at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Radio.LocalName == "" {
		cfg.Radio.LocalName = "WM-SHEARS"
	}
	if cfg.Radio.ServiceID == 0 {
		cfg.Radio.ServiceID = 0xFFF0
	}
	if cfg.GPS.Device == "" {
		return Config{}, fmt.Errorf("gps.device is required")
	}
	if cfg.GPS.Baud == 0 {
		cfg.GPS.Baud = 9600
	}
	if cfg.CSV.Path == "" {
		cfg.CSV.Path = "/storage/gps_points.csv"
	}
	if cfg.Button.Chip == "" {
		return Config{}, fmt.Errorf("button.chip is required")
	}
	if cfg.Button.Line == "" {
		return Config{}, fmt.Errorf("button.line is required")
	}

	return cfg, nil
}
