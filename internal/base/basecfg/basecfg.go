// Package basecfg loads the base device's YAML configuration, following the
// teacher's internal/config Load/default/validate shape.
package basecfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level base configuration document.
type Config struct {
	Radio     RadioConfig     `yaml:"radio"`
	Serial    SerialConfig    `yaml:"serial"`
	Button    ButtonConfig    `yaml:"button"`
	Indicator IndicatorConfig `yaml:"indicator"`
	OnConnect OnConnectConfig `yaml:"on_connect"`
}

// IndicatorConfig names the GPIO chip/line backing the connection-state LED.
// An empty Line means no physical indicator is wired and the caller should
// fall back to indicator.NullLine.
type IndicatorConfig struct {
	Chip string `yaml:"chip"`
	Line string `yaml:"line"`
}

// RadioConfig names the advertiser the base scans for.
type RadioConfig struct {
	TargetName string `yaml:"target_name"`
}

// SerialConfig points at the UART carrying the host uplink.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// ButtonConfig names the GPIO chip/line backing the host-triggered offload
// button.
type ButtonConfig struct {
	Chip string `yaml:"chip"`
	Line string `yaml:"line"`
}

// OnConnectConfig optionally requests a named log automatically every time
// the base connects to a shears, without waiting on an external trigger.
type OnConnectConfig struct {
	Basename string `yaml:"basename"`
}

// Load reads, defaults, and validates the base configuration at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Radio.TargetName == "" {
		cfg.Radio.TargetName = "WM-SHEARS"
	}
	if cfg.Serial.Device == "" {
		return Config{}, fmt.Errorf("serial.device is required")
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}

	return cfg, nil
}
