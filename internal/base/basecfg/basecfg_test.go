package basecfg

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "base.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "serial:\n  device: /dev/ttyUSB0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Radio.TargetName != "WM-SHEARS" {
		t.Errorf("TargetName = %q", cfg.Radio.TargetName)
	}
	if cfg.Serial.Baud != 115200 {
		t.Errorf("Baud = %d", cfg.Serial.Baud)
	}
}

func TestLoadRequiresSerialDevice(t *testing.T) {
	path := writeConfig(t, "radio:\n  target_name: WM-SHEARS\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing serial.device")
	}
}

func TestLoadOnConnectBasename(t *testing.T) {
	path := writeConfig(t, "serial:\n  device: /dev/ttyUSB0\non_connect:\n  basename: gps_points.csv\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OnConnect.Basename != "gps_points.csv" {
		t.Errorf("OnConnect.Basename = %q", cfg.OnConnect.Basename)
	}
}
