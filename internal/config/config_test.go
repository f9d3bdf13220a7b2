package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imx219d.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyACM3
mqtt:
  enabled: true
  broker: tcp://broker:1883
  topic_prefix: cam0
  keep_alive: 5s
sensor:
  width: 1280
  height: 720
  exposure: 80000
  stream: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serial.Port != "/dev/ttyACM3" {
		t.Errorf("port %q", cfg.Serial.Port)
	}
	if cfg.Serial.VendorID != "0483" {
		t.Errorf("vendor id default lost: %q", cfg.Serial.VendorID)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.TopicPrefix != "cam0" || cfg.MQTT.KeepAlive != 5*time.Second {
		t.Errorf("mqtt %+v", cfg.MQTT)
	}
	if cfg.Sensor.Width != 1280 || cfg.Sensor.Height != 720 || !cfg.Sensor.Stream || cfg.Sensor.Gain != 16 {
		t.Errorf("sensor %+v", cfg.Sensor)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IMX219_SERIAL_PORT", "/dev/ttyUSB9")
	t.Setenv("IMX219_MQTT_BROKER", "tcp://10.0.0.2:1883")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serial.Port != "/dev/ttyUSB9" {
		t.Errorf("port %q", cfg.Serial.Port)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "tcp://10.0.0.2:1883" {
		t.Errorf("mqtt %+v", cfg.MQTT)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("level %q", cfg.Log.Level)
	}

	t.Setenv("IMX219_MQTT_ENABLED", "maybe")
	if _, err := Load(""); err == nil {
		t.Error("expected error for bad IMX219_MQTT_ENABLED")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"no serial", func(c *Config) { c.Serial.VendorID = "" }, "serial"},
		{"no broker", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Broker = "" }, "broker"},
		{"bad qos", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.QoS = 3 }, "qos"},
		{"bad level", func(c *Config) { c.Log.Level = "LOUD" }, "level"},
		{"stream without mode", func(c *Config) { c.Sensor.Stream = true; c.Sensor.Width = 0 }, "stream"},
		{"negative gain", func(c *Config) { c.Sensor.Gain = -1 }, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
