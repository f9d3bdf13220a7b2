// Package config loads the imx219d configuration from YAML, with
// environment overrides for the settings that differ per host.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial SerialConfig `yaml:"serial"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Log    LogConfig    `yaml:"log"`
	Sensor SensorConfig `yaml:"sensor"`
}

// SerialConfig selects the USB bridge. An empty Port autodetects by
// VendorID and ProductIDs.
type SerialConfig struct {
	Port       string   `yaml:"port"`
	VendorID   string   `yaml:"vendor_id"`
	ProductIDs []string `yaml:"product_ids"`
}

type MQTTConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Broker      string        `yaml:"broker"`
	ClientID    string        `yaml:"client_id"` // generated when empty
	TopicPrefix string        `yaml:"topic_prefix"`
	QoS         byte          `yaml:"qos"`
	KeepAlive   time.Duration `yaml:"keep_alive"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// SensorConfig is applied once at startup.
type SensorConfig struct {
	PowerOn  bool `yaml:"power_on"`
	Width    int  `yaml:"width"`
	Height   int  `yaml:"height"`
	Exposure int  `yaml:"exposure"`
	Gain     int  `yaml:"gain"`
	Stream   bool `yaml:"stream"`
}

func Defaults() *Config {
	return &Config{
		Serial: SerialConfig{
			VendorID:   "0483",
			ProductIDs: []string{"5740", "374B"},
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "imx219",
			QoS:         1,
			KeepAlive:   30 * time.Second,
		},
		Log: LogConfig{
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Sensor: SensorConfig{
			PowerOn: true,
			Width:   1920,
			Height:  1080,
			Gain:    16,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// Environment overrides are applied last and the result is validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("IMX219_SERIAL_PORT"); v != "" {
		cfg.Serial.Port = v
	}
	if v := os.Getenv("IMX219_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
		cfg.MQTT.Enabled = true
	}
	if v := os.Getenv("IMX219_MQTT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid IMX219_MQTT_ENABLED %q: %w", v, err)
		}
		cfg.MQTT.Enabled = enabled
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Serial.Port == "" && (c.Serial.VendorID == "" || len(c.Serial.ProductIDs) == 0) {
		errs = append(errs, errors.New("serial: port or vendor_id and product_ids required"))
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt: broker required"))
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, errors.New("mqtt: topic_prefix required"))
		}
		if c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("mqtt: qos %d out of range", c.MQTT.QoS))
		}
	}
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("log: unknown level %q", c.Log.Level))
	}
	if c.Sensor.Stream && (c.Sensor.Width == 0 || c.Sensor.Height == 0) {
		errs = append(errs, errors.New("sensor: stream requires width and height"))
	}
	if c.Sensor.Exposure < 0 || c.Sensor.Gain < 0 {
		errs = append(errs, errors.New("sensor: exposure and gain must not be negative"))
	}
	return errors.Join(errs...)
}
