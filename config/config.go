// Package config loads the YAML configuration of a scale bridge host.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arloliu/go-scales/discovery"
	"github.com/arloliu/go-scales/logger"
	"github.com/arloliu/go-scales/scale"
	"gopkg.in/yaml.v3"
)

// Config is the root of a bridge configuration file.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Scan    ScanConfig    `yaml:"scan"`
	Driver  DriverConfig  `yaml:"driver"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig configures the default logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error or fatal.
	Level     string `yaml:"level"`
	AddSource bool   `yaml:"add_source"`
}

// ScanConfig configures discovery.
type ScanConfig struct {
	// DedupCapacity is how many devices a scan window remembers.
	DedupCapacity int `yaml:"dedup_capacity"`
	// Window is how often the scan window is reset. Zero never resets it.
	Window time.Duration `yaml:"window"`
	// UpdateInterval is how often every driver's Update runs.
	UpdateInterval time.Duration `yaml:"update_interval"`
	// AutoConnect connects drivers as soon as they are created.
	AutoConnect bool `yaml:"auto_connect"`
}

// DriverConfig holds the options applied to every driver.
type DriverConfig struct {
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	WriteAck             bool          `yaml:"write_ack"`
	ConnectTimeout       time.Duration `yaml:"connect_timeout"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	ReconnectInterval    time.Duration `yaml:"reconnect_interval"`
}

// MQTTConfig configures the reading publisher.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
	Retained    bool   `yaml:"retained"`
	// Encoding is the payload encoding, json or cbor.
	Encoding string `yaml:"encoding"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used for fields a file leaves out.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Scan: ScanConfig{
			DedupCapacity:  64,
			UpdateInterval: 100 * time.Millisecond,
			AutoConnect:    true,
		},
		Driver: DriverConfig{
			ConnectTimeout: 10 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "go-scales",
			TopicPrefix: "scales",
			QoS:         0,
			Encoding:    "json",
		},
		Metrics: MetricsConfig{
			Address: ":9100",
			Path:    "/metrics",
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Scan.DedupCapacity < 1 || c.Scan.DedupCapacity > 4096 {
		errs = append(errs, errors.New("scan.dedup_capacity out of range [1, 4096]"))
	}
	if c.Scan.Window < 0 {
		errs = append(errs, errors.New("scan.window must not be negative"))
	}
	if c.Scan.UpdateInterval < 10*time.Millisecond {
		errs = append(errs, errors.New("scan.update_interval must be at least 10ms"))
	}
	if _, err := scale.NewConfig(c.driverOptions()...); err != nil {
		errs = append(errs, fmt.Errorf("driver: %w", err))
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt.broker is required"))
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, errors.New("mqtt.topic_prefix is required"))
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, errors.New("mqtt.qos out of range [0, 2]"))
		}
		if c.MQTT.Encoding != "json" && c.MQTT.Encoding != "cbor" {
			errs = append(errs, fmt.Errorf("mqtt.encoding %q is not json or cbor", c.MQTT.Encoding))
		}
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		errs = append(errs, errors.New("metrics.address is required"))
	}

	return errors.Join(errs...)
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() logger.Level {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.InfoLevel
	}

	return level
}

// DriverOptions returns the driver options described by the configuration.
func (c Config) DriverOptions(extra ...scale.Option) []scale.Option {
	return append(c.driverOptions(), extra...)
}

// ManagerOptions returns the discovery manager options described by the configuration.
func (c Config) ManagerOptions(extra ...scale.Option) []discovery.Option {
	return []discovery.Option{
		discovery.WithDedupCapacity(c.Scan.DedupCapacity),
		discovery.WithAutoConnect(c.Scan.AutoConnect),
		discovery.WithDriverOptions(c.DriverOptions(extra...)...),
	}
}

func (c Config) driverOptions() []scale.Option {
	return []scale.Option{
		scale.WithHeartbeatInterval(c.Driver.HeartbeatInterval),
		scale.WithWriteAck(c.Driver.WriteAck),
		scale.WithConnectTimeout(c.Driver.ConnectTimeout),
		scale.WithMaxReconnectAttempts(c.Driver.MaxReconnectAttempts),
		scale.WithReconnectInterval(c.Driver.ReconnectInterval),
	}
}
