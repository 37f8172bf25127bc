package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arloliu/go-scales/logger"
	"github.com/arloliu/go-scales/scale"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log:
  level: debug
scan:
  dedup_capacity: 16
  window: 30s
  update_interval: 250ms
  auto_connect: false
driver:
  heartbeat_interval: 1s
  write_ack: true
  connect_timeout: 5s
  max_reconnect_attempts: 10
  reconnect_interval: 2s
mqtt:
  enabled: true
  broker: tcp://broker:1883
  topic_prefix: kitchen/scales
  qos: 1
  encoding: cbor
metrics:
  enabled: true
  address: 127.0.0.1:9200
`

func TestParse(t *testing.T) {
	require := require.New(t)

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(err)
		require.Equal(Default(), cfg)
		require.Equal(logger.InfoLevel, cfg.LogLevel())
	})

	t.Run("Full file", func(t *testing.T) {
		cfg, err := Parse([]byte(sampleConfig))
		require.NoError(err)

		require.Equal(logger.DebugLevel, cfg.LogLevel())
		require.Equal(16, cfg.Scan.DedupCapacity)
		require.Equal(30*time.Second, cfg.Scan.Window)
		require.Equal(250*time.Millisecond, cfg.Scan.UpdateInterval)
		require.False(cfg.Scan.AutoConnect)
		require.Equal(time.Second, cfg.Driver.HeartbeatInterval)
		require.Equal(10, cfg.Driver.MaxReconnectAttempts)
		require.Equal("kitchen/scales", cfg.MQTT.TopicPrefix)
		require.Equal("go-scales", cfg.MQTT.ClientID, "unset fields keep their default")
		require.Equal("cbor", cfg.MQTT.Encoding)
		require.Equal("/metrics", cfg.Metrics.Path)

		drvCfg, err := scale.NewConfig(cfg.DriverOptions()...)
		require.NoError(err)
		require.True(drvCfg.WriteAck())
		require.Equal(5*time.Second, drvCfg.ConnectTimeout())
		require.Equal(2*time.Second, drvCfg.ReconnectInterval())
		require.Len(cfg.ManagerOptions(), 3)
	})

	t.Run("Invalid values", func(t *testing.T) {
		_, err := Parse([]byte(`
log:
  level: loud
scan:
  dedup_capacity: 0
driver:
  connect_timeout: 500ms
mqtt:
  enabled: true
  qos: 3
  encoding: xml
`))
		require.Error(err)
		require.ErrorContains(err, "log.level")
		require.ErrorContains(err, "scan.dedup_capacity out of range [1, 4096]")
		require.ErrorContains(err, "connect timeout out of range [1, 60]")
		require.ErrorContains(err, "mqtt.qos out of range [0, 2]")
		require.ErrorContains(err, `mqtt.encoding "xml" is not json or cbor`)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := Parse([]byte("scan: [unterminated"))
		require.Error(err)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.MQTT.Enabled)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
