package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"fatal", FatalLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlogLogger(t *testing.T) {
	t.Setenv("ENV", "")

	var buf bytes.Buffer
	l := NewSlogWriter(&buf, InfoLevel, false)
	assert.Equal(t, InfoLevel, l.Level())

	l.Debug("hidden")
	assert.Zero(t, buf.Len(), "debug record must be filtered at info level")

	l.With("device", "aa:bb").Info("connected", "rssi", -60)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "connected", rec["msg"])
	assert.Equal(t, "aa:bb", rec["device"])
	assert.Contains(t, rec, "ts")

	buf.Reset()
	child := l.With("k", "v")
	child.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level(), "child shares level with parent")
	l.Debug("visible")
	assert.NotZero(t, buf.Len())
}
