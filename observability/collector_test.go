package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/ble/bletest"
	"github.com/arloliu/go-scales/logger"
	"github.com/arloliu/go-scales/scale"
	"github.com/arloliu/go-scales/scales/decent"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnectedDriver(t *testing.T) (scale.Driver, *bletest.Characteristic) {
	t.Helper()

	dev := ble.Device{Address: "11:22:33:44:55:66", Name: "Decent Scale"}
	periph := bletest.NewPeripheral(dev)
	svc := periph.AddService(decent.ServiceUUID)
	read := svc.AddCharacteristic(decent.ReadUUID, true)
	svc.AddCharacteristic(decent.WriteUUID, false)

	drv, err := decent.New(dev, periph, scale.WithLogger(logger.NewNopMockLogger()))
	require.NoError(t, err)
	require.True(t, drv.Connect())

	return drv, read
}

func TestCollector(t *testing.T) {
	drv, read := newConnectedDriver(t)
	require.True(t, read.Notify([]byte{0x03, 0xCA, 0x00, 0x64, 0x00, 0x00, 0x00}))
	require.True(t, read.Notify([]byte{0x03, 0xCA, 0x00, 0x64, 0x00, 0x00, 0x01}))

	c := NewCollector(DriverSourceFunc(func() []scale.Driver { return []scale.Driver{drv} }))

	expected := `
# HELP scale_weight_grams Last validated weight in grams.
# TYPE scale_weight_grams gauge
scale_weight_grams{device="11:22:33:44:55:66",protocol="decent"} 10
# HELP scale_connected Whether the driver session is connected.
# TYPE scale_connected gauge
scale_connected{device="11:22:33:44:55:66",protocol="decent"} 1
# HELP scale_frame_errors_total Discarded frames by reason.
# TYPE scale_frame_errors_total counter
scale_frame_errors_total{device="11:22:33:44:55:66",protocol="decent",reason="checksum"} 1
scale_frame_errors_total{device="11:22:33:44:55:66",protocol="decent",reason="malformed"} 0
scale_frame_errors_total{device="11:22:33:44:55:66",protocol="decent",reason="unknown"} 0
# HELP scale_frames_decoded_total Frames that passed validation.
# TYPE scale_frames_decoded_total counter
scale_frames_decoded_total{device="11:22:33:44:55:66",protocol="decent"} 1
# HELP scale_commands_sent_total Commands written to the scale.
# TYPE scale_commands_sent_total counter
scale_commands_sent_total{device="11:22:33:44:55:66",protocol="decent"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"scale_weight_grams",
		"scale_connected",
		"scale_frame_errors_total",
		"scale_frames_decoded_total",
		"scale_commands_sent_total",
	))

	// 4 single series, 4 states, 3 frame error reasons and 7 counters
	assert.Equal(t, 18, testutil.CollectAndCount(c))

	drv.Disconnect()
	expected = `
# HELP scale_session_state Driver session state, 1 for the current state.
# TYPE scale_session_state gauge
scale_session_state{device="11:22:33:44:55:66",protocol="decent",state="connected"} 0
scale_session_state{device="11:22:33:44:55:66",protocol="decent",state="disconnected"} 1
scale_session_state{device="11:22:33:44:55:66",protocol="decent",state="linked"} 0
scale_session_state{device="11:22:33:44:55:66",protocol="decent",state="reconnect-pending"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "scale_session_state"))
}

func TestCollectorWithoutDrivers(t *testing.T) {
	c := NewCollector(DriverSourceFunc(func() []scale.Driver { return nil }))
	assert.Zero(t, testutil.CollectAndCount(c))

	problems, err := testutil.CollectAndLint(c)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestHandler(t *testing.T) {
	drv, _ := newConnectedDriver(t)

	handler, err := Handler(DriverSourceFunc(func() []scale.Driver { return []scale.Driver{drv} }))
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `scale_connected{device="11:22:33:44:55:66",protocol="decent"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
