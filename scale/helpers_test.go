package scale

import (
	"testing"
	"time"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/ble/bletest"
	"github.com/arloliu/go-scales/logger"
	"github.com/stretchr/testify/require"
)

var (
	testServiceUUID = ble.UUID16(0xAAA0)
	testNotifyUUID  = ble.UUID16(0xAAA1)
	testCommandUUID = ble.UUID16(0xAAA2)
	testDevice      = ble.Device{Address: "c0:ff:ee:00:00:01", Name: "TestScale"}
	testStart       = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

const (
	testTareCmd      = 0x54
	testHeartbeatCmd = 0x48
	testGreetCmd     = 0x47
	testShutdownCmd  = 0x53
	testTareFrame    = 0xFF
	testBadFrame     = 0xEE
)

// fakeProtocol decodes single byte frames as grams, 0xFF as a tare request and
// 0xEE as a checksum failure.
type fakeProtocol struct {
	resets int
}

func (p *fakeProtocol) Name() string { return "fake" }

func (p *fakeProtocol) Handshake(h *Handshake) error {
	svc, err := h.Service(testServiceUUID)
	if err != nil {
		return err
	}
	notify, err := h.Characteristic(svc, testNotifyUUID)
	if err != nil {
		return err
	}
	cmd, err := h.Characteristic(svc, testCommandUUID)
	if err != nil {
		return err
	}
	if err := h.Subscribe(notify); err != nil {
		return err
	}
	h.SetCommand(cmd)

	return nil
}

func (p *fakeProtocol) Decode(data []byte) []Event {
	switch {
	case len(data) == 1 && data[0] == testTareFrame:
		return []Event{TareEvent()}
	case len(data) == 1 && data[0] == testBadFrame:
		return []Event{FrameErrorEvent(ErrChecksumMismatch, data)}
	case len(data) == 1:
		return []Event{WeightEvent(float64(data[0]))}
	default:
		return []Event{FrameErrorEvent(ErrMalformedFrame, data)}
	}
}

func (p *fakeProtocol) Tare(w CommandWriter) error { return w.WriteCommand([]byte{testTareCmd}) }
func (p *fakeProtocol) Reset()                     { p.resets++ }

func (p *fakeProtocol) HeartbeatInterval() time.Duration { return 2 * time.Second }
func (p *fakeProtocol) Heartbeat(w CommandWriter) error {
	return w.WriteCommand([]byte{testHeartbeatCmd})
}
func (p *fakeProtocol) Greet(w CommandWriter) error    { return w.WriteCommand([]byte{testGreetCmd}) }
func (p *fakeProtocol) Shutdown(w CommandWriter) error { return w.WriteCommand([]byte{testShutdownCmd}) }

type testRig struct {
	periph *bletest.Peripheral
	notify *bletest.Characteristic
	cmd    *bletest.Characteristic
	proto  *fakeProtocol
	clock  *ManualClock
	conn   *Conn
}

func newTestRig(t *testing.T, opts ...Option) *testRig {
	t.Helper()

	rig := &testRig{
		periph: bletest.NewPeripheral(testDevice),
		proto:  &fakeProtocol{},
		clock:  NewManualClock(testStart),
	}
	svc := rig.periph.AddService(testServiceUUID)
	rig.notify = svc.AddCharacteristic(testNotifyUUID, true)
	rig.cmd = svc.AddCharacteristic(testCommandUUID, false)

	opts = append([]Option{WithLogger(logger.NewNopMockLogger()), WithClock(rig.clock)}, opts...)
	conn, err := NewConn(testDevice, rig.periph, rig.proto, opts...)
	require.NoError(t, err)
	rig.conn = conn

	return rig
}

func (r *testRig) commands() []byte {
	var cmds []byte
	for _, data := range r.cmd.WrittenData() {
		cmds = append(cmds, data...)
	}

	return cmds
}
