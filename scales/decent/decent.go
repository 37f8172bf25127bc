package decent

import (
	"fmt"
	"time"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/registry"
	"github.com/arloliu/go-scales/scale"
)

// PluginID identifies the Decent plugin in a registry.
const PluginID = "plugin-decent"

// NamePrefix is the advertised name prefix of Decent scales.
const NamePrefix = "Decent Scale"

// HeartbeatInterval is how often the scale expects a keep-alive.
const HeartbeatInterval = 5 * time.Second

// GATT identifiers.
var (
	ServiceUUID = ble.UUID16(0xFFF0)
	ReadUUID    = ble.UUID16(0xFFF4)
	WriteUUID   = ble.UUID16(0x36F5)
)

const (
	header      = 0x03
	tagWeight   = 0xCA
	tagWeightV2 = 0xCE
)

var (
	tareCommand       = []byte{0x03, 0x0F, 0x00, 0x00, 0x00, 0x01, 0x0C}
	displayOnCommand  = []byte{0x03, 0x0A, 0x01}
	displayOffCommand = []byte{0x03, 0x0A, 0x00}
	heartbeatCommand  = []byte{0x03, 0x0A, 0x03, 0xFF, 0xFF, 0x00, 0x0A}
)

// DecodeFrame decodes one notification.
func DecodeFrame(frame []byte) scale.Event {
	if n := len(frame); n != 7 && n != 10 {
		return scale.FrameErrorEvent(fmt.Errorf("%w: length %d", scale.ErrMalformedFrame, n), frame)
	}
	if frame[0] != header || (frame[1] != tagWeight && frame[1] != tagWeightV2) {
		return scale.FrameErrorEvent(fmt.Errorf("%w: header %02X tag %02X", scale.ErrMalformedFrame, frame[0], frame[1]), frame)
	}

	last := len(frame) - 1
	if want := frame[last]; want != 0 {
		var sum byte
		for _, b := range frame[:last] {
			sum ^= b
		}
		if sum != want {
			return scale.FrameErrorEvent(fmt.Errorf("%w: calc[%02X] but actual[%02X]", scale.ErrChecksumMismatch, sum, want), frame)
		}
	}

	raw := int16(uint16(frame[2])<<8 | uint16(frame[3]))

	return scale.WeightEvent(float64(raw) / 10)
}

// Protocol implements scale.Protocol for Decent scales.
type Protocol struct{}

var (
	_ scale.Protocol    = Protocol{}
	_ scale.Heartbeater = Protocol{}
	_ scale.Greeter     = Protocol{}
	_ scale.Shutdowner  = Protocol{}
)

// Name returns "decent".
func (Protocol) Name() string { return "decent" }

// Handshake locates both characteristics and subscribes to the read characteristic,
// which must support notifications.
func (Protocol) Handshake(h *scale.Handshake) error {
	svc, err := h.Service(ServiceUUID)
	if err != nil {
		return err
	}

	read, err := h.Characteristic(svc, ReadUUID)
	if err != nil {
		return err
	}
	write, err := h.Characteristic(svc, WriteUUID)
	if err != nil {
		return err
	}
	h.SetCommand(write)

	return h.Subscribe(read)
}

// Decode decodes one notification as a single frame.
func (Protocol) Decode(data []byte) []scale.Event {
	return []scale.Event{DecodeFrame(data)}
}

// Tare sends the tare command.
func (Protocol) Tare(w scale.CommandWriter) error {
	return w.WriteCommand(tareCommand)
}

// Reset is a no-op: frames never span notifications.
func (Protocol) Reset() {}

// HeartbeatInterval returns the keep-alive period of the scale.
func (Protocol) HeartbeatInterval() time.Duration { return HeartbeatInterval }

// Heartbeat sends the keep-alive command.
func (Protocol) Heartbeat(w scale.CommandWriter) error {
	return w.WriteCommand(heartbeatCommand)
}

// Greet turns the display on.
func (Protocol) Greet(w scale.CommandWriter) error {
	return w.WriteCommand(displayOnCommand)
}

// Shutdown turns the display off.
func (Protocol) Shutdown(w scale.CommandWriter) error {
	return w.WriteCommand(displayOffCommand)
}

// New creates a driver for the Decent scale dev.
func New(dev ble.Device, client ble.Client, opts ...scale.Option) (*scale.Conn, error) {
	return scale.NewConn(dev, client, Protocol{}, opts...)
}

// Plugin returns the registry plugin for Decent scales.
func Plugin() registry.Plugin {
	return registry.Plugin{
		ID:      PluginID,
		Matches: registry.NamePrefix(NamePrefix),
		Create: func(dev ble.Device, client ble.Client, opts ...scale.Option) (scale.Driver, error) {
			drv, err := New(dev, client, opts...)
			if err != nil {
				return nil, err
			}

			return drv, nil
		},
	}
}
