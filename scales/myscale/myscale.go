// Package myscale drives Blackcoffee and MY_SCALE branded scales.
//
// Notifications of at least 15 bytes carry the weight in milligrams as a 28 bit
// magnitude in the low nibble of byte 3 and bytes 4..6, with the sign in the high
// nibble of byte 2.
package myscale

import (
	"fmt"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/registry"
	"github.com/arloliu/go-scales/scale"
)

// PluginID identifies the plugin in a registry.
const PluginID = "plugin-myscale"

// MinFrameSize is the shortest notification carrying a weight.
const MinFrameSize = 15

// NamePrefixes are the advertised name prefixes handled by this package.
var NamePrefixes = []string{"blackcoffee", "my_scale", "MY_SCALE"}

// GATT identifiers.
var (
	ServiceUUID = ble.UUID16(0xFFB0)
	DataUUID    = ble.UUID16(0xFFB2)
	WriteUUID   = ble.UUID16(0xFFB1)
)

var (
	// the trailing 0xD2 0xD2 is fixed by the vendor, not a checksum
	tareCommand = []byte{
		0xAC, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0xD2, 0xD2,
	}

	notificationEnable = []byte{0x01, 0x00}
)

// DecodeFrame decodes one notification.
func DecodeFrame(frame []byte) scale.Event {
	if len(frame) < MinFrameSize {
		return scale.FrameErrorEvent(fmt.Errorf("%w: length %d", scale.ErrMalformedFrame, len(frame)), frame)
	}

	magnitude := uint32(frame[3]&0x0F)<<24 | uint32(frame[4])<<16 | uint32(frame[5])<<8 | uint32(frame[6])
	grams := float64(magnitude) / 1000

	if sign := frame[2] >> 4; sign == 0x8 || sign == 0xC {
		grams = -grams
	}

	return scale.WeightEvent(grams)
}

// Protocol implements scale.Protocol for this scale family.
type Protocol struct{}

var _ scale.Protocol = Protocol{}

// Name returns "myscale".
func (Protocol) Name() string { return "myscale" }

// Handshake subscribes to the data characteristic. The write characteristic is
// optional; without it Tare fails.
func (Protocol) Handshake(h *scale.Handshake) error {
	svc, err := h.Service(ServiceUUID)
	if err != nil {
		return err
	}

	data, err := h.Characteristic(svc, DataUUID)
	if err != nil {
		return err
	}
	if !data.CanNotify() {
		return fmt.Errorf("%w: %s", scale.ErrNotifyUnsupported, DataUUID)
	}

	if _, err := data.Descriptor(ble.CCCDUUID); err == nil {
		if err := h.EnableNotifications(data, notificationEnable); err != nil {
			return err
		}
	}
	if err := h.Subscribe(data); err != nil {
		return err
	}

	if write, err := h.Characteristic(svc, WriteUUID); err != nil {
		h.Logger().Warn("write characteristic not found, tare unavailable", "error", err)
	} else {
		h.SetCommand(write)
	}

	return nil
}

// Decode decodes one notification as a single frame.
func (Protocol) Decode(data []byte) []scale.Event {
	return []scale.Event{DecodeFrame(data)}
}

// Tare sends the fixed tare command. The driver writes without response unless
// scale.WithWriteAck is set.
func (Protocol) Tare(w scale.CommandWriter) error {
	return w.WriteCommand(tareCommand)
}

// Reset is a no-op: frames never span notifications.
func (Protocol) Reset() {}

// New creates a driver for dev.
func New(dev ble.Device, client ble.Client, opts ...scale.Option) (*scale.Conn, error) {
	return scale.NewConn(dev, client, Protocol{}, opts...)
}

// Plugin returns the registry plugin for this scale family.
func Plugin() registry.Plugin {
	return registry.Plugin{
		ID:      PluginID,
		Matches: registry.NamePrefix(NamePrefixes...),
		Create: func(dev ble.Device, client ble.Client, opts ...scale.Option) (scale.Driver, error) {
			drv, err := New(dev, client, opts...)
			if err != nil {
				return nil, err
			}

			return drv, nil
		},
	}
}
