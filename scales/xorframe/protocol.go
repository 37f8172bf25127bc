package xorframe

import (
	"time"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/scale"
)

// HeartbeatInterval is how often the scale expects a heartbeat.
const HeartbeatInterval = 2 * time.Second

var (
	tareCommand       = []byte{0x03, 0x0a, 0x01, 0x00, 0x00, 0x08}
	heartbeatPrefix   = []byte{0x02, 0x00}
	heartbeatSuffix   = []byte{0x00}
	notificationEvent = []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

	// notificationEnable is written to the weight characteristic's CCCD.
	notificationEnable = []byte{0x00, 0x01}
)

// Identifiers are the GATT identifiers a vendor exposes the framing on.
type Identifiers struct {
	Service ble.UUID
	Weight  ble.UUID
	Command ble.UUID
}

// Protocol implements scale.Protocol and scale.Heartbeater for the 20 byte framing.
type Protocol struct {
	name string
	ids  Identifiers
	dec  *Decoder
}

var (
	_ scale.Protocol    = (*Protocol)(nil)
	_ scale.Heartbeater = (*Protocol)(nil)
)

// NewProtocol creates a protocol named name using ids.
func NewProtocol(name string, ids Identifiers) *Protocol {
	return &Protocol{name: name, ids: ids, dec: NewDecoder()}
}

// Name returns the vendor name given to NewProtocol.
func (p *Protocol) Name() string { return p.name }

// Identifiers returns the GATT identifiers of the protocol.
func (p *Protocol) Identifiers() Identifiers { return p.ids }

// Handshake locates the service and both characteristics, enables weight
// notifications, re-arms the scale's notification stream and subscribes.
func (p *Protocol) Handshake(h *scale.Handshake) error {
	svc, err := h.Service(p.ids.Service)
	if err != nil {
		return err
	}

	weight, err := h.Characteristic(svc, p.ids.Weight)
	if err != nil {
		return err
	}
	command, err := h.Characteristic(svc, p.ids.Command)
	if err != nil {
		return err
	}

	if err := h.EnableNotifications(weight, notificationEnable); err != nil {
		return err
	}

	h.SetCommand(command)
	if err := sendNotificationRequest(h.Writer()); err != nil {
		return err
	}
	h.Logger().Debug("sent notification request")

	for _, ch := range []ble.Characteristic{weight, command} {
		if !ch.CanNotify() {
			continue
		}
		if err := h.Subscribe(ch); err != nil {
			return err
		}
	}

	return nil
}

// Decode appends data to the receive buffer and decodes every complete frame.
func (p *Protocol) Decode(data []byte) []scale.Event {
	return p.dec.Decode(data)
}

// Tare sends the tare command.
func (p *Protocol) Tare(w scale.CommandWriter) error {
	return w.WriteCommand(EncodeMessage(tareCommand))
}

// Reset drops any partially received frame.
func (p *Protocol) Reset() {
	p.dec.Reset()
}

// HeartbeatInterval returns the keep-alive period of the scale.
func (p *Protocol) HeartbeatInterval() time.Duration {
	return HeartbeatInterval
}

// Heartbeat sends the three part keep-alive sequence. It stops at the first failed write.
func (p *Protocol) Heartbeat(w scale.CommandWriter) error {
	if err := w.WriteCommand(EncodeMessage(heartbeatPrefix)); err != nil {
		return err
	}
	if err := sendNotificationRequest(w); err != nil {
		return err
	}

	return w.WriteCommand(EncodeMessage(heartbeatSuffix))
}

func sendNotificationRequest(w scale.CommandWriter) error {
	return w.WriteCommand(EncodeEvent(notificationEvent))
}
