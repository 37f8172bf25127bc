package scale

import (
	"time"

	"github.com/arloliu/go-scales/ble"
)

// Driver is the uniform control surface of a connected scale.
//
// No method returns an error: failures are logged and reported through the
// boolean and float results.
type Driver interface {
	// Connect links to the scale and runs the vendor handshake.
	// It returns true when the session is connected, including when it already was.
	Connect() bool
	// Disconnect sends the vendor shutdown command, if any, and releases the link.
	Disconnect()
	// IsConnected reports whether the session is connected and the link is still up.
	// A lost link moves the session to ReconnectPendingState.
	IsConnected() bool
	// Tare zeroes the scale. It is a no-op returning false unless connected.
	Tare() bool
	// Update drives heartbeats and pending reconnects. Call it periodically.
	Update()
	// CurrentWeight returns the last validated weight in grams.
	CurrentWeight() float64

	// Device returns the identity the driver is bound to.
	Device() ble.Device
	// Protocol returns the vendor protocol name.
	Protocol() string
	// State returns the session state.
	State() State
	// Metrics returns the driver counters.
	Metrics() *Metrics
}

// EventKind classifies decoder output.
type EventKind uint8

const (
	// WeightEventKind carries a validated weight.
	WeightEventKind EventKind = iota + 1
	// TareEventKind asks the driver to send its tare command.
	TareEventKind
	// FrameErrorEventKind reports a discarded frame.
	FrameErrorEventKind
)

// Event is one result of decoding notification bytes.
type Event struct {
	Kind EventKind
	// Grams is set for WeightEventKind.
	Grams float64
	// Err is set for FrameErrorEventKind and wraps one of the frame errors.
	Err error
	// Frame holds a copy of the offending bytes for FrameErrorEventKind.
	Frame []byte
}

// WeightEvent creates a weight event.
func WeightEvent(grams float64) Event {
	return Event{Kind: WeightEventKind, Grams: grams}
}

// TareEvent creates a tare request event.
func TareEvent() Event {
	return Event{Kind: TareEventKind}
}

// FrameErrorEvent creates a frame error event holding a copy of frame.
func FrameErrorEvent(err error, frame []byte) Event {
	return Event{Kind: FrameErrorEventKind, Err: err, Frame: append([]byte(nil), frame...)}
}

// CommandWriter sends commands to the scale's command characteristic.
type CommandWriter interface {
	// WriteCommand writes one command using the driver's acknowledgement setting.
	WriteCommand(data []byte) error
}

// Protocol is the vendor specific part of a driver.
//
// Conn serializes every call, so implementations need no locking of their own.
type Protocol interface {
	// Name returns a short vendor name used in logs and metrics.
	Name() string
	// Handshake locates the vendor service and characteristics and subscribes to notifications.
	Handshake(h *Handshake) error
	// Decode consumes the bytes of one notification and returns the resulting events.
	Decode(data []byte) []Event
	// Tare sends the vendor tare command.
	Tare(w CommandWriter) error
	// Reset clears decoder state before a new connection.
	Reset()
}

// Heartbeater is implemented by protocols that need periodic keep-alive commands.
type Heartbeater interface {
	HeartbeatInterval() time.Duration
	// Heartbeat sends one complete heartbeat sequence.
	Heartbeat(w CommandWriter) error
}

// Greeter is implemented by protocols that send a command once the handshake succeeded.
type Greeter interface {
	Greet(w CommandWriter) error
}

// Shutdowner is implemented by protocols that send a command before the link is released.
type Shutdowner interface {
	Shutdown(w CommandWriter) error
}
