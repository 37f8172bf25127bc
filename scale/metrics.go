package scale

import (
	"errors"
	"sync/atomic"
	"time"
)

// Metrics contains atomic counters for one driver.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// FramesDecoded indicates the number of frames that passed validation.
	FramesDecoded atomic.Uint64
	// ChecksumErrors indicates the number of frames discarded for a checksum mismatch.
	ChecksumErrors atomic.Uint64
	// MalformedFrames indicates the number of frames discarded for a bad length or header.
	MalformedFrames atomic.Uint64
	// UnknownFrames indicates the number of well formed frames the decoder ignored.
	UnknownFrames atomic.Uint64

	// CommandsSent indicates the number of commands written to the scale.
	CommandsSent atomic.Uint64
	// CommandErrors indicates the number of failed command writes.
	CommandErrors atomic.Uint64
	// HeartbeatsSent indicates the number of completed heartbeat sequences.
	HeartbeatsSent atomic.Uint64
	// TaresSent indicates the number of tare commands sent.
	TaresSent atomic.Uint64

	// LinkLostCount indicates how many times an established link was found lost.
	LinkLostCount atomic.Uint64
	// ReconnectAttempts indicates the total number of reconnect attempts.
	ReconnectAttempts atomic.Uint64
	// ReconnectGauge indicates the number of consecutive failed reconnect attempts.
	ReconnectGauge atomic.Uint32

	lastWeightAt atomic.Int64
}

// LastWeightAt returns when the weight was last updated, or the zero time if never.
func (m *Metrics) LastWeightAt() time.Time {
	ns := m.lastWeightAt.Load()
	if ns == 0 {
		return time.Time{}
	}

	return time.Unix(0, ns)
}

func (m *Metrics) markWeight(t time.Time) {
	m.FramesDecoded.Add(1)
	m.lastWeightAt.Store(t.UnixNano())
}

func (m *Metrics) incFrameError(err error) {
	switch {
	case errors.Is(err, ErrChecksumMismatch):
		m.ChecksumErrors.Add(1)
	case errors.Is(err, ErrMalformedFrame):
		m.MalformedFrames.Add(1)
	default:
		m.UnknownFrames.Add(1)
	}
}

func (m *Metrics) incCommandSent() {
	m.CommandsSent.Add(1)
}

func (m *Metrics) incCommandErr() {
	m.CommandErrors.Add(1)
}

func (m *Metrics) incHeartbeat() {
	m.HeartbeatsSent.Add(1)
}

func (m *Metrics) incTare() {
	m.TaresSent.Add(1)
}

func (m *Metrics) incLinkLost() {
	m.LinkLostCount.Add(1)
}

func (m *Metrics) incReconnect() {
	m.ReconnectAttempts.Add(1)
	m.ReconnectGauge.Add(1)
}

func (m *Metrics) resetReconnectGauge() {
	m.ReconnectGauge.Store(0)
}
