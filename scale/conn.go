package scale

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/logger"
)

// Conn is the Driver implementation shared by every vendor protocol.
//
// It owns the transport client, the session state and the published weight. Host
// operations are serialized by opMu; the notification path only takes mu, so a
// transport that delivers notifications while a host call is blocked in a write
// cannot deadlock the driver.
type Conn struct {
	dev    ble.Device
	client ble.Client
	proto  Protocol
	cfg    *Config
	logger logger.Logger
	clock  Clock

	stateMgr *stateMgr
	metrics  Metrics

	opMu sync.Mutex // serializes Connect, Disconnect, Tare and Update

	// session fields, guarded by mu
	mu            sync.Mutex
	linked        bool // cleared by teardown; notifications are dropped while false
	weight        float64
	lastHeartbeat time.Time
	writer        *commandWriter

	// reconnect bookkeeping, guarded by opMu
	reconnectCount int
	lastReconnect  time.Time
}

// ensure Conn implements Driver interface.
var _ Driver = (*Conn)(nil)

// NewConn creates a driver for dev speaking proto over client.
func NewConn(dev ble.Device, client ble.Client, proto Protocol, opts ...Option) (*Conn, error) {
	if client == nil {
		return nil, errors.New("scale: client is nil")
	}
	if proto == nil {
		return nil, errors.New("scale: protocol is nil")
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		dev:    dev,
		client: client,
		proto:  proto,
		cfg:    cfg,
		logger: cfg.Logger().With("device", dev.String(), "protocol", proto.Name()),
		clock:  cfg.Clock(),
	}
	c.stateMgr = newStateMgr(c, cfg.stateHandlers...)

	return c, nil
}

// Device returns the identity the driver is bound to.
func (c *Conn) Device() ble.Device { return c.dev }

// Protocol returns the vendor protocol name.
func (c *Conn) Protocol() string { return c.proto.Name() }

// State returns the session state.
func (c *Conn) State() State { return c.stateMgr.State() }

// Metrics returns the driver counters.
func (c *Conn) Metrics() *Metrics { return &c.metrics }

// AddStateChangeHandler adds handlers invoked on every state transition.
func (c *Conn) AddStateChangeHandler(handlers ...StateChangeHandler) {
	c.stateMgr.AddHandler(handlers...)
}

// CurrentWeight returns the last validated weight in grams.
func (c *Conn) CurrentWeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.weight
}

// Connect links to the scale and runs the vendor handshake.
func (c *Conn) Connect() bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.connect(DisconnectedState)
}

// Disconnect sends the vendor shutdown command, if any, and releases the link.
func (c *Conn) Disconnect() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if sd, ok := c.proto.(Shutdowner); ok && c.State().IsConnected() && c.client.IsConnected() {
		if err := sd.Shutdown(c.commandWriter()); err != nil {
			c.logger.Warn("failed to send shutdown command", "error", err)
		}
	}

	c.teardown()
	c.reconnectCount = 0
	c.metrics.resetReconnectGauge()
	c.stateMgr.ToDisconnected()
	c.logger.Info("disconnected")
}

// IsConnected reports whether the session is connected and the link is still up.
func (c *Conn) IsConnected() bool {
	return c.verifyConnected()
}

// Tare zeroes the scale. It is a no-op returning false unless connected.
func (c *Conn) Tare() bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.tare()
}

// Update drives heartbeats and pending reconnects.
func (c *Conn) Update() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	switch c.State() {
	case ReconnectPendingState:
		c.reconnect()
	case ConnectedState:
		if c.verifyConnected() {
			c.heartbeat()
		}
	case DisconnectedState, LinkedState:
	}
}

// connect runs the full connect sequence. On failure the session moves to failState.
func (c *Conn) connect(failState State) bool {
	if c.State().IsConnected() && c.client.IsConnected() {
		c.logger.Info("already connected")
		return true
	}

	if !c.State().IsDisconnected() {
		// release whatever a lost link left behind before linking again
		c.teardown()
		c.stateMgr.ToDisconnected()
	}

	c.logger.Info("connecting")

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout())
	defer cancel()

	if err := c.client.Connect(ctx, c.dev); err != nil {
		c.logger.Error("failed to connect", "error", errors.Join(ErrLinkFailed, err))
		c.teardown()
		c.fail(failState)

		return false
	}

	if err := c.stateMgr.ToLinked(); err != nil {
		c.logger.Error("unexpected state after link", "state", c.State(), "error", err)
		c.teardown()
		c.fail(failState)

		return false
	}

	writer := &commandWriter{ack: c.cfg.WriteAck(), metrics: &c.metrics}

	c.mu.Lock()
	c.proto.Reset()
	c.weight = 0
	c.writer = writer
	c.linked = true
	c.mu.Unlock()

	c.logger.Debug("performing handshake")
	h := &Handshake{
		client: c.client,
		notify: c.handleNotification,
		logger: c.logger,
		writer: writer,
	}
	if err := c.proto.Handshake(h); err != nil {
		c.logger.Error("handshake failed", "error", err)
		c.teardown()
		c.fail(failState)

		return false
	}

	c.mu.Lock()
	c.lastHeartbeat = c.clock.Now()
	c.mu.Unlock()

	if g, ok := c.proto.(Greeter); ok {
		if err := g.Greet(writer); err != nil {
			c.logger.Warn("failed to send greeting command", "error", err)
		}
	}

	if err := c.stateMgr.ToConnected(); err != nil {
		c.logger.Error("unexpected state after handshake", "state", c.State(), "error", err)
		c.teardown()
		c.fail(failState)

		return false
	}
	c.logger.Info("connected")

	return true
}

func (c *Conn) fail(failState State) {
	if failState.IsReconnectPending() {
		_ = c.stateMgr.ToReconnectPending()
		return
	}
	c.stateMgr.ToDisconnected()
}

// teardown releases transport resources without touching the state.
func (c *Conn) teardown() {
	c.mu.Lock()
	c.linked = false
	c.writer = nil
	c.mu.Unlock()

	if err := c.client.Disconnect(); err != nil {
		c.logger.Debug("transport disconnect failed", "error", err)
	}
}

// verifyConnected checks the transport link of a connected session and marks a lost
// link for reconnection.
func (c *Conn) verifyConnected() bool {
	if !c.State().IsConnected() {
		return false
	}
	if c.client.IsConnected() {
		return true
	}

	if c.stateMgr.CompareAndSwap(ConnectedState, ReconnectPendingState) {
		c.metrics.incLinkLost()
		c.logger.Warn("link lost, marked for reconnection", "error", ErrLinkLost)
	}

	return false
}

func (c *Conn) reconnect() {
	maxAttempts := c.cfg.MaxReconnectAttempts()
	if maxAttempts > 0 && c.reconnectCount >= maxAttempts {
		c.logger.Error("giving up reconnection", "attempts", c.reconnectCount, "error", ErrReconnectExhausted)
		c.reconnectCount = 0
		c.metrics.resetReconnectGauge()
		c.stateMgr.ToDisconnected()

		return
	}

	now := c.clock.Now()
	if interval := c.cfg.ReconnectInterval(); interval > 0 && !c.lastReconnect.IsZero() && now.Sub(c.lastReconnect) < interval {
		return
	}

	c.reconnectCount++
	c.lastReconnect = now
	c.metrics.incReconnect()
	c.logger.Info("marked for reconnection, will attempt to reconnect", "attempt", c.reconnectCount)

	if !c.connect(ReconnectPendingState) {
		c.logger.Warn("failed to reconnect", "attempt", c.reconnectCount)
		return
	}

	c.reconnectCount = 0
	c.lastReconnect = time.Time{}
	c.metrics.resetReconnectGauge()
}

func (c *Conn) tare() bool {
	if !c.verifyConnected() {
		return false
	}

	if err := c.proto.Tare(c.commandWriter()); err != nil {
		c.logger.Warn("failed to send tare command", "error", err)
		return false
	}
	c.metrics.incTare()
	c.logger.Info("tare sent")

	return true
}

func (c *Conn) heartbeat() {
	hb, ok := c.proto.(Heartbeater)
	if !ok {
		return
	}

	interval := c.cfg.HeartbeatInterval()
	if interval == 0 {
		interval = hb.HeartbeatInterval()
	}

	now := c.clock.Now()

	c.mu.Lock()
	due := now.Sub(c.lastHeartbeat) >= interval
	c.mu.Unlock()

	if !due {
		return
	}

	if err := hb.Heartbeat(c.commandWriter()); err != nil {
		c.logger.Warn("failed to send heartbeat", "error", err)
		return
	}

	c.mu.Lock()
	c.lastHeartbeat = now
	c.mu.Unlock()

	c.metrics.incHeartbeat()
	c.logger.Debug("heartbeat sent")
}

func (c *Conn) commandWriter() CommandWriter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writer == nil {
		return &commandWriter{metrics: &c.metrics}
	}

	return c.writer
}

// handleNotification runs on the transport goroutine.
func (c *Conn) handleNotification(data []byte) {
	if c.State().IsDisconnected() {
		return
	}

	var (
		weights     []float64
		tareRequest bool
	)

	c.mu.Lock()
	if !c.linked {
		c.mu.Unlock()
		return
	}
	events := c.proto.Decode(data)
	for _, ev := range events {
		switch ev.Kind {
		case WeightEventKind:
			c.weight = ev.Grams
			c.metrics.markWeight(c.clock.Now())
			weights = append(weights, ev.Grams)
		case TareEventKind:
			tareRequest = true
		case FrameErrorEventKind:
			c.metrics.incFrameError(ev.Err)
			if errors.Is(ev.Err, ErrUnknownFrame) {
				c.logger.Debug("unhandled frame", "error", ev.Err, "frame", hex.EncodeToString(ev.Frame))
			} else {
				c.logger.Warn("frame discarded", "error", ev.Err, "frame", hex.EncodeToString(ev.Frame))
			}
		}
	}
	c.mu.Unlock()

	if len(weights) > 0 {
		for _, handler := range c.cfg.weightHandlerList() {
			for _, w := range weights {
				handler(c, w)
			}
		}
	}

	if tareRequest {
		// the scale asked for a tare; host operations may hold opMu while the
		// transport delivers this notification, so send it from another goroutine
		go c.Tare()
	}
}
