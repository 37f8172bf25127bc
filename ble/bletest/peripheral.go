package bletest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-scales/ble"
)

// Peripheral is a simulated GATT server. It implements ble.Client.
type Peripheral struct {
	dev ble.Device

	mu           sync.Mutex
	connected    bool
	connectErr   error
	services     map[ble.UUID]*Service
	connectCount atomic.Int32
}

var _ ble.Client = (*Peripheral)(nil)

// NewPeripheral creates a disconnected peripheral advertising as dev.
func NewPeripheral(dev ble.Device) *Peripheral {
	return &Peripheral{
		dev:      dev,
		services: make(map[ble.UUID]*Service),
	}
}

// Device returns the advertised identity.
func (p *Peripheral) Device() ble.Device { return p.dev }

// AddService adds a primary service.
func (p *Peripheral) AddService(id ble.UUID) *Service {
	p.mu.Lock()
	defer p.mu.Unlock()

	svc := &Service{id: id, peripheral: p, chars: make(map[ble.UUID]*Characteristic)}
	p.services[id] = svc

	return svc
}

// SetConnectError makes subsequent Connect calls fail with err. A nil err restores success.
func (p *Peripheral) SetConnectError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connectErr = err
}

// ConnectCount returns how many times Connect was called.
func (p *Peripheral) ConnectCount() int {
	return int(p.connectCount.Load())
}

// Drop simulates a link loss: the peripheral reports not connected and drops subscriptions.
func (p *Peripheral) Drop() {
	p.mu.Lock()
	p.connected = false
	svcs := p.serviceList()
	p.mu.Unlock()

	for _, svc := range svcs {
		svc.unsubscribeAll()
	}
}

func (p *Peripheral) Connect(ctx context.Context, dev ble.Device) error {
	p.connectCount.Add(1)

	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if dev.ID() != p.dev.ID() {
		return fmt.Errorf("bletest: peripheral %s cannot connect to %s", p.dev, dev)
	}
	if p.connectErr != nil {
		return p.connectErr
	}
	p.connected = true

	return nil
}

func (p *Peripheral) Disconnect() error {
	p.Drop()
	return nil
}

func (p *Peripheral) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.connected
}

func (p *Peripheral) Service(id ble.UUID) (ble.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		return nil, ble.ErrNotConnected
	}
	svc, ok := p.services[id]
	if !ok {
		return nil, fmt.Errorf("service %s: %w", id, ble.ErrNotFound)
	}

	return svc, nil
}

func (p *Peripheral) serviceList() []*Service {
	svcs := make([]*Service, 0, len(p.services))
	for _, svc := range p.services {
		svcs = append(svcs, svc)
	}

	return svcs
}

// Service is a simulated GATT service.
type Service struct {
	id         ble.UUID
	peripheral *Peripheral

	mu    sync.Mutex
	chars map[ble.UUID]*Characteristic
}

func (s *Service) UUID() ble.UUID { return s.id }

// AddCharacteristic adds a characteristic; canNotify controls CanNotify.
func (s *Service) AddCharacteristic(id ble.UUID, canNotify bool) *Characteristic {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &Characteristic{
		id:         id,
		canNotify:  canNotify,
		peripheral: s.peripheral,
		descs:      make(map[ble.UUID]*Descriptor),
	}
	s.chars[id] = c

	return c
}

func (s *Service) Characteristic(id ble.UUID) (ble.Characteristic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chars[id]
	if !ok {
		return nil, fmt.Errorf("characteristic %s: %w", id, ble.ErrNotFound)
	}

	return c, nil
}

func (s *Service) unsubscribeAll() {
	s.mu.Lock()
	chars := make([]*Characteristic, 0, len(s.chars))
	for _, c := range s.chars {
		chars = append(chars, c)
	}
	s.mu.Unlock()

	for _, c := range chars {
		c.mu.Lock()
		c.handler = nil
		c.mu.Unlock()
	}
}

// Write is one recorded characteristic write.
type Write struct {
	Data       []byte
	WaitForAck bool
}

// Characteristic is a simulated GATT characteristic.
type Characteristic struct {
	id         ble.UUID
	canNotify  bool
	peripheral *Peripheral

	mu       sync.Mutex
	handler  ble.NotifyHandler
	writes   []Write
	writeErr error
	descs    map[ble.UUID]*Descriptor
}

func (c *Characteristic) UUID() ble.UUID  { return c.id }
func (c *Characteristic) CanNotify() bool { return c.canNotify }

// AddDescriptor adds a descriptor, typically ble.CCCDUUID.
func (c *Characteristic) AddDescriptor(id ble.UUID) *Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := &Descriptor{id: id, peripheral: c.peripheral}
	c.descs[id] = d

	return d
}

func (c *Characteristic) Descriptor(id ble.UUID) (ble.Descriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.descs[id]
	if !ok {
		return nil, fmt.Errorf("descriptor %s: %w", id, ble.ErrNotFound)
	}

	return d, nil
}

// SetWriteError makes subsequent writes fail with err.
func (c *Characteristic) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeErr = err
}

func (c *Characteristic) Write(data []byte, waitForAck bool) error {
	if !c.peripheral.IsConnected() {
		return ble.ErrNotConnected
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, Write{Data: append([]byte(nil), data...), WaitForAck: waitForAck})

	return nil
}

// Writes returns a copy of every write received so far.
func (c *Characteristic) Writes() []Write {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Write(nil), c.writes...)
}

// WrittenData returns the payload of every write received so far.
func (c *Characteristic) WrittenData() [][]byte {
	writes := c.Writes()
	data := make([][]byte, len(writes))
	for i, w := range writes {
		data[i] = w.Data
	}

	return data
}

// ClearWrites forgets recorded writes.
func (c *Characteristic) ClearWrites() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writes = nil
}

func (c *Characteristic) Subscribe(handler ble.NotifyHandler) error {
	if !c.canNotify {
		return fmt.Errorf("bletest: characteristic %s cannot notify", c.id)
	}
	if !c.peripheral.IsConnected() {
		return ble.ErrNotConnected
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler = handler

	return nil
}

// Subscribed reports whether a notification handler is registered.
func (c *Characteristic) Subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.handler != nil
}

// Notify delivers data to the subscribed handler on the calling goroutine.
// It reports whether a handler received the notification.
func (c *Characteristic) Notify(data []byte) bool {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()

	if h == nil || !c.peripheral.IsConnected() {
		return false
	}
	h(append([]byte(nil), data...))

	return true
}

// Descriptor is a simulated GATT descriptor.
type Descriptor struct {
	id         ble.UUID
	peripheral *Peripheral

	mu     sync.Mutex
	writes [][]byte
}

func (d *Descriptor) Write(value []byte) error {
	if !d.peripheral.IsConnected() {
		return ble.ErrNotConnected
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes = append(d.writes, append([]byte(nil), value...))

	return nil
}

// Writes returns every value written to the descriptor.
func (d *Descriptor) Writes() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([][]byte(nil), d.writes...)
}
