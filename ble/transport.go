package ble

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by lookups when a service, characteristic or descriptor does not exist.
	ErrNotFound = errors.New("ble: attribute not found")

	// ErrNotConnected is returned by operations that require an established link.
	ErrNotConnected = errors.New("ble: not connected")
)

// Device identifies one physical peripheral seen during a scan.
type Device struct {
	// Address is the peripheral's link layer address, empty when the transport hides it.
	Address string
	// Name is the advertised local name, possibly empty.
	Name string
}

// ID returns the opaque identity key of the device: its address, or its name when no address is known.
func (d Device) ID() string {
	if d.Address != "" {
		return d.Address
	}

	return d.Name
}

// String implements fmt.Stringer.
func (d Device) String() string {
	if d.Name == "" {
		return d.ID()
	}

	return d.Name + "[" + d.Address + "]"
}

// NotifyHandler receives the payload of one notification.
//
// The data slice is only valid for the duration of the call.
type NotifyHandler func(data []byte)

// Descriptor is a GATT characteristic descriptor.
type Descriptor interface {
	// Write writes value to the descriptor and waits for the peer acknowledgement.
	Write(value []byte) error
}

// Characteristic is a GATT characteristic.
type Characteristic interface {
	// UUID returns the characteristic identifier.
	UUID() UUID
	// CanNotify reports whether the characteristic supports notifications.
	CanNotify() bool
	// Write writes data to the characteristic. When waitForAck is true the call blocks
	// until the peer acknowledges the write.
	Write(data []byte, waitForAck bool) error
	// Subscribe enables notifications and registers handler for them.
	Subscribe(handler NotifyHandler) error
	// Descriptor looks up a descriptor, returning ErrNotFound when absent.
	Descriptor(id UUID) (Descriptor, error)
}

// Service is a GATT primary service.
type Service interface {
	// UUID returns the service identifier.
	UUID() UUID
	// Characteristic looks up a characteristic, returning ErrNotFound when absent.
	Characteristic(id UUID) (Characteristic, error)
}

// Client is a link to a single peripheral.
type Client interface {
	// Connect establishes the link layer connection to dev.
	Connect(ctx context.Context, dev Device) error
	// Disconnect releases the link and any subscriptions. It is safe to call when not connected.
	Disconnect() error
	// IsConnected reports whether the link is currently established.
	IsConnected() bool
	// Service looks up a primary service, returning ErrNotFound when absent.
	Service(id UUID) (Service, error)
}

// Dialer creates clients for discovered devices.
type Dialer interface {
	Dial(dev Device) (Client, error)
}

// DialerFunc adapts an ordinary function to the Dialer interface.
type DialerFunc func(dev Device) (Client, error)

// Dial calls f(dev).
func (f DialerFunc) Dial(dev Device) (Client, error) { return f(dev) }

// Central scans for advertising peripherals.
type Central interface {
	// Scan reports every received advertisement to handler until ctx is done or
	// scanning fails. Repeated advertisements of the same device are reported again.
	Scan(ctx context.Context, handler func(Device)) error
}
