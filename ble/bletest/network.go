package bletest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/go-scales/ble"
)

// Network is a set of simulated peripherals. It implements ble.Central and ble.Dialer.
type Network struct {
	// ScanInterval is the pause between advertisement rounds. Zero makes Scan
	// advertise every peripheral once and return.
	ScanInterval time.Duration

	mu          sync.Mutex
	peripherals []*Peripheral
}

var (
	_ ble.Central = (*Network)(nil)
	_ ble.Dialer  = (*Network)(nil)
)

// NewNetwork creates a network holding the given peripherals.
func NewNetwork(peripherals ...*Peripheral) *Network {
	return &Network{peripherals: peripherals}
}

// Add adds a peripheral to the network.
func (n *Network) Add(p *Peripheral) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.peripherals = append(n.peripherals, p)
}

// Dial returns the peripheral advertising as dev.
func (n *Network) Dial(dev ble.Device) (ble.Client, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, p := range n.peripherals {
		if p.dev.ID() == dev.ID() {
			return p, nil
		}
	}

	return nil, fmt.Errorf("bletest: no peripheral %s: %w", dev, ble.ErrNotFound)
}

// Scan advertises every peripheral, in insertion order, once per round.
func (n *Network) Scan(ctx context.Context, handler func(ble.Device)) error {
	for {
		n.mu.Lock()
		devs := make([]ble.Device, len(n.peripherals))
		for i, p := range n.peripherals {
			devs[i] = p.dev
		}
		n.mu.Unlock()

		for _, dev := range devs {
			if err := ctx.Err(); err != nil {
				return err
			}
			handler(dev)
		}

		if n.ScanInterval <= 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.ScanInterval):
		}
	}
}
