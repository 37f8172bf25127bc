package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/logger"
	"github.com/arloliu/go-scales/registry"
	"github.com/arloliu/go-scales/scale"
	"github.com/puzpuzpuz/xsync/v3"
)

// DriverHandler is invoked once for every driver the Manager creates.
type DriverHandler func(drv scale.Driver)

// Manager creates one driver per discovered scale and keeps it until removed.
// It is safe for concurrent use.
type Manager struct {
	reg     *registry.Registry
	dialer  ble.Dialer
	dedup   *Deduplicator
	drivers *xsync.MapOf[string, scale.Driver]
	cfg     *managerConfig
}

type managerConfig struct {
	logger         logger.Logger
	dedupCapacity  int
	autoConnect    bool
	driverOpts     []scale.Option
	driverHandlers []DriverHandler
}

// NewManager creates a Manager resolving devices with reg and linking them with dialer.
func NewManager(reg *registry.Registry, dialer ble.Dialer, opts ...Option) (*Manager, error) {
	if reg == nil {
		return nil, errors.New("discovery: registry is nil")
	}
	if dialer == nil {
		return nil, errors.New("discovery: dialer is nil")
	}

	cfg := &managerConfig{
		logger:        logger.GetLogger(),
		dedupCapacity: 64,
	}
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	dedup, err := NewDeduplicator(cfg.dedupCapacity)
	if err != nil {
		return nil, err
	}

	return &Manager{
		reg:     reg,
		dialer:  dialer,
		dedup:   dedup,
		drivers: xsync.NewMapOf[string, scale.Driver](),
		cfg:     cfg,
	}, nil
}

// HandleDevice processes one advertisement. It returns the driver created for dev,
// or false when dev was a duplicate, unsupported or could not be dialed.
func (m *Manager) HandleDevice(dev ble.Device) (scale.Driver, bool) {
	id := dev.ID()
	if id == "" {
		return nil, false
	}
	if m.dedup.Observe(id) {
		return nil, false
	}
	if _, ok := m.drivers.Load(id); ok {
		return nil, false
	}

	plugin, ok := m.reg.Resolve(dev)
	if !ok {
		m.cfg.logger.Debug("no driver for device", "device", dev.String())
		return nil, false
	}

	client, err := m.dialer.Dial(dev)
	if err != nil {
		m.cfg.logger.Warn("failed to dial device", "device", dev.String(), "error", err)
		m.dedup.Forget(id)

		return nil, false
	}

	drv, err := m.reg.Instantiate(plugin, dev, client, m.cfg.driverOpts...)
	if err != nil {
		m.cfg.logger.Error("failed to create driver", "device", dev.String(), "plugin", plugin.ID, "error", err)
		m.dedup.Forget(id)

		return nil, false
	}

	if _, loaded := m.drivers.LoadOrStore(id, drv); loaded {
		return nil, false
	}

	for _, handler := range m.cfg.driverHandlers {
		handler(drv)
	}

	if m.cfg.autoConnect && !drv.Connect() {
		m.cfg.logger.Warn("initial connect failed", "device", dev.String())
	}

	return drv, true
}

// Scan runs central's discovery until ctx is done or the central stops.
func (m *Manager) Scan(ctx context.Context, central ble.Central) error {
	err := central.Scan(ctx, func(dev ble.Device) {
		m.HandleDevice(dev)
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}

	return err
}

// UpdateAll calls Update on every driver.
func (m *Manager) UpdateAll() {
	m.drivers.Range(func(_ string, drv scale.Driver) bool {
		drv.Update()
		return true
	})
}

// RunUpdates calls UpdateAll every interval until ctx is done.
func (m *Manager) RunUpdates(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.UpdateAll()
		}
	}
}

// Driver returns the driver bound to the device id.
func (m *Manager) Driver(id string) (scale.Driver, bool) {
	return m.drivers.Load(id)
}

// Drivers returns every managed driver.
func (m *Manager) Drivers() []scale.Driver {
	drivers := make([]scale.Driver, 0, m.drivers.Size())
	m.drivers.Range(func(_ string, drv scale.Driver) bool {
		drivers = append(drivers, drv)
		return true
	})

	return drivers
}

// Remove disconnects and discards the driver bound to id.
func (m *Manager) Remove(id string) bool {
	drv, ok := m.drivers.LoadAndDelete(id)
	if !ok {
		return false
	}
	drv.Disconnect()
	m.dedup.Forget(id)
	m.cfg.logger.Info("driver removed", "device", id)

	return true
}

// ResetScanWindow forgets every observed advertisement. Managed drivers are kept.
func (m *Manager) ResetScanWindow() {
	m.dedup.Reset()
}

// Close disconnects and discards every driver.
func (m *Manager) Close() {
	m.drivers.Range(func(id string, _ scale.Driver) bool {
		m.Remove(id)
		return true
	})
}

// Option represents a functional option for a Manager.
type Option interface {
	apply(*managerConfig) error
}

type optFunc struct {
	name      string
	applyFunc func(*managerConfig) error
}

func (o *optFunc) apply(cfg *managerConfig) error {
	return o.applyFunc(cfg)
}

func newOptFunc(name string, f func(*managerConfig) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *managerConfig) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithDedupCapacity sets how many identities a scan window remembers. It should be between 1 and 4096.
// Defaults to 64.
func WithDedupCapacity(n int) Option {
	return newOptFunc("WithDedupCapacity", func(cfg *managerConfig) error {
		if n < 1 || n > 4096 {
			return errors.New("dedup capacity out of range [1, 4096]")
		}
		cfg.dedupCapacity = n

		return nil
	})
}

// WithAutoConnect makes the manager connect every driver right after creating it.
func WithAutoConnect(val bool) Option {
	return newOptFunc("WithAutoConnect", func(cfg *managerConfig) error {
		cfg.autoConnect = val
		return nil
	})
}

// WithDriverOptions sets the options passed to every created driver.
func WithDriverOptions(opts ...scale.Option) Option {
	return newOptFunc("WithDriverOptions", func(cfg *managerConfig) error {
		cfg.driverOpts = append(cfg.driverOpts, opts...)
		return nil
	})
}

// WithDriverHandler adds handlers invoked for every created driver, before it connects.
func WithDriverHandler(handlers ...DriverHandler) Option {
	return newOptFunc("WithDriverHandler", func(cfg *managerConfig) error {
		cfg.driverHandlers = append(cfg.driverHandlers, handlers...)
		return nil
	})
}
