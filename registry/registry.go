package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/logger"
	"github.com/arloliu/go-scales/scale"
)

var (
	// ErrFrozen is returned by Register after Freeze was called.
	ErrFrozen = errors.New("registry: frozen")

	// ErrDuplicateID is returned when a plugin with the same ID is already registered.
	ErrDuplicateID = errors.New("registry: duplicate plugin id")

	// ErrInvalidPlugin is returned when a plugin has an empty ID or a nil function.
	ErrInvalidPlugin = errors.New("registry: invalid plugin")
)

// MatchFunc reports whether a plugin handles the advertised device.
type MatchFunc func(dev ble.Device) bool

// CreateFunc builds a driver bound to dev over client.
type CreateFunc func(dev ble.Device, client ble.Client, opts ...scale.Option) (scale.Driver, error)

// Plugin describes one driver family.
type Plugin struct {
	// ID identifies the plugin, e.g. "bookoo".
	ID string
	// Matches is the name predicate.
	Matches MatchFunc
	// Create is the driver factory.
	Create CreateFunc
}

// Registry is an ordered set of plugins. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	ids     map[string]struct{}
	frozen  bool
	logger  logger.Logger
}

// New creates an empty registry.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		ids:    make(map[string]struct{}),
		logger: logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register appends p. Earlier registrations take priority in Resolve.
func (r *Registry) Register(p Plugin) error {
	if p.ID == "" || p.Matches == nil || p.Create == nil {
		return fmt.Errorf("%w: %q", ErrInvalidPlugin, p.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}
	if _, ok := r.ids[p.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
	}

	r.plugins = append(r.plugins, p)
	r.ids[p.ID] = struct{}{}
	r.logger.Debug("plugin registered", "plugin", p.ID, "priority", len(r.plugins)-1)

	return nil
}

// Freeze rejects further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

// Resolve returns the first plugin whose predicate matches dev.
func (r *Registry) Resolve(dev ble.Device) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Matches(dev) {
			return p, true
		}
	}

	return Plugin{}, false
}

// Instantiate creates a driver with p bound to dev.
func (r *Registry) Instantiate(p Plugin, dev ble.Device, client ble.Client, opts ...scale.Option) (scale.Driver, error) {
	if p.Create == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlugin, p.ID)
	}

	drv, err := p.Create(dev, client, opts...)
	if err != nil {
		return nil, fmt.Errorf("registry: create %s driver for %s: %w", p.ID, dev, err)
	}
	r.logger.Info("driver created", "plugin", p.ID, "device", dev.String())

	return drv, nil
}

// Plugins returns the registered plugins in priority order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Plugin(nil), r.plugins...)
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.plugins)
}

// Option represents a functional option for a Registry.
type Option interface {
	apply(*Registry) error
}

type optFunc struct {
	name      string
	applyFunc func(*Registry) error
}

func (o *optFunc) apply(r *Registry) error {
	return o.applyFunc(r)
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return &optFunc{name: "WithLogger", applyFunc: func(r *Registry) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		r.logger = l

		return nil
	}}
}

// WithPlugins registers plugins in the given order.
func WithPlugins(plugins ...Plugin) Option {
	return &optFunc{name: "WithPlugins", applyFunc: func(r *Registry) error {
		for _, p := range plugins {
			if err := r.Register(p); err != nil {
				return err
			}
		}

		return nil
	}}
}

// NamePrefix returns a MatchFunc matching advertised names that start with any of prefixes.
func NamePrefix(prefixes ...string) MatchFunc {
	return func(dev ble.Device) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(dev.Name, prefix) {
				return true
			}
		}

		return false
	}
}
