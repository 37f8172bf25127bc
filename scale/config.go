package scale

import (
	"errors"
	"sync"
	"time"

	"github.com/arloliu/go-scales/logger"
)

// WeightHandler is invoked with every validated weight, in grams.
//
// It runs on the transport's notification goroutine after the session lock is released.
type WeightHandler func(drv Driver, grams float64)

// Config represents the tunables of a driver.
type Config struct {
	mu sync.RWMutex

	// heartbeatInterval overrides the vendor's heartbeat interval. Zero keeps the vendor default.
	heartbeatInterval time.Duration

	// writeAck makes command writes wait for the peer acknowledgement.
	// Defaults to false (write without response).
	writeAck bool

	// connectTimeout bounds the transport link establishment. It should be between 1 and 60 seconds.
	// Defaults to 10 seconds.
	connectTimeout time.Duration

	// maxReconnectAttempts caps consecutive failed reconnect attempts before the driver gives up
	// and returns to the disconnected state. Zero means unlimited.
	// Defaults to 0.
	maxReconnectAttempts int

	// reconnectInterval is the minimum time between two reconnect attempts.
	// Defaults to 0, which retries on every Update.
	reconnectInterval time.Duration

	clock          Clock
	logger         logger.Logger
	stateHandlers  []StateChangeHandler
	weightHandlers []WeightHandler
}

// NewConfig creates a Config with default values and applies opts.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		connectTimeout: 10 * time.Second,
		clock:          SystemClock,
		logger:         logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// HeartbeatInterval returns the heartbeat override, zero when the vendor default applies.
func (cfg *Config) HeartbeatInterval() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.heartbeatInterval
}

// WriteAck returns whether command writes wait for acknowledgement.
func (cfg *Config) WriteAck() bool {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.writeAck
}

// ConnectTimeout returns the link establishment timeout.
func (cfg *Config) ConnectTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.connectTimeout
}

// MaxReconnectAttempts returns the reconnect cap, zero when unlimited.
func (cfg *Config) MaxReconnectAttempts() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.maxReconnectAttempts
}

// ReconnectInterval returns the minimum time between reconnect attempts.
func (cfg *Config) ReconnectInterval() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.reconnectInterval
}

// Logger returns the configured logger.
func (cfg *Config) Logger() logger.Logger {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.logger
}

// Clock returns the configured clock.
func (cfg *Config) Clock() Clock {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.clock
}

func (cfg *Config) weightHandlerList() []WeightHandler {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.weightHandlers
}

// Option represents a functional option for configuring a driver.
type Option interface {
	apply(*Config) error
}

type optFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (o *optFunc) apply(cfg *Config) error {
	if cfg == nil {
		return ErrConfigNil
	}

	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	return o.applyFunc(cfg)
}

func newOptFunc(name string, f func(*Config) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithHeartbeatInterval overrides the vendor heartbeat interval.
// Zero restores the vendor default; otherwise it should be between 100 milliseconds and 1 minute.
func WithHeartbeatInterval(d time.Duration) Option {
	return newOptFunc("WithHeartbeatInterval", func(cfg *Config) error {
		if d != 0 && (d < 100*time.Millisecond || d > time.Minute) {
			return errors.New("heartbeat interval out of range [100ms, 1m]")
		}
		cfg.heartbeatInterval = d

		return nil
	})
}

// WithWriteAck sets whether command writes wait for peer acknowledgement.
func WithWriteAck(val bool) Option {
	return newOptFunc("WithWriteAck", func(cfg *Config) error {
		cfg.writeAck = val
		return nil
	})
}

// WithConnectTimeout sets the link establishment timeout. It should be between 1 and 60 seconds.
func WithConnectTimeout(d time.Duration) Option {
	return newOptFunc("WithConnectTimeout", func(cfg *Config) error {
		if d < time.Second || d > time.Minute {
			return errors.New("connect timeout out of range [1, 60]")
		}
		cfg.connectTimeout = d

		return nil
	})
}

// WithMaxReconnectAttempts caps consecutive failed reconnect attempts. Zero means unlimited.
func WithMaxReconnectAttempts(n int) Option {
	return newOptFunc("WithMaxReconnectAttempts", func(cfg *Config) error {
		if n < 0 {
			return errors.New("max reconnect attempts must not be negative")
		}
		cfg.maxReconnectAttempts = n

		return nil
	})
}

// WithReconnectInterval sets the minimum time between reconnect attempts. It should be at most 10 minutes.
func WithReconnectInterval(d time.Duration) Option {
	return newOptFunc("WithReconnectInterval", func(cfg *Config) error {
		if d < 0 || d > 10*time.Minute {
			return errors.New("reconnect interval out of range [0, 10m]")
		}
		cfg.reconnectInterval = d

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *Config) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithClock sets the time source for heartbeat and reconnect scheduling.
func WithClock(c Clock) Option {
	return newOptFunc("WithClock", func(cfg *Config) error {
		if c == nil {
			return errors.New("clock is nil")
		}
		cfg.clock = c

		return nil
	})
}

// WithStateChangeHandler adds handlers invoked on every state transition.
func WithStateChangeHandler(handlers ...StateChangeHandler) Option {
	return newOptFunc("WithStateChangeHandler", func(cfg *Config) error {
		cfg.stateHandlers = append(cfg.stateHandlers, handlers...)
		return nil
	})
}

// WithWeightHandler adds handlers invoked with every validated weight.
func WithWeightHandler(handlers ...WeightHandler) Option {
	return newOptFunc("WithWeightHandler", func(cfg *Config) error {
		cfg.weightHandlers = append(cfg.weightHandlers, handlers...)
		return nil
	})
}
