package publish

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/go-scales/logger"
	"github.com/arloliu/go-scales/scale"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

var (
	// ErrPublishTimeout is returned when the broker doesn't acknowledge a publish in time.
	ErrPublishTimeout = errors.New("publish: timeout")

	// ErrNotConnected is returned when the MQTT client is not connected.
	ErrNotConnected = errors.New("publish: not connected")
)

// Client is the part of pahomqtt.Client the publisher uses.
type Client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload any) pahomqtt.Token
}

// WeightReading is the payload of a weight topic.
type WeightReading struct {
	Device    string    `json:"device" cbor:"device"`
	Name      string    `json:"name,omitempty" cbor:"name,omitempty"`
	Protocol  string    `json:"protocol" cbor:"protocol"`
	Grams     float64   `json:"grams" cbor:"grams"`
	Timestamp time.Time `json:"ts" cbor:"ts"`
}

// StateChange is the payload of a state topic.
type StateChange struct {
	Device    string    `json:"device" cbor:"device"`
	Protocol  string    `json:"protocol" cbor:"protocol"`
	Previous  string    `json:"previous" cbor:"previous"`
	State     string    `json:"state" cbor:"state"`
	Timestamp time.Time `json:"ts" cbor:"ts"`
}

// Publisher publishes readings and state changes. It is safe for concurrent use.
type Publisher struct {
	client   Client
	codec    Codec
	prefix   string
	qos      byte
	retained bool
	timeout  time.Duration
	clock    scale.Clock
	logger   logger.Logger
}

var topicReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_")

// NewPublisher creates a publisher sending through client.
func NewPublisher(client Client, opts ...Option) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("publish: client is nil")
	}

	codec, _ := NewCodec(EncodingJSON)
	p := &Publisher{
		client:  client,
		codec:   codec,
		prefix:  "scales",
		timeout: 2 * time.Second,
		clock:   scale.SystemClock,
		logger:  logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// WeightTopic returns the weight topic of a device.
func (p *Publisher) WeightTopic(deviceID string) string {
	return p.prefix + "/" + topicReplacer.Replace(deviceID) + "/weight"
}

// StateTopic returns the state topic of a device.
func (p *Publisher) StateTopic(deviceID string) string {
	return p.prefix + "/" + topicReplacer.Replace(deviceID) + "/state"
}

// PublishWeight publishes a weight reading of drv and waits for the broker.
func (p *Publisher) PublishWeight(drv scale.Driver, grams float64) error {
	token, err := p.publish(p.WeightTopic(drv.Device().ID()), p.retained, p.weightReading(drv, grams))
	if err != nil {
		return err
	}

	return p.wait(token)
}

// PublishState publishes a state transition of drv and waits for the broker.
// State topics are always retained.
func (p *Publisher) PublishState(drv scale.Driver, prev, cur scale.State) error {
	token, err := p.publish(p.StateTopic(drv.Device().ID()), true, p.stateChange(drv, prev, cur))
	if err != nil {
		return err
	}

	return p.wait(token)
}

// WeightHandler returns a scale.WeightHandler publishing every reading.
//
// The handler runs on the transport's notification goroutine, so it doesn't wait
// for the broker acknowledgement.
func (p *Publisher) WeightHandler() scale.WeightHandler {
	return func(drv scale.Driver, grams float64) {
		token, err := p.publish(p.WeightTopic(drv.Device().ID()), p.retained, p.weightReading(drv, grams))
		if err != nil {
			p.logger.Warn("failed to publish weight", "device", drv.Device().String(), "error", err)
			return
		}

		go p.waitAsync(token, "failed to publish weight", drv)
	}
}

// StateChangeHandler returns a scale.StateChangeHandler publishing every transition.
//
// The handler runs while the driver holds its state lock, so it doesn't wait for
// the broker acknowledgement.
func (p *Publisher) StateChangeHandler() scale.StateChangeHandler {
	return func(drv scale.Driver, prev, cur scale.State) {
		token, err := p.publish(p.StateTopic(drv.Device().ID()), true, p.stateChange(drv, prev, cur))
		if err != nil {
			p.logger.Warn("failed to publish state", "device", drv.Device().String(), "error", err)
			return
		}

		go p.waitAsync(token, "failed to publish state", drv)
	}
}

func (p *Publisher) weightReading(drv scale.Driver, grams float64) WeightReading {
	dev := drv.Device()

	return WeightReading{
		Device:    dev.ID(),
		Name:      dev.Name,
		Protocol:  drv.Protocol(),
		Grams:     grams,
		Timestamp: p.clock.Now().UTC(),
	}
}

func (p *Publisher) stateChange(drv scale.Driver, prev, cur scale.State) StateChange {
	return StateChange{
		Device:    drv.Device().ID(),
		Protocol:  drv.Protocol(),
		Previous:  prev.String(),
		State:     cur.String(),
		Timestamp: p.clock.Now().UTC(),
	}
}

func (p *Publisher) publish(topic string, retained bool, v any) (pahomqtt.Token, error) {
	if !p.client.IsConnected() {
		return nil, ErrNotConnected
	}

	payload, err := p.codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("publish: encode %s: %w", topic, err)
	}

	return p.client.Publish(topic, p.qos, retained, payload), nil
}

func (p *Publisher) waitAsync(token pahomqtt.Token, msg string, drv scale.Driver) {
	if err := p.wait(token); err != nil {
		p.logger.Warn(msg, "device", drv.Device().String(), "error", err)
	}
}

func (p *Publisher) wait(token pahomqtt.Token) error {
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}

	return token.Error()
}

// Option represents a functional option for a Publisher.
type Option interface {
	apply(*Publisher) error
}

type optFunc struct {
	name      string
	applyFunc func(*Publisher) error
}

func (o *optFunc) apply(p *Publisher) error {
	return o.applyFunc(p)
}

func newOptFunc(name string, f func(*Publisher) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithTopicPrefix sets the topic prefix. Defaults to "scales".
func WithTopicPrefix(prefix string) Option {
	return newOptFunc("WithTopicPrefix", func(p *Publisher) error {
		prefix = strings.Trim(prefix, "/")
		if prefix == "" || strings.ContainsAny(prefix, "+#") {
			return fmt.Errorf("invalid topic prefix %q", prefix)
		}
		p.prefix = prefix

		return nil
	})
}

// WithQoS sets the MQTT quality of service, 0, 1 or 2.
func WithQoS(qos int) Option {
	return newOptFunc("WithQoS", func(p *Publisher) error {
		if qos < 0 || qos > 2 {
			return errors.New("qos out of range [0, 2]")
		}
		p.qos = byte(qos)

		return nil
	})
}

// WithRetained sets whether weight readings are retained by the broker.
func WithRetained(val bool) Option {
	return newOptFunc("WithRetained", func(p *Publisher) error {
		p.retained = val
		return nil
	})
}

// WithEncoding sets the payload encoding.
func WithEncoding(enc Encoding) Option {
	return newOptFunc("WithEncoding", func(p *Publisher) error {
		codec, err := NewCodec(enc)
		if err != nil {
			return err
		}
		p.codec = codec

		return nil
	})
}

// WithPublishTimeout sets how long a publish waits for the broker. It should be between 100 milliseconds and 1 minute.
func WithPublishTimeout(d time.Duration) Option {
	return newOptFunc("WithPublishTimeout", func(p *Publisher) error {
		if d < 100*time.Millisecond || d > time.Minute {
			return errors.New("publish timeout out of range [100ms, 1m]")
		}
		p.timeout = d

		return nil
	})
}

// WithClock sets the time source of payload timestamps.
func WithClock(c scale.Clock) Option {
	return newOptFunc("WithClock", func(p *Publisher) error {
		if c == nil {
			return errors.New("clock is nil")
		}
		p.clock = c

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(p *Publisher) error {
		if l == nil {
			return errors.New("logger is nil")
		}
		p.logger = l

		return nil
	})
}
