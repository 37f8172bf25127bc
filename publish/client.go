package publish

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-scales/config"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultKeepAlive         = 60 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds

	statusOnline  = "online"
	statusOffline = "offline"
)

// ErrConnectionFailed is returned when the broker can't be reached.
var ErrConnectionFailed = errors.New("publish: connection failed")

// StatusTopic returns the retained bridge availability topic under prefix.
func StatusTopic(prefix string) string {
	return prefix + "/bridge/status"
}

// ClientOptions builds paho client options from cfg. The will message marks the
// bridge offline when the connection drops unexpectedly.
func ClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetWill(StatusTopic(cfg.TopicPrefix), statusOffline, 1, true)

	return opts
}

// Connect connects to the broker described by cfg and marks the bridge online.
func Connect(cfg config.MQTTConfig) (pahomqtt.Client, error) {
	opts := ClientOptions(cfg)
	status := StatusTopic(cfg.TopicPrefix)
	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		c.Publish(status, 1, true, statusOnline)
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return client, nil
}

// Disconnect marks the bridge offline and closes client.
func Disconnect(client pahomqtt.Client, prefix string) {
	if client.IsConnected() {
		token := client.Publish(StatusTopic(prefix), 1, true, statusOffline)
		token.WaitTimeout(time.Second)
	}
	client.Disconnect(defaultDisconnectQuiesce)
}
