// Package mqtt wraps the paho client with the connection and consumption
// conventions of the backend: exponential-backoff connect, handler-driven
// subscription, context-scoped lifetime.
package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Config is the broker endpoint of a connection.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	ClientID string
}

// Connect establishes a broker session, retrying with exponential backoff
// before giving up. The connection is torn down when ctx is cancelled.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (pahomqtt.Client, error) {
	addr := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(addr)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second
	const maxRetries = 5

	var client pahomqtt.Client
	err := backoff.Retry(func() error {
		client = pahomqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.Warn("mqtt: connect attempt failed", zap.String("broker", addr), zap.Error(token.Error()))
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", addr, err)
	}

	logger.Info("mqtt: connected", zap.String("broker", addr), zap.String("clientID", cfg.ClientID))

	go func() {
		<-ctx.Done()
		client.Disconnect(250)
		logger.Info("mqtt: connection closed")
	}()

	return client, nil
}

// Handler processes one delivered message.
type Handler func(topic string, message pahomqtt.Message) error

// Consumer subscribes to a single topic and hands every delivery to its
// handler. Handler errors are logged and the message is dropped; the
// subscription survives.
type Consumer struct {
	client  pahomqtt.Client
	topic   string
	handler Handler
	logger  *zap.Logger
}

func NewConsumer(client pahomqtt.Client, topic string, handler Handler, logger *zap.Logger) *Consumer {
	return &Consumer{client: client, topic: topic, handler: handler, logger: logger}
}

// Consume subscribes and blocks until ctx is cancelled, then
// unsubscribes.
func (c *Consumer) Consume(ctx context.Context) {
	token := c.client.Subscribe(c.topic, 0, func(_ pahomqtt.Client, message pahomqtt.Message) {
		if c.handler == nil {
			c.logger.Warn("mqtt: no handler for topic", zap.String("topic", c.topic))
			return
		}
		if err := c.handler(c.topic, message); err != nil {
			c.logger.Warn("mqtt: message dropped", zap.String("topic", c.topic), zap.Error(err))
		}
	})
	if token.Wait() && token.Error() != nil {
		c.logger.Error("mqtt: subscribe failed", zap.String("topic", c.topic), zap.Error(token.Error()))
		return
	}
	c.logger.Info("mqtt: subscribed", zap.String("topic", c.topic))

	<-ctx.Done()

	unsub := c.client.Unsubscribe(c.topic)
	unsub.Wait()
}
