package mqtt

import (
	"encoding/json"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Publisher sends JSON payloads to a single topic at QoS 0.
type Publisher struct {
	client pahomqtt.Client
	topic  string
	logger *zap.Logger
}

func NewPublisher(client pahomqtt.Client, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, topic: topic, logger: logger}
}

// Publish marshals v and publishes it.
func (p *Publisher) Publish(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqtt: marshal payload: %w", err)
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", p.topic, token.Error())
	}
	p.logger.Debug("mqtt: published", zap.String("topic", p.topic), zap.Int("bytes", len(payload)))
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		p.logger.Info("mqtt: publisher disconnected")
	}
}
