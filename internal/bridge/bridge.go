// Package bridge feeds MQTT-delivered readings into the ingestion
// pipeline. Delivery is best-effort and at-most-once: malformed JSON and
// failed ingests are logged and dropped, never retried.
package bridge

import (
	"context"
	"encoding/json"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/smartplant/smartplant/internal/ingest"
	"github.com/smartplant/smartplant/internal/model"
	"github.com/smartplant/smartplant/pkg/dedup"
	"github.com/smartplant/smartplant/pkg/mqtt"
)

type Bridge struct {
	consumer *mqtt.Consumer
	pipeline *ingest.Service
	deduper  *dedup.Deduper
	logger   *zap.Logger
}

func New(client pahomqtt.Client, topic string, pipeline *ingest.Service, logger *zap.Logger) *Bridge {
	b := &Bridge{
		pipeline: pipeline,
		deduper:  dedup.New(5*time.Minute, 5000),
		logger:   logger,
	}
	b.consumer = mqtt.NewConsumer(client, topic, b.handle, logger)
	return b
}

// Run blocks consuming the topic until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	b.consumer.Consume(ctx)
}

func (b *Bridge) handle(topic string, message pahomqtt.Message) error {
	var payload model.IncomingObservation
	if err := json.Unmarshal(message.Payload(), &payload); err != nil {
		b.logger.Warn("bridge: non-JSON message dropped", zap.String("topic", topic), zap.Error(err))
		return nil
	}

	// Readings that carry their own timestamp can be deduplicated when
	// the broker redelivers; unstamped readings always pass.
	if payload.Timestamp != "" && !b.deduper.ShouldProcess(topic+"|"+payload.Timestamp) {
		b.logger.Debug("bridge: duplicate delivery dropped",
			zap.String("topic", topic), zap.String("timestamp", payload.Timestamp))
		return nil
	}

	if _, err := b.pipeline.Ingest(context.Background(), &payload); err != nil {
		// at-most-once: log and drop, nothing is requeued
		b.logger.Warn("bridge: observation dropped", zap.String("topic", topic), zap.Error(err))
		return nil
	}
	b.logger.Info("bridge: observation ingested", zap.String("topic", topic))
	return nil
}
