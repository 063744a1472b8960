// Package builds handles Kafka event production for build catalog events.
package builds

import (
	"context"
	"encoding/json"
	"time"

	"github.com/buildscout/buildcat-backend/model"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// BuildProducer handles sending build discovered events to Kafka
type BuildProducer struct {
	Writer *kafka.Writer
}

// NewBuildProducer initializes a new Kafka writer for build events
func NewBuildProducer(brokers []string, topic string) *BuildProducer {
	return &BuildProducer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishBuildDiscovered sends the event to the Kafka topic
func (p *BuildProducer) PublishBuildDiscovered(ctx context.Context, build model.Build) error {

	// Construct the Event Contract
	event := BuildDiscoveredEvent{
		EventType:     "build.discovered",
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		Build:         build,
	}

	// Marshal to JSON
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Write to Kafka, keyed by branch so per-branch ordering is preserved
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(build.Branch),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *BuildProducer) Close() error {
	return p.Writer.Close()
}
