package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/aquahub/water-stress-ingest/internal/config"
	"github.com/aquahub/water-stress-ingest/internal/domain"
)

// Writer produces assembled vectors to a Kafka topic.
// It implements pipeline.BatchPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes multiple vector messages to the sink
// topic in a single WriteMessages call for efficiency.
func (w *Writer) PublishBatch(ctx context.Context, messages []domain.VectorMessage) error {
	if len(messages) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(messages))
	for i := range messages {
		msg, err := serializeToMessage(messages[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a VectorMessage into a Kafka message keyed by
// the deterministic vector ID. Provenance travels in headers so downstream
// consumers can filter degraded vectors without parsing the payload.
func serializeToMessage(msg domain.VectorMessage) (kafkago.Message, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize vector message: %w", err)
	}

	degraded := "false"
	if msg.Provenance.Degraded() {
		degraded = "true"
	}

	return kafkago.Message{
		Key:   []byte(msg.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "request_id", Value: []byte(msg.RequestID)},
			{Key: "degraded", Value: []byte(degraded)},
			{Key: "generated_at", Value: []byte(msg.Provenance.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
