//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquahub/water-stress-ingest/internal/adapter/kafka"
	"github.com/aquahub/water-stress-ingest/internal/config"
	"github.com/aquahub/water-stress-ingest/internal/domain"
	"github.com/aquahub/water-stress-ingest/internal/ingest"
	"github.com/aquahub/water-stress-ingest/internal/observability"
	"github.com/aquahub/water-stress-ingest/internal/pipeline"
)

const (
	testSourceTopic = "test-vector-requests"
	testSinkTopic   = "test-water-stress-vectors"
)

// sinkMessage holds a deserialized message read from the sink topic.
type sinkMessage struct {
	Message domain.VectorMessage
	Key     string
	Headers map[string]string
}

// readSink reads a single message from the sink consumer and deserializes it.
func readSink(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var out domain.VectorMessage
	require.NoError(t, json.Unmarshal(msg.Value, &out), "unmarshal sink message")

	return sinkMessage{Message: out, Key: string(msg.Key), Headers: headers}
}

// offlineIngestor builds an assembler with no external providers, so vectors
// come from the synthetic tiers and the test needs no network beyond Kafka.
func offlineIngestor() *ingest.Ingestor {
	return ingest.NewIngestor(nil, nil, nil, observability.NewMetricsForTesting(), discardLogger())
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor)
// and kafka.Writer (publisher) correctly round-trip a message through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-reader-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	payload := []byte(`{"request_id":"req-rt","lat":19.4326,"lon":-99.1332,"timestamp":"2026-03-15T12:00:00Z"}`)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: payload,
	}))

	// Extract via kafka.Reader.
	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawRequest
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	// Commit the offset.
	require.NoError(t, raw.Commit(ctx))

	// Assemble the vector message.
	builder := pipeline.NewBuilder(offlineIngestor())
	msg, err := builder.Build(ctx, raw)
	require.NoError(t, err)

	// Publish via kafka.Writer.
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.PublishBatch(ctx, []domain.VectorMessage{msg}))

	// Read from the sink topic and verify headers + value.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	sm := readSink(ctx, t, consumer)
	assert.Equal(t, "req-rt", sm.Headers["request_id"])
	assert.Equal(t, "true", sm.Headers["degraded"], "sourceless assembly must be flagged degraded")
	_, err = time.Parse(time.RFC3339, sm.Headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")

	assert.True(t, strings.HasPrefix(sm.Key, "wsv-"))
	assert.Equal(t, sm.Key, sm.Message.ID)
	assert.Equal(t, "req-rt", sm.Message.RequestID)
	assert.NoError(t, sm.Message.Vector.Validate())
	assert.Equal(t, domain.SourceSynthetic, sm.Message.Provenance.Weather)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Builder → Writer)
// with real Kafka and verifies every request yields a schema-valid vector.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-pipeline-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	// Publish requests across several boroughs plus a point outside the metro.
	points := []struct{ lat, lon float64 }{
		{19.35, -99.15},
		{19.44, -99.14},
		{19.36, -99.05},
		{19.29, -99.17},
		{25.67, -100.31},
	}

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(points))
	for i, pt := range points {
		payload, err := json.Marshal(domain.VectorRequest{
			RequestID: fmt.Sprintf("req-%d", i),
			Lat:       pt.lat,
			Lon:       pt.lon,
			Timestamp: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("request-%d", i)),
			Value: payload,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	builder := pipeline.NewBuilder(offlineIngestor())
	p := pipeline.New(reader, builder, writer, discardLogger(), metrics, 50)

	// Run the pipeline in a goroutine.
	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Read all vectors from the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]sinkMessage, 0, len(points))
	for len(received) < len(points) {
		received = append(received, readSink(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	require.Len(t, received, len(points))
	requestIDs := make(map[string]bool, len(received))
	for _, sm := range received {
		requestIDs[sm.Message.RequestID] = true

		assert.NoError(t, sm.Message.Vector.Validate())
		assert.True(t, strings.HasPrefix(sm.Message.ID, "wsv-"))
		assert.NotEmpty(t, sm.Headers["request_id"])
		assert.False(t, sm.Message.Provenance.GeneratedAt.IsZero())
		assert.Equal(t, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), sm.Message.Provenance.At.UTC())
	}

	for i := range points {
		assert.True(t, requestIDs[fmt.Sprintf("req-%d", i)], "missing vector for req-%d", i)
	}
}

// TestPipelinePoisonRequest verifies that an invalid message is skipped and
// the pipeline continues processing valid messages.
func TestPipelinePoisonRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("test-poison-%d", time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	// Publish: invalid JSON, an out-of-range point, then a valid request.
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad-json"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("bad-lat"), Value: []byte(`{"lat":95.0,"lon":-99.13}`)},
		kafkago.Message{Key: []byte("good"), Value: []byte(`{"request_id":"req-ok","lat":19.43,"lon":-99.13}`)},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	builder := pipeline.NewBuilder(offlineIngestor())
	p := pipeline.New(reader, builder, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Only the valid request should appear on the sink topic.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	sm := readSink(ctx, t, consumer)
	assert.Equal(t, "req-ok", sm.Message.RequestID)
	assert.NoError(t, sm.Message.Vector.Validate())

	// Verify no second message arrives (the poison requests were skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
