package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquahub/water-stress-ingest/internal/domain"
	"github.com/aquahub/water-stress-ingest/internal/ingest"
	"github.com/aquahub/water-stress-ingest/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubExtractor serves queued batches, then cancels the pipeline context so
// Run returns.
type stubExtractor struct {
	batches [][]domain.RawRequest
	calls   int
	cancel  context.CancelFunc
}

func (e *stubExtractor) ExtractBatch(_ context.Context, _ int) ([]domain.RawRequest, error) {
	if e.calls >= len(e.batches) {
		e.cancel()
		return nil, nil
	}
	batch := e.batches[e.calls]
	e.calls++
	return batch, nil
}

// stubBuilder fails on requests whose value is "poison".
type stubBuilder struct{}

func (b *stubBuilder) Build(_ context.Context, raw domain.RawRequest) (domain.VectorMessage, error) {
	if string(raw.Value) == "poison" {
		return domain.VectorMessage{}, errors.New("parse vector request: poison")
	}
	return domain.VectorMessage{ID: string(raw.Key), RequestID: "req-" + string(raw.Key)}, nil
}

// stubPublisher records published batches and can fail the first N calls.
type stubPublisher struct {
	mu        sync.Mutex
	published [][]domain.VectorMessage
	failures  int
}

func (p *stubPublisher) PublishBatch(_ context.Context, messages []domain.VectorMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, messages)
	return nil
}

func (p *stubPublisher) batchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

// committer collects committed request keys.
type committer struct {
	mu   sync.Mutex
	keys []string
}

func (c *committer) request(key, value string) domain.RawRequest {
	return domain.RawRequest{
		Key:   []byte(key),
		Value: []byte(value),
		Commit: func(context.Context) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.keys = append(c.keys, key)
			return nil
		},
	}
}

func runPipeline(t *testing.T, batches [][]domain.RawRequest, publisher *stubPublisher, metrics *observability.Metrics) *Pipeline {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	extractor := &stubExtractor{batches: batches, cancel: cancel}
	p := New(extractor, &stubBuilder{}, publisher, discardLogger(), metrics, 50)

	require.NoError(t, p.Run(ctx))
	return p
}

func TestPipelineProcessesBatch(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	publisher := &stubPublisher{}
	commits := &committer{}

	batches := [][]domain.RawRequest{{
		commits.request("a", `{"lat":19.4,"lon":-99.1}`),
		commits.request("b", `{"lat":19.5,"lon":-99.2}`),
	}}

	p := runPipeline(t, batches, publisher, metrics)

	require.Equal(t, 1, publisher.batchCount())
	assert.Len(t, publisher.published[0], 2)
	assert.ElementsMatch(t, []string{"a", "b"}, commits.keys)

	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.VectorsRequested))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.VectorsProduced))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.RequestErrors))
}

func TestPipelineSkipsPoisonRequests(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	publisher := &stubPublisher{}
	commits := &committer{}

	batches := [][]domain.RawRequest{{
		commits.request("bad", "poison"),
		commits.request("good", `{"lat":19.4,"lon":-99.1}`),
	}}

	runPipeline(t, batches, publisher, metrics)

	require.Equal(t, 1, publisher.batchCount())
	require.Len(t, publisher.published[0], 1)
	assert.Equal(t, "good", publisher.published[0][0].ID)

	// Both offsets are committed: the poison one so it never wedges the
	// partition, the good one after publish.
	assert.ElementsMatch(t, []string{"bad", "good"}, commits.keys)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RequestErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.VectorsProduced))
}

func TestPipelinePublishFailureDoesNotCommit(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	publisher := &stubPublisher{failures: 1}
	commits := &committer{}

	// The same request arrives twice, emulating redelivery after the failed
	// publish left its offset uncommitted.
	batches := [][]domain.RawRequest{
		{commits.request("a", `{"lat":19.4,"lon":-99.1}`)},
		{commits.request("a", `{"lat":19.4,"lon":-99.1}`)},
	}

	runPipeline(t, batches, publisher, metrics)

	require.Equal(t, 1, publisher.batchCount())
	assert.Equal(t, []string{"a"}, commits.keys, "only the successful publish commits")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.VectorsProduced))
}

func TestCheckReadinessBeforeFirstBatch(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := New(&stubExtractor{}, &stubBuilder{}, &stubPublisher{}, discardLogger(), metrics, 50)

	err := p.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not processed")
}

func TestBuilder(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	ingestor := ingest.NewIngestor(nil, nil, nil, metrics, discardLogger())
	b := NewBuilder(ingestor)

	t.Run("valid request", func(t *testing.T) {
		raw := domain.RawRequest{Value: []byte(`{"request_id":"req-9","lat":19.43,"lon":-99.13,"timestamp":"2026-03-15T12:00:00Z"}`)}
		msg, err := b.Build(context.Background(), raw)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(msg.ID, "wsv-"))
		assert.Equal(t, "req-9", msg.RequestID)
		assert.NoError(t, msg.Vector.Validate())

		// Replaying the same request yields the same ID.
		again, err := b.Build(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, msg.ID, again.ID)
	})

	t.Run("malformed request", func(t *testing.T) {
		_, err := b.Build(context.Background(), domain.RawRequest{Value: []byte("{{")})
		require.Error(t, err)
	})
}
