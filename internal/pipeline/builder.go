package pipeline

import (
	"context"

	"github.com/aquahub/water-stress-ingest/internal/domain"
	"github.com/aquahub/water-stress-ingest/internal/ingest"
)

// Builder is the assemble stage: it parses a raw request and asks the
// ingestor for the vector. Only request parsing can fail here; assembly
// itself always produces a vector.
type Builder struct {
	ingestor *ingest.Ingestor
}

// NewBuilder creates the assemble stage around an ingestor.
func NewBuilder(ingestor *ingest.Ingestor) *Builder {
	return &Builder{ingestor: ingestor}
}

// Build parses the raw request and assembles its vector message. The message
// ID is deterministic in the request's point and resolved timestamp, so
// replays produce the same ID.
func (b *Builder) Build(ctx context.Context, raw domain.RawRequest) (domain.VectorMessage, error) {
	req, err := domain.ParseVectorRequest(raw)
	if err != nil {
		return domain.VectorMessage{}, err
	}

	vector, prov := b.ingestor.GetVector(ctx, req.Lat, req.Lon, req.Timestamp)

	return domain.VectorMessage{
		ID:         domain.VectorID(req.Lat, req.Lon, prov.At),
		RequestID:  req.RequestID,
		Vector:     vector,
		Provenance: prov,
	}, nil
}
