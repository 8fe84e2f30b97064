package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VectorRequest is the JSON payload consumed from the request topic. The
// timestamp is optional; zero means "now".
type VectorRequest struct {
	RequestID string    `json:"request_id,omitempty"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// RawRequest is an unprocessed message from the request topic.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseVectorRequest deserializes and sanity-checks a raw request message.
// Requests arriving without an ID are assigned one.
func ParseVectorRequest(raw RawRequest) (VectorRequest, error) {
	var req VectorRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return VectorRequest{}, fmt.Errorf("parse vector request: %w", err)
	}

	if req.Lat < -90 || req.Lat > 90 {
		return VectorRequest{}, fmt.Errorf("parse vector request: latitude %v out of range", req.Lat)
	}
	if req.Lon < -180 || req.Lon > 180 {
		return VectorRequest{}, fmt.Errorf("parse vector request: longitude %v out of range", req.Lon)
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req, nil
}

// VectorMessage is an assembled vector destined for the sink topic.
type VectorMessage struct {
	ID         string        `json:"id"`
	RequestID  string        `json:"request_id"`
	Vector     FeatureVector `json:"vector"`
	Provenance Provenance    `json:"provenance"`
}
