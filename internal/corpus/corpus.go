// Package corpus loads the social-complaint corpus once at startup and
// serves immutable, filtered views of it. Corpus absence is a legitimate
// state: callers fall back to synthetic social signals.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aquahub/water-stress-ingest/internal/domain"
	"github.com/aquahub/water-stress-ingest/internal/sentiment"
)

// queryWindow is how far back the time filter reaches from the reference
// timestamp.
const queryWindow = 7 * 24 * time.Hour

// createdAtLayout matches the scraper's timestamp format,
// e.g. "Sat Jan 31 13:22:20 +0000 2026".
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Corpus is a read-only collection of complaint records, area-tagged and
// sentiment-scored at load time. Safe for concurrent queries.
type Corpus struct {
	records []domain.SocialRecord
}

// Load reads a complaint CSV (columns: id, created_at, text, plus ignored
// engagement counters), tags each row with borough names, and scores its
// sentiment. Rows with an unparseable timestamp are skipped with a warning
// rather than failing the load.
func Load(path string, scorer sentiment.Scorer, logger *slog.Logger) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	c, err := parse(f, scorer, logger)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	return c, nil
}

func parse(r io.Reader, scorer sentiment.Scorer, logger *slog.Logger) (*Corpus, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"id", "created_at", "text"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var records []domain.SocialRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		createdAt, err := parseCreatedAt(row[col["created_at"]])
		if err != nil {
			logger.Warn("skipping corpus row with bad timestamp", "line", line, "error", err)
			continue
		}

		text := row[col["text"]]
		records = append(records, domain.SocialRecord{
			ID:        row[col["id"]],
			CreatedAt: createdAt,
			Text:      text,
			Areas:     domain.TagAreas(text),
			Sentiment: scorer.Score(text),
		})
	}

	return &Corpus{records: records}, nil
}

func parseCreatedAt(value string) (time.Time, error) {
	if t, err := time.Parse(createdAtLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// Len returns the number of loaded records.
func (c *Corpus) Len() int {
	return len(c.records)
}

// Query returns the records inside the 7-day window ending at the reference
// timestamp, opportunistically narrowed to the given borough. An empty time
// window falls back to the whole corpus (records are never rejected purely
// for staleness), and area narrowing only applies when it leaves a non-empty
// set. Pass area "" when the point resolved to no borough.
func (c *Corpus) Query(at time.Time, area string) []domain.SocialRecord {
	windowStart := at.Add(-queryWindow)

	recent := make([]domain.SocialRecord, 0, len(c.records))
	for _, rec := range c.records {
		if rec.CreatedAt.Before(windowStart) || rec.CreatedAt.After(at) {
			continue
		}
		recent = append(recent, rec)
	}
	if len(recent) == 0 {
		recent = c.records
	}

	if area == "" {
		return recent
	}

	narrowed := make([]domain.SocialRecord, 0, len(recent))
	for _, rec := range recent {
		if rec.MentionsArea(area) {
			narrowed = append(narrowed, rec)
		}
	}
	if len(narrowed) == 0 {
		return recent
	}
	return narrowed
}
