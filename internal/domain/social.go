package domain

import (
	"math/rand"
	"strings"
	"time"
)

// PainKeywords are the generic water-distress phrases counted per record.
// Mexico City specific; matched as lowercase substrings.
var PainKeywords = []string{
	"sin agua", "tandeo", "no cae agua", "fuga de agua",
	"no hay agua", "falta agua", "cortaron el agua",
	"aguas con el agua", "torres de potrero", "coyuya",
	"urgente sin agua", "sin suministro",
}

// LeakKeywords are the leak-specific phrases; a record containing any of
// them counts as one leak mention.
var LeakKeywords = []string{"fuga", "fuga de agua", "tubo roto", "gotera", "ruptura"}

// NoKeyword is reported when no distress phrase appears in the filtered set.
const NoKeyword = "none"

// SocialRecord is one geo-taggable complaint. Records are tagged with area
// names and scored for sentiment once at load time and never mutated after.
type SocialRecord struct {
	ID        string
	CreatedAt time.Time
	Text      string
	Areas     []string // borough names matched against AreaAliases
	Sentiment float64  // polarity in [-1,1]
}

// MentionsArea reports whether the record was tagged with the given borough.
func (r SocialRecord) MentionsArea(area string) bool {
	for _, a := range r.Areas {
		if a == area {
			return true
		}
	}
	return false
}

// TagAreas extracts the borough names whose aliases appear in the text.
func TagAreas(text string) []string {
	lower := strings.ToLower(text)
	var areas []string
	for _, entry := range AreaAliases {
		for _, alias := range entry.Aliases {
			if strings.Contains(lower, alias) {
				areas = append(areas, entry.Name)
				break
			}
		}
	}
	return areas
}

// ScoreSocialSignals aggregates a non-empty filtered record set into the
// soft-sensor block:
//
//	volume_factor    = min(1, count/50)
//	pain_factor      = min(1, pain_hits / max(count*0.3, 1))
//	sentiment_factor = 1 - (mean_sentiment+1)/2
//	stress_index     = clamp(0.3·volume + 0.5·pain + 0.2·sentiment, 0, 1)
//
// The leak flag trips when more than 10% of records mention a leak phrase,
// and the dominant keyword is the distress phrase with the most record hits.
func ScoreSocialSignals(records []SocialRecord) SocialSignals {
	count := len(records)

	keywordHits := make(map[string]int, len(PainKeywords))
	leakRecords := 0
	var sentimentSum float64

	for _, rec := range records {
		lower := strings.ToLower(rec.Text)
		for _, kw := range PainKeywords {
			if strings.Contains(lower, kw) {
				keywordHits[kw]++
			}
		}
		for _, kw := range LeakKeywords {
			if strings.Contains(lower, kw) {
				leakRecords++
				break
			}
		}
		sentimentSum += rec.Sentiment
	}

	painHits := 0
	topKeyword := NoKeyword
	topHits := 0
	// Iterate the fixed keyword order so ties break deterministically.
	for _, kw := range PainKeywords {
		hits := keywordHits[kw]
		painHits += hits
		if hits > topHits {
			topHits = hits
			topKeyword = kw
		}
	}

	meanSentiment := sentimentSum / float64(count)

	volumeFactor := clampFloat(float64(count)/50.0, 0, 1)
	painFactor := clampFloat(float64(painHits)/maxFloat(float64(count)*0.3, 1), 0, 1)
	sentimentFactor := 1 - (meanSentiment+1)/2

	stress := clampFloat(0.3*volumeFactor+0.5*painFactor+0.2*sentimentFactor, 0, 1)

	leakFlag := 0
	if float64(leakRecords)/float64(count) > 0.1 {
		leakFlag = 1
	}

	return SocialSignals{
		ReportCount:       count,
		StressIndex:       round2(stress),
		LeakMentionFlag:   leakFlag,
		SentimentPolarity: round2(meanSentiment),
		TopPainKeyword:    topKeyword,
	}
}

// SyntheticSocialSignals generates plausible soft-sensor values for a
// moderately stressed day, used when the corpus is absent or the filtered
// set is empty.
func SyntheticSocialSignals(rng *rand.Rand) SocialSignals {
	leak := 0
	if rng.Intn(4) == 0 {
		leak = 1
	}
	keywords := []string{"sin agua", "tandeo", "fuga de agua"}

	return SocialSignals{
		ReportCount:       5 + rng.Intn(21),                       // 5–25
		StressIndex:       round2(0.2 + rng.Float64()*0.4),        // 0.2–0.6
		LeakMentionFlag:   leak,                                   // 25% chance
		SentimentPolarity: round2(-0.5 + rng.Float64()*0.7),       // -0.5–0.2
		TopPainKeyword:    keywords[rng.Intn(len(keywords))],
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
