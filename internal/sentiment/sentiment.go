// Package sentiment scores free text with a polarity in [-1,1]. The scoring
// capability is pluggable; the default is a small Spanish lexicon tuned for
// water-service complaints.
package sentiment

import "strings"

// Scorer turns text into a polarity: -1 strongly negative, 0 neutral,
// +1 strongly positive.
type Scorer interface {
	Score(text string) float64
}

// negativeTerms and positiveTerms are matched as lowercase substrings, so
// inflected forms ("urgentemente") still hit their stem.
var (
	negativeTerms = []string{
		"sin agua", "no hay", "no cae", "falta", "cortaron", "fuga",
		"urgente", "crisis", "escasez", "desesper", "harto", "pésimo",
		"pesimo", "terrible", "nunca", "días sin", "dias sin", "queja",
		"roto", "sucia", "contaminada",
	}
	positiveTerms = []string{
		"gracias", "resuelto", "restablecido", "excelente", "bien",
		"rápido", "rapido", "llegó el agua", "llego el agua", "ya hay agua",
		"solucionado", "mejor",
	}
)

// LexiconScorer is the default Scorer. It is stateless and safe for
// concurrent use.
type LexiconScorer struct{}

// NewLexiconScorer returns the default lexicon-based scorer.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

// Score counts positive and negative lexicon hits and returns their
// normalized difference: (pos-neg)/(pos+neg), or 0 when nothing matches.
func (s *LexiconScorer) Score(text string) float64 {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, term := range positiveTerms {
		if strings.Contains(lower, term) {
			pos++
		}
	}
	for _, term := range negativeTerms {
		if strings.Contains(lower, term) {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}
