// Command gencorpus generates a synthetic complaint CSV for local runs and
// integration tests, in the same column layout the scraper produces
// (id, created_at, text, retweets, likes).
//
// Usage:
//
//	go run ./cmd/gencorpus -out complaints.csv -rows 500 -days 30 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/aquahub/water-stress-ingest/internal/domain"
)

// createdAtLayout is the scraper's timestamp format.
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// templates compose a complaint from a distress phrase and a place name.
var templates = []string{
	"Ya llevamos días %s en %s, nadie responde",
	"Reporte: %s en %s desde ayer",
	"Vecinos reportan %s en %s, urgente",
	"Otra vez %s aquí en %s",
	"%s en la colonia, zona %s, ¿alguien sabe algo?",
}

// neutralTexts dilute the corpus with records that carry no distress phrase.
var neutralTexts = []string{
	"Hoy llovió bastante en el centro",
	"Gracias al servicio, ya hay agua en narvarte",
	"El clima está agradable por chapultepec",
	"Restablecido el suministro en del valle, excelente",
}

func main() {
	out := flag.String("out", "complaints.csv", "output CSV path")
	rows := flag.Int("rows", 500, "number of records to generate")
	days := flag.Int("days", 30, "spread records over the trailing N days")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if err := run(*out, *rows, *days, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "gencorpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d records to %s\n", *rows, *out)
}

func run(out string, rows, days int, seed int64) error {
	if rows <= 0 || days <= 0 {
		return fmt.Errorf("rows and days must be positive")
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "created_at", "text", "retweets", "likes"}); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UTC()

	for i := 0; i < rows; i++ {
		createdAt := now.
			AddDate(0, 0, -rng.Intn(days)).
			Add(-time.Duration(rng.Intn(24*3600)) * time.Second)

		record := []string{
			fmt.Sprintf("%d", 1000000000+i),
			createdAt.Format(createdAtLayout),
			generateText(rng),
			strconv.Itoa(rng.Intn(50)),
			strconv.Itoa(rng.Intn(200)),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// generateText produces a complaint roughly 70% of the time and a neutral
// record otherwise, so scoring over the corpus exercises both paths.
func generateText(rng *rand.Rand) string {
	if rng.Intn(10) < 3 {
		return neutralTexts[rng.Intn(len(neutralTexts))]
	}

	pain := domain.PainKeywords[rng.Intn(len(domain.PainKeywords))]
	area := domain.AreaAliases[rng.Intn(len(domain.AreaAliases))]
	alias := area.Aliases[rng.Intn(len(area.Aliases))]
	tmpl := templates[rng.Intn(len(templates))]

	return fmt.Sprintf(tmpl, pain, alias)
}
