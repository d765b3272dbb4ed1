package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
)

// Generates a synthetic labeled training CSV for local development and
// pipeline smoke tests. Feature values are drawn from weighted distributions
// shaped like real lead traffic, with conversion roughly 30%.

type weightedInt struct {
	value  int
	weight int
}

type weightedFloat struct {
	value  float64
	weight int
}

func pickInt(rng *rand.Rand, choices []weightedInt) int {
	total := 0
	for _, c := range choices {
		total += c.weight
	}
	roll := rng.Intn(total)
	for _, c := range choices {
		if roll < c.weight {
			return c.value
		}
		roll -= c.weight
	}
	return choices[len(choices)-1].value
}

func pickFloat(rng *rand.Rand, choices []weightedFloat) float64 {
	total := 0
	for _, c := range choices {
		total += c.weight
	}
	roll := rng.Intn(total)
	for _, c := range choices {
		if roll < c.weight {
			return c.value
		}
		roll -= c.weight
	}
	return choices[len(choices)-1].value
}

func main() {
	var (
		rows = flag.Int("rows", 1000, "number of training rows to generate")
		seed = flag.Int64("seed", 42, "random seed")
		out  = flag.String("out", "training_data_pipeline_test.csv", "output CSV path")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	brankChoices := []weightedInt{
		{1, 15}, {2, 25}, {3, 30}, {4, 20}, {5, 10},
	}
	matchChoices := []weightedFloat{
		{1.0, 35}, {0.6, 40}, {0.2, 25},
	}
	budgetChoices := []weightedInt{
		{1, 45}, {0, 55},
	}
	convertedChoices := []weightedInt{
		{1, 30}, {0, 70},
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("❌ Failed to create %s: %v", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"buyer_brank", "category_match", "budget_specified", "converted"}); err != nil {
		log.Fatalf("❌ Failed to write header: %v", err)
	}

	for i := 0; i < *rows; i++ {
		record := []string{
			strconv.Itoa(pickInt(rng, brankChoices)),
			fmt.Sprintf("%.1f", pickFloat(rng, matchChoices)),
			strconv.Itoa(pickInt(rng, budgetChoices)),
			strconv.Itoa(pickInt(rng, convertedChoices)),
		}
		if err := w.Write(record); err != nil {
			log.Fatalf("❌ Failed to write row %d: %v", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("❌ Failed to flush CSV: %v", err)
	}

	log.Printf("✅ Wrote %d rows to %s\n", *rows, *out)
}
