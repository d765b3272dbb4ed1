package main

import (
	"context"
	"log"

	"trustmarket/lead-scoring/internal/config"
	"trustmarket/lead-scoring/internal/repositories"
	"trustmarket/lead-scoring/internal/services"
)

// Batch scoring job. Loads the trained artifact, scores the next batch of
// unscored published RFQs, and exits. Scheduled externally; each run picks up
// where the previous one left off.
func main() {
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	rfqRepo := repositories.NewRFQRepository(db)
	scoreRepo := repositories.NewLeadScoreRepository(db)

	scorer := services.NewScorerService(rfqRepo, scoreRepo, cfg.Model.ArtifactPath, cfg.Scorer.BatchSize)

	result, err := scorer.Run(context.Background())
	if err != nil {
		log.Fatalf("❌ Scoring run failed: %v", err)
	}

	log.Printf("✅ Scoring run complete: %d scored, %d skipped (model %s)\n",
		result.Scored, result.Skipped, result.ModelVersion)
}
