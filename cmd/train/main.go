package main

import (
	"log"

	"trustmarket/lead-scoring/internal/config"
	"trustmarket/lead-scoring/internal/services"
)

// Offline training job. Reads labeled historical leads from CSV, fits the
// model, reports validation metrics, and writes the artifact the scorer
// loads. Scheduled out of band (cron or CI), never from the API process.
func main() {
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	trainer := services.NewTrainerService(cfg.Trainer, cfg.Model)

	artifact, err := trainer.Train()
	if err != nil {
		log.Fatalf("❌ Training failed: %v", err)
	}

	log.Printf("✅ Model %s saved to %s (train AUC %.3f, test AUC %.3f)\n",
		artifact.Version, cfg.Model.ArtifactPath, artifact.TrainAUC, artifact.TestAUC)
}
