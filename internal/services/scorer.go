package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"trustmarket/lead-scoring/internal/features"
	"trustmarket/lead-scoring/internal/ml"
	"trustmarket/lead-scoring/internal/models"
	"trustmarket/lead-scoring/internal/repositories"
)

// ScoreRunResult summarizes one scoring run for the caller/scheduler.
type ScoreRunResult struct {
	Scored       int
	Skipped      int
	ModelVersion string
}

// ScorerService is the inference pipeline: find unscored published leads,
// derive features, predict, persist. A run is idempotent at the batch level
// because scored leads are excluded from the candidate query, not
// overwritten.
type ScorerService interface {
	Run(ctx context.Context) (*ScoreRunResult, error)
}

type scorerService struct {
	rfqRepo      repositories.RFQRepository
	scoreRepo    repositories.LeadScoreRepository
	artifactPath string
	batchSize    int
}

func NewScorerService(
	rfqRepo repositories.RFQRepository,
	scoreRepo repositories.LeadScoreRepository,
	artifactPath string,
	batchSize int,
) ScorerService {
	return &scorerService{
		rfqRepo:      rfqRepo,
		scoreRepo:    scoreRepo,
		artifactPath: artifactPath,
		batchSize:    batchSize,
	}
}

// Run implements ScorerService. Scores persisted before a failure stay
// valid; unprocessed leads remain candidates for the next run. No retries
// happen here: re-invocation cadence belongs to the external scheduler.
func (s *scorerService) Run(ctx context.Context) (*ScoreRunResult, error) {
	artifact, err := ml.LoadArtifact(s.artifactPath)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Loaded model version %s (test AUC %.3f)\n", artifact.Version, artifact.TestAUC)

	if err := artifact.CheckSchema(features.Names); err != nil {
		return nil, fmt.Errorf("cannot score with this artifact: %w", err)
	}

	leads, err := s.rfqRepo.FindUnscoredPublished(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring candidates: %w", err)
	}

	result := &ScoreRunResult{ModelVersion: artifact.Version}
	if len(leads) == 0 {
		log.Println("✅ No new RFQs to score")
		return result, nil
	}
	log.Printf("🔄 Found %d new RFQs to score\n", len(leads))

	for _, lead := range leads {
		vector, err := features.Vector(lead)
		if err != nil {
			// One bad lead must not block the rest of the batch.
			log.Printf("⚠️  Skipping %s: %v\n", lead.RFQID, err)
			result.Skipped++
			continue
		}

		probability, err := artifact.PredictProbability(features.Names, vector)
		if err != nil {
			return result, fmt.Errorf("prediction failed for %s: %w", lead.RFQID, err)
		}

		record := &models.RFQLeadScore{
			RFQID:                 lead.RFQID,
			LeadScore:             int(math.Floor(probability * 100)),
			ConversionProbability: probability,
			ModelVersion:          artifact.Version,
			PredictedAt:           time.Now(),
		}
		if err := s.scoreRepo.Create(ctx, record); err != nil {
			return result, fmt.Errorf("failed to persist score for %s: %w", lead.RFQID, err)
		}
		result.Scored++
	}

	log.Printf("✅ Saved %d predictions with model %s (%d skipped)\n",
		result.Scored, artifact.Version, result.Skipped)
	return result, nil
}
