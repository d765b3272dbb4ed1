package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"trustmarket/lead-scoring/internal/models"
)

// ErrNotScored means the RFQ exists but no score record has been written for
// it yet. Distinct from ErrRFQNotFound: a lead with a probability of exactly
// zero still has a record and is found.
var ErrNotScored = errors.New("rfq not yet scored")

type LeadScoreRepository interface {
	Create(ctx context.Context, score *models.RFQLeadScore) error
	FindByRFQID(ctx context.Context, rfqID string) (*models.RFQLeadScore, error)
	Stats(ctx context.Context) (*models.ScoreStats, error)
	Distribution(ctx context.Context) ([]models.ScoreBand, error)
}

type leadScoreRepository struct {
	db *gorm.DB
}

func NewLeadScoreRepository(db *gorm.DB) LeadScoreRepository {
	return &leadScoreRepository{db: db}
}

// Create implements LeadScoreRepository. The unique index on rfq_id rejects a
// second record for the same lead; the scorer never reaches that path because
// its candidate query excludes scored leads, but the constraint backs the
// invariant at the storage layer too.
func (r *leadScoreRepository) Create(ctx context.Context, score *models.RFQLeadScore) error {
	if err := r.db.WithContext(ctx).Create(score).Error; err != nil {
		return fmt.Errorf("failed to create lead score for %s: %w", score.RFQID, err)
	}
	return nil
}

// FindByRFQID implements LeadScoreRepository.
func (r *leadScoreRepository) FindByRFQID(ctx context.Context, rfqID string) (*models.RFQLeadScore, error) {
	var score models.RFQLeadScore
	err := r.db.WithContext(ctx).Where("rfq_id = ?", rfqID).First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rfq %s: %w", rfqID, ErrNotScored)
		}
		return nil, fmt.Errorf("failed to find lead score for %s: %w", rfqID, err)
	}
	return &score, nil
}

// Stats implements LeadScoreRepository: aggregate statistics over scored,
// published leads. Leads with no score record never enter the aggregates.
func (r *leadScoreRepository) Stats(ctx context.Context) (*models.ScoreStats, error) {
	type statsRow struct {
		TotalScored       int64    `gorm:"column:total_scored"`
		HighPriority      *int64   `gorm:"column:high_priority"`
		MediumPriority    *int64   `gorm:"column:medium_priority"`
		LowPriority       *int64   `gorm:"column:low_priority"`
		AvgScore          *float64 `gorm:"column:avg_score"`
		MinScore          *int     `gorm:"column:min_score"`
		MaxScore          *int     `gorm:"column:max_score"`
		AvgConversionProb *float64 `gorm:"column:avg_conversion_prob"`
		SS1Count          *int64   `gorm:"column:ss1_count"`
		SS2Count          *int64   `gorm:"column:ss2_count"`
		SS3Count          *int64   `gorm:"column:ss3_count"`
		SS4Count          *int64   `gorm:"column:ss4_count"`
		SS5Count          *int64   `gorm:"column:ss5_count"`
	}

	var row statsRow
	err := r.db.WithContext(ctx).
		Table("rfqs r").
		Select(`COUNT(*) AS total_scored,
			SUM(CASE WHEN s.lead_score >= 70 THEN 1 ELSE 0 END) AS high_priority,
			SUM(CASE WHEN s.lead_score >= 40 AND s.lead_score < 70 THEN 1 ELSE 0 END) AS medium_priority,
			SUM(CASE WHEN s.lead_score < 40 THEN 1 ELSE 0 END) AS low_priority,
			AVG(s.lead_score) AS avg_score,
			MIN(s.lead_score) AS min_score,
			MAX(s.lead_score) AS max_score,
			AVG(s.conversion_probability) AS avg_conversion_prob,
			SUM(CASE WHEN b.brank = 1 THEN 1 ELSE 0 END) AS ss1_count,
			SUM(CASE WHEN b.brank = 2 THEN 1 ELSE 0 END) AS ss2_count,
			SUM(CASE WHEN b.brank = 3 THEN 1 ELSE 0 END) AS ss3_count,
			SUM(CASE WHEN b.brank = 4 THEN 1 ELSE 0 END) AS ss4_count,
			SUM(CASE WHEN b.brank = 5 THEN 1 ELSE 0 END) AS ss5_count`).
		Joins("JOIN businesses b ON r.buyer_business_id = b.business_id").
		Joins("JOIN rfq_lead_scores s ON r.rfq_id = s.rfq_id").
		Where("r.status = ?", models.StatusPublished).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute score stats: %w", err)
	}

	stats := &models.ScoreStats{TotalScored: row.TotalScored}
	if row.TotalScored == 0 {
		return stats, nil
	}

	stats.HighPriority = derefInt64(row.HighPriority)
	stats.MediumPriority = derefInt64(row.MediumPriority)
	stats.LowPriority = derefInt64(row.LowPriority)
	stats.AvgScore = roundTo(derefFloat(row.AvgScore), 1)
	stats.AvgConversionProb = roundTo(derefFloat(row.AvgConversionProb), 3)
	if row.MinScore != nil {
		stats.MinScore = *row.MinScore
	}
	if row.MaxScore != nil {
		stats.MaxScore = *row.MaxScore
	}
	stats.SS1Count = derefInt64(row.SS1Count)
	stats.SS2Count = derefInt64(row.SS2Count)
	stats.SS3Count = derefInt64(row.SS3Count)
	stats.SS4Count = derefInt64(row.SS4Count)
	stats.SS5Count = derefInt64(row.SS5Count)
	return stats, nil
}

// Distribution implements LeadScoreRepository: a histogram over fixed score
// bands, highest band first, with the mean probability per band.
func (r *leadScoreRepository) Distribution(ctx context.Context) ([]models.ScoreBand, error) {
	type bandRow struct {
		ScoreRange        string  `gorm:"column:score_range"`
		Count             int64   `gorm:"column:band_count"`
		AvgConversionProb float64 `gorm:"column:avg_conversion_prob"`
	}

	var rows []bandRow
	err := r.db.WithContext(ctx).
		Table("rfqs r").
		Select(`CASE
				WHEN s.lead_score >= 80 THEN '80-100'
				WHEN s.lead_score >= 60 THEN '60-79'
				WHEN s.lead_score >= 40 THEN '40-59'
				WHEN s.lead_score >= 20 THEN '20-39'
				ELSE '0-19'
			END AS score_range,
			COUNT(*) AS band_count,
			AVG(s.conversion_probability) AS avg_conversion_prob`).
		Joins("JOIN rfq_lead_scores s ON r.rfq_id = s.rfq_id").
		Where("r.status = ?", models.StatusPublished).
		Group("score_range").
		Order("MIN(s.lead_score) DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute score distribution: %w", err)
	}

	bands := make([]models.ScoreBand, 0, len(rows))
	for _, row := range rows {
		bands = append(bands, models.ScoreBand{
			Range:             row.ScoreRange,
			Count:             row.Count,
			AvgConversionProb: roundTo(row.AvgConversionProb, 3),
		})
	}
	return bands, nil
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
