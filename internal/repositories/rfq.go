package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"trustmarket/lead-scoring/internal/features"
	"trustmarket/lead-scoring/internal/models"
)

var ErrRFQNotFound = errors.New("rfq not found")

// ScoredRFQFilter narrows the ranked listing. Zero values mean "no filter"
// except Status, which callers default to published.
type ScoredRFQFilter struct {
	Status     string
	MinScore   int
	BuyerBRank int
	Limit      int
}

type RFQRepository interface {
	Create(ctx context.Context, rfq *models.RFQ) error
	NextRFQID(ctx context.Context) (string, error)
	FindByID(ctx context.Context, rfqID string) (*models.ScoredRFQ, error)
	FindUnscoredPublished(ctx context.Context, limit int) ([]features.RawLead, error)
	FindScored(ctx context.Context, filter ScoredRFQFilter) ([]models.ScoredRFQ, error)
}

type rfqRepository struct {
	db *gorm.DB
}

func NewRFQRepository(db *gorm.DB) RFQRepository {
	return &rfqRepository{db: db}
}

// Create implements RFQRepository.
func (r *rfqRepository) Create(ctx context.Context, rfq *models.RFQ) error {
	if err := r.db.WithContext(ctx).Create(rfq).Error; err != nil {
		return fmt.Errorf("failed to create rfq: %w", err)
	}
	return nil
}

// NextRFQID implements RFQRepository. Identifiers are a zero-padded ordinal
// derived from the most recently created row: RFQ001, RFQ002, ...
func (r *rfqRepository) NextRFQID(ctx context.Context) (string, error) {
	var last models.RFQ
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "RFQ001", nil
		}
		return "", fmt.Errorf("failed to read latest rfq id: %w", err)
	}

	suffix, err := strconv.Atoi(strings.TrimPrefix(last.RFQID, "RFQ"))
	if err != nil {
		return "", fmt.Errorf("latest rfq id %q has no numeric suffix: %w", last.RFQID, err)
	}
	return fmt.Sprintf("RFQ%03d", suffix+1), nil
}

// scoredRFQRow is the scan target for the joined listing queries.
type scoredRFQRow struct {
	RFQID         string    `gorm:"column:rfq_id"`
	Title         string    `gorm:"column:title"`
	Description   string    `gorm:"column:description"`
	Category      string    `gorm:"column:category"`
	BudgetMin     *float64  `gorm:"column:budget_min"`
	BudgetMax     *float64  `gorm:"column:budget_max"`
	Status        string    `gorm:"column:status"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	BuyerID       string    `gorm:"column:buyer_id"`
	BuyerName     string    `gorm:"column:buyer_name"`
	BuyerBRank    int       `gorm:"column:buyer_brank"`
	BuyerCategory string    `gorm:"column:buyer_category"`

	LeadScore             *int       `gorm:"column:lead_score"`
	ConversionProbability *float64   `gorm:"column:conversion_probability"`
	ModelVersion          *string    `gorm:"column:model_version"`
	PredictedAt           *time.Time `gorm:"column:predicted_at"`
}

func (row *scoredRFQRow) toScoredRFQ() models.ScoredRFQ {
	out := models.ScoredRFQ{
		RFQID:         row.RFQID,
		Title:         row.Title,
		Description:   row.Description,
		Category:      row.Category,
		BudgetMin:     row.BudgetMin,
		BudgetMax:     row.BudgetMax,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt,
		BuyerID:       row.BuyerID,
		BuyerName:     row.BuyerName,
		BuyerBRank:    row.BuyerBRank,
		BuyerCategory: row.BuyerCategory,

		LeadScore:             row.LeadScore,
		ConversionProbability: row.ConversionProbability,
		ModelVersion:          row.ModelVersion,
		PredictedAt:           row.PredictedAt,
	}
	if row.LeadScore != nil {
		out.Priority = models.PriorityFor(*row.LeadScore)
		out.ScoreColor = models.ScoreColorFor(*row.LeadScore)
	}
	return out
}

const scoredColumns = `r.rfq_id, r.title, r.description, r.category, r.budget_min, r.budget_max,
	r.status, r.created_at,
	b.business_id AS buyer_id, b.business_name AS buyer_name, b.brank AS buyer_brank,
	b.primary_category AS buyer_category,
	s.lead_score, s.conversion_probability, s.model_version, s.predicted_at`

// FindByID implements RFQRepository. The score join is optional: an unscored
// lead is returned with nil score fields, a missing lead is ErrRFQNotFound.
func (r *rfqRepository) FindByID(ctx context.Context, rfqID string) (*models.ScoredRFQ, error) {
	var rows []scoredRFQRow
	err := r.db.WithContext(ctx).
		Table("rfqs r").
		Select(scoredColumns).
		Joins("JOIN businesses b ON r.buyer_business_id = b.business_id").
		Joins("LEFT JOIN rfq_lead_scores s ON r.rfq_id = s.rfq_id").
		Where("r.rfq_id = ?", rfqID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find rfq %s: %w", rfqID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rfq %s: %w", rfqID, ErrRFQNotFound)
	}

	out := rows[0].toScoredRFQ()
	return &out, nil
}

// FindUnscoredPublished implements RFQRepository. This is the scorer's
// candidate query: published leads with no score record yet, newest first,
// capped at limit. Already-scored leads are excluded by the anti-join, which
// is what makes a scoring run idempotent.
func (r *rfqRepository) FindUnscoredPublished(ctx context.Context, limit int) ([]features.RawLead, error) {
	type candidateRow struct {
		RFQID         string   `gorm:"column:rfq_id"`
		BuyerBRank    int      `gorm:"column:buyer_brank"`
		RFQCategory   string   `gorm:"column:rfq_category"`
		BuyerCategory string   `gorm:"column:buyer_category"`
		BudgetMin     *float64 `gorm:"column:budget_min"`
		BudgetMax     *float64 `gorm:"column:budget_max"`
	}

	var rows []candidateRow
	err := r.db.WithContext(ctx).
		Table("rfqs r").
		Select(`r.rfq_id, b.brank AS buyer_brank, r.category AS rfq_category,
			b.primary_category AS buyer_category, r.budget_min, r.budget_max`).
		Joins("JOIN businesses b ON r.buyer_business_id = b.business_id").
		Joins("LEFT JOIN rfq_lead_scores s ON r.rfq_id = s.rfq_id").
		Where("r.status = ? AND s.rfq_id IS NULL", models.StatusPublished).
		Order("r.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unscored rfqs: %w", err)
	}

	leads := make([]features.RawLead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, features.RawLead{
			RFQID:         row.RFQID,
			BuyerBRank:    row.BuyerBRank,
			RFQCategory:   row.RFQCategory,
			BuyerCategory: row.BuyerCategory,
			BudgetMin:     row.BudgetMin,
			BudgetMax:     row.BudgetMax,
		})
	}
	return leads, nil
}

// FindScored implements RFQRepository: the ranked listing, highest score
// first, creation time breaking ties.
func (r *rfqRepository) FindScored(ctx context.Context, filter ScoredRFQFilter) ([]models.ScoredRFQ, error) {
	q := r.db.WithContext(ctx).
		Table("rfqs r").
		Select(scoredColumns).
		Joins("JOIN businesses b ON r.buyer_business_id = b.business_id").
		Joins("JOIN rfq_lead_scores s ON r.rfq_id = s.rfq_id").
		Where("r.status = ?", filter.Status).
		Where("s.lead_score >= ?", filter.MinScore)

	if filter.BuyerBRank > 0 {
		q = q.Where("b.brank = ?", filter.BuyerBRank)
	}

	q = q.Order("s.lead_score DESC, r.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []scoredRFQRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list scored rfqs: %w", err)
	}

	out := make([]models.ScoredRFQ, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toScoredRFQ())
	}
	return out, nil
}
