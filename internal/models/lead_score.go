package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RFQLeadScore is one scoring result for one RFQ. The unique index on rfq_id
// is the at-most-once guarantee: a lead is never rescored once a row exists.
// Rows are never mutated after creation.
type RFQLeadScore struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	RFQID                 string    `gorm:"column:rfq_id;type:text;uniqueIndex;not null" json:"rfq_id"`
	LeadScore             int       `gorm:"not null" json:"lead_score"`
	ConversionProbability float64   `gorm:"not null" json:"conversion_probability"`
	ModelVersion          string    `gorm:"type:text;not null" json:"model_version"`
	PredictedAt           time.Time `gorm:"autoCreateTime" json:"predicted_at"`
}

func (RFQLeadScore) TableName() string {
	return "rfq_lead_scores"
}

func (s *RFQLeadScore) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Priority buckets and UI badge colors use fixed score thresholds shared by
// the listing, detail, and stats paths.
func PriorityFor(score int) string {
	switch {
	case score >= 70:
		return "High"
	case score >= 40:
		return "Medium"
	default:
		return "Low"
	}
}

func ScoreColorFor(score int) string {
	switch {
	case score >= 70:
		return "green"
	case score >= 40:
		return "yellow"
	default:
		return "gray"
	}
}
