package models

import "time"

// ScoredRFQ is the read model for the reporting API: an RFQ joined with its
// buyer and, when present, its lead score. Score fields are nil for leads
// that have no score record yet.
type ScoredRFQ struct {
	RFQID       string    `json:"rfq_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	BudgetMin   *float64  `json:"budget_min"`
	BudgetMax   *float64  `json:"budget_max"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	BuyerID       string `json:"buyer_id"`
	BuyerName     string `json:"buyer_name"`
	BuyerBRank    int    `json:"buyer_brank"`
	BuyerCategory string `json:"buyer_category"`

	LeadScore             *int       `json:"lead_score"`
	ConversionProbability *float64   `json:"conversion_probability"`
	ModelVersion          *string    `json:"model_version"`
	PredictedAt           *time.Time `json:"predicted_at"`

	Priority   string `json:"priority,omitempty"`
	ScoreColor string `json:"score_color,omitempty"`
}

// Scored reports whether a score record exists for this RFQ.
func (r *ScoredRFQ) Scored() bool {
	return r.LeadScore != nil
}

type ScoreStats struct {
	TotalScored       int64   `json:"total_scored"`
	HighPriority      int64   `json:"high_priority"`
	MediumPriority    int64   `json:"medium_priority"`
	LowPriority       int64   `json:"low_priority"`
	AvgScore          float64 `json:"avg_score"`
	MinScore          int     `json:"min_score"`
	MaxScore          int     `json:"max_score"`
	AvgConversionProb float64 `json:"avg_conversion_prob"`
	SS1Count          int64   `json:"ss1_count"`
	SS2Count          int64   `json:"ss2_count"`
	SS3Count          int64   `json:"ss3_count"`
	SS4Count          int64   `json:"ss4_count"`
	SS5Count          int64   `json:"ss5_count"`
}

type ScoreBand struct {
	Range             string  `json:"score_range"`
	Count             int64   `json:"count"`
	AvgConversionProb float64 `json:"avg_conversion_prob"`
}

type CreateRFQRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	BudgetMin       *float64 `json:"budget_min"`
	BudgetMax       *float64 `json:"budget_max"`
	BuyerBusinessID string   `json:"buyer_business_id"`
	Status          string   `json:"status"`
}
