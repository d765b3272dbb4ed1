package models

// Business is a buyer on the marketplace. BRank is the ordinal quality tier
// (1 is best, 5 is worst) used as a scoring feature.
type Business struct {
	BusinessID      string `gorm:"column:business_id;type:text;primaryKey" json:"business_id"`
	BusinessName    string `gorm:"type:text" json:"business_name"`
	PrimaryCategory string `gorm:"type:text" json:"primary_category"`
	BRank           int    `gorm:"column:brank;not null" json:"brank"`
}

func (Business) TableName() string {
	return "businesses"
}
