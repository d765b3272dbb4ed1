package models

import (
	"time"
)

type RFQStatus string

const (
	StatusDraft     RFQStatus = "draft"
	StatusPublished RFQStatus = "published"
	StatusClosed    RFQStatus = "closed"
)

// RFQ is a buyer's request for quotation, the entity being scored. Rows are
// created through the API and immutable for scoring purposes except for
// status transitions.
type RFQ struct {
	RFQID           string    `gorm:"column:rfq_id;type:text;primaryKey" json:"rfq_id"`
	Title           string    `gorm:"type:text" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	Category        string    `gorm:"type:text" json:"category"`
	BudgetMin       *float64  `json:"budget_min,omitempty"`
	BudgetMax       *float64  `json:"budget_max,omitempty"`
	BuyerBusinessID string    `gorm:"column:buyer_business_id;type:text;not null" json:"buyer_business_id"`
	Status          RFQStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Buyer Business `gorm:"foreignKey:BuyerBusinessID;references:BusinessID" json:"-"`
}

func (RFQ) TableName() string {
	return "rfqs"
}
