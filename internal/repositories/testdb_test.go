package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trustmarket/lead-scoring/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Business{},
		&models.RFQ{},
		&models.RFQLeadScore{},
	))
	return db
}

func seedBusiness(t *testing.T, db *gorm.DB, id, name, category string, brank int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Business{
		BusinessID:      id,
		BusinessName:    name,
		PrimaryCategory: category,
		BRank:           brank,
	}).Error)
}

func seedRFQ(t *testing.T, db *gorm.DB, id, category, buyerID string, status models.RFQStatus, createdAt time.Time, budgetMin, budgetMax *float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.RFQ{
		RFQID:           id,
		Title:           "Demand for " + category,
		Description:     "seeded",
		Category:        category,
		BudgetMin:       budgetMin,
		BudgetMax:       budgetMax,
		BuyerBusinessID: buyerID,
		Status:          status,
		CreatedAt:       createdAt,
	}).Error)
}

func seedScore(t *testing.T, db *gorm.DB, rfqID string, score int, prob float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.RFQLeadScore{
		RFQID:                 rfqID,
		LeadScore:             score,
		ConversionProbability: prob,
		ModelVersion:          "v1.0",
	}).Error)
}

func fptr(v float64) *float64 {
	return &v
}
