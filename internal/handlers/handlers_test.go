package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trustmarket/lead-scoring/internal/models"
	"trustmarket/lead-scoring/internal/repositories"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	rfqRepo := repositories.NewRFQRepository(db)
	scoreRepo := repositories.NewLeadScoreRepository(db)
	rfqHandler := NewRFQHandler(rfqRepo)
	statsHandler := NewStatsHandler(scoreRepo)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/rfqs/scored", rfqHandler.HandleScoredList)
	api.Get("/rfqs/stats", statsHandler.HandleStats)
	api.Get("/rfqs/score-distribution", statsHandler.HandleDistribution)
	api.Get("/rfqs/:id", rfqHandler.HandleGetRFQ)
	api.Get("/rfqs/:id/score", rfqHandler.HandleGetScore)
	api.Post("/rfqs", rfqHandler.HandleCreate)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func seedScoredLead(t *testing.T, db *gorm.DB, rfqID, buyerID string, brank, score int, prob float64, createdAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Business{
		BusinessID:      buyerID,
		BusinessName:    "Buyer " + buyerID,
		PrimaryCategory: "Industrial Supplies",
		BRank:           brank,
	}).Error)
	require.NoError(t, db.Create(&models.RFQ{
		RFQID:           rfqID,
		Title:           "Demand " + rfqID,
		Category:        "Industrial Supplies",
		BuyerBusinessID: buyerID,
		Status:          models.StatusPublished,
		CreatedAt:       createdAt,
	}).Error)
	require.NoError(t, db.Create(&models.RFQLeadScore{
		RFQID:                 rfqID,
		LeadScore:             score,
		ConversionProbability: prob,
		ModelVersion:          "v1.0",
	}).Error)
}

func TestHandleScoredListRankingAndEnvelope(t *testing.T) {
	app, db := newTestApp(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedScoredLead(t, db, "RFQ001", "BIZ001", 5, 85, 0.85, base)
	seedScoredLead(t, db, "RFQ002", "BIZ002", 3, 42, 0.42, base.Add(time.Hour))
	seedScoredLead(t, db, "RFQ003", "BIZ003", 2, 12, 0.12, base.Add(2*time.Hour))

	status, payload := doJSON(t, app, http.MethodGet, "/api/rfqs/scored", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, payload["success"])
	assert.EqualValues(t, 3, payload["count"])

	rfqs := payload["rfqs"].([]any)
	require.Len(t, rfqs, 3)
	first := rfqs[0].(map[string]any)
	assert.Equal(t, "RFQ001", first["rfq_id"])
	assert.EqualValues(t, 85, first["lead_score"])
	assert.Equal(t, "High", first["priority"])
	assert.Equal(t, "green", first["score_color"])
	last := rfqs[2].(map[string]any)
	assert.Equal(t, "RFQ003", last["rfq_id"])
	assert.Equal(t, "Low", last["priority"])

	filters := payload["filters"].(map[string]any)
	assert.Equal(t, "published", filters["status"])
	assert.EqualValues(t, 50, filters["limit"])
}

func TestHandleScoredListFilters(t *testing.T) {
	app, db := newTestApp(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedScoredLead(t, db, "RFQ001", "BIZ001", 5, 85, 0.85, base)
	seedScoredLead(t, db, "RFQ002", "BIZ002", 3, 42, 0.42, base.Add(time.Hour))
	seedScoredLead(t, db, "RFQ003", "BIZ003", 2, 12, 0.12, base.Add(2*time.Hour))

	status, payload := doJSON(t, app, http.MethodGet, "/api/rfqs/scored?min_score=40", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, payload["count"])

	status, payload = doJSON(t, app, http.MethodGet, "/api/rfqs/scored?rfqscore=3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, payload["count"])
	rfqs := payload["rfqs"].([]any)
	assert.Equal(t, "RFQ002", rfqs[0].(map[string]any)["rfq_id"])

	status, payload = doJSON(t, app, http.MethodGet, "/api/rfqs/scored?limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, payload["count"])

	status, payload = doJSON(t, app, http.MethodGet, "/api/rfqs/scored?limit=all", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, payload["count"])
}

func TestHandleScoredListRejectsBadParams(t *testing.T) {
	app, _ := newTestApp(t)

	for _, target := range []string{
		"/api/rfqs/scored?limit=0",
		"/api/rfqs/scored?limit=bogus",
		"/api/rfqs/scored?min_score=101",
		"/api/rfqs/scored?min_score=-1",
		"/api/rfqs/scored?rfqscore=6",
		"/api/rfqs/scored?rfqscore=abc",
	} {
		status, payload := doJSON(t, app, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, status, target)
		assert.Equal(t, false, payload["success"], target)
	}
}

func TestHandleScoredListCapsLimit(t *testing.T) {
	app, _ := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodGet, "/api/rfqs/scored?limit=500", nil)
	require.Equal(t, http.StatusOK, status)
	filters := payload["filters"].(map[string]any)
	assert.EqualValues(t, 100, filters["limit"])
}

func TestHandleGetRFQ(t *testing.T) {
	app, db := newTestApp(t)

	seedScoredLead(t, db, "RFQ001", "BIZ001", 4, 71, 0.71, time.Now().UTC())

	status, payload := doJSON(t, app, http.MethodGet, "/api/rfqs/RFQ001", nil)
	require.Equal(t, http.StatusOK, status)
	rfq := payload["rfq"].(map[string]any)
	assert.Equal(t, "RFQ001", rfq["rfq_id"])
	assert.Equal(t, "Buyer BIZ001", rfq["buyer_name"])
	assert.EqualValues(t, 71, rfq["lead_score"])

	status, payload = doJSON(t, app, http.MethodGet, "/api/rfqs/RFQ999", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "RFQ not found", payload["error"])
}

func TestHandleGetScoreDistinguishesUnscored(t *testing.T) {
	app, db := newTestApp(t)

	require.NoError(t, db.Create(&models.Business{
		BusinessID:      "BIZ001",
		BusinessName:    "Buyer",
		PrimaryCategory: "Logistics",
		BRank:           3,
	}).Error)
	require.NoError(t, db.Create(&models.RFQ{
		RFQID:           "RFQ001",
		Title:           "Unscored demand",
		Category:        "Logistics",
		BuyerBusinessID: "BIZ001",
		Status:          models.StatusPublished,
	}).Error)

	status, payload := doJSON(t, app, http.MethodGet, "/api/rfqs/RFQ001/score", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "RFQ not yet scored", payload["error"])
	assert.Equal(t, "RFQ001", payload["rfq_id"])

	status, payload = doJSON(t, app, http.MethodGet, "/api/rfqs/RFQ404/score", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "RFQ not found", payload["error"])

	require.NoError(t, db.Create(&models.RFQLeadScore{
		RFQID:                 "RFQ001",
		LeadScore:             55,
		ConversionProbability: 0.55,
		ModelVersion:          "v1.0",
	}).Error)

	status, payload = doJSON(t, app, http.MethodGet, "/api/rfqs/RFQ001/score", nil)
	require.Equal(t, http.StatusOK, status)
	rfq := payload["rfq"].(map[string]any)
	assert.EqualValues(t, 55, rfq["lead_score"])
	assert.Equal(t, "Medium", rfq["priority"])
}

func TestHandleCreateGeneratesSequentialIDs(t *testing.T) {
	app, db := newTestApp(t)

	require.NoError(t, db.Create(&models.Business{
		BusinessID:      "BIZ001",
		BusinessName:    "Buyer",
		PrimaryCategory: "Packaging",
		BRank:           4,
	}).Error)

	body := map[string]any{
		"title":             "Need corrugated boxes",
		"category":          "Packaging",
		"buyer_business_id": "BIZ001",
		"budget_min":        1000.0,
		"budget_max":        5000.0,
	}
	status, payload := doJSON(t, app, http.MethodPost, "/api/rfqs", body)
	require.Equal(t, http.StatusCreated, status)
	rfq := payload["rfq"].(map[string]any)
	assert.Equal(t, "RFQ001", rfq["rfq_id"])
	assert.Equal(t, "draft", rfq["status"])

	body["title"] = "Need pallets"
	status, payload = doJSON(t, app, http.MethodPost, "/api/rfqs", body)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "RFQ002", payload["rfq"].(map[string]any)["rfq_id"])

	body["status"] = "published"
	status, payload = doJSON(t, app, http.MethodPost, "/api/rfqs", body)
	require.Equal(t, http.StatusCreated, status)
	created := payload["rfq"].(map[string]any)
	assert.Equal(t, "RFQ003", created["rfq_id"])
	assert.Equal(t, "published", created["status"])
}

func TestHandleCreateValidates(t *testing.T) {
	app, _ := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodPost, "/api/rfqs", map[string]any{
		"title": "Missing fields",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, payload["success"])
}

func TestHandleStats(t *testing.T) {
	app, db := newTestApp(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedScoredLead(t, db, "RFQ001", "BIZ001", 5, 85, 0.85, base)
	seedScoredLead(t, db, "RFQ002", "BIZ002", 3, 55, 0.55, base.Add(time.Hour))
	seedScoredLead(t, db, "RFQ003", "BIZ003", 1, 10, 0.10, base.Add(2*time.Hour))

	status, payload := doJSON(t, app, http.MethodGet, "/api/rfqs/stats", nil)
	require.Equal(t, http.StatusOK, status)
	stats := payload["stats"].(map[string]any)
	assert.EqualValues(t, 3, stats["total_scored"])
	assert.EqualValues(t, 1, stats["high_priority"])
	assert.EqualValues(t, 1, stats["medium_priority"])
	assert.EqualValues(t, 1, stats["low_priority"])
	assert.EqualValues(t, 85, stats["max_score"])
	assert.EqualValues(t, 10, stats["min_score"])
	assert.EqualValues(t, 1, stats["ss5_count"])
}

func TestHandleDistribution(t *testing.T) {
	app, db := newTestApp(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedScoredLead(t, db, "RFQ001", "BIZ001", 5, 85, 0.85, base)
	seedScoredLead(t, db, "RFQ002", "BIZ002", 4, 82, 0.82, base.Add(time.Hour))
	seedScoredLead(t, db, "RFQ003", "BIZ003", 2, 45, 0.45, base.Add(2*time.Hour))

	status, payload := doJSON(t, app, http.MethodGet, "/api/rfqs/score-distribution", nil)
	require.Equal(t, http.StatusOK, status)
	bands := payload["distribution"].([]any)
	require.Len(t, bands, 2)
	top := bands[0].(map[string]any)
	assert.Equal(t, "80-100", top["score_range"])
	assert.EqualValues(t, 2, top["count"])
}
