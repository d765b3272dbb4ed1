package handlers

import (
	"github.com/gofiber/fiber/v2"

	"trustmarket/lead-scoring/internal/repositories"
)

type StatsHandler struct {
	scoreRepo repositories.LeadScoreRepository
}

func NewStatsHandler(scoreRepo repositories.LeadScoreRepository) *StatsHandler {
	return &StatsHandler{
		scoreRepo: scoreRepo,
	}
}

// HandleStats serves GET /rfqs/stats: aggregate counters over scored
// published leads.
func (h *StatsHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.scoreRepo.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

// HandleDistribution serves GET /rfqs/score-distribution: scored leads
// bucketed into fixed 20-point score bands, highest band first.
func (h *StatsHandler) HandleDistribution(c *fiber.Ctx) error {
	bands, err := h.scoreRepo.Distribution(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"distribution": bands,
	})
}
