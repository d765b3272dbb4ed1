package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"trustmarket/lead-scoring/internal/models"
	"trustmarket/lead-scoring/internal/repositories"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type RFQHandler struct {
	rfqRepo repositories.RFQRepository
}

func NewRFQHandler(rfqRepo repositories.RFQRepository) *RFQHandler {
	return &RFQHandler{
		rfqRepo: rfqRepo,
	}
}

// HandleScoredList serves GET /rfqs/scored: the ranked listing of scored
// leads with optional filters. limit accepts a number (capped at 100) or
// "all" to disable the cap.
func (h *RFQHandler) HandleScoredList(c *fiber.Ctx) error {
	filter := repositories.ScoredRFQFilter{
		Status: c.Query("status", string(models.StatusPublished)),
		Limit:  defaultListLimit,
	}

	if raw := c.Query("limit"); raw != "" {
		if raw == "all" {
			filter.Limit = 0
		} else {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"error":   "limit must be a positive integer or 'all'",
				})
			}
			if limit > maxListLimit {
				limit = maxListLimit
			}
			filter.Limit = limit
		}
	}

	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.Atoi(raw)
		if err != nil || minScore < 0 || minScore > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "min_score must be an integer between 0 and 100",
			})
		}
		filter.MinScore = minScore
	}

	if raw := c.Query("rfqscore"); raw != "" {
		brank, err := strconv.Atoi(raw)
		if err != nil || brank < 1 || brank > 5 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "rfqscore must be an integer between 1 and 5",
			})
		}
		filter.BuyerBRank = brank
	}

	rfqs, err := h.rfqRepo.FindScored(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(rfqs),
		"filters": fiber.Map{
			"status":    filter.Status,
			"min_score": filter.MinScore,
			"rfqscore":  filter.BuyerBRank,
			"limit":     filter.Limit,
		},
		"rfqs": rfqs,
	})
}

// HandleGetRFQ serves GET /rfqs/:id: one lead with buyer details, scored or
// not.
func (h *RFQHandler) HandleGetRFQ(c *fiber.Ctx) error {
	rfq, err := h.rfqRepo.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrRFQNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "RFQ not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"rfq":     rfq,
	})
}

// HandleGetScore serves GET /rfqs/:id/score. A lead that exists but has no
// score record yet is reported distinctly from a lead that does not exist.
func (h *RFQHandler) HandleGetScore(c *fiber.Ctx) error {
	rfqID := c.Params("id")

	rfq, err := h.rfqRepo.FindByID(c.Context(), rfqID)
	if err != nil {
		if errors.Is(err, repositories.ErrRFQNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "RFQ not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error: " + err.Error(),
		})
	}

	if !rfq.Scored() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "RFQ not yet scored",
			"rfq_id":  rfqID,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"rfq":     rfq,
	})
}

// HandleCreate serves POST /rfqs: create a lead with a generated sequential
// identifier. New leads default to draft; scoring picks them up only once
// published.
func (h *RFQHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateRFQRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Title == "" || req.Category == "" || req.BuyerBusinessID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "title, category and buyer_business_id are required",
		})
	}

	status := models.StatusDraft
	if req.Status != "" {
		status = models.RFQStatus(req.Status)
	}

	rfqID, err := h.rfqRepo.NextRFQID(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error: " + err.Error(),
		})
	}

	rfq := &models.RFQ{
		RFQID:           rfqID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		BudgetMin:       req.BudgetMin,
		BudgetMax:       req.BudgetMax,
		BuyerBusinessID: req.BuyerBusinessID,
		Status:          status,
	}
	if err := h.rfqRepo.Create(c.Context(), rfq); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Database error: " + err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"rfq":     rfq,
	})
}
