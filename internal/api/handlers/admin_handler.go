package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/metrics"
	"github.com/jadenfix/DF-sub000/internal/reward"
	"github.com/jadenfix/DF-sub000/internal/storage/models"
	"github.com/jadenfix/DF-sub000/internal/storage/sqlite"
	"github.com/jadenfix/DF-sub000/internal/validation"
	"github.com/jadenfix/DF-sub000/pkg/logger"
)

// AdminHandler serves the shared-secret-gated reward surface: read/update of
// the scoring weights and manual reward recomputation.
type AdminHandler struct {
	db          *sqlite.Client
	updater     *reward.Updater
	updateLimit int
}

func NewAdminHandler(db *sqlite.Client, updater *reward.Updater, updateLimit int) *AdminHandler {
	if updateLimit <= 0 {
		updateLimit = 100
	}
	return &AdminHandler{
		db:          db,
		updater:     updater,
		updateLimit: updateLimit,
	}
}

func (h *AdminHandler) GetRewardConfig(c *fiber.Ctx) error {
	cfg, err := h.db.GetRewardConfig()
	if err != nil {
		logger.Error("Failed to load reward config", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load reward config",
		})
	}

	if cfg == nil {
		return c.JSON(fiber.Map{
			"data": nil,
		})
	}

	return c.JSON(fiber.Map{
		"data": rewardConfigJSON(cfg),
	})
}

type rewardConfigRequest struct {
	Accuracy    *float64 `json:"accuracy" validate:"required,gte=-10,lte=10"`
	Helpfulness *float64 `json:"helpfulness" validate:"required,gte=-10,lte=10"`
	Latency     *float64 `json:"latency" validate:"required,gte=-10,lte=10"`
}

func (h *AdminHandler) PutRewardConfig(c *fiber.Ctx) error {
	var req rewardConfigRequest

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if fields := validation.Struct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	cfg, err := h.db.UpsertRewardConfig(*req.Accuracy, *req.Helpfulness, *req.Latency)
	if err != nil {
		logger.Error("Failed to upsert reward config", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store reward config",
		})
	}

	return c.JSON(fiber.Map{
		"data": rewardConfigJSON(cfg),
	})
}

func (h *AdminHandler) PostRewardUpdate(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", h.updateLimit)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fiber.Map{"limit": "must be a positive integer"},
		})
	}

	report, err := h.updater.Run(c.Context(), limit)
	if err != nil {
		logger.Error("Reward update batch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update rewards",
		})
	}

	metrics.RewardUpdateBatches.Inc()
	metrics.RewardUpdatesApplied.Add(float64(report.Updated))

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("reward update complete: %d updated, %d failed", report.Updated, report.Failed),
	})
}

func rewardConfigJSON(cfg *models.RewardConfig) fiber.Map {
	return fiber.Map{
		"accuracy":    cfg.Accuracy,
		"helpfulness": cfg.Helpfulness,
		"latency":     cfg.Latency,
		"updated_at":  cfg.UpdatedAt.Unix(),
	}
}
