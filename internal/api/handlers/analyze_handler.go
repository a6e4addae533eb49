package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/analysis"
	"github.com/jadenfix/DF-sub000/internal/validation"
	"github.com/jadenfix/DF-sub000/pkg/logger"
)

type AnalyzeHandler struct {
	service *analysis.Service
}

func NewAnalyzeHandler(service *analysis.Service) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: service,
	}
}

type analyzeRequest struct {
	Prompt      string `json:"prompt" validate:"required,max=2000"`
	ImageBase64 string `json:"image_base64"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	UserID      string `json:"user_id"`
	SessionID   string `json:"session_id"`
}

func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest

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

	if (req.ImageBase64 == "") == (req.ImageURL == "") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Exactly one of image_base64 or image_url is required",
		})
	}

	if req.SessionID == "" {
		req.SessionID = c.Get("X-Session-ID")
	}

	resp, err := h.service.Analyze(c.Context(), analysis.Request{
		Prompt:      req.Prompt,
		ImageBase64: req.ImageBase64,
		ImageURL:    req.ImageURL,
		UserID:      req.UserID,
		SessionID:   req.SessionID,
	})

	if errors.Is(err, analysis.ErrGuestLimitExceeded) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Free analysis limit reached. Sign in to continue.",
		})
	}
	if err != nil {
		logger.Error("Failed to process analysis", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process analysis",
		})
	}

	return c.JSON(resp)
}

func (h *AnalyzeHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	sessionID := c.Query("session_id")
	if userID == "" && sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id or session_id is required",
		})
	}

	limit := c.QueryInt("limit", 20)

	records, err := h.service.History(userID, sessionID, limit)
	if err != nil {
		logger.Error("Failed to fetch analysis history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch history",
		})
	}

	history := make([]fiber.Map, 0, len(records))
	for _, a := range records {
		history = append(history, fiber.Map{
			"id":         a.ID,
			"prompt":     a.Prompt,
			"answer":     a.Answer,
			"mock":       a.Mock,
			"latency_ms": a.LatencyMS,
			"created_at": a.CreatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}
