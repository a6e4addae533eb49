package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/feedback"
	"github.com/jadenfix/DF-sub000/internal/validation"
	"github.com/jadenfix/DF-sub000/pkg/logger"
)

type FeedbackHandler struct {
	service *feedback.Service
}

func NewFeedbackHandler(service *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
	}
}

type feedbackRequest struct {
	AnalysisID string `json:"analysis_id" validate:"required"`
	Upvote     bool   `json:"upvote"`
	Comment    string `json:"comment" validate:"max=2000"`
}

func (h *FeedbackHandler) HandleFeedback(c *fiber.Ctx) error {
	var req feedbackRequest

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

	// Bad references are accepted and dropped, so the response is the same
	// either way; demo clients with stale state never see an error here.
	_, err := h.service.Submit(feedback.Submission{
		AnalysisID: req.AnalysisID,
		Upvote:     req.Upvote,
		Comment:    req.Comment,
	})
	if err != nil {
		logger.Error("Failed to store feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	return c.JSON(fiber.Map{
		"message": "feedback received",
	})
}
