package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/llm"
	"github.com/jadenfix/DF-sub000/internal/metrics"
	"github.com/jadenfix/DF-sub000/internal/storage/models"
	"github.com/jadenfix/DF-sub000/internal/validation"
	"github.com/jadenfix/DF-sub000/pkg/logger"
)

type ChatHandler struct {
	llmClient *llm.Client
}

func NewChatHandler(llmClient *llm.Client) *ChatHandler {
	return &ChatHandler{
		llmClient: llmClient,
	}
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string     `json:"message" validate:"required,max=4000"`
	History []chatTurn `json:"history" validate:"max=20"`
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req chatRequest

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

	history := make([]models.ChatMessage, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, models.ChatMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	result, err := h.llmClient.Complete(c.Context(), req.Message, history)
	if err != nil {
		metrics.ChatTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to generate chat completion", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate response",
		})
	}

	metrics.ChatTotal.WithLabelValues("ok").Inc()
	if result.Mock {
		metrics.MockResponses.WithLabelValues("llm").Inc()
	}

	return c.JSON(fiber.Map{
		"answer": result.Answer,
		"mock":   result.Mock,
	})
}
