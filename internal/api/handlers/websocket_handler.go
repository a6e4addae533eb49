package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/llm"
	"github.com/jadenfix/DF-sub000/internal/storage/models"
	"github.com/jadenfix/DF-sub000/pkg/logger"
)

// WebSocketHandler streams playground chat completions word-by-word so the
// frontend can render them as they "type".
type WebSocketHandler struct {
	llmClient *llm.Client
}

func NewWebSocketHandler(llmClient *llm.Client) *WebSocketHandler {
	return &WebSocketHandler{
		llmClient: llmClient,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type    string `json:"type"`
			Content string `json:"content"`
			History []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"history"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "chat" || msg.Content == "" {
			continue
		}

		history := make([]models.ChatMessage, 0, len(msg.History))
		for _, turn := range msg.History {
			history = append(history, models.ChatMessage{
				Role:    turn.Role,
				Content: turn.Content,
			})
		}

		err = h.streamCompletion(c, msg.Content, history)
		if err != nil {
			logger.Error("Failed to stream chat response", zap.Error(err))
			h.sendError(c, "Failed to generate response")
		}
	}
}

func (h *WebSocketHandler) streamCompletion(c *websocket.Conn, message string, history []models.ChatMessage) error {
	result, err := h.llmClient.Complete(context.Background(), message, history)
	if err != nil {
		return err
	}

	for _, word := range strings.Fields(result.Answer) {
		err := c.WriteJSON(map[string]interface{}{
			"type":    "chunk",
			"content": word + " ",
		})
		if err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type": "complete",
		"mock": result.Mock,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
