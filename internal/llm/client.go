package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/storage/models"
	"github.com/jadenfix/DF-sub000/pkg/circuitbreaker"
	"github.com/jadenfix/DF-sub000/pkg/logger"
	"github.com/jadenfix/DF-sub000/pkg/retry"
)

const systemPrompt = `You are the DreamForge product assistant. Answer questions about the DreamForge vision-language platform, its playground, pricing, and APIs. Keep answers short and friendly.`

// Client wraps the chat completion API for the playground assistant, with the
// same mock fallback scheme as the vision client.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

type Result struct {
	Answer string
	Mock   bool
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	c := &Client{
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
	}

	if apiKey == "" {
		logger.Warn("No LLM API key configured, falling back to mock responses")
		return c
	}

	c.client = openai.NewClient(apiKey)

	c.cb = circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	c.retryConfig = retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return c
}

func (c *Client) Complete(ctx context.Context, message string, history []models.ChatMessage) (*Result, error) {
	if c.client == nil {
		return &Result{Answer: MockAnswer(message), Mock: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
	}

	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	var answer string

	err := c.cb.Execute(ctx, func() error {
		result, err := retry.DoWithResult(ctx, c.retryConfig, func() (string, error) {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: c.temperature,
					MaxTokens:   c.maxTokens,
				},
			)

			if err != nil {
				return "", fmt.Errorf("failed to create completion: %w", err)
			}

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			return firstChoiceContent(resp)
		})
		if err != nil {
			return err
		}
		answer = result
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &Result{Answer: answer}, nil
}

// firstChoiceContent extracts the assistant text from a completion response.
// The API can return an empty choice list on content filtering or truncation.
func firstChoiceContent(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
