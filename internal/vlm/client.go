package vlm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/pkg/circuitbreaker"
	"github.com/jadenfix/DF-sub000/pkg/logger"
	"github.com/jadenfix/DF-sub000/pkg/retry"
)

const systemPrompt = `You are DreamForge, a vision-language assistant. Answer the user's question about the supplied image. Be direct, concrete, and descriptive. If the image does not contain enough information to answer, say so.`

// Client calls the vision-language model, or the built-in mock generator when
// no API key is configured.
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
		logger.Warn("No VLM API key configured, falling back to mock responses")
		return c
	}

	c.client = openai.NewClient(apiKey)

	c.cb = circuitbreaker.NewCircuitBreaker("vlm", circuitbreaker.Config{
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

	logger.Info("VLM client initialized", zap.String("model", model))

	return c
}

// Analyze answers a prompt about one image. The image is either a remote URL
// or a base64 payload, which is wrapped into a data URL for the API.
func (c *Client) Analyze(ctx context.Context, prompt, image string) (*Result, error) {
	if c.client == nil {
		return &Result{Answer: MockAnswer(prompt), Mock: true}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	imageURL := image
	if !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://") && !strings.HasPrefix(image, "data:") {
		imageURL = "data:image/jpeg;base64," + image
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: prompt,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    imageURL,
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		},
	}

	var answer string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
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
				return fmt.Errorf("failed to create vision completion: %w", err)
			}

			logger.Debug("VLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			answer, err = firstChoiceContent(resp)
			return err
		})
	})

	if err != nil {
		return nil, err
	}

	return &Result{Answer: answer}, nil
}

// firstChoiceContent extracts the answer text from a completion response.
// The API can return an empty choice list on content filtering or truncation.
func firstChoiceContent(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
