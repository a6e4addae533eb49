package vlm

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstChoiceContent(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "a red bicycle against a wall"}},
		},
	}

	answer, err := firstChoiceContent(resp)
	require.NoError(t, err)
	assert.Equal(t, "a red bicycle against a wall", answer)
}

func TestFirstChoiceContentEmptyChoices(t *testing.T) {
	answer, err := firstChoiceContent(openai.ChatCompletionResponse{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
	assert.Empty(t, answer)
}
