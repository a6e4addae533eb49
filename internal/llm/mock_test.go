package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockAnswerKeywordSelection(t *testing.T) {
	assert.Contains(t, MockAnswer("How much does the Pro plan cost?"), "Pro plan")
	assert.Contains(t, MockAnswer("Can I integrate via the API?"), "HTTPS")
	assert.Contains(t, MockAnswer("How does RLHF training work here?"), "feedback loop")
}

func TestMockAnswerFallback(t *testing.T) {
	assert.Equal(t, mockDefault, MockAnswer("zzz"))
}
