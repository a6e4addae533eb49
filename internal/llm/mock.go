package llm

import "strings"

type mockRule struct {
	keywords []string
	answer   string
}

var mockRules = []mockRule{
	{
		keywords: []string{"price", "pricing", "cost", "plan"},
		answer:   "DreamForge has a free tier for the playground, a Pro plan with higher analysis quotas, and custom enterprise pricing. The pricing page has the current numbers.",
	},
	{
		keywords: []string{"api", "integrate", "sdk"},
		answer:   "You can call the DreamForge analysis API over plain HTTPS: POST an image and a prompt, get structured JSON back. API keys are managed from your dashboard.",
	},
	{
		keywords: []string{"train", "rlhf", "fine-tune", "reward"},
		answer:   "DreamForge models improve through a feedback loop: thumbs up/down and comments from the playground feed a reward signal that weights future training runs.",
	},
	{
		keywords: []string{"image", "analyze", "vision", "upload"},
		answer:   "Head to the playground, drop in an image, and ask anything about it. The model handles description, OCR-style reading, counting, and open-ended questions.",
	},
	{
		keywords: []string{"hello", "hi ", "hey"},
		answer:   "Hi! I'm the DreamForge assistant. Ask me about the playground, the API, or how the feedback loop works.",
	},
}

const mockDefault = "I'm the DreamForge assistant. I can help with questions about image analysis, the playground, pricing, and the API. What would you like to know?"

// MockAnswer keys canned assistant copy on the message phrasing so the demo
// chat feels responsive without an API key.
func MockAnswer(message string) string {
	m := strings.ToLower(message)

	for _, rule := range mockRules {
		for _, kw := range rule.keywords {
			if strings.Contains(m, kw) {
				return rule.answer
			}
		}
	}

	return mockDefault
}
