package vlm

import "strings"

type mockRule struct {
	keywords []string
	answer   string
}

// Ordered so the more specific prompts win over "describe".
var mockRules = []mockRule{
	{
		keywords: []string{"how many", "count", "number of"},
		answer:   "I can see 3 distinct objects in the foreground of this image, with a few partially occluded shapes in the background that are harder to count reliably.",
	},
	{
		keywords: []string{"text", "read", "say", "written"},
		answer:   "The image contains a short block of printed text in the center. The largest line appears to be a heading; the smaller lines beneath it are too low-resolution to transcribe exactly.",
	},
	{
		keywords: []string{"color", "colour"},
		answer:   "The dominant colors are warm earth tones: a terracotta orange across the upper half, muted olive greens in the midground, and a deep slate blue along the lower edge.",
	},
	{
		keywords: []string{"person", "people", "face", "who"},
		answer:   "There is one person visible, photographed from the side in natural light. They are facing away from the camera, so facial details are not discernible.",
	},
	{
		keywords: []string{"where", "location", "place"},
		answer:   "The setting looks like an urban outdoor scene, likely a plaza or wide sidewalk, with low-rise buildings and string lights suggesting early evening.",
	},
	{
		keywords: []string{"emotion", "mood", "feel"},
		answer:   "The overall mood reads as calm and slightly nostalgic: soft diffuse lighting, muted saturation, and a lot of negative space around the main subject.",
	},
}

const mockDefault = "This image shows a well-composed scene with a clear central subject against a softly blurred background. The lighting is natural and even, and the framing draws the eye toward the middle third of the frame."

// MockAnswer is the deterministic fallback used when no API key is
// configured. Demo installs depend on it returning plausible copy for the
// playground, so it keys on prompt phrasing rather than returning one string.
func MockAnswer(prompt string) string {
	p := strings.ToLower(prompt)

	for _, rule := range mockRules {
		for _, kw := range rule.keywords {
			if strings.Contains(p, kw) {
				return rule.answer
			}
		}
	}

	return mockDefault
}
