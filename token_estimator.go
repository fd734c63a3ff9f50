package imageedit

import (
	"math"
)

// imageTokens approximates what one inline image costs the model.
const imageTokens = 258

// TokenEstimator provides configurable token estimation strategies
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// SimpleTokenEstimator - fast approximation of token usage for rate limiting
type SimpleTokenEstimator struct {
	SafetyMargin float64
}

func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{
		SafetyMargin: 1.2,
	}
}

func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	charCount := len([]rune(text))
	tokenEstimate := float64(charCount) / 4.0
	tokenEstimate *= e.SafetyMargin

	return int(math.Ceil(tokenEstimate)) + 3
}

// EstimateRequestTokens sums the estimate over every text part and a flat
// cost per image, across history and the current message.
func EstimateRequestTokens(e TokenEstimator, req *Request) int {
	total := estimateMessage(e, req.Message)
	for _, m := range req.History {
		total += estimateMessage(e, m)
	}
	return total
}

func estimateMessage(e TokenEstimator, m WireMessage) int {
	total := 0
	for _, p := range m.Parts {
		if p.Text != nil {
			total += e.EstimateTokens(*p.Text)
		}
		if p.InlineData != nil {
			total += imageTokens
		}
	}
	return total
}
