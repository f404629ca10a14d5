package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// CompleteTimeout caps a single completion call.
const CompleteTimeout = 10 * time.Second

// completeTemperature keeps tag answers deterministic.
const completeTemperature = 0.3

// ErrCompleteTimeout indicates the completion call timed out.
var ErrCompleteTimeout = errors.New("completion timed out")

// Complete sends a prompt and returns the model's trimmed text answer.
// It satisfies the suggest.Completer contract.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, CompleteTimeout)
	defer cancel()

	temperature := float32(completeTemperature)

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 200,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrCompleteTimeout
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}

	return strings.TrimSpace(text), nil
}
