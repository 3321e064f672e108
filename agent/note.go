// Package agent generates an optional one-paragraph market note on the
// latest confirmed flows, using the Gemini API.
package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const model = "gemini-2.0-flash"

const instruction = "You are a market analyst. Given the daily net capital flows of " +
	"US spot ETFs, write one short paragraph (3 sentences max) of neutral, " +
	"factual commentary. No advice, no predictions, no emoji."

// Note asks the model for a short comment on the given flow summary.
// The summary is plain text, one line per asset.
func Note(ctx context.Context, client *genai.Client, summary string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
	}
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(summary), config)
	if err != nil {
		return "", fmt.Errorf("cannot generate note: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("model returned an empty note")
	}
	return text, nil
}
