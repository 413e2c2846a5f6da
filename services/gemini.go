package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultEvaluationModel = "gemini-2.0-flash-001"
	evaluationTimeout      = 60 * time.Second
)

// Evaluator returns the raw text a model generates for prompt
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (string, error)
}

// GeminiEvaluator generates evaluations with the Gemini API
type GeminiEvaluator struct {
	genaiClient *genai.Client
	model       string
}

func NewGeminiEvaluator(ctx context.Context, apiKey, model string) (*GeminiEvaluator, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if model == "" {
		model = DefaultEvaluationModel
	}

	return &GeminiEvaluator{
		genaiClient: genaiClient,
		model:       model,
	}, nil
}

func (g *GeminiEvaluator) Evaluate(ctx context.Context, prompt string) (string, error) {
	if g.genaiClient == nil {
		return "", ErrEvaluatorUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, evaluationTimeout)
	defer cancel()

	start := time.Now()
	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate evaluation: %w", err)
	}

	text := result.Text()
	slog.Info("Generated evaluation",
		"model", g.model,
		"response_length", len(text),
		"duration", time.Since(start))

	return text, nil
}
