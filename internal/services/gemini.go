package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"hainguyen/cv-job-matching/internal/config"
	"hainguyen/cv-job-matching/internal/keyring"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxAttempts int) (string, error)
}

type geminiService struct {
	ring       *keyring.Ring
	clients    map[string]*genai.Client
	modelName  string
	embedModel string
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewGeminiService builds one client per credential up front; each call then
// picks the next client off the ring so quota is spread across accounts.
func NewGeminiService(ring *keyring.Ring, matching config.MatchingConfig, retry config.RetryConfig, logger *zap.Logger) (GeminiService, error) {
	ctx := context.Background()

	clients := make(map[string]*genai.Client, ring.Len())
	for _, key := range ring.Keys() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		clients[key] = client
	}

	return &geminiService{
		ring:       ring,
		clients:    clients,
		modelName:  matching.Model,
		embedModel: matching.EmbedModel,
		retryDelay: retry.InitialDelay,
		logger:     logger,
	}, nil
}

func (g *geminiService) nextClient() *genai.Client {
	return g.clients[g.ring.NextKey()]
}

func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Embedding model caps input length; truncate rather than fail.
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.nextClient().Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.nextClient().Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateTextWithRetry retries with doubling delay. Each attempt rotates to a
// different key, so a rate-limited account does not block the whole run.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxAttempts int) (string, error) {
	var lastErr error
	delay := g.retryDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < maxAttempts {
			g.logger.Warn("gemini call failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
