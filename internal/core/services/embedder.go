package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// Text preprocessing limits for embedding input.
const (
	// MinEmbedTextLength is the minimum character count (after trimming)
	// for a meaningful embedding. Shorter inputs are rejected outright.
	MinEmbedTextLength = 10

	// MaxEmbedTextLength is the character budget sent to the provider.
	// Roughly 8191 tokens for OpenAI embedding models. Longer input is
	// truncated deterministically; truncation is not an error.
	MaxEmbedTextLength = 32000
)

// Embedder wraps a provider EmbeddingService with the input validation
// and dimensionality checks the rest of the core relies on.
type Embedder struct {
	provider driven.EmbeddingService
}

// NewEmbedder creates an Embedder over the given provider service.
func NewEmbedder(provider driven.EmbeddingService) *Embedder {
	return &Embedder{provider: provider}
}

// Dimensions returns the fixed embedding dimension of the provider model.
func (e *Embedder) Dimensions() int {
	return e.provider.Dimensions()
}

// prepare trims and truncates text, returning an error for input too
// short to embed meaningfully.
func (e *Embedder) prepare(text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) < MinEmbedTextLength {
		return "", fmt.Errorf("%w (minimum %d characters)", domain.ErrTextTooShort, MinEmbedTextLength)
	}
	if len(text) > MaxEmbedTextLength {
		logger.Warn("embedding input truncated from %d to %d chars", len(text), MaxEmbedTextLength)
		text = truncateText(text, MaxEmbedTextLength)
	}
	return text, nil
}

// validate checks a provider vector against the expected dimension.
func (e *Embedder) validate(vec []float32) error {
	if want := e.provider.Dimensions(); len(vec) != want {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, want, len(vec))
	}
	return nil
}

// EmbedText generates an embedding for a single text.
// Input shorter than MinEmbedTextLength fails with domain.ErrTextTooShort;
// a provider vector of the wrong length fails with domain.ErrDimensionMismatch.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	prepared, err := e.prepare(text)
	if err != nil {
		return nil, err
	}

	vec, err := e.provider.Embed(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	if err := e.validate(vec); err != nil {
		return nil, err
	}

	logger.Debug("embedded %d chars into %d dimensions", len(prepared), len(vec))
	return vec, nil
}

// BatchResult is the outcome for one input of an EmbedBatch call.
// Exactly one of Vector and Err is set.
type BatchResult struct {
	Vector []float32
	Err    error
}

// EmbedBatch embeds multiple texts in one provider call. The returned
// slice has the same length as the input and is positionally aligned, so
// a partial failure never loses the association between an input and its
// outcome. Texts failing validation are marked failed without blocking
// the rest of the batch.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) []BatchResult {
	results := make([]BatchResult, len(texts))
	if len(texts) == 0 {
		return results
	}

	// Validate and truncate each input, keeping the original positions
	// of the ones worth sending.
	valid := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		prepared, err := e.prepare(text)
		if err != nil {
			results[i].Err = err
			continue
		}
		valid = append(valid, prepared)
		positions = append(positions, i)
	}

	if len(valid) == 0 {
		return results
	}

	vecs, err := e.provider.EmbedBatch(ctx, valid)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
		for _, pos := range positions {
			results[pos].Err = err
		}
		return results
	}

	if len(vecs) != len(valid) {
		// Provider returned a misaligned batch. Fail the whole batch
		// rather than guess which vector belongs to which text.
		err = fmt.Errorf("%w: provider returned %d vectors for %d inputs",
			domain.ErrEmbeddingFailed, len(vecs), len(valid))
		for _, pos := range positions {
			results[pos].Err = err
		}
		return results
	}

	ok := 0
	for j, vec := range vecs {
		pos := positions[j]
		if err := e.validate(vec); err != nil {
			results[pos].Err = err
			continue
		}
		results[pos].Vector = vec
		ok++
	}

	logger.Info("batch embedding complete: %d succeeded, %d failed of %d total",
		ok, len(texts)-ok, len(texts))
	return results
}
