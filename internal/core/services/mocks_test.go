package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
)

// stubEmbedding is a deterministic embedding provider: the same text
// always produces the same vector, and different texts almost always
// produce different vectors.
type stubEmbedding struct {
	dims      int
	embedErr  error
	batchErr  error
	fixedVecs map[string][]float32
	// misalign drops the last vector of every batch response.
	misalign bool
	calls    int
}

var _ driven.EmbeddingService = (*stubEmbedding)(nil)

func newStubEmbedding(dims int) *stubEmbedding {
	return &stubEmbedding{dims: dims, fixedVecs: make(map[string][]float32)}
}

func (s *stubEmbedding) vectorFor(text string) []float32 {
	if vec, ok := s.fixedVecs[text]; ok {
		return vec
	}
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	vec := make([]float32, s.dims)
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000) / 1000
	}
	return vec
}

func (s *stubEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	return s.vectorFor(text), nil
}

func (s *stubEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vecs = append(vecs, s.vectorFor(text))
	}
	if s.misalign && len(vecs) > 0 {
		vecs = vecs[:len(vecs)-1]
	}
	return vecs, nil
}

func (s *stubEmbedding) Dimensions() int                 { return s.dims }
func (s *stubEmbedding) ModelName() string               { return "stub-embed" }
func (s *stubEmbedding) Ping(_ context.Context) error    { return nil }
func (s *stubEmbedding) Close() error                    { return nil }

// stubLLM replies with a canned response and records the messages it saw.
type stubLLM struct {
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

var _ driven.LLMService = (*stubLLM)(nil)

func (s *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	s.messages = messages
	s.opts = opts
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubLLM) ModelName() string            { return "stub-llm" }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { return nil }

// stubPrompts serves a fixed prompt per name.
type stubPrompts struct {
	prompts map[string]string
}

var _ driven.PromptStore = (*stubPrompts)(nil)

func (s *stubPrompts) Load(name string) (string, error) {
	if prompt, ok := s.prompts[name]; ok {
		return prompt, nil
	}
	return "", fmt.Errorf("prompt %q: %w", name, errors.New("not found"))
}

// qaReply builds a valid generator JSON reply.
func qaReply(answer, confidence string, indices []int) string {
	idxJSON := "["
	for i, idx := range indices {
		if i > 0 {
			idxJSON += ","
		}
		idxJSON += fmt.Sprintf("%d", idx)
	}
	idxJSON += "]"
	return fmt.Sprintf(`{"answer": %q, "confidence": %q, "referenced_clause_indices": %s, "explanation": "because"}`,
		answer, confidence, idxJSON)
}
