// Package testutil provides shared testing utilities: a deterministic mock
// embedder, a scripted judge, and a PostgreSQL test container helper.
package testutil

import (
	"context"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
)

// MockEmbedder implements ai.Embedder deterministically for tests.
// Thread-safe; tracks calls so tests can assert short-circuit properties
// (e.g., no embedding call for gibberish input).
type MockEmbedder struct {
	mu     sync.Mutex
	calls  []string
	err    error
	empty  bool
	fixed  []float32
	byText map[string][]float32
}

// NewMockEmbedder creates a mock embedder returning the given vector for
// every input. Per-text vectors can be added with SetVector.
func NewMockEmbedder(fixed []float32) *MockEmbedder {
	return &MockEmbedder{fixed: fixed}
}

// SetVector registers a vector for an exact input text.
func (m *MockEmbedder) SetVector(text string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byText == nil {
		m.byText = make(map[string][]float32)
	}
	m.byText[text] = vec
}

// FailWith makes every Embed call return err.
func (m *MockEmbedder) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ReturnEmpty makes every Embed call return an empty embedding.
func (m *MockEmbedder) ReturnEmpty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.empty = true
}

// CallCount returns how many times Embed was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastInput returns the text of the most recent Embed call.
func (m *MockEmbedder) LastInput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1]
}

// Name implements ai.Embedder.
func (m *MockEmbedder) Name() string { return "mock-embedder" }

// Register implements ai.Embedder. No-op for testing.
func (m *MockEmbedder) Register(api.Registry) {}

// Embed implements ai.Embedder.
func (m *MockEmbedder) Embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &ai.EmbedResponse{}
	for _, doc := range req.Input {
		var text string
		if len(doc.Content) > 0 {
			text = doc.Content[0].Text
		}
		m.calls = append(m.calls, text)

		if m.err != nil {
			return nil, m.err
		}
		if m.empty {
			resp.Embeddings = append(resp.Embeddings, &ai.Embedding{Embedding: []float32{}})
			continue
		}

		vec := m.fixed
		if v, ok := m.byText[text]; ok {
			vec = v
		}
		resp.Embeddings = append(resp.Embeddings, &ai.Embedding{Embedding: vec})
	}
	return resp, nil
}

// UnitVector returns a dim-length one-hot vector with 1 at axis. Handy for
// building catalogs whose cosine distances are predictable in tests.
func UnitVector(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis%dim] = 1
	return v
}
