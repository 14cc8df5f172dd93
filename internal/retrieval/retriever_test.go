package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/umlchat/umlchat-backend/internal/clients/openai"
	"github.com/umlchat/umlchat-backend/internal/clients/qdrant"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
)

type fakeAI struct {
	embedding []float32
	embedErr  error
}

func (f *fakeAI) Complete(ctx context.Context, prompt string, opts openai.Options) (string, error) {
	return "", fmt.Errorf("not used")
}

func (f *fakeAI) CompleteStream(ctx context.Context, prompt string, opts openai.Options, onDelta func(string)) (string, error) {
	return "", fmt.Errorf("not used")
}

func (f *fakeAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = f.embedding
	}
	return out, nil
}

type fakeStore struct {
	matches []qdrant.Match
	err     error
	gotTopK int
}

func (f *fakeStore) QueryMatches(ctx context.Context, vector []float32, topK int) ([]qdrant.Match, error) {
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func newTestRetriever(t *testing.T, ai openai.Client, store qdrant.VectorStore, cfg Config) Retriever {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() { log.Sync() })
	r, err := NewRetriever(log, ai, store, cfg)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}
	return r
}

func TestRetrieveUsesFetchBudget(t *testing.T) {
	store := &fakeStore{}
	r := newTestRetriever(t, &fakeAI{embedding: []float32{1, 0}}, store, Config{FetchK: 5, SelectK: 4, Lambda: 0.5})

	frags, err := r.Retrieve(context.Background(), "how do I model a login flow?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(frags) != 0 {
		t.Fatalf("empty index should yield no fragments, got %d", len(frags))
	}
	if store.gotTopK != 5 {
		t.Fatalf("fetch budget: want=5 got=%d", store.gotTopK)
	}
}

func TestRetrieveSelectsRelevantFirst(t *testing.T) {
	store := &fakeStore{matches: []qdrant.Match{
		{ID: "a", Text: "orthogonal", Score: 0.2, Vector: []float32{0, 1}},
		{ID: "b", Text: "aligned", Score: 0.9, Vector: []float32{1, 0}},
		{ID: "c", Text: "close", Score: 0.8, Vector: []float32{0.9, 0.1}},
	}}
	r := newTestRetriever(t, &fakeAI{embedding: []float32{1, 0}}, store, Config{FetchK: 5, SelectK: 2, Lambda: 0.5})

	frags, err := r.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(frags) != 2 {
		t.Fatalf("fragments: want=2 got=%d", len(frags))
	}
	if frags[0].ID != "b" {
		t.Fatalf("most relevant candidate should come first, got %q", frags[0].ID)
	}
	// With diversity in play the second pick is the orthogonal candidate, not
	// the near-duplicate of the first.
	if frags[1].ID != "a" {
		t.Fatalf("second pick should be the diverse candidate, got %q", frags[1].ID)
	}
}

func TestRetrieveEmbedFailurePropagates(t *testing.T) {
	r := newTestRetriever(t, &fakeAI{embedErr: fmt.Errorf("quota exceeded")}, &fakeStore{}, Config{})
	if _, err := r.Retrieve(context.Background(), "query"); err == nil {
		t.Fatalf("expected embed failure to propagate")
	}
}

func TestRetrieveStoreFailurePropagates(t *testing.T) {
	r := newTestRetriever(t, &fakeAI{embedding: []float32{1, 0}}, &fakeStore{err: fmt.Errorf("unreachable")}, Config{})
	if _, err := r.Retrieve(context.Background(), "query"); err == nil {
		t.Fatalf("expected store failure to propagate")
	}
}

func TestMMRSelectBounds(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{1, 0}, {0, 1}}
	if got := mmrSelect(query, candidates, 5, 0.5); len(got) != 2 {
		t.Fatalf("k beyond candidates should clamp, got %d picks", len(got))
	}
	if got := mmrSelect(query, nil, 3, 0.5); got != nil {
		t.Fatalf("no candidates should yield nil, got %v", got)
	}
	if got := mmrSelect(query, candidates, 0, 0.5); got != nil {
		t.Fatalf("k=0 should yield nil, got %v", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if sim := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); sim < 0.999 {
		t.Fatalf("identical vectors: want ~1 got %f", sim)
	}
	if sim := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); sim != 0 {
		t.Fatalf("orthogonal vectors: want 0 got %f", sim)
	}
	if sim := cosineSimilarity([]float32{1, 0}, []float32{1}); sim != 0 {
		t.Fatalf("mismatched lengths: want 0 got %f", sim)
	}
}
