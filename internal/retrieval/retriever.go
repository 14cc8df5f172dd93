package retrieval

import (
	"context"
	"fmt"

	"github.com/umlchat/umlchat-backend/internal/clients/openai"
	"github.com/umlchat/umlchat-backend/internal/clients/qdrant"
	"github.com/umlchat/umlchat-backend/internal/pkg/logger"
)

// Fragment is one knowledge snippet selected for grounding a turn.
type Fragment struct {
	ID    string
	Text  string
	Score float64
}

// Retriever selects grounding fragments for a raw user query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Fragment, error)
}

// Config tunes candidate fetch and selection. FetchK bounds the vector store
// round trip; SelectK bounds what reaches the prompt.
type Config struct {
	FetchK  int
	SelectK int
	Lambda  float64
}

func DefaultConfig() Config {
	return Config{FetchK: 5, SelectK: 4, Lambda: 0.5}
}

type retriever struct {
	log   *logger.Logger
	ai    openai.Client
	store qdrant.VectorStore
	cfg   Config
}

func NewRetriever(log *logger.Logger, ai openai.Client, store qdrant.VectorStore, cfg Config) (Retriever, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ai == nil {
		return nil, fmt.Errorf("openai client required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	if cfg.FetchK <= 0 {
		cfg.FetchK = DefaultConfig().FetchK
	}
	if cfg.SelectK <= 0 {
		cfg.SelectK = DefaultConfig().SelectK
	}
	if cfg.Lambda <= 0 || cfg.Lambda > 1 {
		cfg.Lambda = DefaultConfig().Lambda
	}
	return &retriever{
		log:   log.With("service", "ContextRetriever"),
		ai:    ai,
		store: store,
		cfg:   cfg,
	}, nil
}

func (r *retriever) Retrieve(ctx context.Context, query string) ([]Fragment, error) {
	embeddings, err := r.ai.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed query: empty embedding")
	}
	queryVec := embeddings[0]

	matches, err := r.store.QueryMatches(ctx, queryVec, r.cfg.FetchK)
	if err != nil {
		return nil, fmt.Errorf("query knowledge collection: %w", err)
	}
	// An empty or sparse index is a normal state, not a failure.
	if len(matches) == 0 {
		return nil, nil
	}

	candidates := make([][]float32, len(matches))
	for i, m := range matches {
		candidates[i] = m.Vector
	}
	order := mmrSelect(queryVec, candidates, r.cfg.SelectK, r.cfg.Lambda)

	out := make([]Fragment, 0, len(order))
	for _, i := range order {
		out = append(out, Fragment{
			ID:    matches[i].ID,
			Text:  matches[i].Text,
			Score: matches[i].Score,
		})
	}
	r.log.Debug("fragments selected", "fetched", len(matches), "selected", len(out))
	return out, nil
}
