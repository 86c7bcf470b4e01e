package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/mkravets/studyassist/internal/core/domain"
	"github.com/mkravets/studyassist/internal/core/ports"
)

// Retriever composes tokenization, BM25 ranking and length-based backfill
// over a fresh corpus snapshot per call. When ranking alone cannot fill
// the requested result count, the longest chunk of each remaining page is
// appended with score 0, so a non-empty corpus always yields results.
type Retriever struct {
	store  ports.ChunkStore
	params Params
}

func NewRetriever(store ports.ChunkStore, params Params) *Retriever {
	if params.K1 <= 0 {
		params.K1 = DefaultParams().K1
	}
	if params.B < 0 || params.B > 1 {
		params.B = DefaultParams().B
	}
	return &Retriever{store: store, params: params}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "retrieve", fmt.Errorf("negative result count %d", k))
	}
	if k == 0 {
		return []domain.ScoredChunk{}, nil
	}

	chunks, err := r.store.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	var results []domain.ScoredChunk
	if queryTokens := Tokenize(query); len(queryTokens) > 0 {
		results = rank(queryTokens, buildCorpus(chunks), r.params, k)
	}
	if len(results) >= k {
		return results, nil
	}

	return append(results, backfill(chunks, results, k-len(results))...), nil
}

// backfill picks one representative chunk per (source, page) by greatest
// raw character length (equal length keeps the first found), skips pages
// already ranked and returns up to n representatives in descending length
// order with score 0.
func backfill(chunks []domain.Chunk, ranked []domain.ScoredChunk, n int) []domain.ScoredChunk {
	byPage := make(map[pageKey]domain.Chunk, len(chunks))
	order := make([]pageKey, 0, len(chunks))
	for _, c := range chunks {
		key := pageKey{source: c.Source, page: c.Page}
		cur, ok := byPage[key]
		if !ok {
			byPage[key] = c
			order = append(order, key)
			continue
		}
		if len(c.Text) > len(cur.Text) {
			byPage[key] = c
		}
	}

	taken := make(map[pageKey]struct{}, len(ranked))
	for _, s := range ranked {
		taken[pageKey{source: s.Source, page: s.Page}] = struct{}{}
	}

	pool := make([]domain.Chunk, 0, len(order))
	for _, key := range order {
		if _, ok := taken[key]; ok {
			continue
		}
		pool = append(pool, byPage[key])
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return len(pool[i].Text) > len(pool[j].Text)
	})
	if len(pool) > n {
		pool = pool[:n]
	}

	out := make([]domain.ScoredChunk, 0, len(pool))
	for _, c := range pool {
		out = append(out, domain.ScoredChunk{
			Source: c.Source,
			Page:   c.Page,
			Text:   c.Text,
			Score:  0.0,
		})
	}
	return out
}
