package retrieval

import (
	"math"
	"sort"

	"github.com/mkravets/studyassist/internal/core/domain"
)

// Params are the BM25 tuning knobs.
type Params struct {
	K1 float64
	B  float64
}

func DefaultParams() Params {
	return Params{K1: 1.5, B: 0.75}
}

type document struct {
	chunk  domain.Chunk
	tokens []string
	length int
}

func buildCorpus(chunks []domain.Chunk) []document {
	docs := make([]document, 0, len(chunks))
	for _, c := range chunks {
		tokens := Tokenize(c.Text)
		docs = append(docs, document{chunk: c, tokens: tokens, length: len(tokens)})
	}
	return docs
}

type pageKey struct {
	source string
	page   int
}

// rank scores every document against the distinct query tokens with BM25,
// keeps the best-scoring chunk per (source, page) and returns at most topK
// results in descending score order. Ties keep corpus order. Scores are
// rounded to 4 decimals only in the returned results; the sort and the
// dedup run on full precision.
func rank(queryTokens []string, docs []document, params Params, topK int) []domain.ScoredChunk {
	if topK <= 0 {
		return nil
	}

	n := len(docs)
	if n < 1 {
		n = 1
	}

	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]struct{}, len(d.tokens))
		for _, t := range d.tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	// Smoothed IDF: ln((N-df+0.5)/(df+0.5) + 1). The +1 keeps the weight
	// non-negative even for terms present in every document.
	idf := make(map[string]float64, len(df))
	for t, dft := range df {
		idf[t] = math.Log((float64(n)-float64(dft)+0.5)/(float64(dft)+0.5) + 1.0)
	}

	totalLen := 0
	for _, d := range docs {
		totalLen += d.length
	}
	avgdl := float64(totalLen) / float64(n)
	if avgdl <= 0 {
		avgdl = 1.0
	}

	terms := distinctTokens(queryTokens)

	type scoredDoc struct {
		chunk domain.Chunk
		score float64
	}
	scored := make([]scoredDoc, 0, len(docs))
	for _, d := range docs {
		tf := make(map[string]int, len(d.tokens))
		for _, t := range d.tokens {
			tf[t]++
		}

		score := 0.0
		for _, q := range terms {
			freq, ok := tf[q]
			if !ok {
				continue
			}
			numer := float64(freq) * (params.K1 + 1.0)
			denom := float64(freq) + params.K1*(1.0-params.B+params.B*(float64(d.length)/avgdl))
			score += idf[q] * (numer / denom)
		}
		scored = append(scored, scoredDoc{chunk: d.chunk, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	// Keep only the best chunk per (source, page): first seen after the
	// sort wins.
	seenPages := make(map[pageKey]struct{}, len(scored))
	out := make([]domain.ScoredChunk, 0, topK)
	for _, s := range scored {
		key := pageKey{source: s.chunk.Source, page: s.chunk.Page}
		if _, ok := seenPages[key]; ok {
			continue
		}
		seenPages[key] = struct{}{}
		out = append(out, domain.ScoredChunk{
			Source: s.chunk.Source,
			Page:   s.chunk.Page,
			Text:   s.chunk.Text,
			Score:  roundScore(s.score),
		})
		if len(out) == topK {
			break
		}
	}
	return out
}

// distinctTokens drops repeats so a repeated query word carries no extra
// weight beyond its single IDF contribution.
func distinctTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func roundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}
