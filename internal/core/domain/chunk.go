package domain

// Chunk is one bounded span of text extracted from a single page of a
// source document. Multiple chunks may share the same (source, page).
type Chunk struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

// ScoredChunk is a chunk annotated with its retrieval score. Backfilled
// entries carry score 0.
type ScoredChunk struct {
	Source string  `json:"source"`
	Page   int     `json:"page"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// ChunkPreview is a lightweight row for inspecting what is indexed.
type ChunkPreview struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Length  int    `json:"length"`
	Preview string `json:"preview"`
}

type Answer struct {
	Text    string        `json:"text"`
	Sources []ScoredChunk `json:"sources"`
}
