// Package retrieval returns ranked reference passages for a query and a
// document category. Similarity search runs against a Supabase pgvector
// backend, optionally reranked by Cohere; the core only depends on getting
// an ordered, bounded list back.
package retrieval

import "context"

// Category selects which reference corpus to search.
type Category string

const (
	CategoryLease   Category = "lease"
	CategoryLaw     Category = "law"
	CategoryMistake Category = "mistake"
)

// tableFor maps a category to its backing table.
var tableFor = map[Category]string{
	CategoryLease:   "lease_clauses",
	CategoryLaw:     "law_documents",
	CategoryMistake: "mistake_documents",
}

// Passage is a single retrieved reference snippet.
type Passage struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Similarity  float64        `json:"similarity"`
	RerankScore float64        `json:"rerank_score,omitempty"`
}

// Score returns the rerank score when present, else the raw similarity.
func (p Passage) Score() float64 {
	if p.RerankScore != 0 {
		return p.RerankScore
	}
	return p.Similarity
}

// SearchOptions bounds one search call. FetchCount rows are retrieved from
// the vector store; KeepCount survive reranking (or plain truncation when
// reranking is off).
type SearchOptions struct {
	FetchCount int
	KeepCount  int
	Rerank     bool
}

// Searcher is the retrieval interface the operations depend on. Results
// are ordered best-first and bounded by KeepCount.
type Searcher interface {
	Search(ctx context.Context, query string, cat Category, opts SearchOptions) ([]Passage, error)
	Count(ctx context.Context, cat Category) (int, error)
}

// Document is an ingestable reference document.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
