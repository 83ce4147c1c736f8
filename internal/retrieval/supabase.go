// internal/retrieval/supabase.go
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/user/leasecraft/pkg/llm"
)

// Store talks to a Supabase (PostgREST + pgvector) project. Similarity
// search goes through the match_documents RPC; inserts go straight to the
// table endpoints.
type Store struct {
	baseURL    string
	serviceKey string
	embedder   llm.Embedder
	reranker   Reranker
	httpClient *http.Client
}

// Reranker reorders candidate texts by relevance to a query. Implemented
// by the Cohere client; nil disables reranking regardless of options.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string, topN int) ([]RankedItem, error)
}

// RankedItem points back into the candidate slice with a relevance score.
type RankedItem struct {
	Index     int
	Relevance float64
}

// NewStore creates a Store. reranker may be nil.
func NewStore(baseURL, serviceKey string, embedder llm.Embedder, reranker Reranker) *Store {
	return &Store{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		embedder:   embedder,
		reranker:   reranker,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// matchRequest is the body for the match_documents RPC.
type matchRequest struct {
	QueryEmbedding []float64      `json:"query_embedding"`
	MatchCount     int            `json:"match_count"`
	TableName      string         `json:"table_name"`
	Filter         map[string]any `json:"filter"`
}

// matchRow is one row returned by the RPC.
type matchRow struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Metadata   map[string]any  `json:"metadata"`
	Similarity float64         `json:"similarity"`
	Embedding  json.RawMessage `json:"embedding,omitempty"`
}

// Search embeds the query, runs the similarity RPC, and optionally reranks.
// The result is ordered best-first and has at most opts.KeepCount entries.
func (s *Store) Search(ctx context.Context, query string, cat Category, opts SearchOptions) ([]Passage, error) {
	table, ok := tableFor[cat]
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", cat)
	}
	if opts.FetchCount <= 0 {
		opts.FetchCount = 30
	}
	if opts.KeepCount <= 0 {
		opts.KeepCount = 8
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	reqBody := matchRequest{
		QueryEmbedding: vecs[0],
		MatchCount:     opts.FetchCount,
		TableName:      table,
		Filter:         map[string]any{},
	}

	var rows []matchRow
	if err := s.post(ctx, "/rest/v1/rpc/match_documents", reqBody, &rows); err != nil {
		return nil, fmt.Errorf("match_documents: %w", err)
	}

	passages := make([]Passage, 0, len(rows))
	for _, row := range rows {
		passages = append(passages, Passage{
			ID:         row.ID,
			Text:       row.Text,
			Metadata:   row.Metadata,
			Similarity: row.Similarity,
		})
	}

	if opts.Rerank && s.reranker != nil && len(passages) > 0 {
		return s.rerank(ctx, query, passages, opts.KeepCount), nil
	}
	if len(passages) > opts.KeepCount {
		passages = passages[:opts.KeepCount]
	}
	return passages, nil
}

// rerank reorders passages with the reranker; on failure the original
// vector-similarity order is kept.
func (s *Store) rerank(ctx context.Context, query string, passages []Passage, topN int) []Passage {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	ranked, err := s.reranker.Rerank(ctx, query, texts, topN)
	if err != nil {
		if len(passages) > topN {
			passages = passages[:topN]
		}
		return passages
	}

	out := make([]Passage, 0, len(ranked))
	for _, item := range ranked {
		if item.Index < 0 || item.Index >= len(passages) {
			continue
		}
		p := passages[item.Index]
		p.RerankScore = item.Relevance
		out = append(out, p)
	}
	return out
}

// Upsert embeds documents in one batch and writes them to the category's
// table. Existing rows with the same ID are replaced.
func (s *Store) Upsert(ctx context.Context, cat Category, docs []Document) error {
	table, ok := tableFor[cat]
	if !ok {
		return fmt.Errorf("unknown category: %s", cat)
	}
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	type upsertRow struct {
		ID        string         `json:"id"`
		Text      string         `json:"text"`
		Embedding []float64      `json:"embedding"`
		Metadata  map[string]any `json:"metadata"`
	}
	rows := make([]upsertRow, len(docs))
	for i, d := range docs {
		meta := d.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		rows[i] = upsertRow{ID: d.ID, Text: d.Text, Embedding: vecs[i], Metadata: meta}
	}

	req, err := s.newRequest(ctx, http.MethodPost, "/rest/v1/"+table, rows)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upsert failed (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Count returns the number of documents in the category's table, using
// PostgREST's exact count header.
func (s *Store) Count(ctx context.Context, cat Category) (int, error) {
	table, ok := tableFor[cat]
	if !ok {
		return 0, fmt.Errorf("unknown category: %s", cat)
	}

	req, err := s.newRequest(ctx, http.MethodGet, "/rest/v1/"+table+"?select=id", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")
	req.Header.Set("Range", "0-0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("count failed (status %d)", resp.StatusCode)
	}

	// Content-Range is "0-0/123" (or "*/0" for an empty table).
	contentRange := resp.Header.Get("Content-Range")
	idx := strings.LastIndex(contentRange, "/")
	if idx < 0 {
		return 0, fmt.Errorf("missing Content-Range header")
	}
	total := contentRange[idx+1:]
	if total == "*" {
		return 0, nil
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("parse Content-Range %q: %w", contentRange, err)
	}
	return n, nil
}

func (s *Store) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (s *Store) post(ctx context.Context, path string, body, out any) error {
	req, err := s.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}
