// internal/retrieval/retrieval_test.go
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeEmbedder returns a fixed vector per input.
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

// fakeReranker reverses the input order with descending scores.
type fakeReranker struct {
	err error
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, texts []string, topN int) ([]RankedItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var items []RankedItem
	for i := len(texts) - 1; i >= 0 && len(items) < topN; i-- {
		items = append(items, RankedItem{Index: i, Relevance: 0.9 - float64(len(items))*0.1})
	}
	return items, nil
}

func matchServer(t *testing.T, rows []matchRow) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/rpc/match_documents" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("apikey") == "" {
			t.Error("missing apikey header")
		}
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TableName == "" {
			t.Error("table_name not set")
		}
		json.NewEncoder(w).Encode(rows)
	}))
}

func TestSearchVectorOrder(t *testing.T) {
	rows := []matchRow{
		{ID: "a", Text: "first", Similarity: 0.9},
		{ID: "b", Text: "second", Similarity: 0.8},
		{ID: "c", Text: "third", Similarity: 0.7},
	}
	srv := matchServer(t, rows)
	defer srv.Close()

	store := NewStore(srv.URL, "key", &fakeEmbedder{}, nil)
	got, err := store.Search(context.Background(), "rent clause", CategoryLease, SearchOptions{KeepCount: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("expected vector order a,b; got %s,%s", got[0].ID, got[1].ID)
	}
}

func TestSearchRerank(t *testing.T) {
	rows := []matchRow{
		{ID: "a", Text: "first", Similarity: 0.9},
		{ID: "b", Text: "second", Similarity: 0.8},
		{ID: "c", Text: "third", Similarity: 0.7},
	}
	srv := matchServer(t, rows)
	defer srv.Close()

	store := NewStore(srv.URL, "key", &fakeEmbedder{}, &fakeReranker{})
	got, err := store.Search(context.Background(), "rent clause", CategoryLaw, SearchOptions{KeepCount: 2, Rerank: true})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].ID != "c" {
		t.Errorf("expected reranked order starting with c, got %s", got[0].ID)
	}
	if got[0].RerankScore == 0 {
		t.Error("rerank score not recorded")
	}
	if got[0].Score() != got[0].RerankScore {
		t.Error("Score should prefer the rerank score")
	}
}

func TestSearchRerankFailureKeepsVectorOrder(t *testing.T) {
	rows := []matchRow{
		{ID: "a", Text: "first", Similarity: 0.9},
		{ID: "b", Text: "second", Similarity: 0.8},
	}
	srv := matchServer(t, rows)
	defer srv.Close()

	store := NewStore(srv.URL, "key", &fakeEmbedder{}, &fakeReranker{err: errors.New("quota")})
	got, err := store.Search(context.Background(), "q", CategoryMistake, SearchOptions{KeepCount: 1, Rerank: true})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected fallback to vector order, got %+v", got)
	}
}

func TestSearchUnknownCategory(t *testing.T) {
	store := NewStore("http://unused", "key", &fakeEmbedder{}, nil)
	if _, err := store.Search(context.Background(), "q", Category("bogus"), SearchOptions{}); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestSearchEmbedFailure(t *testing.T) {
	store := NewStore("http://unused", "key", &fakeEmbedder{err: errors.New("down")}, nil)
	if _, err := store.Search(context.Background(), "q", CategoryLease, SearchOptions{}); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestUpsert(t *testing.T) {
	var gotRows []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/lease_clauses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if prefer := r.Header.Get("Prefer"); prefer != "resolution=merge-duplicates" {
			t.Errorf("unexpected Prefer header %q", prefer)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRows); err != nil {
			t.Fatalf("decode rows: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	emb := &fakeEmbedder{}
	store := NewStore(srv.URL, "key", emb, nil)
	docs := []Document{
		{ID: "d1", Text: "clause one"},
		{ID: "d2", Text: "clause two", Metadata: map[string]any{"source": "manual"}},
	}
	if err := store.Upsert(context.Background(), CategoryLease, docs); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if emb.calls != 1 {
		t.Errorf("expected one batched embed call, got %d", emb.calls)
	}
	if len(gotRows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(gotRows))
	}
	if gotRows[0]["id"] != "d1" {
		t.Errorf("row id = %v", gotRows[0]["id"])
	}
	if _, ok := gotRows[0]["embedding"]; !ok {
		t.Error("embedding missing from row")
	}
}

func TestUpsertEmptyIsNoop(t *testing.T) {
	emb := &fakeEmbedder{}
	store := NewStore("http://unused", "key", emb, nil)
	if err := store.Upsert(context.Background(), CategoryLaw, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if emb.calls != 0 {
		t.Error("empty upsert should not embed")
	}
}

func TestCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/rest/v1/law_documents") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Range", "0-0/42")
		w.WriteHeader(http.StatusPartialContent)
	}))
	defer srv.Close()

	store := NewStore(srv.URL, "key", &fakeEmbedder{}, nil)
	n, err := store.Count(context.Background(), CategoryLaw)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestCountEmptyTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "*/*")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewStore(srv.URL, "key", &fakeEmbedder{}, nil)
	n, err := store.Count(context.Background(), CategoryMistake)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestCohereRerank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rerank" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer co-key" {
			t.Errorf("unexpected auth %q", auth)
		}
		var req rerankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.TopN != 2 {
			t.Errorf("top_n = %d", req.TopN)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "relevance_score": 0.95},
				{"index": 0, "relevance_score": 0.40},
			},
		})
	}))
	defer srv.Close()

	c := NewCohereClient("co-key", "rerank-multilingual-v3.0")
	c.SetBaseURL(srv.URL)
	items, err := c.Rerank(context.Background(), "query", []string{"a", "b", "c"}, 2)
	if err != nil {
		t.Fatalf("rerank: %v", err)
	}
	if len(items) != 2 || items[0].Index != 2 || items[0].Relevance != 0.95 {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestCohereRerankAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewCohereClient("bad", "rerank-multilingual-v3.0")
	c.SetBaseURL(srv.URL)
	if _, err := c.Rerank(context.Background(), "q", []string{"a"}, 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestContextBuilderFormatsAndBounds(t *testing.T) {
	b, err := NewContextBuilder("gpt-4o-mini", 60)
	if err != nil {
		t.Fatalf("builder: %v", err)
	}

	passages := []Passage{
		{Text: "Rent is due on the first of each month.", RerankScore: 0.91},
		{Text: "The deposit is refundable within thirty days.", Similarity: 0.72},
		{Text: strings.Repeat("Very long clause text. ", 50), Similarity: 0.60},
	}
	out := b.Build(passages)
	if !strings.Contains(out, "[1] (score: 0.910)") {
		t.Errorf("missing first entry header:\n%s", out)
	}
	if !strings.Contains(out, "[2] (score: 0.720)") {
		t.Errorf("missing second entry header:\n%s", out)
	}
	if strings.Contains(out, "[3]") {
		t.Error("over-budget passage should have been dropped")
	}
}

func TestContextBuilderEmpty(t *testing.T) {
	b, err := NewContextBuilder("gpt-4o-mini", 100)
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	if out := b.Build(nil); out != "" {
		t.Errorf("expected empty block, got %q", out)
	}
}
