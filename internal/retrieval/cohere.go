// internal/retrieval/cohere.go
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultCohereBaseURL = "https://api.cohere.com"

// CohereClient calls Cohere's rerank endpoint. The multilingual model
// handles Arabic and English queries against mixed-language passages.
type CohereClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewCohereClient creates a reranker using the given model, e.g.
// "rerank-multilingual-v3.0".
func NewCohereClient(apiKey, model string) *CohereClient {
	return &CohereClient{
		baseURL:    defaultCohereBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBaseURL overrides the API endpoint, used in tests.
func (c *CohereClient) SetBaseURL(u string) {
	c.baseURL = u
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank returns the indices of the topN most relevant texts, best first.
func (c *CohereClient) Rerank(ctx context.Context, query string, texts []string, topN int) ([]RankedItem, error) {
	if topN > len(texts) {
		topN = len(texts)
	}

	reqBody := rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: texts,
		TopN:      topN,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/rerank", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank failed (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed rerankResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse rerank response: %w", err)
	}

	items := make([]RankedItem, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		items = append(items, RankedItem{Index: r.Index, Relevance: r.RelevanceScore})
	}
	return items, nil
}
