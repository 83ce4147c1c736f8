// internal/ingest/pipeline.go
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/user/leasecraft/internal/retrieval"
)

// Upserter writes embedded documents to a corpus table. Satisfied by
// retrieval.Store.
type Upserter interface {
	Upsert(ctx context.Context, cat retrieval.Category, docs []retrieval.Document) error
}

// Pipeline chunks source texts and upserts them in batches. Batching keeps
// each embedding request at a sane size.
type Pipeline struct {
	store     Upserter
	batchSize int
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline. batchSize <= 0 defaults to 64.
func NewPipeline(store Upserter, batchSize int, logger *slog.Logger) *Pipeline {
	if batchSize <= 0 {
		batchSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: store, batchSize: batchSize, logger: logger}
}

// splitFor picks the splitter for a corpus.
func splitFor(cat retrieval.Category, text string) []string {
	switch cat {
	case retrieval.CategoryLaw:
		return SplitLawArticles(text)
	case retrieval.CategoryMistake:
		return SplitMistakes(text)
	default:
		return SplitClauses(text)
	}
}

// BuildDocuments chunks one source text into upsertable documents. IDs are
// stable ("lease:<source>:<n>") so re-ingesting a file replaces its rows.
func BuildDocuments(cat retrieval.Category, sourceFile, text string) []retrieval.Document {
	base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))

	chunks := splitFor(cat, text)
	docs := make([]retrieval.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, retrieval.Document{
			ID:   fmt.Sprintf("%s:%s:%d", cat, base, i+1),
			Text: chunk,
			Metadata: map[string]any{
				"doc_type":     string(cat),
				"source_file":  filepath.Base(sourceFile),
				"chunk_index":  i + 1,
				"jurisdiction": "JO",
				"language":     "ar",
			},
		})
	}
	return docs
}

// IngestText chunks and stores one source text, returning the number of
// documents written.
func (p *Pipeline) IngestText(ctx context.Context, cat retrieval.Category, sourceFile, text string) (int, error) {
	docs := BuildDocuments(cat, sourceFile, text)
	if len(docs) == 0 {
		p.logger.Warn("no chunks extracted", "source", sourceFile, "category", cat)
		return 0, nil
	}

	for start := 0; start < len(docs); start += p.batchSize {
		end := start + p.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := p.store.Upsert(ctx, cat, docs[start:end]); err != nil {
			return start, fmt.Errorf("upsert batch %d-%d of %s: %w", start, end, sourceFile, err)
		}
	}

	p.logger.Info("ingested", "source", sourceFile, "category", cat, "chunks", len(docs))
	return len(docs), nil
}
