// Package ops implements the contract operations: generate, edit, review,
// explain, and plain chat. Every operation that can put bad dates in front
// of the user is gated by the date validator on both the request side and
// the output side.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/leasecraft/internal/dates"
	"github.com/user/leasecraft/internal/lang"
	"github.com/user/leasecraft/internal/retrieval"
	"github.com/user/leasecraft/pkg/llm"
)

// MinContractLength is the shortest output accepted as a viable contract
// after an edit. Anything shorter is treated as a failed edit.
const MinContractLength = 200

// reviewQueryLimit caps how much of the contract seeds the retrieval query.
const reviewQueryLimit = 500

// ValidationError is a user-facing, already-localized validation failure.
// The router shows Message verbatim and keeps the stored contract intact.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Config tunes retrieval for the operations.
type Config struct {
	FetchCount int
	KeepCount  int
	Rerank     bool
}

// ContextRenderer turns ranked passages into the prompt context block.
// Satisfied by retrieval.ContextBuilder.
type ContextRenderer interface {
	Build(passages []retrieval.Passage) string
}

// Operations runs the contract workflows against a completion provider and
// the retrieval backend.
type Operations struct {
	provider  llm.Provider
	search    retrieval.Searcher
	block     ContextRenderer
	validator *dates.Validator
	cfg       Config
	logger    *slog.Logger
}

// New creates the operations service.
func New(provider llm.Provider, search retrieval.Searcher, block ContextRenderer, validator *dates.Validator, cfg Config, logger *slog.Logger) *Operations {
	if logger == nil {
		logger = slog.Default()
	}
	return &Operations{
		provider:  provider,
		search:    search,
		block:     block,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// EditResult is the outcome of an edit. Changed is false when the model
// returned the contract unmodified or something too short to be one.
type EditResult struct {
	Contract string
	Changed  bool
}

// retrieveContext searches each category and renders the combined context
// block. A failed category is logged and skipped; generation quality
// degrades but the operation proceeds.
func (o *Operations) retrieveContext(ctx context.Context, query string, cats ...retrieval.Category) string {
	opts := retrieval.SearchOptions{
		FetchCount: o.cfg.FetchCount,
		KeepCount:  o.cfg.KeepCount,
		Rerank:     o.cfg.Rerank,
	}

	var all []retrieval.Passage
	for _, cat := range cats {
		passages, err := o.search.Search(ctx, query, cat, opts)
		if err != nil {
			o.logger.Warn("retrieval failed", "category", cat, "error", err)
			continue
		}
		all = append(all, passages...)
	}
	return o.block.Build(all)
}

// dateDetail renders a scan failure with fix suggestions for each bad date.
func (o *Operations) dateDetail(report *dates.ScanReport) string {
	detail := report.Combined()

	var tips []string
	for _, f := range report.Findings {
		if f.Valid {
			continue
		}
		tips = append(tips, o.validator.Suggestions(f.Text)...)
	}
	if len(tips) > 0 {
		detail += "\n" + strings.Join(tips, "\n")
	}
	return detail
}

// Generate drafts a new contract from the request. Dates in the request are
// validated before any model call; dates in the generated contract are
// validated before it is returned.
func (o *Operations) Generate(ctx context.Context, userInput string) (string, error) {
	l := lang.Detect(userInput)

	if report := o.validator.Scan(userInput, false); !report.Valid() {
		return "", &ValidationError{Message: lang.DateAlert(l, o.dateDetail(report))}
	}

	ragContext := o.retrieveContext(ctx, userInput, retrieval.CategoryLease)
	hints := DetectLeaseContext(userInput)

	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(buildGenerateContext(userInput, ragContext, hints)),
	}
	resp, err := o.provider.Complete(ctx, messages, llm.Options{Deterministic: true})
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}

	contract := strings.TrimSpace(resp.Content)
	if report := o.validator.Scan(contract, false); !report.Valid() {
		return "", &ValidationError{Message: lang.GeneratedInvalidDates(l, o.dateDetail(report))}
	}
	return contract, nil
}

// Edit applies the requested change to the current contract. The request is
// date-gated before the model call; a result with bad dates is rejected so
// the caller keeps the original.
func (o *Operations) Edit(ctx context.Context, currentContract, userRequest string) (EditResult, error) {
	l := lang.Detect(userRequest)

	if report := o.validator.Scan(userRequest, false); !report.Valid() {
		return EditResult{}, &ValidationError{Message: lang.DateAlert(l, o.dateDetail(report))}
	}

	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(buildEditPrompt(currentContract, userRequest, l)),
	}
	resp, err := o.provider.Complete(ctx, messages, llm.Options{Deterministic: true})
	if err != nil {
		return EditResult{}, fmt.Errorf("edit completion: %w", err)
	}

	edited := strings.TrimSpace(resp.Content)
	if report := o.validator.Scan(edited, false); !report.Valid() {
		return EditResult{}, &ValidationError{Message: lang.EditInvalidDates(l, o.dateDetail(report))}
	}

	if len(edited) < MinContractLength || edited == currentContract {
		return EditResult{Contract: currentContract, Changed: false}, nil
	}
	return EditResult{Contract: edited, Changed: true}, nil
}

// Review produces a legal analysis of the contract against the law and
// common-mistake corpora. Past dates are allowed here; date problems are
// appended to the prompt as findings rather than blocking the review.
func (o *Operations) Review(ctx context.Context, contractText string) (string, error) {
	l := lang.Detect(contractText)

	query := truncateRunes(contractText, reviewQueryLimit)
	ragContext := o.retrieveContext(ctx, query, retrieval.CategoryLaw, retrieval.CategoryMistake)

	prompt := buildReviewPrompt(contractText, ragContext, l)
	if report := o.validator.Scan(contractText, true); !report.Valid() {
		prompt += fmt.Sprintf("\n\n%s\n%s", lang.DateIssuesHeader(l), o.dateDetail(report))
	}

	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(prompt),
	}
	resp, err := o.provider.Complete(ctx, messages, llm.Options{})
	if err != nil {
		return "", fmt.Errorf("review completion: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// Explain answers a question about a clause or term, grounded in the current
// contract and retrieved lease references.
func (o *Operations) Explain(ctx context.Context, contractText, userQuery string) (string, error) {
	l := lang.Detect(userQuery)

	ragContext := o.retrieveContext(ctx, userQuery, retrieval.CategoryLease)

	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(buildExplainPrompt(userQuery, contractText, ragContext, l)),
	}
	resp, err := o.provider.Complete(ctx, messages, llm.Options{})
	if err != nil {
		return "", fmt.Errorf("explain completion: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// Chat handles general conversation under the same persona.
func (o *Operations) Chat(ctx context.Context, userInput string) (string, error) {
	messages := []llm.Message{
		llm.System(systemPrompt),
		llm.User(userInput),
	}
	resp, err := o.provider.Complete(ctx, messages, llm.Options{})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
