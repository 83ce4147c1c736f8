// Package router turns one user message into one reply. It owns the turn
// lifecycle: resolve the session, sync any caller-supplied contract, classify
// intent, dispatch to the matching operation, persist the outcome, and log
// the turn. Contract state only ever changes through a successful create or
// edit; every failure path keeps whatever contract the session already had.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/leasecraft/internal/intent"
	"github.com/user/leasecraft/internal/lang"
	"github.com/user/leasecraft/internal/ops"
	"github.com/user/leasecraft/internal/types"
)

// Action tells the caller what happened to the session's contract this turn.
type Action string

const (
	// ActionUpdated: the contract was created or modified; display the new text.
	ActionUpdated Action = "updated"
	// ActionUnchanged: a contract exists and was not modified.
	ActionUnchanged Action = "unchanged"
	// ActionNone: no contract exists.
	ActionNone Action = "none"
)

// Result is the reply for one routed turn.
type Result struct {
	Message  string `json:"message"`
	Contract string `json:"contract,omitempty"`
	Action   Action `json:"action"`
	Intent   string `json:"intent,omitempty"`
}

// Operator is the contract-operations surface the router dispatches to.
type Operator interface {
	Generate(ctx context.Context, userInput string) (string, error)
	Edit(ctx context.Context, currentContract, userRequest string) (ops.EditResult, error)
	Review(ctx context.Context, contractText string) (string, error)
	Explain(ctx context.Context, contractText, userQuery string) (string, error)
	Chat(ctx context.Context, userInput string) (string, error)
}

// Classifier decides which operation a message is asking for.
type Classifier interface {
	Classify(ctx context.Context, userInput string, hasContract bool, l lang.Language) intent.Decision
}

// Config tunes router behavior.
type Config struct {
	// CreateOverwrites allows a create intent to replace an existing
	// contract. When false the user is asked to confirm instead.
	CreateOverwrites bool
	// MaxConcurrent caps turns executing across all sessions.
	MaxConcurrent int64
}

// Router routes messages for all sessions.
type Router struct {
	ops        Operator
	classifier Classifier
	sessions   types.SessionStore
	turns      types.TurnLog
	serializer *Serializer
	cfg        Config
	logger     *slog.Logger
}

// New creates a Router. turns may be nil to disable the audit log.
func New(operator Operator, classifier Classifier, sessions types.SessionStore, turns types.TurnLog, cfg Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Router{
		ops:        operator,
		classifier: classifier,
		sessions:   sessions,
		turns:      turns,
		serializer: NewSerializer(cfg.MaxConcurrent),
		cfg:        cfg,
		logger:     logger,
	}
}

// Handle routes one message for the session. callerContract, when non-empty,
// is synced into the session before routing and takes precedence over the
// stored contract. The returned error is reserved for store failures; every
// operation failure becomes a localized Result.
func (r *Router) Handle(ctx context.Context, sessionID types.SessionID, message, callerContract, source string) (*Result, error) {
	var result *Result
	err := r.serializer.Do(ctx, sessionID, func(ctx context.Context) error {
		var err error
		result, err = r.handle(ctx, sessionID, message, callerContract, source)
		return err
	})
	return result, err
}

func (r *Router) handle(ctx context.Context, sessionID types.SessionID, message, callerContract, source string) (*Result, error) {
	l := lang.Detect(message)

	rec, err := r.sessions.Resolve(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	// A contract supplied by the caller overwrites the stored one.
	active := rec.Contract
	if pasted := strings.TrimSpace(callerContract); pasted != "" {
		if err := r.sessions.SetContract(ctx, sessionID, pasted); err != nil {
			return nil, fmt.Errorf("sync contract: %w", err)
		}
		active = pasted
	}
	hasContract := active != ""

	decision := r.classifier.Classify(ctx, message, hasContract, l)
	r.logger.Debug("intent classified",
		"session_id", sessionID,
		"action", decision.Action,
		"confidence", decision.Confidence,
		"reasoning", decision.Reasoning)

	result, err := r.dispatch(ctx, sessionID, decision.Action, message, active, l)
	if err != nil {
		return nil, err
	}
	result.Intent = string(decision.Action)

	r.logTurn(ctx, sessionID, source, message, decision, result)
	return result, nil
}

func (r *Router) dispatch(ctx context.Context, sessionID types.SessionID, action intent.Action, message, active string, l lang.Language) (*Result, error) {
	switch action {
	case intent.ActionCreate:
		return r.create(ctx, sessionID, message, active, l)
	case intent.ActionEdit:
		return r.edit(ctx, sessionID, message, active, l)
	case intent.ActionExplain:
		return r.explain(ctx, message, active, l)
	case intent.ActionReview:
		return r.review(ctx, active, l)
	default:
		return r.chat(ctx, message, active, l)
	}
}

// keep is the Result for a turn that leaves the contract as it was.
func keep(message, active string) *Result {
	if active == "" {
		return &Result{Message: message, Action: ActionNone}
	}
	return &Result{Message: message, Contract: active, Action: ActionUnchanged}
}

func (r *Router) create(ctx context.Context, sessionID types.SessionID, message, active string, l lang.Language) (*Result, error) {
	if active != "" && !r.cfg.CreateOverwrites {
		return keep(lang.ConfirmOverwrite(l), active), nil
	}

	contract, err := r.ops.Generate(ctx, message)
	if err != nil {
		var verr *ops.ValidationError
		if errors.As(err, &verr) {
			return keep(verr.Message, active), nil
		}
		r.logger.Error("generate failed", "session_id", sessionID, "error", err)
		return keep(lang.GenerateFailed(l), active), nil
	}

	if err := r.sessions.SetContract(ctx, sessionID, contract); err != nil {
		return nil, fmt.Errorf("store contract: %w", err)
	}
	return &Result{Message: lang.ContractCreated(l), Contract: contract, Action: ActionUpdated}, nil
}

func (r *Router) edit(ctx context.Context, sessionID types.SessionID, message, active string, l lang.Language) (*Result, error) {
	if active == "" {
		return keep(lang.NeedContractToEdit(l), ""), nil
	}

	res, err := r.ops.Edit(ctx, active, message)
	if err != nil {
		var verr *ops.ValidationError
		if errors.As(err, &verr) {
			return keep(verr.Message, active), nil
		}
		r.logger.Error("edit failed", "session_id", sessionID, "error", err)
		return keep(lang.EditFailed(l), active), nil
	}

	if !res.Changed {
		return keep(lang.EditNoChange(l), active), nil
	}

	if err := r.sessions.SetContract(ctx, sessionID, res.Contract); err != nil {
		return nil, fmt.Errorf("store contract: %w", err)
	}
	return &Result{Message: lang.ContractUpdated(l), Contract: res.Contract, Action: ActionUpdated}, nil
}

func (r *Router) explain(ctx context.Context, message, active string, l lang.Language) (*Result, error) {
	if active == "" {
		return keep(lang.NeedContractToExplain(l), ""), nil
	}

	text, err := r.ops.Explain(ctx, active, message)
	if err != nil {
		r.logger.Error("explain failed", "error", err)
		return keep(lang.ExplainFailed(l), active), nil
	}
	return keep(text, active), nil
}

func (r *Router) review(ctx context.Context, active string, l lang.Language) (*Result, error) {
	if active == "" {
		return keep(lang.NeedContractToReview(l), ""), nil
	}

	text, err := r.ops.Review(ctx, active)
	if err != nil {
		r.logger.Error("review failed", "error", err)
		return keep(lang.ReviewFailed(l), active), nil
	}
	return keep(text, active), nil
}

func (r *Router) chat(ctx context.Context, message, active string, l lang.Language) (*Result, error) {
	text, err := r.ops.Chat(ctx, message)
	if err != nil {
		r.logger.Error("chat failed", "error", err)
		return keep(lang.ChatFailed(l), active), nil
	}
	return keep(text, active), nil
}

// logTurn bumps the turn counter and appends the audit record. Logging
// failures are reported but never fail the turn.
func (r *Router) logTurn(ctx context.Context, sessionID types.SessionID, source, message string, decision intent.Decision, result *Result) {
	turn, err := r.sessions.NextTurn(ctx, sessionID)
	if err != nil {
		r.logger.Warn("turn counter", "session_id", sessionID, "error", err)
	}
	if r.turns == nil {
		return
	}

	event := &types.TurnEvent{
		SessionID:        sessionID,
		Turn:             turn,
		Event:            "turn",
		Source:           source,
		UserMessage:      message,
		AssistantMessage: result.Message,
		Action:           string(result.Action),
		Intent:           string(decision.Action),
		ContractLen:      len(result.Contract),
	}
	if err := r.turns.Append(ctx, event); err != nil {
		r.logger.Warn("turn log", "session_id", sessionID, "error", err)
	}
}

// Current returns the session's stored contract, or "" when none exists.
func (r *Router) Current(ctx context.Context, sessionID types.SessionID) (string, error) {
	rec, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", nil
	}
	return rec.Contract, nil
}

// Clear deletes the session's contract and state.
func (r *Router) Clear(ctx context.Context, sessionID types.SessionID) error {
	return r.sessions.Delete(ctx, sessionID)
}

// Review runs a direct review of the supplied contract text without routing
// through intent classification. Used by the review endpoint.
func (r *Router) Review(ctx context.Context, contractText string) (string, error) {
	l := lang.Detect(contractText)
	text, err := r.ops.Review(ctx, contractText)
	if err != nil {
		r.logger.Error("review failed", "error", err)
		return lang.ReviewFailed(l), nil
	}
	return text, nil
}
