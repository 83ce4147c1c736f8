// Package intent classifies a user message into exactly one routing action.
// The classifier is stateless: each message is classified independently
// using only the current-turn context flags, and it always returns a
// decision: classification failure degrades to the chat action.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/user/leasecraft/internal/lang"
	"github.com/user/leasecraft/pkg/llm"
)

// Action is the classified purpose of a user message.
type Action string

const (
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionExplain Action = "explain"
	ActionReview  Action = "review"
	ActionChat    Action = "chat"
)

// Valid reports whether a is one of the five known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionEdit, ActionExplain, ActionReview, ActionChat:
		return true
	}
	return false
}

// Decision is the classifier's verdict for one message. Confidence and
// Reasoning are diagnostic only; routing is based solely on Action.
type Decision struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Classifier maps (message, has-contract flag, language) to a Decision
// using a deterministic completion call.
type Classifier struct {
	provider llm.Provider
}

// NewClassifier creates a Classifier backed by the given provider.
func NewClassifier(provider llm.Provider) *Classifier {
	return &Classifier{provider: provider}
}

const classifierSystem = "You are a precise intent classifier. Always respond with valid JSON only."

func classificationPrompt(userInput string, hasContract bool, l lang.Language) string {
	contractFlag := "NO"
	if hasContract {
		contractFlag = "YES"
	}
	return fmt.Sprintf(`You are an intent classifier for a legal contract assistant.

Current context:
- User has existing contract: %s
- User language: %s

User message: %q

Classify the intent into ONE of these actions:
1. "create" - User wants to create/generate a NEW contract (even if one exists)
2. "edit" - User wants to modify/add/remove clauses in existing contract
3. "explain" - User wants explanation of a clause/term
4. "review" - User wants legal review/analysis of contract
5. "chat" - General conversation, questions, or unclear intent

Respond ONLY with valid JSON:
{
    "action": "create|edit|explain|review|chat",
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation"
}`, contractFlag, l, userInput)
}

// codeFence strips markdown code-block wrappers the model sometimes adds
// around its JSON.
var codeFence = regexp.MustCompile("```(?:json)?")

// fallback is the decision used whenever classification cannot produce a
// usable label. The router must never receive "no decision".
func fallback(reason string) Decision {
	return Decision{Action: ActionChat, Confidence: 0, Reasoning: reason}
}

// Classify returns the action for the message. It never fails: backend
// errors and malformed output both degrade to the chat action with zero
// confidence and the failure recorded in Reasoning.
func (c *Classifier) Classify(ctx context.Context, userInput string, hasContract bool, l lang.Language) Decision {
	messages := []llm.Message{
		llm.System(classifierSystem),
		llm.User(classificationPrompt(userInput, hasContract, l)),
	}

	resp, err := c.provider.Complete(ctx, messages, llm.Options{Deterministic: true})
	if err != nil {
		return fallback(fmt.Sprintf("API error: %v", err))
	}

	content := strings.TrimSpace(codeFence.ReplaceAllString(resp.Content, ""))

	var decision Decision
	if err := json.Unmarshal([]byte(content), &decision); err != nil {
		return fallback(fmt.Sprintf("parse error: %v", err))
	}
	if !decision.Action.Valid() {
		return fallback(fmt.Sprintf("unknown action %q", decision.Action))
	}
	if decision.Confidence < 0 || decision.Confidence > 1 {
		decision.Confidence = 0
	}
	return decision
}
