// Package policy evaluates messaging rules with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the messaging policy.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.messaging_policy.decision"),
		rego.Module("messaging_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// ForName returns an engine for a named built-in policy: "permissive" or "strict".
func ForName(ctx context.Context, name string) (*Engine, error) {
	switch name {
	case "", "permissive":
		return NewEngine(ctx, PermissivePolicy)
	case "strict":
		return NewEngine(ctx, StrictPolicy)
	default:
		return nil, fmt.Errorf("unknown messaging policy %q", name)
	}
}

// Input is the document the policy is evaluated against.
type Input struct {
	Action         string   `json:"action"`
	SenderID       string   `json:"sender_id"`
	ConversationID string   `json:"conversation_id"`
	Participants   []string `json:"participants"`
	IsParticipant  bool     `json:"is_participant"`
}

// Evaluate returns the decision for input, "allow" when the policy yields nothing.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionAllow, nil
}

// PermissivePolicy lets any sender post into any conversation.
const PermissivePolicy = `
package messaging_policy

default decision = "allow"
`

// StrictPolicy only lets participants post into their own conversations.
const StrictPolicy = `
package messaging_policy

default decision = "allow"

decision = "deny" {
	input.action == "send_message"
	not input.is_participant
}
`
