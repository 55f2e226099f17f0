package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissivePolicyAllowsOutsiders(t *testing.T) {
	ctx := context.Background()
	e, err := ForName(ctx, "permissive")
	require.NoError(t, err)

	decision, err := e.Evaluate(ctx, Input{
		Action:        "send_message",
		SenderID:      "user-3",
		Participants:  []string{"user-1", "user-2"},
		IsParticipant: false,
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestStrictPolicy(t *testing.T) {
	ctx := context.Background()
	e, err := ForName(ctx, "strict")
	require.NoError(t, err)

	decision, err := e.Evaluate(ctx, Input{Action: "send_message", SenderID: "user-3", IsParticipant: false})
	require.NoError(t, err)
	assert.Equal(t, DecisionDeny, decision)

	decision, err = e.Evaluate(ctx, Input{Action: "send_message", SenderID: "user-1", IsParticipant: true})
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestUnknownPolicyName(t *testing.T) {
	_, err := ForName(context.Background(), "lenient")
	assert.Error(t, err)
}

func TestInvalidPolicyFailsToPrepare(t *testing.T) {
	_, err := NewEngine(context.Background(), "package broken\n decision = {")
	assert.Error(t, err)
}
