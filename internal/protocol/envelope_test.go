package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	payload := ScheduleCasePayload{CaseID: "CASE-00000001"}
	env := NewEnvelope(PerformativeRequest, RoleUI, RoleExecutor, KindScheduleCase, payload)

	require.NotEmpty(t, env.ID)
	assert.Equal(t, PerformativeRequest, env.Performative)
	assert.Equal(t, RoleUI, env.Sender)
	assert.Equal(t, RoleExecutor, env.Receiver)
	assert.Equal(t, KindScheduleCase, env.Content.Type)
	assert.Equal(t, payload, env.Content.Payload)
	assert.False(t, env.CreatedAt.IsZero())
}

func TestNewEnvelopeUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		env := NewEnvelope(PerformativeInform, RolePlanner, RoleUI, KindNewCaseCreated, nil)
		require.False(t, seen[env.ID], "duplicate envelope id %s", env.ID)
		seen[env.ID] = true
	}
}

func TestNewEnvelopeCarriesFullProtocolSet(t *testing.T) {
	env := NewEnvelope(PerformativeRequest, RoleUI, RolePlanner, KindNewCase, nil)
	assert.Equal(t, []string{"A2A", "ACP", "AG_UI", "MCP"}, env.Protocols)
}

func TestValidRole(t *testing.T) {
	tests := []struct {
		role  Role
		valid bool
	}{
		{RoleUI, true},
		{RolePlanner, true},
		{RoleExecutor, true},
		{RoleNotifier, true},
		{RoleMonitor, true},
		{Role("knowledge_base"), false},
		{Role(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidRole(tt.role))
		})
	}
}
