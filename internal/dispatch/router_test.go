package dispatch

import (
	"errors"
	"testing"

	"surgical-scheduling-backend/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchInvokesRegisteredHandler(t *testing.T) {
	router := NewRouter()

	var received *protocol.Envelope
	router.Register(protocol.RoleExecutor, protocol.KindScheduleCase, func(env *protocol.Envelope) (*protocol.Envelope, error) {
		received = env
		return nil, nil
	})

	env := protocol.NewEnvelope(protocol.PerformativeRequest, protocol.RoleUI, protocol.RoleExecutor,
		protocol.KindScheduleCase, protocol.ScheduleCasePayload{CaseID: "CASE-A"})

	_, err := router.Dispatch(env)
	require.NoError(t, err)
	require.NotNil(t, received)
	assert.Equal(t, env.ID, received.ID)
}

func TestDispatchReturnsHandlerReply(t *testing.T) {
	router := NewRouter()
	router.Register(protocol.RolePlanner, protocol.KindNewCase, func(env *protocol.Envelope) (*protocol.Envelope, error) {
		return protocol.NewEnvelope(protocol.PerformativeInform, protocol.RolePlanner, env.Sender,
			protocol.KindNewCaseCreated, nil), nil
	})

	env := protocol.NewEnvelope(protocol.PerformativeRequest, protocol.RoleUI, protocol.RolePlanner,
		protocol.KindNewCase, nil)

	reply, err := router.Dispatch(env)
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, protocol.PerformativeInform, reply.Performative)
	assert.Equal(t, protocol.KindNewCaseCreated, reply.Content.Type)
	assert.Equal(t, protocol.RoleUI, reply.Receiver)
}

func TestDispatchUnroutable(t *testing.T) {
	router := NewRouter()
	router.Register(protocol.RoleExecutor, protocol.KindScheduleCase, func(env *protocol.Envelope) (*protocol.Envelope, error) {
		return nil, nil
	})

	tests := []struct {
		name string
		env  *protocol.Envelope
	}{
		{"nil envelope", nil},
		{
			"unknown receiver",
			protocol.NewEnvelope(protocol.PerformativeRequest, protocol.RoleUI, protocol.Role("oracle"), protocol.KindScheduleCase, nil),
		},
		{
			"known receiver, unknown kind",
			protocol.NewEnvelope(protocol.PerformativeRequest, protocol.RoleUI, protocol.RoleExecutor, "REBOOT", nil),
		},
		{
			"kind registered for a different receiver",
			protocol.NewEnvelope(protocol.PerformativeRequest, protocol.RoleUI, protocol.RolePlanner, protocol.KindScheduleCase, nil),
		},
		{
			"empty content type",
			protocol.NewEnvelope(protocol.PerformativeRequest, protocol.RoleUI, protocol.RoleExecutor, "", nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := router.Dispatch(tt.env)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnroutable))
		})
	}
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	router := NewRouter()
	boom := errors.New("boom")
	router.Register(protocol.RoleExecutor, protocol.KindDeleteCase, func(env *protocol.Envelope) (*protocol.Envelope, error) {
		return nil, boom
	})

	env := protocol.NewEnvelope(protocol.PerformativeRequest, protocol.RoleUI, protocol.RoleExecutor,
		protocol.KindDeleteCase, nil)

	_, err := router.Dispatch(env)
	assert.ErrorIs(t, err, boom)
}
