package notifier

import (
	"testing"
	"time"

	"surgical-scheduling-backend/internal/dispatch"
	"surgical-scheduling-backend/internal/models"
	"surgical-scheduling-backend/internal/protocol"
	"surgical-scheduling-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	st := store.NewMemoryStore()
	rec := NewRecorder(st)

	caseID := "CASE-AB12CD34"
	require.NoError(t, rec.Record(models.EventCaseCreated, "case created", &caseID))
	require.NoError(t, rec.Record(models.EventCaseScheduled, "case scheduled", &caseID))
	require.NoError(t, rec.Record(models.EventSchedulingConflict, "all rooms busy", nil))

	events, err := rec.List(0)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first
	assert.Equal(t, models.EventSchedulingConflict, events[0].Kind)
	assert.Nil(t, events[0].CaseID)
	assert.Equal(t, models.EventCaseScheduled, events[1].Kind)
	require.NotNil(t, events[1].CaseID)
	assert.Equal(t, caseID, *events[1].CaseID)

	limited, err := rec.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecordRejectsUnknownKind(t *testing.T) {
	st := store.NewMemoryStore()
	rec := NewRecorder(st)

	err := rec.Record("CASE_EXPLODED", "boom", nil)
	require.Error(t, err)

	events, err := rec.List(0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRegisterRecordsInformEnvelopes(t *testing.T) {
	st := store.NewMemoryStore()
	rec := NewRecorder(st)
	router := dispatch.NewRouter()
	rec.Register(router)

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		kind     string
		payload  any
		wantKind string
		wantCase string
	}{
		{
			kind:     protocol.KindNewCaseCreated,
			payload:  protocol.NewCaseCreatedPayload{Case: &models.Case{ID: "CASE-11111111"}},
			wantKind: models.EventCaseCreated,
			wantCase: "CASE-11111111",
		},
		{
			kind: protocol.KindCaseScheduled,
			payload: protocol.CaseScheduledPayload{
				CaseID: "CASE-22222222", Room: "OR-1",
				Start: start, End: start.Add(time.Hour),
			},
			wantKind: models.EventCaseScheduled,
			wantCase: "CASE-22222222",
		},
		{
			kind: protocol.KindTaskStateChanged,
			payload: protocol.TaskStateChangedPayload{
				CaseID: "CASE-33333333", SubtaskIndex: 0,
				OldStatus: models.TaskStatusScheduled, NewStatus: models.TaskStatusInProgress,
			},
			wantKind: models.EventTaskStateChanged,
			wantCase: "CASE-33333333",
		},
		{
			kind:     protocol.KindSchedulingConflict,
			payload:  protocol.SchedulingConflictPayload{CaseID: "CASE-44444444", Reason: "no room free"},
			wantKind: models.EventSchedulingConflict,
			wantCase: "CASE-44444444",
		},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			env := protocol.NewEnvelope(
				protocol.PerformativeInform,
				protocol.RoleExecutor,
				protocol.RoleNotifier,
				tt.kind,
				tt.payload,
			)
			reply, err := router.Dispatch(env)
			require.NoError(t, err)
			assert.Nil(t, reply, "informational envelopes get no reply")

			events, err := rec.List(1)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tt.wantKind, events[0].Kind)
			require.NotNil(t, events[0].CaseID)
			assert.Equal(t, tt.wantCase, *events[0].CaseID)
		})
	}
}
