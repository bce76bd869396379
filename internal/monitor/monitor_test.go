package monitor

import (
	"fmt"
	"testing"
	"time"

	"surgical-scheduling-backend/internal/models"
	"surgical-scheduling-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

func seedCase(t *testing.T, st store.Store, id, taskStatus string) {
	t.Helper()
	c := &models.Case{
		ID:             id,
		PatientName:    "Patient " + id,
		ProcedureName:  "Appendectomy",
		Priority:       models.PriorityElective,
		RequestedStart: baseTime,
	}
	tasks := []models.Subtask{
		{ID: id + "-T1", CaseID: id, Seq: 0, Description: "step 1", DurationMin: 30, Role: "surgeon", Status: taskStatus},
		{ID: id + "-T2", CaseID: id, Seq: 1, Description: "step 2", DurationMin: 30, Role: "surgeon", Status: taskStatus},
	}
	require.NoError(t, st.CreateCaseWithSubtasks(c, tasks))
}

func TestSnapshotEmptyStore(t *testing.T) {
	st := store.NewMemoryStore()
	mon := NewMonitor(st)

	snapshot, err := mon.Snapshot(baseTime)
	require.NoError(t, err)

	assert.Equal(t, baseTime, snapshot.GeneratedAt)
	assert.Zero(t, snapshot.TotalCases)
	assert.Empty(t, snapshot.CasesByStatus)
	require.Len(t, snapshot.Rooms, len(models.RoomIDs))
	for _, room := range snapshot.Rooms {
		assert.False(t, room.Occupied, "room %s should be free", room.RoomID)
	}
}

func TestSnapshotCountsByDerivedStatus(t *testing.T) {
	st := store.NewMemoryStore()
	mon := NewMonitor(st)

	seedCase(t, st, "C1", models.TaskStatusPending)
	seedCase(t, st, "C2", models.TaskStatusPending)
	seedCase(t, st, "C3", models.TaskStatusInProgress)
	seedCase(t, st, "C4", models.TaskStatusDone)

	snapshot, err := mon.Snapshot(baseTime)
	require.NoError(t, err)

	assert.Equal(t, 4, snapshot.TotalCases)
	assert.Equal(t, map[string]int{
		models.CaseStatusPlanned:    2,
		models.CaseStatusInProgress: 1,
		models.CaseStatusCompleted:  1,
	}, snapshot.CasesByStatus)
}

func TestSnapshotRoomOccupancy(t *testing.T) {
	st := store.NewMemoryStore()
	mon := NewMonitor(st)

	seedCase(t, st, "C1", models.TaskStatusScheduled)
	seedCase(t, st, "C2", models.TaskStatusScheduled)

	require.NoError(t, st.CreateBooking(&models.Booking{
		RoomID: "OR-1", CaseID: "C1",
		StartAt: baseTime, EndAt: baseTime.Add(time.Hour),
	}))
	require.NoError(t, st.CreateBooking(&models.Booking{
		RoomID: "OR-3", CaseID: "C2",
		StartAt: baseTime.Add(2 * time.Hour), EndAt: baseTime.Add(3 * time.Hour),
	}))

	tests := []struct {
		name string
		now  time.Time
		want map[string]bool
	}{
		{"during first booking", baseTime.Add(30 * time.Minute), map[string]bool{"OR-1": true}},
		{"at booking start", baseTime, map[string]bool{"OR-1": true}},
		{"at booking end, half-open", baseTime.Add(time.Hour), map[string]bool{}},
		{"during second booking", baseTime.Add(150 * time.Minute), map[string]bool{"OR-3": true}},
		{"before everything", baseTime.Add(-time.Hour), map[string]bool{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, err := mon.Snapshot(tt.now)
			require.NoError(t, err)
			require.Len(t, snapshot.Rooms, len(models.RoomIDs))
			for _, room := range snapshot.Rooms {
				assert.Equal(t, tt.want[room.RoomID], room.Occupied,
					"room %s at %s", room.RoomID, tt.now)
			}
		})
	}
}

func TestSnapshotRoomsInFixedOrder(t *testing.T) {
	st := store.NewMemoryStore()
	mon := NewMonitor(st)

	snapshot, err := mon.Snapshot(baseTime)
	require.NoError(t, err)
	for i, room := range snapshot.Rooms {
		assert.Equal(t, fmt.Sprintf("OR-%d", i+1), room.RoomID)
	}
}

func TestSnapshotIsReadOnly(t *testing.T) {
	st := store.NewMemoryStore()
	mon := NewMonitor(st)

	seedCase(t, st, "C1", models.TaskStatusPending)
	_, err := mon.Snapshot(baseTime)
	require.NoError(t, err)

	c, err := st.GetCase("C1")
	require.NoError(t, err)
	for _, task := range c.Subtasks {
		assert.Equal(t, models.TaskStatusPending, task.Status)
	}
	events, err := st.ListEvents(0)
	require.NoError(t, err)
	assert.Empty(t, events, "snapshots must not record events")
}
