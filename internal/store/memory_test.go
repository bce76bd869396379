package store

import (
	"errors"
	"testing"
	"time"

	"surgical-scheduling-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCase(id string, start time.Time) *models.Case {
	return &models.Case{
		ID:             id,
		PatientName:    "Jane Doe",
		ProcedureName:  "Laparoscopic cholecystectomy",
		Priority:       models.PriorityElective,
		RequestedStart: start,
		CreatedAt:      start.Add(-24 * time.Hour),
	}
}

func newSubtasks(caseID string, durations ...int) []models.Subtask {
	tasks := make([]models.Subtask, 0, len(durations))
	for i, d := range durations {
		tasks = append(tasks, models.Subtask{
			ID:          caseID + "-T" + string(rune('1'+i)),
			CaseID:      caseID,
			Seq:         i,
			Description: "step",
			DurationMin: d,
			Role:        "surgeon",
			Status:      models.TaskStatusPending,
		})
	}
	return tasks
}

func TestCreateAndGetCase(t *testing.T) {
	st := NewMemoryStore()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	c := newCase("CASE-A", start)
	require.NoError(t, st.CreateCaseWithSubtasks(c, newSubtasks("CASE-A", 30, 60, 30)))

	got, err := st.GetCase("CASE-A")
	require.NoError(t, err)
	assert.Equal(t, "CASE-A", got.ID)
	require.Len(t, got.Subtasks, 3)
	for i, task := range got.Subtasks {
		assert.Equal(t, i, task.Seq)
	}
}

func TestGetCaseNotFound(t *testing.T) {
	st := NewMemoryStore()
	_, err := st.GetCase("CASE-MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCaseDuplicateLeavesStateUntouched(t *testing.T) {
	st := NewMemoryStore()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreateCaseWithSubtasks(newCase("CASE-A", start), newSubtasks("CASE-A", 30)))

	err := st.CreateCaseWithSubtasks(newCase("CASE-A", start), newSubtasks("CASE-A", 45, 45))
	require.Error(t, err)

	var pe *PersistenceError
	assert.True(t, errors.As(err, &pe))

	got, err := st.GetCase("CASE-A")
	require.NoError(t, err)
	assert.Len(t, got.Subtasks, 1, "failed create must not replace committed subtasks")
}

func TestAdvanceSubtaskStatusMonotonic(t *testing.T) {
	st := NewMemoryStore()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreateCaseWithSubtasks(newCase("CASE-A", start), newSubtasks("CASE-A", 30)))
	taskID := "CASE-A-T1"

	require.NoError(t, st.AdvanceSubtaskStatus(taskID, models.TaskStatusScheduled))
	require.NoError(t, st.AdvanceSubtaskStatus(taskID, models.TaskStatusDone))

	// Backward moves are rejected and leave the status in place
	err := st.AdvanceSubtaskStatus(taskID, models.TaskStatusInProgress)
	require.Error(t, err)

	got, err := st.GetCase("CASE-A")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, got.Subtasks[0].Status)
}

func TestCreateBookingStampsRoomOnCase(t *testing.T) {
	st := NewMemoryStore()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreateCaseWithSubtasks(newCase("CASE-A", start), newSubtasks("CASE-A", 60)))

	booking := &models.Booking{RoomID: "OR-2", CaseID: "CASE-A", StartAt: start, EndAt: start.Add(time.Hour)}
	require.NoError(t, st.CreateBooking(booking))
	assert.NotZero(t, booking.ID)

	got, err := st.GetCase("CASE-A")
	require.NoError(t, err)
	require.NotNil(t, got.RoomID)
	assert.Equal(t, "OR-2", *got.RoomID)

	// Second booking for the same case is refused
	err = st.CreateBooking(&models.Booking{RoomID: "OR-3", CaseID: "CASE-A", StartAt: start, EndAt: start.Add(time.Hour)})
	require.Error(t, err)
}

func TestDeleteBookingClearsRoom(t *testing.T) {
	st := NewMemoryStore()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreateCaseWithSubtasks(newCase("CASE-A", start), newSubtasks("CASE-A", 60)))
	require.NoError(t, st.CreateBooking(&models.Booking{RoomID: "OR-1", CaseID: "CASE-A", StartAt: start, EndAt: start.Add(time.Hour)}))

	require.NoError(t, st.DeleteBookingByCase("CASE-A"))

	_, err := st.GetBookingByCase("CASE-A")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := st.GetCase("CASE-A")
	require.NoError(t, err)
	assert.Nil(t, got.RoomID)
}

func TestDeleteCaseCascades(t *testing.T) {
	st := NewMemoryStore()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreateCaseWithSubtasks(newCase("CASE-A", start), newSubtasks("CASE-A", 60)))
	require.NoError(t, st.CreateBooking(&models.Booking{RoomID: "OR-1", CaseID: "CASE-A", StartAt: start, EndAt: start.Add(time.Hour)}))

	require.NoError(t, st.DeleteCase("CASE-A"))

	_, err := st.GetCase("CASE-A")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetBookingByCase("CASE-A")
	assert.ErrorIs(t, err, ErrNotFound)

	bookings, err := st.ListBookingsByRoom("OR-1")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestEventsAppendOnlyNewestFirst(t *testing.T) {
	st := NewMemoryStore()
	caseID := "CASE-A"
	require.NoError(t, st.AppendEvent(&models.Event{Kind: models.EventCaseCreated, Summary: "first", CaseID: &caseID}))
	require.NoError(t, st.AppendEvent(&models.Event{Kind: models.EventCaseScheduled, Summary: "second", CaseID: &caseID}))
	require.NoError(t, st.AppendEvent(&models.Event{Kind: models.EventTaskStateChanged, Summary: "third", CaseID: &caseID}))

	events, err := st.ListEvents(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "third", events[0].Summary)
	assert.Equal(t, "second", events[1].Summary)

	err = st.AppendEvent(&models.Event{Kind: "CASE_EXPLODED", Summary: "nope"})
	assert.Error(t, err, "event kinds are a closed set")
}

func TestReopenPreservesCommittedState(t *testing.T) {
	st := NewMemoryStore()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreateCaseWithSubtasks(newCase("CASE-A", start), newSubtasks("CASE-A", 30, 30)))
	require.NoError(t, st.CreateBooking(&models.Booking{RoomID: "OR-1", CaseID: "CASE-A", StartAt: start, EndAt: start.Add(time.Hour)}))
	caseID := "CASE-A"
	require.NoError(t, st.AppendEvent(&models.Event{Kind: models.EventCaseScheduled, Summary: "booked", CaseID: &caseID}))

	reopened := st.Reopen()

	before, err := st.GetCase("CASE-A")
	require.NoError(t, err)
	after, err := reopened.GetCase("CASE-A")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	bookingBefore, err := st.GetBookingByCase("CASE-A")
	require.NoError(t, err)
	bookingAfter, err := reopened.GetBookingByCase("CASE-A")
	require.NoError(t, err)
	assert.Equal(t, bookingBefore, bookingAfter)

	eventsAfter, err := reopened.ListEvents(0)
	require.NoError(t, err)
	assert.Len(t, eventsAfter, 1)
}

func TestListRooms(t *testing.T) {
	st := NewMemoryStore()
	rooms, err := st.ListRooms()
	require.NoError(t, err)
	require.Len(t, rooms, 5)
	assert.Equal(t, "OR-1", rooms[0].ID)
	assert.Equal(t, "OR-5", rooms[4].ID)
}
