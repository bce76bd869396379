package store

import (
	"errors"
	"fmt"

	"surgical-scheduling-backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// PersistenceError wraps a storage-layer failure. Callers never retry
// internally; the error propagates untouched to whoever issued the
// operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store is the transactional boundary to the case and task records. Each
// method is a single-shot atomic operation: it either commits fully or
// leaves prior state untouched.
type Store interface {
	// CreateCaseWithSubtasks persists a case and its full subtask list in
	// one operation. A case always has either zero or all of its subtasks.
	CreateCaseWithSubtasks(c *models.Case, subtasks []models.Subtask) error

	// GetCase returns a case with its subtasks ordered by seq.
	GetCase(id string) (*models.Case, error)

	// ListCases returns all cases with their subtasks, ordered by creation.
	ListCases() ([]models.Case, error)

	// DeleteCase removes a case together with its subtasks and booking.
	DeleteCase(id string) error

	// AdvanceSubtaskStatus moves a subtask's status forward. Backward or
	// sideways moves are rejected so status stays monotonic; advancing to
	// the current status is a no-op.
	AdvanceSubtaskStatus(subtaskID, newStatus string) error

	// CreateBooking commits a booking and stamps the room onto its case
	// atomically.
	CreateBooking(b *models.Booking) error

	// DeleteBookingByCase removes a case's booking and clears the room from
	// the case. Missing bookings are not an error.
	DeleteBookingByCase(caseID string) error

	// GetBookingByCase returns the booking for a case, or ErrNotFound.
	GetBookingByCase(caseID string) (*models.Booking, error)

	// ListBookingsByRoom returns all bookings committed for one room.
	ListBookingsByRoom(roomID string) ([]models.Booking, error)

	// ListBookings returns every committed booking.
	ListBookings() ([]models.Booking, error)

	// AppendEvent appends one event record. Events are never mutated.
	AppendEvent(e *models.Event) error

	// ListEvents returns the most recent events, newest first, capped at
	// limit (<= 0 means no cap).
	ListEvents(limit int) ([]models.Event, error)

	// ListRooms returns the fixed room pool.
	ListRooms() ([]models.Room, error)
}
