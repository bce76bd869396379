package store

import (
	"fmt"
	"sort"
	"sync"

	"surgical-scheduling-backend/internal/models"
)

// MemoryStore is an in-memory Store used by tests and as a reference
// implementation of the persistence contract. All reads hand out copies, so
// a caller never observes a write in progress.
type MemoryStore struct {
	mu       sync.RWMutex
	cases    map[string]models.Case
	subtasks map[string]models.Subtask // keyed by subtask id
	bookings map[string]models.Booking // keyed by case id
	events   []models.Event
	rooms    []models.Room
	eventSeq uint
	bookSeq  uint
}

// NewMemoryStore creates an empty in-memory store seeded with the fixed
// room pool.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		cases:    make(map[string]models.Case),
		subtasks: make(map[string]models.Subtask),
		bookings: make(map[string]models.Booking),
	}
	for _, id := range models.RoomIDs {
		m.rooms = append(m.rooms, models.Room{ID: id, Name: "Operating Room " + id[len("OR-"):]})
	}
	return m
}

// Reopen simulates a process restart over the same durable state: it
// returns a fresh store holding copies of every committed record.
func (m *MemoryStore) Reopen() *MemoryStore {
	m.mu.RLock()
	defer m.mu.RUnlock()

	next := NewMemoryStore()
	for id, c := range m.cases {
		c.Subtasks = nil
		next.cases[id] = c
	}
	for id, t := range m.subtasks {
		next.subtasks[id] = t
	}
	for id, b := range m.bookings {
		next.bookings[id] = b
	}
	next.events = append(next.events, m.events...)
	next.eventSeq = m.eventSeq
	next.bookSeq = m.bookSeq
	return next
}

func (m *MemoryStore) CreateCaseWithSubtasks(c *models.Case, subtasks []models.Subtask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cases[c.ID]; exists {
		return &PersistenceError{Op: "CreateCaseWithSubtasks", Err: fmt.Errorf("duplicate case id %s", c.ID)}
	}
	for _, t := range subtasks {
		if _, exists := m.subtasks[t.ID]; exists {
			return &PersistenceError{Op: "CreateCaseWithSubtasks", Err: fmt.Errorf("duplicate subtask id %s", t.ID)}
		}
	}

	stored := *c
	stored.Subtasks = nil
	m.cases[c.ID] = stored
	for _, t := range subtasks {
		m.subtasks[t.ID] = t
	}
	return nil
}

func (m *MemoryStore) GetCase(id string) (*models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Subtasks = m.subtasksForCase(id)
	return &c, nil
}

func (m *MemoryStore) ListCases() ([]models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cases := make([]models.Case, 0, len(m.cases))
	for id, c := range m.cases {
		c.Subtasks = m.subtasksForCase(id)
		cases = append(cases, c)
	}
	sort.Slice(cases, func(i, j int) bool {
		if !cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].CreatedAt.Before(cases[j].CreatedAt)
		}
		return cases[i].ID < cases[j].ID
	})
	return cases, nil
}

func (m *MemoryStore) DeleteCase(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cases[id]; !ok {
		return ErrNotFound
	}
	delete(m.cases, id)
	delete(m.bookings, id)
	for tid, t := range m.subtasks {
		if t.CaseID == id {
			delete(m.subtasks, tid)
		}
	}
	return nil
}

func (m *MemoryStore) AdvanceSubtaskStatus(subtaskID, newStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.subtasks[subtaskID]
	if !ok {
		return ErrNotFound
	}
	oldRank := models.TaskStatusRank(t.Status)
	newRank := models.TaskStatusRank(newStatus)
	if newRank < 0 {
		return &PersistenceError{Op: "AdvanceSubtaskStatus", Err: fmt.Errorf("unknown status %q", newStatus)}
	}
	if newRank < oldRank {
		return &PersistenceError{Op: "AdvanceSubtaskStatus",
			Err: fmt.Errorf("subtask %s cannot regress from %s to %s", subtaskID, t.Status, newStatus)}
	}
	t.Status = newStatus
	m.subtasks[subtaskID] = t
	return nil
}

func (m *MemoryStore) CreateBooking(b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cases[b.CaseID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := m.bookings[b.CaseID]; exists {
		return &PersistenceError{Op: "CreateBooking", Err: fmt.Errorf("case %s is already booked", b.CaseID)}
	}

	m.bookSeq++
	b.ID = m.bookSeq
	m.bookings[b.CaseID] = *b

	room := b.RoomID
	c.RoomID = &room
	m.cases[b.CaseID] = c
	return nil
}

func (m *MemoryStore) DeleteBookingByCase(caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.bookings, caseID)
	if c, ok := m.cases[caseID]; ok {
		c.RoomID = nil
		m.cases[caseID] = c
	}
	return nil
}

func (m *MemoryStore) GetBookingByCase(caseID string) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemoryStore) ListBookingsByRoom(roomID string) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var bookings []models.Booking
	for _, b := range m.bookings {
		if b.RoomID == roomID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartAt.Before(bookings[j].StartAt) })
	return bookings, nil
}

func (m *MemoryStore) ListBookings() ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bookings := make([]models.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		bookings = append(bookings, b)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (m *MemoryStore) AppendEvent(e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !models.ValidEventKind(e.Kind) {
		return &PersistenceError{Op: "AppendEvent", Err: fmt.Errorf("unknown event kind %q", e.Kind)}
	}
	m.eventSeq++
	e.ID = m.eventSeq
	m.events = append(m.events, *e)
	return nil
}

func (m *MemoryStore) ListEvents(limit int) ([]models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]models.Event, len(m.events))
	copy(events, m.events)
	// Newest first
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *MemoryStore) ListRooms() ([]models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]models.Room, len(m.rooms))
	copy(rooms, m.rooms)
	return rooms, nil
}

// subtasksForCase returns copies of a case's subtasks in seq order.
// Callers must hold at least a read lock.
func (m *MemoryStore) subtasksForCase(caseID string) []models.Subtask {
	var tasks []models.Subtask
	for _, t := range m.subtasks {
		if t.CaseID == caseID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Seq < tasks[j].Seq })
	return tasks
}
