package repository

import (
	"errors"
	"fmt"

	"surgical-scheduling-backend/internal/models"
	"surgical-scheduling-backend/internal/store"

	"gorm.io/gorm"
)

// CaseStore is the durable implementation of store.Store backed by MySQL
// through GORM. Multi-record operations run inside a transaction so a
// failed write never leaves a case half-created.
type CaseStore struct {
	db *gorm.DB
}

func NewCaseStore(db *gorm.DB) *CaseStore {
	return &CaseStore{db: db}
}

// compile-time check that CaseStore satisfies the store boundary
var _ store.Store = (*CaseStore)(nil)

func (s *CaseStore) CreateCaseWithSubtasks(c *models.Case, subtasks []models.Subtask) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		stored := *c
		stored.Subtasks = nil
		if err := tx.Create(&stored).Error; err != nil {
			return err
		}
		if len(subtasks) > 0 {
			if err := tx.Create(&subtasks).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &store.PersistenceError{Op: "CreateCaseWithSubtasks", Err: err}
	}
	return nil
}

func (s *CaseStore) GetCase(id string) (*models.Case, error) {
	var c models.Case
	err := s.db.Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, &store.PersistenceError{Op: "GetCase", Err: err}
	}
	return &c, nil
}

func (s *CaseStore) ListCases() ([]models.Case, error) {
	var cases []models.Case
	err := s.db.Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Order("created_at ASC, id ASC").Find(&cases).Error
	if err != nil {
		return nil, &store.PersistenceError{Op: "ListCases", Err: err}
	}
	return cases, nil
}

func (s *CaseStore) DeleteCase(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Case{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}
		if err := tx.Delete(&models.Subtask{}, "case_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Booking{}, "case_id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return &store.PersistenceError{Op: "DeleteCase", Err: err}
	}
	return nil
}

func (s *CaseStore) AdvanceSubtaskStatus(subtaskID, newStatus string) error {
	newRank := models.TaskStatusRank(newStatus)
	if newRank < 0 {
		return &store.PersistenceError{Op: "AdvanceSubtaskStatus", Err: fmt.Errorf("unknown status %q", newStatus)}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var t models.Subtask
		if err := tx.First(&t, "id = ?", subtaskID).Error; err != nil {
			return err
		}
		if newRank < models.TaskStatusRank(t.Status) {
			return fmt.Errorf("subtask %s cannot regress from %s to %s", subtaskID, t.Status, newStatus)
		}
		return tx.Model(&models.Subtask{}).Where("id = ?", subtaskID).
			Update("status", newStatus).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrNotFound
		}
		return &store.PersistenceError{Op: "AdvanceSubtaskStatus", Err: err}
	}
	return nil
}

func (s *CaseStore) CreateBooking(b *models.Booking) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		result := tx.Model(&models.Case{}).Where("id = ?", b.CaseID).
			Update("room_id", b.RoomID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrNotFound
		}
		return &store.PersistenceError{Op: "CreateBooking", Err: err}
	}
	return nil
}

func (s *CaseStore) DeleteBookingByCase(caseID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Booking{}, "case_id = ?", caseID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Case{}).Where("id = ?", caseID).
			Update("room_id", nil).Error
	})
	if err != nil {
		return &store.PersistenceError{Op: "DeleteBookingByCase", Err: err}
	}
	return nil
}

func (s *CaseStore) GetBookingByCase(caseID string) (*models.Booking, error) {
	var b models.Booking
	err := s.db.First(&b, "case_id = ?", caseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, &store.PersistenceError{Op: "GetBookingByCase", Err: err}
	}
	return &b, nil
}

func (s *CaseStore) ListBookingsByRoom(roomID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.Where("room_id = ?", roomID).Order("start_at ASC").Find(&bookings).Error
	if err != nil {
		return nil, &store.PersistenceError{Op: "ListBookingsByRoom", Err: err}
	}
	return bookings, nil
}

func (s *CaseStore) ListBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.Order("id ASC").Find(&bookings).Error
	if err != nil {
		return nil, &store.PersistenceError{Op: "ListBookings", Err: err}
	}
	return bookings, nil
}

func (s *CaseStore) AppendEvent(e *models.Event) error {
	if !models.ValidEventKind(e.Kind) {
		return &store.PersistenceError{Op: "AppendEvent", Err: fmt.Errorf("unknown event kind %q", e.Kind)}
	}
	if err := s.db.Create(e).Error; err != nil {
		return &store.PersistenceError{Op: "AppendEvent", Err: err}
	}
	return nil
}

func (s *CaseStore) ListEvents(limit int) ([]models.Event, error) {
	var events []models.Event
	q := s.db.Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, &store.PersistenceError{Op: "ListEvents", Err: err}
	}
	return events, nil
}

func (s *CaseStore) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.db.Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, &store.PersistenceError{Op: "ListRooms", Err: err}
	}
	return rooms, nil
}

// EnsureRooms seeds the fixed room pool at startup if any rooms are missing
func (s *CaseStore) EnsureRooms() error {
	for _, id := range models.RoomIDs {
		var count int64
		if err := s.db.Model(&models.Room{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return &store.PersistenceError{Op: "EnsureRooms", Err: err}
		}
		if count == 0 {
			room := &models.Room{ID: id, Name: "Operating Room " + id[len("OR-"):]}
			if err := s.db.Create(room).Error; err != nil {
				return &store.PersistenceError{Op: "EnsureRooms", Err: err}
			}
		}
	}
	return nil
}
