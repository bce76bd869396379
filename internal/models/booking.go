package models

import "time"

// Booking represents the room_bookings table
// A committed room reservation covering a case's full duration. Bookings are
// never edited in place; rescheduling removes and re-creates them.
type Booking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    string    `gorm:"size:20;not null;index" json:"room_id"`
	CaseID    string    `gorm:"size:50;not null;uniqueIndex" json:"case_id"`
	StartAt   time.Time `gorm:"not null" json:"start_at"`
	EndAt     time.Time `gorm:"not null" json:"end_at"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for Booking model
func (Booking) TableName() string {
	return "room_bookings"
}

// Overlaps reports whether the half-open interval [start, end) intersects
// this booking's interval. Touching endpoints do not conflict.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartAt.Before(end) && start.Before(b.EndAt)
}
