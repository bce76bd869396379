package models

import "time"

// Event kinds. The set is closed; new kinds are a schema decision, not a
// call-site convenience.
const (
	EventCaseCreated        = "CASE_CREATED"
	EventCaseScheduled      = "CASE_SCHEDULED"
	EventTaskStateChanged   = "TASK_STATE_CHANGED"
	EventSchedulingConflict = "SCHEDULING_CONFLICT"
)

// Event represents the case_events table
// Append-only; events are never updated or deleted
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"size:50;not null;index" json:"kind"`
	Summary   string    `gorm:"type:text" json:"summary"`
	CaseID    *string   `gorm:"size:50;index" json:"case_id,omitempty"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for Event model
func (Event) TableName() string {
	return "case_events"
}

// ValidEventKind reports whether kind belongs to the closed event vocabulary
func ValidEventKind(kind string) bool {
	switch kind {
	case EventCaseCreated, EventCaseScheduled, EventTaskStateChanged, EventSchedulingConflict:
		return true
	}
	return false
}
