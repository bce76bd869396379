package models

import "time"

// Priority levels for a surgical case
const (
	PriorityUrgent   = "urgent"
	PriorityElective = "elective"
)

// Overall case status values, derived from subtask progress
const (
	CaseStatusNew        = "new"
	CaseStatusPlanned    = "planned"
	CaseStatusInProgress = "in_progress"
	CaseStatusCompleted  = "completed"
)

// Case represents the surgery_cases table
// One patient's surgical workflow from intake to completion
type Case struct {
	ID             string    `gorm:"primaryKey;size:50" json:"id"`
	PatientName    string    `gorm:"size:255;not null" json:"patient_name"`
	ProcedureName  string    `gorm:"size:255;not null" json:"procedure_name"`
	Priority       string    `gorm:"type:enum('urgent','elective');default:'elective'" json:"priority"`
	RequestedStart time.Time `gorm:"not null" json:"requested_start"`
	RoomID         *string   `gorm:"size:20;index" json:"room_id"` // Nil until scheduled
	Status         string    `gorm:"-" json:"status"`              // Derived, never persisted
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Subtasks []Subtask `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"subtasks,omitempty"`
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "surgery_cases"
}

// DeriveStatus computes the overall case status from its subtasks.
// A case with no subtasks is new; once planned it progresses with them.
func (c *Case) DeriveStatus() string {
	if len(c.Subtasks) == 0 {
		return CaseStatusNew
	}

	done := 0
	started := false
	for _, t := range c.Subtasks {
		switch t.Status {
		case TaskStatusDone:
			done++
			started = true
		case TaskStatusInProgress:
			started = true
		}
	}

	if done == len(c.Subtasks) {
		return CaseStatusCompleted
	}
	if started {
		return CaseStatusInProgress
	}
	return CaseStatusPlanned
}

// ValidPriority reports whether p is one of the accepted priority levels
func ValidPriority(p string) bool {
	return p == PriorityUrgent || p == PriorityElective
}
