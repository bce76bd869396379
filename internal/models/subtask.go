package models

// Subtask status values, in lifecycle order
const (
	TaskStatusPending    = "pending"
	TaskStatusScheduled  = "scheduled"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Subtask represents the surgery_subtasks table
// One ordered clinical step within a case's plan. Seq defines execution
// order and is never changed after creation.
type Subtask struct {
	ID          string `gorm:"primaryKey;size:60" json:"id"`
	CaseID      string `gorm:"size:50;not null;index" json:"case_id"`
	Seq         int    `gorm:"not null" json:"seq"` // 0-based
	Description string `gorm:"size:255;not null" json:"description"`
	DurationMin int    `gorm:"not null" json:"duration_min"`
	Role        string `gorm:"size:100" json:"role"`
	Status      string `gorm:"type:enum('pending','scheduled','in_progress','done');default:'pending'" json:"status"`
}

// TableName specifies the table name for Subtask model
func (Subtask) TableName() string {
	return "surgery_subtasks"
}

// TaskStatusRank maps a subtask status to its position in the lifecycle.
// Status only ever moves to a higher rank; unknown values rank lowest.
func TaskStatusRank(status string) int {
	switch status {
	case TaskStatusPending:
		return 0
	case TaskStatusScheduled:
		return 1
	case TaskStatusInProgress:
		return 2
	case TaskStatusDone:
		return 3
	default:
		return -1
	}
}
