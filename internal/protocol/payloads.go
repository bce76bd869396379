package protocol

import (
	"time"

	"surgical-scheduling-backend/internal/models"
)

// Typed payloads for each action kind. Handlers type-assert the payload they
// expect; a mismatch is treated the same as a malformed message.

// NewCasePayload carries the intake form for a NEW_CASE request.
type NewCasePayload struct {
	PatientName    string    `json:"patient_name"`
	ProcedureName  string    `json:"procedure_name"`
	Priority       string    `json:"priority"`
	RequestedStart time.Time `json:"requested_start"`
}

// NewCaseCreatedPayload answers a NEW_CASE request with the persisted case.
type NewCaseCreatedPayload struct {
	Case *models.Case `json:"case"`
}

// ScheduleCasePayload requests room assignment for an existing case.
// RequestedStart overrides the case's stored start when retrying a
// conflicted schedule at a different time.
type ScheduleCasePayload struct {
	CaseID         string     `json:"case_id"`
	RequestedStart *time.Time `json:"requested_start,omitempty"`
}

// DeleteCasePayload removes a case and everything attached to it.
type DeleteCasePayload struct {
	CaseID string `json:"case_id"`
}

// CaseScheduledPayload announces a committed booking.
type CaseScheduledPayload struct {
	CaseID string    `json:"case_id"`
	Room   string    `json:"room"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// TaskStateChangedPayload announces a single subtask transition.
type TaskStateChangedPayload struct {
	CaseID       string `json:"case_id"`
	SubtaskIndex int    `json:"subtask_index"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
}

// SchedulingConflictPayload reports that no room could take the request.
type SchedulingConflictPayload struct {
	CaseID string `json:"case_id"`
	Reason string `json:"reason"`
}
