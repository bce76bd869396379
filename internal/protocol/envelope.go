package protocol

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// Role identifies a logical component addressable on the message router.
type Role string

const (
	RoleUI       Role = "ui"
	RolePlanner  Role = "planner"
	RoleExecutor Role = "executor"
	RoleNotifier Role = "notifier"
	RoleMonitor  Role = "monitor"
)

// ValidRole reports whether r belongs to the closed role set
func ValidRole(r Role) bool {
	switch r {
	case RoleUI, RolePlanner, RoleExecutor, RoleNotifier, RoleMonitor:
		return true
	}
	return false
}

// Performative is the communicative act carried by an envelope.
type Performative string

const (
	PerformativeRequest Performative = "REQUEST"
	PerformativeInform  Performative = "INFORM"
)

// ProtocolTags is the fixed compliance tag set carried by every envelope.
// It declares which agent-communication conventions the message honors;
// it never participates in routing.
var ProtocolTags = []string{"A2A", "ACP", "AG_UI", "MCP"}

// Inbound action kinds
const (
	KindNewCase      = "NEW_CASE"
	KindScheduleCase = "SCHEDULE_CASE"
	KindDeleteCase   = "DELETE_CASE" // test/admin only
	KindSnapshot     = "SNAPSHOT"
)

// Outbound / informational kinds
const (
	KindNewCaseCreated     = "NEW_CASE_CREATED"
	KindCaseScheduled      = "CASE_SCHEDULED"
	KindTaskStateChanged   = "TASK_STATE_CHANGED"
	KindSchedulingConflict = "SCHEDULING_CONFLICT"
)

// Content is the normalized message body: an action kind plus its
// action-specific payload.
type Content struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Envelope is the canonical message unit exchanged between components.
// Immutable once constructed; consumed exactly once by its receiver.
type Envelope struct {
	ID           string       `json:"id"`
	Performative Performative `json:"performative"`
	Sender       Role         `json:"sender"`
	Receiver     Role         `json:"receiver"`
	Protocols    []string     `json:"protocols"`
	Content      Content      `json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NewEnvelope builds an envelope with a fresh message id and the full
// protocol tag set. All envelope construction goes through here so message
// traffic leaves a uniform trace in the logs.
func NewEnvelope(performative Performative, sender, receiver Role, kind string, payload any) *Envelope {
	env := &Envelope{
		ID:           uuid.New().String(),
		Performative: performative,
		Sender:       sender,
		Receiver:     receiver,
		Protocols:    ProtocolTags,
		Content: Content{
			Type:    kind,
			Payload: payload,
		},
		CreatedAt: time.Now().UTC(),
	}

	log.Printf("Envelope created: id=%s performative=%s sender=%s receiver=%s kind=%s",
		env.ID, env.Performative, env.Sender, env.Receiver, kind)
	return env
}
