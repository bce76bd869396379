package notifier

import (
	"fmt"

	"surgical-scheduling-backend/internal/dispatch"
	"surgical-scheduling-backend/internal/models"
	"surgical-scheduling-backend/internal/protocol"
	"surgical-scheduling-backend/internal/store"
)

// Recorder appends human-readable event records for state changes.
// Recording is best-effort: callers log a failed append and move on, it
// never rolls back the operation that triggered it.
type Recorder struct {
	store store.Store
}

func NewRecorder(st store.Store) *Recorder {
	return &Recorder{store: st}
}

// Record appends one event of the given kind.
func (r *Recorder) Record(kind, summary string, caseID *string) error {
	event := &models.Event{
		Kind:    kind,
		Summary: summary,
		CaseID:  caseID,
	}
	return r.store.AppendEvent(event)
}

// List returns the most recent events, newest first.
func (r *Recorder) List(limit int) ([]models.Event, error) {
	return r.store.ListEvents(limit)
}

// Register wires the recorder as the fan-out target for informational
// envelopes. Each outbound kind maps onto its event record.
func (r *Recorder) Register(router *dispatch.Router) {
	router.Register(protocol.RoleNotifier, protocol.KindNewCaseCreated, r.handleInform(models.EventCaseCreated))
	router.Register(protocol.RoleNotifier, protocol.KindCaseScheduled, r.handleInform(models.EventCaseScheduled))
	router.Register(protocol.RoleNotifier, protocol.KindTaskStateChanged, r.handleInform(models.EventTaskStateChanged))
	router.Register(protocol.RoleNotifier, protocol.KindSchedulingConflict, r.handleInform(models.EventSchedulingConflict))
}

func (r *Recorder) handleInform(eventKind string) dispatch.HandlerFunc {
	return func(env *protocol.Envelope) (*protocol.Envelope, error) {
		summary := fmt.Sprintf("received %s from %s", env.Content.Type, env.Sender)
		var caseID *string
		switch p := env.Content.Payload.(type) {
		case protocol.NewCaseCreatedPayload:
			if p.Case != nil {
				caseID = &p.Case.ID
			}
		case protocol.CaseScheduledPayload:
			caseID = &p.CaseID
		case protocol.TaskStateChangedPayload:
			caseID = &p.CaseID
		case protocol.SchedulingConflictPayload:
			caseID = &p.CaseID
		}
		if err := r.Record(eventKind, summary, caseID); err != nil {
			return nil, err
		}
		return nil, nil
	}
}
