package scheduler

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"surgical-scheduling-backend/internal/dispatch"
	"surgical-scheduling-backend/internal/models"
	"surgical-scheduling-backend/internal/notifier"
	"surgical-scheduling-backend/internal/protocol"
	"surgical-scheduling-backend/internal/store"
)

// ErrInvalidRequest rejects a schedule request with bad shape or values
// before anything touches persistence.
var ErrInvalidRequest = errors.New("invalid schedule request")

// DefaultGraceWindow is how far in the past a requested start may lie and
// still be accepted.
const DefaultGraceWindow = 15 * time.Minute

// Conflict reports that every room was occupied for the requested
// interval. It is an expected business outcome; callers handle it, they do
// not treat it as a fault.
type Conflict struct {
	CaseID string
	Reason string
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("scheduling conflict for case %s: %s", c.CaseID, c.Reason)
}

// Transition records one subtask status change made by a refresh pass.
type Transition struct {
	Subtask   models.Subtask `json:"subtask"`
	OldStatus string         `json:"old_status"`
	NewStatus string         `json:"new_status"`
}

// Engine assigns rooms to time-bounded cases and advances subtask state as
// wall-clock time passes. The mutex serializes the overlap check with
// booking creation across all rooms, so two racing requests can never both
// observe a room as free.
type Engine struct {
	store    store.Store
	recorder *notifier.Recorder
	rooms    []string
	grace    time.Duration
	mu       sync.Mutex
}

func NewEngine(st store.Store, recorder *notifier.Recorder, grace time.Duration) *Engine {
	if grace <= 0 {
		grace = DefaultGraceWindow
	}
	return &Engine{
		store:    st,
		recorder: recorder,
		rooms:    models.RoomIDs,
		grace:    grace,
	}
}

// SchedulePlan finds a non-conflicting room for the case's full plan
// starting at requestedStart and commits the booking. Rooms are tried in
// fixed order and the first eligible one wins; this is a deterministic
// tie-break, not an optimization search. A case that is already booked is
// rescheduled: a replacement room is secured first, then the old booking
// is removed and a new one created. A conflicted reschedule leaves the
// existing booking in place.
func (e *Engine) SchedulePlan(caseID string, requestedStart, now time.Time) (*models.Booking, error) {
	c, err := e.store.GetCase(caseID)
	if err != nil {
		return nil, err
	}
	if requestedStart.IsZero() {
		requestedStart = c.RequestedStart
	}

	if err := e.validate(c, requestedStart, now); err != nil {
		return nil, err
	}

	totalMin := 0
	for _, t := range c.Subtasks {
		totalMin += t.DurationMin
	}
	end := requestedStart.Add(time.Duration(totalMin) * time.Minute)

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, roomID := range e.rooms {
		existing, err := e.store.ListBookingsByRoom(roomID)
		if err != nil {
			return nil, err
		}
		// The case's own booking never blocks its reschedule.
		if anyOverlap(existing, caseID, requestedStart, end) {
			continue
		}

		// Rescheduling never edits a booking in place; the old slot is
		// released only once a replacement room is secured.
		if err := e.store.DeleteBookingByCase(caseID); err != nil {
			return nil, err
		}

		booking := &models.Booking{
			RoomID:  roomID,
			CaseID:  caseID,
			StartAt: requestedStart,
			EndAt:   end,
		}
		if err := e.store.CreateBooking(booking); err != nil {
			return nil, err
		}

		// Booking a case promotes every pending subtask immediately,
		// independent of time.
		e.markScheduled(c)

		summary := fmt.Sprintf("Case %s booked in %s [%s, %s)",
			caseID, roomID, requestedStart.Format(time.RFC3339), end.Format(time.RFC3339))
		if err := e.recorder.Record(models.EventCaseScheduled, summary, &caseID); err != nil {
			log.Printf("Failed to record scheduling event for %s: %v", caseID, err)
		}

		log.Printf("Scheduled case %s in %s, %d min total", caseID, roomID, totalMin)
		return booking, nil
	}

	conflict := &Conflict{
		CaseID: caseID,
		Reason: fmt.Sprintf("no room free for [%s, %s)", requestedStart.Format(time.RFC3339), end.Format(time.RFC3339)),
	}
	if err := e.recorder.Record(models.EventSchedulingConflict, conflict.Error(), &caseID); err != nil {
		log.Printf("Failed to record conflict event for %s: %v", caseID, err)
	}
	return nil, conflict
}

// RefreshStates recomputes every booked case's subtask statuses from the
// supplied time. Subtask windows are laid back-to-back from the booking
// start in seq order. Transitions only move forward and each one is
// recorded exactly once, which makes the pass idempotent for a fixed now.
func (e *Engine) RefreshStates(now time.Time) ([]Transition, error) {
	cases, err := e.store.ListCases()
	if err != nil {
		return nil, err
	}

	var transitions []Transition
	for i := range cases {
		c := &cases[i]
		booking, err := e.store.GetBookingByCase(c.ID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return transitions, err
		}

		cursor := booking.StartAt
		for _, t := range c.Subtasks {
			subStart := cursor
			subEnd := cursor.Add(time.Duration(t.DurationMin) * time.Minute)
			cursor = subEnd

			target := targetStatus(now, subStart, subEnd)
			if models.TaskStatusRank(target) <= models.TaskStatusRank(t.Status) {
				continue
			}

			if err := e.store.AdvanceSubtaskStatus(t.ID, target); err != nil {
				return transitions, err
			}

			transition := Transition{Subtask: t, OldStatus: t.Status, NewStatus: target}
			transition.Subtask.Status = target
			transitions = append(transitions, transition)

			summary := fmt.Sprintf("Case %s subtask %d (%s): %s -> %s",
				c.ID, t.Seq, t.Description, t.Status, target)
			caseID := c.ID
			if err := e.recorder.Record(models.EventTaskStateChanged, summary, &caseID); err != nil {
				log.Printf("Failed to record state change for %s: %v", t.ID, err)
			}
		}
	}
	return transitions, nil
}

// DeleteCase removes a case with its subtasks and booking. Test/admin
// operation; surfaced through the router as DELETE_CASE.
func (e *Engine) DeleteCase(caseID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.DeleteCase(caseID)
}

// Register wires the executor's inbound action vocabulary into the router.
func (e *Engine) Register(router *dispatch.Router) {
	router.Register(protocol.RoleExecutor, protocol.KindScheduleCase, e.handleScheduleCase)
	router.Register(protocol.RoleExecutor, protocol.KindDeleteCase, e.handleDeleteCase)
}

func (e *Engine) handleScheduleCase(env *protocol.Envelope) (*protocol.Envelope, error) {
	payload, ok := env.Content.Payload.(protocol.ScheduleCasePayload)
	if !ok {
		return nil, fmt.Errorf("%w: SCHEDULE_CASE payload has unexpected shape", ErrInvalidRequest)
	}

	var requestedStart time.Time
	if payload.RequestedStart != nil {
		requestedStart = *payload.RequestedStart
	}

	booking, err := e.SchedulePlan(payload.CaseID, requestedStart, time.Now())
	if err != nil {
		var conflict *Conflict
		if errors.As(err, &conflict) {
			reply := protocol.NewEnvelope(
				protocol.PerformativeInform,
				protocol.RoleExecutor,
				env.Sender,
				protocol.KindSchedulingConflict,
				protocol.SchedulingConflictPayload{CaseID: conflict.CaseID, Reason: conflict.Reason},
			)
			return reply, nil
		}
		return nil, err
	}

	reply := protocol.NewEnvelope(
		protocol.PerformativeInform,
		protocol.RoleExecutor,
		env.Sender,
		protocol.KindCaseScheduled,
		protocol.CaseScheduledPayload{
			CaseID: booking.CaseID,
			Room:   booking.RoomID,
			Start:  booking.StartAt,
			End:    booking.EndAt,
		},
	)
	return reply, nil
}

func (e *Engine) handleDeleteCase(env *protocol.Envelope) (*protocol.Envelope, error) {
	payload, ok := env.Content.Payload.(protocol.DeleteCasePayload)
	if !ok {
		return nil, fmt.Errorf("%w: DELETE_CASE payload has unexpected shape", ErrInvalidRequest)
	}
	return nil, e.DeleteCase(payload.CaseID)
}

// markScheduled promotes the case's pending subtasks to scheduled,
// recording one state-change event per promotion.
func (e *Engine) markScheduled(c *models.Case) {
	for i := range c.Subtasks {
		t := &c.Subtasks[i]
		if t.Status != models.TaskStatusPending {
			continue
		}
		if err := e.store.AdvanceSubtaskStatus(t.ID, models.TaskStatusScheduled); err != nil {
			log.Printf("Failed to mark subtask %s scheduled: %v", t.ID, err)
			continue
		}
		summary := fmt.Sprintf("Case %s subtask %d (%s): %s -> %s",
			c.ID, t.Seq, t.Description, models.TaskStatusPending, models.TaskStatusScheduled)
		if err := e.recorder.Record(models.EventTaskStateChanged, summary, &c.ID); err != nil {
			log.Printf("Failed to record state change for %s: %v", t.ID, err)
		}
		t.Status = models.TaskStatusScheduled
	}
}

func (e *Engine) validate(c *models.Case, requestedStart, now time.Time) error {
	if len(c.Subtasks) == 0 {
		return fmt.Errorf("%w: case %s has no subtasks", ErrInvalidRequest, c.ID)
	}
	for _, t := range c.Subtasks {
		if t.DurationMin <= 0 {
			return fmt.Errorf("%w: subtask %s has non-positive duration %d",
				ErrInvalidRequest, t.ID, t.DurationMin)
		}
	}
	if requestedStart.Before(now.Add(-e.grace)) {
		return fmt.Errorf("%w: requested start %s is more than %s in the past",
			ErrInvalidRequest, requestedStart.Format(time.RFC3339), e.grace)
	}
	return nil
}

func anyOverlap(bookings []models.Booking, excludeCase string, start, end time.Time) bool {
	for i := range bookings {
		if bookings[i].CaseID == excludeCase {
			continue
		}
		if bookings[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}

func targetStatus(now, subStart, subEnd time.Time) string {
	if !now.Before(subEnd) {
		return models.TaskStatusDone
	}
	if !now.Before(subStart) {
		return models.TaskStatusInProgress
	}
	return models.TaskStatusScheduled
}
