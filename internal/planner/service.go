package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"surgical-scheduling-backend/internal/dispatch"
	"surgical-scheduling-backend/internal/models"
	"surgical-scheduling-backend/internal/notifier"
	"surgical-scheduling-backend/internal/protocol"
	"surgical-scheduling-backend/internal/store"

	"github.com/google/uuid"
)

// ErrInvalidCaseInput rejects malformed intake data before anything is
// persisted.
var ErrInvalidCaseInput = errors.New("invalid case input")

// NewCaseInput is the intake form for one surgical case.
type NewCaseInput struct {
	PatientName    string
	ProcedureName  string
	Priority       string
	RequestedStart time.Time
}

// Service turns intake requests into persisted cases with a full subtask
// plan. The primary generator may be the remote generative service; the
// deterministic fallback guarantees plan composition never blocks on it.
type Service struct {
	store     store.Store
	generator Generator
	fallback  *DeterministicGenerator
	recorder  *notifier.Recorder
}

func NewService(st store.Store, generator Generator, recorder *notifier.Recorder) *Service {
	return &Service{
		store:     st,
		generator: generator,
		fallback:  NewDeterministicGenerator(),
		recorder:  recorder,
	}
}

// CreateCase validates the intake data, composes the subtask plan and
// persists the case with all of its subtasks in one operation.
func (s *Service) CreateCase(ctx context.Context, input NewCaseInput) (*models.Case, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	caseID := generateCaseID()
	steps := s.composePlan(ctx, caseID, input.ProcedureName)

	subtasks := make([]models.Subtask, 0, len(steps))
	for i, step := range steps {
		subtasks = append(subtasks, models.Subtask{
			ID:          fmt.Sprintf("%s-T%d", caseID, i+1),
			CaseID:      caseID,
			Seq:         i,
			Description: step.Description,
			DurationMin: step.DurationMin,
			Role:        step.Role,
			Status:      models.TaskStatusPending,
		})
	}

	c := &models.Case{
		ID:             caseID,
		PatientName:    input.PatientName,
		ProcedureName:  input.ProcedureName,
		Priority:       input.Priority,
		RequestedStart: input.RequestedStart,
	}

	if err := s.store.CreateCaseWithSubtasks(c, subtasks); err != nil {
		return nil, err
	}
	c.Subtasks = subtasks

	summary := fmt.Sprintf("Case %s created for patient %s (%s, %s)",
		caseID, input.PatientName, input.ProcedureName, input.Priority)
	if err := s.recorder.Record(models.EventCaseCreated, summary, &caseID); err != nil {
		log.Printf("Failed to record case creation event for %s: %v", caseID, err)
	}

	log.Printf("Planner created case %s with %d subtasks", caseID, len(subtasks))
	return c, nil
}

// composePlan runs the configured generator and absorbs any failure with
// the deterministic skeleton. Total: always returns a usable plan.
func (s *Service) composePlan(ctx context.Context, caseID, procedure string) []PlanStep {
	steps, err := s.generator.GeneratePlan(ctx, procedure)
	if err == nil && len(steps) == PlanSteps {
		return steps
	}
	if err != nil {
		log.Printf("Generator unavailable for case %s (%s), using deterministic plan: %v",
			caseID, procedure, err)
	}
	steps, _ = s.fallback.GeneratePlan(ctx, procedure)
	return steps
}

// Register wires the planner's inbound action vocabulary into the router.
func (s *Service) Register(router *dispatch.Router) {
	router.Register(protocol.RolePlanner, protocol.KindNewCase, s.handleNewCase)
}

func (s *Service) handleNewCase(env *protocol.Envelope) (*protocol.Envelope, error) {
	payload, ok := env.Content.Payload.(protocol.NewCasePayload)
	if !ok {
		return nil, fmt.Errorf("%w: NEW_CASE payload has unexpected shape", ErrInvalidCaseInput)
	}

	c, err := s.CreateCase(context.Background(), NewCaseInput{
		PatientName:    payload.PatientName,
		ProcedureName:  payload.ProcedureName,
		Priority:       payload.Priority,
		RequestedStart: payload.RequestedStart,
	})
	if err != nil {
		return nil, err
	}

	reply := protocol.NewEnvelope(
		protocol.PerformativeInform,
		protocol.RolePlanner,
		env.Sender,
		protocol.KindNewCaseCreated,
		protocol.NewCaseCreatedPayload{Case: c},
	)
	return reply, nil
}

func validateInput(input NewCaseInput) error {
	if strings.TrimSpace(input.PatientName) == "" {
		return fmt.Errorf("%w: patient name is required", ErrInvalidCaseInput)
	}
	if strings.TrimSpace(input.ProcedureName) == "" {
		return fmt.Errorf("%w: procedure name is required", ErrInvalidCaseInput)
	}
	if !models.ValidPriority(input.Priority) {
		return fmt.Errorf("%w: priority must be %q or %q", ErrInvalidCaseInput,
			models.PriorityUrgent, models.PriorityElective)
	}
	if input.RequestedStart.IsZero() {
		return fmt.Errorf("%w: requested start is required", ErrInvalidCaseInput)
	}
	return nil
}

func generateCaseID() string {
	return "CASE-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
