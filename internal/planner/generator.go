package planner

import (
	"context"
	"errors"
)

// PlanSteps is the fixed length of every generated perioperative plan.
const PlanSteps = 10

// ErrGeneratorUnavailable signals that a generator could not produce a
// plan. It never escapes the planner service: the deterministic fallback
// absorbs it so case creation cannot block on generator availability.
var ErrGeneratorUnavailable = errors.New("plan generator unavailable")

// PlanStep is one proposed clinical step of a perioperative plan.
type PlanStep struct {
	Description string
	DurationMin int
	Role        string
}

// Generator proposes an ordered task breakdown for a procedure label.
type Generator interface {
	GeneratePlan(ctx context.Context, procedure string) ([]PlanStep, error)
}
