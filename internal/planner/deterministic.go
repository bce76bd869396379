package planner

import (
	"context"
	"math"
	"strings"
)

// baseSteps is the fixed ten-step perioperative skeleton used when no
// generative service is available. Durations are scaled per procedure.
var baseSteps = []PlanStep{
	{Description: "Patient admission and identity check", DurationMin: 15, Role: "ward nurse"},
	{Description: "Preoperative assessment", DurationMin: 20, Role: "anesthesiologist"},
	{Description: "Operating room preparation", DurationMin: 20, Role: "scrub nurse"},
	{Description: "Patient transfer to theater", DurationMin: 10, Role: "porter"},
	{Description: "Anesthesia induction", DurationMin: 20, Role: "anesthesiologist"},
	{Description: "Main procedure", DurationMin: 90, Role: "surgeon"},
	{Description: "Closure and dressing", DurationMin: 30, Role: "surgeon"},
	{Description: "Instrument and swab count", DurationMin: 10, Role: "scrub nurse"},
	{Description: "Transfer to recovery", DurationMin: 10, Role: "porter"},
	{Description: "Initial recovery observation", DurationMin: 45, Role: "recovery nurse"},
}

// durationFactors scales default step durations by procedure keyword.
// First match wins; unrecognized procedures keep the defaults.
var durationFactors = []struct {
	keyword string
	factor  float64
}{
	{"transplant", 2.0},
	{"bypass", 1.8},
	{"replacement", 1.5},
	{"resection", 1.3},
	{"laparoscopic", 0.8},
	{"endoscop", 0.7},
	{"biopsy", 0.5},
}

// DeterministicGenerator produces the same fixed perioperative skeleton for
// a given procedure label. It is total: it never fails, so it can always
// stand in for the generative service.
type DeterministicGenerator struct{}

func NewDeterministicGenerator() *DeterministicGenerator {
	return &DeterministicGenerator{}
}

func (g *DeterministicGenerator) GeneratePlan(_ context.Context, procedure string) ([]PlanStep, error) {
	factor := durationFactor(procedure)

	steps := make([]PlanStep, 0, PlanSteps)
	for _, base := range baseSteps {
		step := base
		step.Description = step.Description + " (" + procedure + ")"
		step.DurationMin = scaleDuration(base.DurationMin, factor)
		steps = append(steps, step)
	}
	return steps, nil
}

func durationFactor(procedure string) float64 {
	label := strings.ToLower(procedure)
	for _, entry := range durationFactors {
		if strings.Contains(label, entry.keyword) {
			return entry.factor
		}
	}
	return 1.0
}

// scaleDuration keeps every step at least five minutes long
func scaleDuration(base int, factor float64) int {
	scaled := int(math.Round(float64(base) * factor))
	if scaled < 5 {
		return 5
	}
	return scaled
}
