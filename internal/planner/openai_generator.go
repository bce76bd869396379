package planner

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
)

const defaultModel = "gpt-4o-mini"

const planSystemPrompt = "You are an expert perioperative planner in a university hospital. " +
	"You answer with JSON only, no prose and no code fences."

// OpenAIGenerator asks a chat model for a procedure-specific task
// breakdown. Any failure — transport, malformed reply, wrong task count —
// is reported as ErrGeneratorUnavailable so the caller can fall back.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = defaultModel
	}
	return &OpenAIGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (g *OpenAIGenerator) GeneratePlan(ctx context.Context, procedure string) ([]PlanStep, error) {
	prompt := fmt.Sprintf(`Propose a complete perioperative plan for the procedure %q.

Return exactly this JSON shape:

{"tasks": [{"description": "...", "duration_minutes": 30, "role": "..."}]}

Rules:
- Return exactly %d tasks covering admission, preparation, anesthesia,
  the main procedure, closure and recovery.
- duration_minutes must be a positive integer realistic for the task.
- Task descriptions must reference the specific procedure.`, procedure, PlanSteps)

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(planSystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrGeneratorUnavailable)
	}

	steps, err := parsePlanReply(completion.Choices[0].Message.Content)
	if err != nil {
		log.Printf("Discarding unusable plan reply for %q: %v", procedure, err)
		return nil, err
	}
	return steps, nil
}

// parsePlanReply extracts the task list from a model reply. The reply may
// wrap the JSON in code fences or surrounding prose.
func parsePlanReply(raw string) ([]PlanStep, error) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) >= 3 {
			text = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start != -1 && end > start {
		text = text[start : end+1]
	}

	tasks := gjson.Get(text, "tasks")
	if !tasks.IsArray() {
		return nil, fmt.Errorf("%w: reply has no tasks array", ErrGeneratorUnavailable)
	}

	var steps []PlanStep
	tasks.ForEach(func(_, task gjson.Result) bool {
		description := strings.TrimSpace(task.Get("description").String())
		duration := int(task.Get("duration_minutes").Int())
		role := strings.TrimSpace(task.Get("role").String())
		if description == "" || duration <= 0 {
			return true
		}
		steps = append(steps, PlanStep{Description: description, DurationMin: duration, Role: role})
		return true
	})

	if len(steps) != PlanSteps {
		return nil, fmt.Errorf("%w: expected %d tasks, got %d", ErrGeneratorUnavailable, PlanSteps, len(steps))
	}
	return steps, nil
}
