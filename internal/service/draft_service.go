package service

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/ecofit/internal/ai"
)

var (
	ErrAIUnavailable = errors.New("AI drafting is not configured")
	ErrAIUpstream    = errors.New("AI provider request failed")
	ErrDraftRejected = errors.New("AI returned an unusable draft")
)

// DraftService exposes the four LLM draft generators. Drafts are never stored;
// the professional edits them into a plan.
type DraftService interface {
	Diet(ctx context.Context, input ai.DietInput) (*ai.DietDraft, error)
	Workout(ctx context.Context, input ai.WorkoutInput) (*ai.WorkoutDraft, error)
	Divisions(ctx context.Context, input ai.DivisionsInput) (*ai.DivisionsDraft, error)
	Schedule(ctx context.Context, input ai.ScheduleInput) (*ai.ScheduleDraft, error)
}

type draftService struct {
	drafter *ai.Drafter
}

// NewDraftService accepts a nil drafter; every call then fails with ErrAIUnavailable.
func NewDraftService(drafter *ai.Drafter) DraftService {
	return &draftService{drafter: drafter}
}

func unwrapDraft[T any](r ai.Result[T], err error) (*T, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUpstream, err)
	}
	if !r.OK() {
		return nil, fmt.Errorf("%w: %s", ErrDraftRejected, r.Reason)
	}
	return &r.Value, nil
}

func (s *draftService) Diet(ctx context.Context, input ai.DietInput) (*ai.DietDraft, error) {
	if s.drafter == nil {
		return nil, ErrAIUnavailable
	}
	if input.Objective == "" {
		return nil, invalid("objective is required")
	}
	return unwrapDraft(s.drafter.DraftDiet(ctx, input))
}

func (s *draftService) Workout(ctx context.Context, input ai.WorkoutInput) (*ai.WorkoutDraft, error) {
	if s.drafter == nil {
		return nil, ErrAIUnavailable
	}
	if input.Objective == "" {
		return nil, invalid("objective is required")
	}
	return unwrapDraft(s.drafter.DraftWorkout(ctx, input))
}

func (s *draftService) Divisions(ctx context.Context, input ai.DivisionsInput) (*ai.DivisionsDraft, error) {
	if s.drafter == nil {
		return nil, ErrAIUnavailable
	}
	if input.Divisions < 2 || input.Divisions > 3 {
		return nil, invalid("divisions must be 2 or 3")
	}
	return unwrapDraft(s.drafter.DraftDivisions(ctx, input))
}

func (s *draftService) Schedule(ctx context.Context, input ai.ScheduleInput) (*ai.ScheduleDraft, error) {
	if s.drafter == nil {
		return nil, ErrAIUnavailable
	}
	if len(input.Divisions) == 0 {
		return nil, invalid("at least one division is required")
	}
	for _, l := range input.Divisions {
		if !l.Valid() {
			return nil, invalid("division %q must be A, B or C", l)
		}
	}
	if input.DaysPerWeek < 0 || input.DaysPerWeek > 7 {
		return nil, invalid("days_per_week must be between 0 and 7")
	}
	return unwrapDraft(s.drafter.SuggestSchedule(ctx, input))
}
