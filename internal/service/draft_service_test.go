package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"alcyxob/ecofit/internal/ai"
	"alcyxob/ecofit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedCompleter struct {
	reply string
	err   error
}

func (c cannedCompleter) Complete(context.Context, string, string) (string, error) {
	return c.reply, c.err
}

func newDraftService(reply string, err error) DraftService {
	drafter := ai.NewDrafter(cannedCompleter{reply: reply, err: err}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewDraftService(drafter)
}

func TestDraftService_Unavailable(t *testing.T) {
	svc := NewDraftService(nil)
	ctx := context.Background()

	_, err := svc.Diet(ctx, ai.DietInput{Objective: "cut"})
	assert.ErrorIs(t, err, ErrAIUnavailable)
	_, err = svc.Workout(ctx, ai.WorkoutInput{Objective: "strength"})
	assert.ErrorIs(t, err, ErrAIUnavailable)
	_, err = svc.Divisions(ctx, ai.DivisionsInput{Divisions: 2})
	assert.ErrorIs(t, err, ErrAIUnavailable)
	_, err = svc.Schedule(ctx, ai.ScheduleInput{Divisions: []domain.DivisionLabel{domain.DivisionA}})
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestDraftService_Workout(t *testing.T) {
	ctx := context.Background()

	svc := newDraftService("```json\n{\"name\":\"Full body\",\"exercises\":[{\"name\":\"Squat\",\"sets\":\"3-4\",\"reps\":\"8\"}]}\n```", nil)
	draft, err := svc.Workout(ctx, ai.WorkoutInput{Objective: "strength"})
	require.NoError(t, err)
	assert.Equal(t, "Full body", draft.Name)
	require.Len(t, draft.Exercises, 1)
	assert.Equal(t, 3, draft.Exercises[0].Sets)

	_, err = svc.Workout(ctx, ai.WorkoutInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	svc = newDraftService(`{"name":"Empty","exercises":[]}`, nil)
	_, err = svc.Workout(ctx, ai.WorkoutInput{Objective: "strength"})
	assert.ErrorIs(t, err, ErrDraftRejected)

	svc = newDraftService("", errors.New("timeout"))
	_, err = svc.Workout(ctx, ai.WorkoutInput{Objective: "strength"})
	assert.ErrorIs(t, err, ErrAIUpstream)
}

func TestDraftService_InputChecks(t *testing.T) {
	svc := newDraftService("{}", nil)
	ctx := context.Background()

	_, err := svc.Divisions(ctx, ai.DivisionsInput{Divisions: 4})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Schedule(ctx, ai.ScheduleInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Schedule(ctx, ai.ScheduleInput{Divisions: []domain.DivisionLabel{"Z"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Schedule(ctx, ai.ScheduleInput{Divisions: []domain.DivisionLabel{domain.DivisionA}, DaysPerWeek: 9})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Diet(ctx, ai.DietInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDraftService_ScheduleDropsUnavailableDays(t *testing.T) {
	svc := newDraftService(`{"days":{"mon":"A","tue":"B","wed":"rest","thu":"A"}}`, nil)

	draft, err := svc.Schedule(context.Background(), ai.ScheduleInput{
		Divisions:       []domain.DivisionLabel{domain.DivisionA, domain.DivisionB},
		DaysPerWeek:     3,
		UnavailableDays: []domain.Weekday{domain.Tuesday},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DivisionA, *draft.Days[domain.Monday])
	assert.Nil(t, draft.Days[domain.Tuesday])
	assert.Nil(t, draft.Days[domain.Wednesday])
	assert.Equal(t, domain.DivisionA, *draft.Days[domain.Thursday])
}
