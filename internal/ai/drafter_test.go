package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"alcyxob/ecofit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	answer string
	err    error

	system, user string
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.answer, s.err
}

func newTestDrafter(c Completer) *Drafter {
	return NewDrafter(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDrafter_DraftDiet_BuildsPrompt(t *testing.T) {
	stub := &stubCompleter{answer: `{"name": "Bulk", "meals": [{"name": "Dinner", "foods": ["Pasta"]}]}`}

	r, err := newTestDrafter(stub).DraftDiet(context.Background(), DietInput{
		Objective: "gain mass", DailyCalories: 3000, Restrictions: []string{"lactose"},
	})
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Contains(t, stub.user, "Objective: gain mass")
	assert.Contains(t, stub.user, "Daily calories: 3000 kcal")
	assert.Contains(t, stub.user, "Restrictions: lactose")
	assert.NotContains(t, stub.user, "Client:")
	assert.Contains(t, stub.system, "JSON")
}

func TestDrafter_TransportErrorIsReturned(t *testing.T) {
	stub := &stubCompleter{err: errors.New("connection refused")}

	_, err := newTestDrafter(stub).DraftWorkout(context.Background(), WorkoutInput{Objective: "x"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestDrafter_RejectedAnswer(t *testing.T) {
	stub := &stubCompleter{answer: "As an AI I would suggest walking."}

	r, err := newTestDrafter(stub).DraftWorkout(context.Background(), WorkoutInput{Objective: "x"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, r.Outcome)
	assert.NotEmpty(t, r.Reason)
}

func TestDrafter_DivisionsPromptNamesLabels(t *testing.T) {
	stub := &stubCompleter{answer: `{"divisions": [{"label": "A", "exercises": [{"name": "Row"}]}]}`}

	r, err := newTestDrafter(stub).DraftDivisions(context.Background(), DivisionsInput{Divisions: 3})
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Contains(t, stub.user, "3 workouts labelled A, B, C")
}

func TestDrafter_SuggestScheduleHonoursUnavailableDays(t *testing.T) {
	stub := &stubCompleter{answer: `{"days": {"mon": "A", "tue": "B", "wed": "A"}}`}

	r, err := newTestDrafter(stub).SuggestSchedule(context.Background(), ScheduleInput{
		Divisions:       []domain.DivisionLabel{domain.DivisionA, domain.DivisionB},
		UnavailableDays: []domain.Weekday{domain.Tuesday},
	})
	require.NoError(t, err)
	require.True(t, r.OK())
	assert.Nil(t, r.Value.Days[domain.Tuesday])
	assert.NotNil(t, r.Value.Days[domain.Monday])
	assert.Contains(t, stub.user, "Unavailable days: tue")
}
