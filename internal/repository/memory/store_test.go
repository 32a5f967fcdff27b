package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	p := &domain.Profile{ID: uuid.New(), Email: "a@example.com", Role: domain.RoleClient}

	boom := errors.New("boom")
	err := store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.Profiles.Create(ctx, p))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Profiles.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return store.Profiles.Create(ctx, p)
	})
	require.NoError(t, err)
	_, err = store.Profiles.GetByID(ctx, p.ID)
	assert.NoError(t, err)
}

func TestProfiles_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Profiles.Create(ctx, &domain.Profile{ID: uuid.New(), Email: "a@example.com"}))
	err := store.Profiles.Create(ctx, &domain.Profile{ID: uuid.New(), Email: "a@example.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestInvitations_MarkUsedOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	inviter := uuid.New()
	now := time.Now()
	inv, err := domain.NewInvitation("c@example.com", domain.RoleClient, nil, &inviter, now, 0)
	require.NoError(t, err)
	require.NoError(t, store.Invitations.Create(ctx, inv))

	require.NoError(t, store.Invitations.MarkUsed(ctx, inv.ID, now))
	assert.ErrorIs(t, store.Invitations.MarkUsed(ctx, inv.ID, now), repository.ErrConflict)

	latest, err := store.Invitations.LatestUsedByEmail(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Equal(t, inviter, *latest.InvitedBy)
}

func TestSessions_UpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user, workout := uuid.New(), uuid.New()
	d := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

	first := domain.NewWorkoutSession(user, workout, d, 3, time.Now())
	require.NoError(t, store.Sessions.Upsert(ctx, first))

	second := domain.NewWorkoutSession(user, workout, d, 3, time.Now())
	second.CompletedCount = 2
	require.NoError(t, store.Sessions.Upsert(ctx, second))

	got, err := store.Sessions.Get(ctx, user, workout, d.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 2, got.CompletedCount)

	list, err := store.Sessions.ListByUserBetween(ctx, user, d.AddDate(0, 0, -1), d)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWorkouts_ReplaceExercisesDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	w := domain.NewWorkout(uuid.New(), nil, "Push", time.Now())
	w.SetExercises([]domain.WorkoutExercise{{Name: "Bench"}})
	require.NoError(t, store.Workouts.Create(ctx, w))

	w.Exercises[0].Name = "mutated"
	got, err := store.Workouts.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bench", got.Exercises[0].Name)

	require.NoError(t, store.Workouts.ReplaceExercises(ctx, w.ID, []domain.WorkoutExercise{{Name: "Dips"}, {Name: "Press"}}))
	got, err = store.Workouts.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, got.Exercises, 2)
}

func TestPlanRequests_ListOpenForProfessional(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	pro, other := uuid.New(), uuid.New()
	now := time.Now()

	mine, _ := domain.NewPlanRequest(uuid.New(), &pro, domain.PlanRequestDiet, "", now)
	unassigned, _ := domain.NewPlanRequest(uuid.New(), nil, domain.PlanRequestWorkout, "", now.Add(time.Minute))
	theirs, _ := domain.NewPlanRequest(uuid.New(), &other, domain.PlanRequestBoth, "", now)
	done, _ := domain.NewPlanRequest(uuid.New(), &pro, domain.PlanRequestDiet, "", now)
	require.NoError(t, done.Cancel(now))

	for _, r := range []*domain.PlanRequest{mine, unassigned, theirs, done} {
		require.NoError(t, store.PlanRequests.Create(ctx, r))
	}

	list, err := store.PlanRequests.ListOpenForProfessional(ctx, pro)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, unassigned.ID, list[0].ID)
	assert.Equal(t, mine.ID, list[1].ID)
}
