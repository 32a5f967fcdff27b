package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"
	"alcyxob/ecofit/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dbURL, 4)
	if err != nil {
		t.Skipf("Failed to connect to test database: %v", err)
	}
	_, err = postgres.Migrate(dbURL)
	require.NoError(t, err)

	for _, table := range []string{
		"workout_sessions", "user_gamification", "client_workout_schedules", "plan_requests",
		"workout_exercises", "workouts", "diet_meals", "diets", "invitations", "profiles",
	} {
		_, _ = pool.Exec(ctx, "DELETE FROM "+table)
	}

	store := postgres.NewStore(pool)
	t.Cleanup(func() { _ = store.Close(ctx) })
	return store
}

func createProfile(t *testing.T, store *repository.Store, role domain.Role) *domain.Profile {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &domain.Profile{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		Name:         string(role),
		Role:         role,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.Profiles.Create(context.Background(), p))
	return p
}

func TestProfiles_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	p := createProfile(t, store, domain.RoleProfessional)
	got, err := store.Profiles.GetByEmail(ctx, p.Email)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Nil(t, got.ProfessionalType)

	dup := *p
	dup.ID = uuid.New()
	assert.ErrorIs(t, store.Profiles.Create(ctx, &dup), repository.ErrConflict)

	_, err = store.Profiles.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWorkouts_ReplaceExercisesInTx(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	pro := createProfile(t, store, domain.RoleProfessional)
	client := createProfile(t, store, domain.RoleClient)

	w := domain.NewWorkout(pro.ID, &client.ID, "Legs", time.Now().UTC())
	l := domain.DivisionB
	w.Division = &l
	w.SetExercises([]domain.WorkoutExercise{{Name: "Squat", Sets: 5}, {Name: "Lunge", Sets: 3}})
	require.NoError(t, store.Workouts.Create(ctx, w))

	boom := errors.New("boom")
	err := store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		w.SetExercises([]domain.WorkoutExercise{{Name: "Leg press"}})
		require.NoError(t, store.Workouts.ReplaceExercises(ctx, w.ID, w.Exercises))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Workouts.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Exercises, 2)
	assert.Equal(t, "Squat", got.Exercises[0].Name)
	assert.Equal(t, domain.DivisionB, *got.Division)

	list, err := store.Workouts.ListByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSessions_UpsertIsUniquePerDay(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	pro := createProfile(t, store, domain.RoleProfessional)
	client := createProfile(t, store, domain.RoleClient)
	w := domain.NewWorkout(pro.ID, &client.ID, "Push", time.Now().UTC())
	require.NoError(t, store.Workouts.Create(ctx, w))

	d := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	s := domain.NewWorkoutSession(client.ID, w.ID, d, 2, time.Now().UTC())
	require.NoError(t, store.Sessions.Upsert(ctx, s))

	ex := uuid.New()
	s2 := domain.NewWorkoutSession(client.ID, w.ID, d, 2, time.Now().UTC())
	s2.Toggle(ex, 2, time.Now().UTC())
	require.NoError(t, store.Sessions.Upsert(ctx, s2))

	got, err := store.Sessions.Get(ctx, client.ID, w.ID, d)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, []uuid.UUID{ex}, got.CompletedExerciseIDs)
	assert.Equal(t, 10, got.XPEarned)
}

func TestSchedules_Replace(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := createProfile(t, store, domain.RoleClient)

	week := domain.NewWeekSchedule()
	a := domain.DivisionA
	week[domain.Monday] = &a
	require.NoError(t, store.Schedules.Replace(ctx, client.ID, week.Entries(client.ID, time.Now().UTC())))

	entries, err := store.Schedules.GetByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 7)
	resolved := domain.ResolveWeek(entries, nil)
	assert.Equal(t, domain.DivisionA, *resolved.Days[domain.Monday])
}
