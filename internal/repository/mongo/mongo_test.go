package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"
	mongorepo "alcyxob/ecofit/internal/repository/mongo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping integration test")
	}

	client, err := mongorepo.ConnectDB(uri)
	if err != nil {
		t.Skipf("Failed to connect to test mongo: %v", err)
	}

	ctx := context.Background()
	db := client.Database("ecofit_test_" + uuid.NewString()[:8])
	require.NoError(t, mongorepo.EnsureIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = mongorepo.DisconnectDB(client)
	})
	return mongorepo.NewStore(client, db, mongorepo.Options{})
}

func TestProfiles_UniqueEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	p := &domain.Profile{ID: uuid.New(), Email: "pro@example.com", Role: domain.RoleProfessional, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Profiles.Create(ctx, p))

	dup := *p
	dup.ID = uuid.New()
	assert.ErrorIs(t, store.Profiles.Create(ctx, &dup), repository.ErrConflict)

	got, err := store.Profiles.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Email, got.Email)
}

func TestDiets_EmbeddedMeals(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	client := uuid.New()

	d := domain.NewDiet(uuid.New(), &client, "Cut", time.Now().UTC())
	kcal := 320.0
	d.SetMeals([]domain.DietMeal{{Name: "Breakfast", Foods: []domain.Food{{Name: "Oats", Calories: &kcal}}}})
	require.NoError(t, store.Diets.Create(ctx, d))

	d.SetMeals([]domain.DietMeal{{Name: "Lunch"}, {Name: "Dinner"}})
	require.NoError(t, store.Diets.ReplaceMeals(ctx, d.ID, d.Meals))

	got, err := store.Diets.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, got.Meals, 2)
	assert.Equal(t, "Lunch", got.Meals[0].Name)

	list, err := store.Diets.ListByClient(ctx, client)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSessions_UpsertByDay(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user, workout := uuid.New(), uuid.New()
	d := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

	first := domain.NewWorkoutSession(user, workout, d, 1, time.Now().UTC())
	require.NoError(t, store.Sessions.Upsert(ctx, first))

	second := domain.NewWorkoutSession(user, workout, d, 1, time.Now().UTC())
	second.CompleteAll([]uuid.UUID{uuid.New()}, time.Now().UTC())
	require.NoError(t, store.Sessions.Upsert(ctx, second))

	got, err := store.Sessions.Get(ctx, user, workout, d)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, 60, got.XPEarned)
}
