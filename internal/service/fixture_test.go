package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/mail"
	"alcyxob/ecofit/internal/repository"
	"alcyxob/ecofit/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Wednesday 4 March 2026, 10:00 UTC.
var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mail.Message{}
	}
	return m.sent[len(m.sent)-1]
}

type fakeFiles struct {
	mu      sync.Mutex
	deleted []string
	failOn  string
}

func (f *fakeFiles) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://files.test/put/" + key + "?ct=" + contentType, nil
}

func (f *fakeFiles) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/get/" + key, nil
}

func (f *fakeFiles) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failOn {
		return errors.New("boom")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *repository.Store
	clock  *testClock
	cal    Calendar
	mailer *recordingMailer
	files  *fakeFiles
	logger *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{now: testNow}
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  memory.NewStore(),
		clock:  clock,
		cal:    Calendar{Now: clock.Now, Location: time.UTC},
		mailer: &recordingMailer{},
		files:  &fakeFiles{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (f *fixture) auth() AuthService {
	return NewAuthService(f.store.Profiles, f.mailer, AuthConfig{
		Secret:          "test-secret",
		Expiration:      time.Hour,
		ResetExpiration: 30 * time.Minute,
		BaseURL:         "https://app.test",
	}, f.cal, f.logger)
}

func (f *fixture) plans() PlanService {
	return NewPlanService(f.store, f.files, f.cal, f.logger)
}

func (f *fixture) requests() PlanRequestService {
	return NewPlanRequestService(f.store, f.cal, f.logger)
}

func (f *fixture) progress() ProgressService {
	return NewProgressService(f.store, f.cal, f.logger)
}

func (f *fixture) schedules() ScheduleService {
	return NewScheduleService(f.store, f.cal, f.logger)
}

// profile stores a profile with password "password123". The clock moves one
// second so creation order is observable.
func (f *fixture) profile(role domain.Role, proType *domain.ProfessionalType) *domain.Profile {
	f.t.Helper()
	hash, err := HashPassword("password123")
	require.NoError(f.t, err)
	id := uuid.New()
	p := &domain.Profile{
		ID:               id,
		Email:            id.String()[:8] + "@example.com",
		Name:             string(role) + " " + id.String()[:4],
		Role:             role,
		ProfessionalType: proType,
		PasswordHash:     hash,
		CreatedAt:        f.clock.Now(),
		UpdatedAt:        f.clock.Now(),
	}
	require.NoError(f.t, f.store.Profiles.Create(f.ctx, p))
	f.clock.Advance(time.Second)
	return p
}

func (f *fixture) professional() (*domain.Profile, Principal) {
	p := f.profile(domain.RoleProfessional, nil)
	return p, Principal{ID: p.ID, Role: p.Role}
}

func (f *fixture) client() *domain.Profile {
	return f.profile(domain.RoleClient, nil)
}

// sentWorkout creates and sends a workout with n exercises for client.
func (f *fixture) sentWorkout(pro Principal, client uuid.UUID, n int, division *domain.DivisionLabel, day *domain.Weekday) *domain.Workout {
	f.t.Helper()
	exercises := make([]domain.WorkoutExercise, n)
	for i := range exercises {
		exercises[i] = domain.WorkoutExercise{Name: "Exercise " + string(rune('A'+i)), Sets: 3, Reps: "10"}
	}
	w, err := f.plans().CreateWorkout(f.ctx, pro, WorkoutPlanInput{
		PlanInput: PlanInput{ClientID: &client, Name: "Workout"},
		Division:  division,
		DayOfWeek: day,
		Exercises: exercises,
	})
	require.NoError(f.t, err)
	_, err = f.plans().Send(f.ctx, pro, domain.PlanKindWorkout, w.ID, SendInput{})
	require.NoError(f.t, err)
	f.clock.Advance(time.Second)

	got, err := f.store.Workouts.GetByID(f.ctx, w.ID)
	require.NoError(f.t, err)
	return got
}

func (f *fixture) sentDiet(pro Principal, client uuid.UUID, weeks *int) *domain.Diet {
	f.t.Helper()
	d, err := f.plans().CreateDiet(f.ctx, pro, DietPlanInput{
		PlanInput: PlanInput{ClientID: &client, Name: "Diet"},
		Meals:     []domain.DietMeal{{Name: "Breakfast", Foods: []domain.Food{{Name: "Oats"}}}},
	})
	require.NoError(f.t, err)
	_, err = f.plans().Send(f.ctx, pro, domain.PlanKindDiet, d.ID, SendInput{DurationWeeks: weeks})
	require.NoError(f.t, err)
	f.clock.Advance(time.Second)

	got, err := f.store.Diets.GetByID(f.ctx, d.ID)
	require.NoError(f.t, err)
	return got
}

func ptr[T any](v T) *T { return &v }
