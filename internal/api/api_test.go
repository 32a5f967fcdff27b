package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/mail"
	"alcyxob/ecofit/internal/repository"
	"alcyxob/ecofit/internal/repository/memory"
	"alcyxob/ecofit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 4 March 2026, 10:00 UTC.
var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	store    *repository.Store
	services Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	cal := service.Calendar{Now: func() time.Time { return testNow }, Location: time.UTC}
	mailer := mail.NewLogMailer(logger)

	auth := service.NewAuthService(store.Profiles, mailer, service.AuthConfig{
		Secret:          "api-test-secret",
		Expiration:      time.Hour,
		ResetExpiration: time.Hour,
		BaseURL:         "https://app.test",
	}, cal, logger)
	plans := service.NewPlanService(store, nil, cal, logger)
	services := Services{
		Auth:         auth,
		Profiles:     service.NewProfileService(store.Profiles, cal),
		Invitations:  service.NewInvitationService(store, auth, mailer, 7*24*time.Hour, "https://app.test", cal, logger),
		Plans:        plans,
		PlanRequests: service.NewPlanRequestService(store, cal, logger),
		Progress:     service.NewProgressService(store, cal, logger),
		Schedules:    service.NewScheduleService(store, cal, logger),
		Media:        service.NewMediaService(nil, plans, time.Minute, cal),
		Drafts:       service.NewDraftService(nil),
	}

	router := gin.New()
	router.Use(RequestLogger(logger))
	SetupRoutes(router, services, logger)
	return &testServer{t: t, router: router, store: store, services: services}
}

// seed stores a profile with password "password123" and returns it with a token.
func (s *testServer) seed(role domain.Role, proType *domain.ProfessionalType) (*domain.Profile, string) {
	s.t.Helper()
	hash, err := service.HashPassword("password123")
	require.NoError(s.t, err)
	id := uuid.New()
	p := &domain.Profile{
		ID:               id,
		Email:            id.String()[:8] + "@example.com",
		Name:             "Test " + string(role),
		Role:             role,
		ProfessionalType: proType,
		PasswordHash:     hash,
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	}
	require.NoError(s.t, s.store.Profiles.Create(context.Background(), p))
	token, err := s.services.Auth.IssueToken(p)
	require.NoError(s.t, err)
	return p, token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, w)["error"]
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", errorMessage(t, w))
}

func TestRoleMiddleware(t *testing.T) {
	s := newTestServer(t)
	_, clientToken := s.seed(domain.RoleClient, nil)
	_, proToken := s.seed(domain.RoleProfessional, nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"client cannot author", http.MethodGet, "/api/v1/professional/diets", clientToken, http.StatusForbidden},
		{"professional is not admin", http.MethodGet, "/api/v1/admin/profiles", proToken, http.StatusForbidden},
		{"professional has no client area", http.MethodGet, "/api/v1/client/workouts", proToken, http.StatusForbidden},
		{"client cannot invite", http.MethodGet, "/api/v1/invitations", clientToken, http.StatusForbidden},
		{"client cannot draft", http.MethodPost, "/api/v1/ai/diet-draft", clientToken, http.StatusForbidden},
		{"professional lists own plans", http.MethodGet, "/api/v1/professional/diets", proToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	p, _ := s.seed(domain.RoleClient, nil)

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: p.Email, Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: p.Email, Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[LoginResponse](t, w)
	assert.Equal(t, p.ID, login.Profile.ID)

	w = s.do(http.MethodGet, "/api/v1/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[ProfileResponse](t, w)
	assert.Equal(t, p.Email, me.Email)
	assert.Equal(t, domain.RoleClient, me.Role)
}

func TestInvitationCheck_IsPublic(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/invitations/unknown-token", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[service.InvitationStatus](t, w)
	assert.False(t, status.Valid)
	assert.Equal(t, "not_found", status.Reason)
}

func TestInviteAndCreateAccount(t *testing.T) {
	s := newTestServer(t)
	_, proToken := s.seed(domain.RoleProfessional, nil)

	w := s.do(http.MethodPost, "/api/v1/invitations", proToken, CreateInvitationRequest{
		Email: "new.client@example.com",
		Role:  domain.RoleClient,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[CreateInvitationResponse](t, w)
	assert.True(t, created.EmailSent)

	accept, err := url.Parse(created.AcceptURL)
	require.NoError(t, err)
	token := accept.Query().Get("token")
	require.NotEmpty(t, token)

	w = s.do(http.MethodPost, "/api/v1/auth/create-account", "", CreateAccountRequest{
		Token: token, Name: "New Client", Password: strings.Repeat("p", service.MaxPasswordLength+1),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "over-long password leaves the invitation unused")

	w = s.do(http.MethodPost, "/api/v1/auth/create-account", "", CreateAccountRequest{
		Token: token, Name: "New Client", Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, domain.RoleClient, decode[LoginResponse](t, w).Profile.Role)

	w = s.do(http.MethodPost, "/api/v1/auth/create-account", "", CreateAccountRequest{
		Token: token, Name: "Again", Password: "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfessionalCannotInviteProfessional(t *testing.T) {
	s := newTestServer(t)
	_, proToken := s.seed(domain.RoleProfessional, nil)

	w := s.do(http.MethodPost, "/api/v1/invitations", proToken, CreateInvitationRequest{
		Email: "colleague@example.com",
		Role:  domain.RoleProfessional,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWorkoutFlow(t *testing.T) {
	s := newTestServer(t)
	client, clientToken := s.seed(domain.RoleClient, nil)
	_, proToken := s.seed(domain.RoleProfessional, nil)

	w := s.do(http.MethodPost, "/api/v1/professional/workouts", proToken, WorkoutRequest{
		PlanHeaderRequest: PlanHeaderRequest{ClientID: &client.ID, Name: "Upper body"},
		Exercises: []ExerciseRequest{
			{Name: "Bench press", Sets: 4, Reps: "8"},
			{Name: "Row", Sets: 4, Reps: "10"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	workout := decode[domain.Workout](t, w)
	assert.Equal(t, domain.PlanStatusDraft, workout.Status)
	require.Len(t, workout.Exercises, 2)

	base := "/api/v1/professional/workouts/" + workout.ID.String()

	w = s.do(http.MethodPost, base+"/submit", proToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.PlanStatusReview, decode[domain.Plan](t, w).Status)

	// Hidden from the client until sent.
	w = s.do(http.MethodGet, "/api/v1/client/workouts/"+workout.ID.String(), clientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, base+"/send", proToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, base+"/send", proToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, base, proToken, WorkoutRequest{
		PlanHeaderRequest: PlanHeaderRequest{ClientID: &client.ID, Name: "Edited"},
		Exercises:         []ExerciseRequest{{Name: "Squat", Sets: 5, Reps: "5"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/v1/client/workouts", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Workout](t, w), 1)

	w = s.do(http.MethodGet, "/api/v1/client/workouts?status=expired", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]domain.Workout](t, w))

	w = s.do(http.MethodGet, "/api/v1/client/workouts?status=archived", clientToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/client/sessions/toggle", clientToken, ToggleExerciseRequest{
		WorkoutID: workout.ID, ExerciseID: workout.Exercises[0].ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	update := decode[service.SessionUpdate](t, w)
	assert.Equal(t, domain.XPPerExercise, update.XPDelta)
	assert.False(t, update.Session.Completed)

	w = s.do(http.MethodPost, "/api/v1/client/sessions/toggle", clientToken, ToggleExerciseRequest{
		WorkoutID: workout.ID, ExerciseID: workout.Exercises[1].ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	update = decode[service.SessionUpdate](t, w)
	assert.True(t, update.Session.Completed)
	assert.Equal(t, domain.XPPerExercise+domain.SessionCompletionBonus, update.XPDelta)

	w = s.do(http.MethodGet, "/api/v1/client/gamification", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[domain.GamificationSummary](t, w)
	assert.Equal(t, 2*domain.XPPerExercise+domain.SessionCompletionBonus, summary.TotalXP)
	assert.Equal(t, 1, summary.CurrentStreak)
}

func TestSend_RejectsMalformedDate(t *testing.T) {
	s := newTestServer(t)
	client, _ := s.seed(domain.RoleClient, nil)
	_, proToken := s.seed(domain.RoleProfessional, nil)

	w := s.do(http.MethodPost, "/api/v1/professional/diets", proToken, DietRequest{
		PlanHeaderRequest: PlanHeaderRequest{ClientID: &client.ID, Name: "Cut"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	diet := decode[DietResponse](t, w)

	bad := "04/03/2026"
	w = s.do(http.MethodPost, "/api/v1/professional/diets/"+diet.ID.String()+"/send", proToken, SendRequest{StartDate: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "start_date must be YYYY-MM-DD")

	tooLong := domain.MaxPlanWeeks + 1
	w = s.do(http.MethodPost, "/api/v1/professional/diets/"+diet.ID.String()+"/send", proToken, SendRequest{DurationWeeks: &tooLong})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiet_TotalCalories(t *testing.T) {
	s := newTestServer(t)
	_, proToken := s.seed(domain.RoleProfessional, nil)
	kcal := func(v float64) *float64 { return &v }

	w := s.do(http.MethodPost, "/api/v1/professional/diets", proToken, DietRequest{
		PlanHeaderRequest: PlanHeaderRequest{Name: "Bulk"},
		Meals: []MealRequest{
			{Name: "Breakfast", Foods: []FoodRequest{{Name: "Oats", Calories: kcal(350)}, {Name: "Milk", Calories: kcal(120)}}},
			{Name: "Lunch", Foods: []FoodRequest{{Name: "Rice"}}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.InDelta(t, 470, decode[DietResponse](t, w).TotalCalories, 0.001)
}

func TestPlanRequests(t *testing.T) {
	s := newTestServer(t)
	_, clientToken := s.seed(domain.RoleClient, nil)

	w := s.do(http.MethodPost, "/api/v1/client/plan-requests", clientToken, CreatePlanRequestRequest{Type: "yoga"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/client/plan-requests", clientToken, CreatePlanRequestRequest{Type: domain.PlanRequestWorkout})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.PlanRequest](t, w)

	w = s.do(http.MethodPost, "/api/v1/client/plan-requests", clientToken, CreatePlanRequestRequest{Type: domain.PlanRequestWorkout})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/client/plan-requests/"+created.ID.String()+"/cancel", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.PlanRequestCancelled, decode[domain.PlanRequest](t, w).Status)
}

func TestClientTarget_AdminAllowedAndRangeChecked(t *testing.T) {
	s := newTestServer(t)
	client, _ := s.seed(domain.RoleClient, nil)
	_, adminToken := s.seed(domain.RoleAdmin, nil)
	path := "/api/v1/professional/clients/" + client.ID.String() + "/target"

	eight := 8
	w := s.do(http.MethodPut, path, adminToken, SetTargetRequest{WeeklyTarget: &eight})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	three := 3
	w = s.do(http.MethodPut, path, adminToken, SetTargetRequest{WeeklyTarget: &three})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[domain.GamificationSummary](t, w)
	require.NotNil(t, summary.WeeklyTarget)
	assert.Equal(t, 3, *summary.WeeklyTarget)
}

func TestClientSchedule_PutAndToday(t *testing.T) {
	s := newTestServer(t)
	client, clientToken := s.seed(domain.RoleClient, nil)
	_, adminToken := s.seed(domain.RoleAdmin, nil)

	label := "a"
	w := s.do(http.MethodPut, "/api/v1/professional/clients/"+client.ID.String()+"/schedule", adminToken,
		map[string]*string{"Wednesday": &label, "sun": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/v1/professional/clients/"+client.ID.String()+"/schedule", adminToken,
		map[string]*string{"someday": &label})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/client/schedule/calendar", clientToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/client/schedule/calendar?from=2026-03-01&to=2026-03-07", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]domain.CalendarDay](t, w), 7)

	w = s.do(http.MethodGet, "/api/v1/client/schedule/calendar?month=2026-04", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	april := decode[[]domain.CalendarDay](t, w)
	require.Len(t, april, 30)
	require.NotNil(t, april[0].Label, "1 April 2026 is a Wednesday")
	assert.Equal(t, domain.DivisionA, *april[0].Label)

	w = s.do(http.MethodGet, "/api/v1/client/schedule/calendar?month=April", clientToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMySessions_RangeIsBounded(t *testing.T) {
	s := newTestServer(t)
	_, clientToken := s.seed(domain.RoleClient, nil)

	w := s.do(http.MethodGet, "/api/v1/client/sessions?from=2026-03-01&to=2026-03-04", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[[]domain.WorkoutSession](t, w))

	w = s.do(http.MethodGet, "/api/v1/client/sessions?from=1900-01-01&to=2026-03-04", clientToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnconfiguredIntegrations(t *testing.T) {
	s := newTestServer(t)
	_, proToken := s.seed(domain.RoleProfessional, nil)

	w := s.do(http.MethodPost, "/api/v1/ai/diet-draft", proToken, DietDraftRequest{Objective: "cut"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodPost, "/api/v1/professional/media/upload-url", proToken, UploadURLRequest{ContentType: "video/mp4"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAIScheduleSuggestion_RejectsUnknownLabels(t *testing.T) {
	s := newTestServer(t)
	_, proToken := s.seed(domain.RoleProfessional, nil)

	w := s.do(http.MethodPost, "/api/v1/ai/schedule-suggestion", proToken, ScheduleSuggestionRequest{
		Divisions: []string{"A", "Z"}, DaysPerWeek: 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidInput, http.StatusBadRequest},
		{service.ErrInvitationInvalid, http.StatusBadRequest},
		{service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{service.ErrForbidden, http.StatusForbidden},
		{repository.ErrNotFound, http.StatusNotFound},
		{domain.ErrPlanLocked, http.StatusConflict},
		{service.ErrDraftRejected, http.StatusBadGateway},
		{service.ErrAIUnavailable, http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
