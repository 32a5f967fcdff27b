package repository

import (
	"context"
	"time"

	"alcyxob/ecofit/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("conflict")
)

// RepositoryError distinguishes storage errors from the rest.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ProfileRepository stores profiles. Emails are unique and stored normalized.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	// List returns profiles ordered by name; an empty role returns every role.
	List(ctx context.Context, role domain.Role) ([]domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
}

// InvitationRepository stores invitations. Tokens are unique.
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	// MarkUsed consumes the invitation only if it is still unused, returning
	// ErrConflict otherwise.
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	ListByInviter(ctx context.Context, inviterID uuid.UUID) ([]domain.Invitation, error)
	// LatestUsedByEmail returns the most recently used invitation for email that
	// carries an inviter.
	LatestUsedByEmail(ctx context.Context, email string) (*domain.Invitation, error)
}

// DietRepository stores diets with their meals. List results are newest first.
type DietRepository interface {
	Create(ctx context.Context, diet *domain.Diet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Diet, error)
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.Diet, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Diet, error)
	// Update writes the header fields only.
	Update(ctx context.Context, diet *domain.Diet) error
	// ReplaceMeals deletes every meal of the diet and inserts meals.
	ReplaceMeals(ctx context.Context, dietID uuid.UUID, meals []domain.DietMeal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// WorkoutRepository stores workouts with their exercises. List results are newest first.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workout, error)
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.Workout, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Workout, error)
	// Update writes the header fields only.
	Update(ctx context.Context, workout *domain.Workout) error
	// ReplaceExercises deletes every exercise of the workout and inserts exercises.
	ReplaceExercises(ctx context.Context, workoutID uuid.UUID, exercises []domain.WorkoutExercise) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlanRequestRepository stores plan requests. List results are newest first.
type PlanRequestRepository interface {
	Create(ctx context.Context, req *domain.PlanRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error)
	Update(ctx context.Context, req *domain.PlanRequest) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.PlanRequest, error)
	// ListOpenForProfessional returns non-terminal requests assigned to
	// professionalID or to nobody.
	ListOpenForProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.PlanRequest, error)
}

// SessionRepository stores workout sessions, unique per (user, workout, date).
type SessionRepository interface {
	Get(ctx context.Context, userID, workoutID uuid.UUID, date time.Time) (*domain.WorkoutSession, error)
	Upsert(ctx context.Context, session *domain.WorkoutSession) error
	// ListByUserBetween returns sessions dated in [from, to], oldest first.
	ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.WorkoutSession, error)
}

// GamificationRepository stores one aggregate per client.
type GamificationRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserGamification, error)
	Upsert(ctx context.Context, g *domain.UserGamification) error
}

// ScheduleRepository stores the seven schedule rows of each client.
type ScheduleRepository interface {
	// GetByClient returns the client's rows, or an empty slice when none exist.
	GetByClient(ctx context.Context, clientID uuid.UUID) ([]domain.ScheduleEntry, error)
	Replace(ctx context.Context, clientID uuid.UUID, entries []domain.ScheduleEntry) error
}

// Transactor runs fn so that every repository call made with the context it
// receives commits or rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Profiles     ProfileRepository
	Invitations  InvitationRepository
	Diets        DietRepository
	Workouts     WorkoutRepository
	PlanRequests PlanRequestRepository
	Sessions     SessionRepository
	Gamification GamificationRepository
	Schedules    ScheduleRepository
	Tx           Transactor

	// Close releases the backend's resources.
	Close func(ctx context.Context) error
}
