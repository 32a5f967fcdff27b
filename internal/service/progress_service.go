package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrWorkoutNotAvailable    = errors.New("workout is not an active plan of this client")
	ErrExerciseNotFound       = errors.New("exercise not found in workout")
	ErrWorkoutEmpty           = errors.New("workout has no exercises")
	ErrSessionAlreadyComplete = errors.New("session is already complete")
	ErrNotScheduledYesterday  = errors.New("workout was not scheduled for yesterday")
	ErrInvalidTarget          = errors.New("weekly target must be between 1 and 7")
)

// SessionUpdate is the session after a mutation together with the client's
// refreshed progress.
type SessionUpdate struct {
	Session      *domain.WorkoutSession     `json:"session"`
	XPDelta      int                        `json:"xp_delta"`
	Gamification domain.GamificationSummary `json:"gamification"`
}

// PendingConfirmation is yesterday's scheduled workout that was not finished.
type PendingConfirmation struct {
	Date    time.Time              `json:"date"`
	Workout *domain.Workout        `json:"workout"`
	Session *domain.WorkoutSession `json:"session,omitempty"`
}

type ProgressService interface {
	ToggleExercise(ctx context.Context, clientID, workoutID, exerciseID uuid.UUID) (*SessionUpdate, error)
	ConfirmYesterday(ctx context.Context, clientID, workoutID uuid.UUID) (*SessionUpdate, error)
	// PendingConfirmation returns nil when nothing awaits confirmation.
	PendingConfirmation(ctx context.Context, clientID uuid.UUID) (*PendingConfirmation, error)
	Summary(ctx context.Context, clientID uuid.UUID) (domain.GamificationSummary, error)
	SetWeeklyTarget(ctx context.Context, caller Principal, clientID uuid.UUID, target *int) (domain.GamificationSummary, error)
	SessionsBetween(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]domain.WorkoutSession, error)
}

type progressService struct {
	store    *repository.Store
	calendar Calendar
	logger   *slog.Logger
}

func NewProgressService(store *repository.Store, calendar Calendar, logger *slog.Logger) ProgressService {
	return &progressService{store: store, calendar: calendar, logger: logger}
}

// clientWorkout loads a workout the client may train on day.
func (s *progressService) clientWorkout(ctx context.Context, clientID, workoutID uuid.UUID, day time.Time) (*domain.Workout, error) {
	w, err := s.store.Workouts.GetByID(ctx, workoutID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	if w.ClientID == nil || *w.ClientID != clientID || !w.IsActive(day) {
		return nil, ErrWorkoutNotAvailable
	}
	return w, nil
}

func (s *progressService) gamification(ctx context.Context, clientID uuid.UUID) (*domain.UserGamification, error) {
	g, err := s.store.Gamification.Get(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewUserGamification(clientID, s.calendar.now()), nil
	}
	return g, err
}

func (s *progressService) session(ctx context.Context, clientID uuid.UUID, w *domain.Workout, day time.Time) (*domain.WorkoutSession, error) {
	sess, err := s.store.Sessions.Get(ctx, clientID, w.ID, day)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewWorkoutSession(clientID, w.ID, day, len(w.Exercises), s.calendar.now()), nil
	}
	return sess, err
}

// apply persists the session and folds its change into the aggregate. Must run
// inside a transaction.
func (s *progressService) apply(ctx context.Context, sess *domain.WorkoutSession, change domain.SessionChange) (*domain.UserGamification, error) {
	now := s.calendar.now()
	if err := s.store.Sessions.Upsert(ctx, sess); err != nil {
		return nil, err
	}

	g, err := s.gamification(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	g.AddXP(change.XPDelta, now)
	switch {
	case change.BecameComplete:
		g.RecordCompletion(sess.Date, now)
	case change.BecameIncomplete:
		g.RevokeCompletion(now)
	}
	if err := s.store.Gamification.Upsert(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *progressService) ToggleExercise(ctx context.Context, clientID, workoutID, exerciseID uuid.UUID) (*SessionUpdate, error) {
	today := s.calendar.Today()

	var update *SessionUpdate
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.clientWorkout(ctx, clientID, workoutID, today)
		if err != nil {
			return err
		}
		if _, ok := w.Exercise(exerciseID); !ok {
			return ErrExerciseNotFound
		}

		sess, err := s.session(ctx, clientID, w, today)
		if err != nil {
			return err
		}
		change := sess.Toggle(exerciseID, len(w.Exercises), s.calendar.now())

		g, err := s.apply(ctx, sess, change)
		if err != nil {
			return err
		}
		update = &SessionUpdate{Session: sess, XPDelta: change.XPDelta}
		update.Gamification, err = s.summary(ctx, g)
		return err
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

func (s *progressService) ConfirmYesterday(ctx context.Context, clientID, workoutID uuid.UUID) (*SessionUpdate, error) {
	yesterday := domain.AddDays(s.calendar.Today(), -1)

	var update *SessionUpdate
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.clientWorkout(ctx, clientID, workoutID, yesterday)
		if err != nil {
			return err
		}
		if len(w.Exercises) == 0 {
			return ErrWorkoutEmpty
		}
		scheduled, err := s.scheduledWorkout(ctx, clientID, yesterday)
		if err != nil {
			return err
		}
		if scheduled == nil || scheduled.ID != w.ID {
			return ErrNotScheduledYesterday
		}

		sess, err := s.session(ctx, clientID, w, yesterday)
		if err != nil {
			return err
		}
		if sess.Completed {
			return ErrSessionAlreadyComplete
		}
		change := sess.CompleteAll(w.ExerciseIDs(), s.calendar.now())

		g, err := s.apply(ctx, sess, change)
		if err != nil {
			return err
		}
		update = &SessionUpdate{Session: sess, XPDelta: change.XPDelta}
		update.Gamification, err = s.summary(ctx, g)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "yesterday confirmed", "workout_id", workoutID, "xp_delta", update.XPDelta)
	return update, nil
}

// scheduledWorkout resolves the one workout the client was due to train on day.
func (s *progressService) scheduledWorkout(ctx context.Context, clientID uuid.UUID, day time.Time) (*domain.Workout, error) {
	workouts, err := activeWorkouts(ctx, s.store.Workouts, clientID, day)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Schedules.GetByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return domain.WorkoutForDate(day, entries, workouts), nil
}

func (s *progressService) PendingConfirmation(ctx context.Context, clientID uuid.UUID) (*PendingConfirmation, error) {
	yesterday := domain.AddDays(s.calendar.Today(), -1)

	w, err := s.scheduledWorkout(ctx, clientID, yesterday)
	if err != nil {
		return nil, err
	}
	if w == nil || len(w.Exercises) == 0 {
		return nil, nil
	}

	sess, err := s.store.Sessions.Get(ctx, clientID, w.ID, yesterday)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		sess = nil
	case err != nil:
		return nil, err
	case sess.Completed:
		return nil, nil
	}
	return &PendingConfirmation{Date: yesterday, Workout: w, Session: sess}, nil
}

// summary counts this week's completed sessions, Monday first.
func (s *progressService) summary(ctx context.Context, g *domain.UserGamification) (domain.GamificationSummary, error) {
	today := s.calendar.Today()
	sessions, err := s.store.Sessions.ListByUserBetween(ctx, g.UserID, domain.StartOfWeek(today), today)
	if err != nil {
		return domain.GamificationSummary{}, err
	}
	done := 0
	for _, sess := range sessions {
		if sess.Completed {
			done++
		}
	}
	return g.Summary(done), nil
}

func (s *progressService) Summary(ctx context.Context, clientID uuid.UUID) (domain.GamificationSummary, error) {
	g, err := s.gamification(ctx, clientID)
	if err != nil {
		return domain.GamificationSummary{}, err
	}
	return s.summary(ctx, g)
}

// SetWeeklyTarget sets or clears (nil) a client's weekly session goal.
func (s *progressService) SetWeeklyTarget(ctx context.Context, caller Principal, clientID uuid.UUID, target *int) (domain.GamificationSummary, error) {
	if target != nil && (*target < 1 || *target > 7) {
		return domain.GamificationSummary{}, ErrInvalidTarget
	}
	if err := authorizeClientAccess(ctx, s.store, caller, clientID); err != nil {
		return domain.GamificationSummary{}, err
	}

	var g *domain.UserGamification
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		g, err = s.gamification(ctx, clientID)
		if err != nil {
			return err
		}
		g.SetWeeklyTarget(target, s.calendar.now())
		return s.store.Gamification.Upsert(ctx, g)
	})
	if err != nil {
		return domain.GamificationSummary{}, err
	}
	return s.summary(ctx, g)
}

func (s *progressService) SessionsBetween(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]domain.WorkoutSession, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)
	if to.Before(from) {
		return nil, invalid("from must not be after to")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > MaxCalendarDays {
		return nil, ErrRangeTooLong
	}
	return s.store.Sessions.ListByUserBetween(ctx, clientID, from, to)
}
