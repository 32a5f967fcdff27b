package postgres

import (
	"context"
	"time"

	"alcyxob/ecofit/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// --- sessions ---

type sessionRepo struct {
	pool *pgxpool.Pool
}

const sessionColumns = `id, user_id, workout_id, date, completed_exercise_ids, completed_count, total_count,
	completed, xp_earned, completed_at, created_at, updated_at`

func scanSession(row pgx.Row) (domain.WorkoutSession, error) {
	var s domain.WorkoutSession
	err := row.Scan(&s.ID, &s.UserID, &s.WorkoutID, &s.Date, &s.CompletedExerciseIDs, &s.CompletedCount,
		&s.TotalCount, &s.Completed, &s.XPEarned, &s.CompletedAt, &s.CreatedAt, &s.UpdatedAt)
	if s.CompletedExerciseIDs == nil {
		s.CompletedExerciseIDs = []uuid.UUID{}
	}
	return s, err
}

func (r *sessionRepo) Get(ctx context.Context, userID, workoutID uuid.UUID, date time.Time) (*domain.WorkoutSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM workout_sessions
		WHERE user_id = $1 AND workout_id = $2 AND date = $3
	`
	s, err := scanSession(executor(ctx, r.pool).QueryRow(ctx, query, userID, workoutID, domain.DateOf(date)))
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *sessionRepo) Upsert(ctx context.Context, s *domain.WorkoutSession) error {
	query := `
		INSERT INTO workout_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, workout_id, date) DO UPDATE SET
			completed_exercise_ids = EXCLUDED.completed_exercise_ids,
			completed_count = EXCLUDED.completed_count,
			total_count = EXCLUDED.total_count,
			completed = EXCLUDED.completed,
			xp_earned = EXCLUDED.xp_earned,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
	`
	ids := s.CompletedExerciseIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	_, err := executor(ctx, r.pool).Exec(ctx, query,
		s.ID, s.UserID, s.WorkoutID, domain.DateOf(s.Date), ids, s.CompletedCount, s.TotalCount,
		s.Completed, s.XPEarned, s.CompletedAt, s.CreatedAt, s.UpdatedAt,
	)
	return mapErr(err)
}

func (r *sessionRepo) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.WorkoutSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM workout_sessions
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, created_at
	`
	rows, err := executor(ctx, r.pool).Query(ctx, query, userID, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WorkoutSession, error) {
		return scanSession(row)
	})
}

// --- gamification ---

type gamificationRepo struct {
	pool *pgxpool.Pool
}

func (r *gamificationRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserGamification, error) {
	query := `
		SELECT user_id, total_xp, level, current_streak, longest_streak, total_sessions,
		       last_workout_date, weekly_target, updated_at
		FROM user_gamification
		WHERE user_id = $1
	`
	var g domain.UserGamification
	err := executor(ctx, r.pool).QueryRow(ctx, query, userID).Scan(
		&g.UserID, &g.TotalXP, &g.Level, &g.CurrentStreak, &g.LongestStreak, &g.TotalSessions,
		&g.LastWorkoutDate, &g.WeeklyTarget, &g.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (r *gamificationRepo) Upsert(ctx context.Context, g *domain.UserGamification) error {
	query := `
		INSERT INTO user_gamification (
			user_id, total_xp, level, current_streak, longest_streak, total_sessions,
			last_workout_date, weekly_target, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			total_xp = EXCLUDED.total_xp,
			level = EXCLUDED.level,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			total_sessions = EXCLUDED.total_sessions,
			last_workout_date = EXCLUDED.last_workout_date,
			weekly_target = EXCLUDED.weekly_target,
			updated_at = EXCLUDED.updated_at
	`
	_, err := executor(ctx, r.pool).Exec(ctx, query,
		g.UserID, g.TotalXP, g.Level, g.CurrentStreak, g.LongestStreak, g.TotalSessions,
		g.LastWorkoutDate, g.WeeklyTarget, g.UpdatedAt,
	)
	return mapErr(err)
}

// --- schedules ---

type scheduleRepo struct {
	pool *pgxpool.Pool
}

func (r *scheduleRepo) GetByClient(ctx context.Context, clientID uuid.UUID) ([]domain.ScheduleEntry, error) {
	query := `
		SELECT client_id, day_of_week, label, updated_at
		FROM client_workout_schedules
		WHERE client_id = $1
	`
	rows, err := executor(ctx, r.pool).Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScheduleEntry, error) {
		var (
			e     domain.ScheduleEntry
			day   string
			label *string
		)
		err := row.Scan(&e.ClientID, &day, &label, &e.UpdatedAt)
		e.DayOfWeek = domain.Weekday(day)
		e.Label = fromNullableString[domain.DivisionLabel](label)
		return e, err
	})
}

func (r *scheduleRepo) Replace(ctx context.Context, clientID uuid.UUID, entries []domain.ScheduleEntry) error {
	return withinTx(ctx, r.pool, func(ctx context.Context, db dbExecutor) error {
		query := `
			INSERT INTO client_workout_schedules (client_id, day_of_week, label, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (client_id, day_of_week) DO UPDATE SET
				label = EXCLUDED.label,
				updated_at = EXCLUDED.updated_at
		`
		for _, e := range entries {
			if _, err := db.Exec(ctx, query, clientID, string(e.DayOfWeek), nullableString(e.Label), e.UpdatedAt); err != nil {
				return mapErr(err)
			}
		}
		return nil
	})
}
