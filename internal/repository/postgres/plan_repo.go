package postgres

import (
	"context"

	"alcyxob/ecofit/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Diets and workouts share their header columns.
const planColumns = `id, professional_id, client_id, name, objective, methodology, notes, status,
	submitted_at, sent_at, start_date, end_date, duration_weeks, created_at, updated_at`

type planScan struct {
	plan   domain.Plan
	status string
}

func (s *planScan) targets() []any {
	p := &s.plan
	return []any{&p.ID, &p.ProfessionalID, &p.ClientID, &p.Name, &p.Objective, &p.Methodology, &p.Notes,
		&s.status, &p.SubmittedAt, &p.SentAt, &p.StartDate, &p.EndDate, &p.DurationWeeks, &p.CreatedAt, &p.UpdatedAt}
}

func (s *planScan) result() domain.Plan {
	s.plan.Status = domain.PlanStatus(s.status)
	return s.plan
}

func planArgs(p *domain.Plan) []any {
	return []any{p.ID, p.ProfessionalID, p.ClientID, p.Name, p.Objective, p.Methodology, p.Notes,
		string(p.Status), p.SubmittedAt, p.SentAt, p.StartDate, p.EndDate, p.DurationWeeks, p.CreatedAt, p.UpdatedAt}
}

const planUpdateSet = `
	client_id = $2, name = $3, objective = $4, methodology = $5, notes = $6, status = $7,
	submitted_at = $8, sent_at = $9, start_date = $10, end_date = $11, duration_weeks = $12, updated_at = $13`

func planUpdateArgs(p *domain.Plan) []any {
	return []any{p.ID, p.ClientID, p.Name, p.Objective, p.Methodology, p.Notes, string(p.Status),
		p.SubmittedAt, p.SentAt, p.StartDate, p.EndDate, p.DurationWeeks, p.UpdatedAt}
}

// --- diets ---

type dietRepo struct {
	pool *pgxpool.Pool
}

func (r *dietRepo) Create(ctx context.Context, d *domain.Diet) error {
	return withinTx(ctx, r.pool, func(ctx context.Context, db dbExecutor) error {
		query := `
			INSERT INTO diets (` + planColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`
		if _, err := db.Exec(ctx, query, planArgs(&d.Plan)...); err != nil {
			return mapErr(err)
		}
		return insertMeals(ctx, db, d.ID, d.Meals)
	})
}

func (r *dietRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diet, error) {
	db := executor(ctx, r.pool)
	var s planScan
	query := `SELECT ` + planColumns + ` FROM diets WHERE id = $1`
	if err := db.QueryRow(ctx, query, id).Scan(s.targets()...); err != nil {
		return nil, mapErr(err)
	}
	d := &domain.Diet{Plan: s.result()}
	meals, err := loadMeals(ctx, db, d.ID)
	if err != nil {
		return nil, err
	}
	d.Meals = meals
	return d, nil
}

func (r *dietRepo) list(ctx context.Context, where string, arg any) ([]domain.Diet, error) {
	db := executor(ctx, r.pool)
	query := `SELECT ` + planColumns + ` FROM diets WHERE ` + where + ` ORDER BY created_at DESC`
	rows, err := db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	diets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Diet, error) {
		var s planScan
		err := row.Scan(s.targets()...)
		return domain.Diet{Plan: s.result()}, err
	})
	if err != nil {
		return nil, err
	}

	// Children are loaded after the cursor is closed so this also works on a
	// single transaction connection.
	for i := range diets {
		meals, err := loadMeals(ctx, db, diets[i].ID)
		if err != nil {
			return nil, err
		}
		diets[i].Meals = meals
	}
	return diets, nil
}

func (r *dietRepo) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.Diet, error) {
	return r.list(ctx, "professional_id = $1", professionalID)
}

func (r *dietRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Diet, error) {
	return r.list(ctx, "client_id = $1", clientID)
}

func (r *dietRepo) Update(ctx context.Context, d *domain.Diet) error {
	query := `UPDATE diets SET ` + planUpdateSet + ` WHERE id = $1`
	tag, err := executor(ctx, r.pool).Exec(ctx, query, planUpdateArgs(&d.Plan)...)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(tag)
}

func (r *dietRepo) ReplaceMeals(ctx context.Context, dietID uuid.UUID, meals []domain.DietMeal) error {
	return withinTx(ctx, r.pool, func(ctx context.Context, db dbExecutor) error {
		if _, err := db.Exec(ctx, `DELETE FROM diet_meals WHERE diet_id = $1`, dietID); err != nil {
			return err
		}
		return insertMeals(ctx, db, dietID, meals)
	})
}

func (r *dietRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := executor(ctx, r.pool).Exec(ctx, `DELETE FROM diets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}

func insertMeals(ctx context.Context, db dbExecutor, dietID uuid.UUID, meals []domain.DietMeal) error {
	query := `
		INSERT INTO diet_meals (id, diet_id, position, name, time, foods, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, m := range meals {
		foods := m.Foods
		if foods == nil {
			foods = []domain.Food{}
		}
		if _, err := db.Exec(ctx, query, m.ID, dietID, m.Position, m.Name, m.Time, foods, m.Notes); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func loadMeals(ctx context.Context, db dbExecutor, dietID uuid.UUID) ([]domain.DietMeal, error) {
	query := `
		SELECT id, diet_id, position, name, time, foods, notes
		FROM diet_meals
		WHERE diet_id = $1
		ORDER BY position
	`
	rows, err := db.Query(ctx, query, dietID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DietMeal, error) {
		var m domain.DietMeal
		err := row.Scan(&m.ID, &m.DietID, &m.Position, &m.Name, &m.Time, &m.Foods, &m.Notes)
		if m.Foods == nil {
			m.Foods = []domain.Food{}
		}
		return m, err
	})
}

// --- workouts ---

type workoutRepo struct {
	pool *pgxpool.Pool
}

const workoutColumns = planColumns + `, division, day_of_week`

type workoutScan struct {
	planScan
	division  *string
	dayOfWeek *string
}

func (s *workoutScan) targets() []any {
	return append(s.planScan.targets(), &s.division, &s.dayOfWeek)
}

func (s *workoutScan) result() domain.Workout {
	return domain.Workout{
		Plan:      s.planScan.result(),
		Division:  fromNullableString[domain.DivisionLabel](s.division),
		DayOfWeek: fromNullableString[domain.Weekday](s.dayOfWeek),
	}
}

func workoutArgs(w *domain.Workout) []any {
	return append(planArgs(&w.Plan), nullableString(w.Division), nullableString(w.DayOfWeek))
}

func (r *workoutRepo) Create(ctx context.Context, w *domain.Workout) error {
	return withinTx(ctx, r.pool, func(ctx context.Context, db dbExecutor) error {
		query := `
			INSERT INTO workouts (` + workoutColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`
		if _, err := db.Exec(ctx, query, workoutArgs(w)...); err != nil {
			return mapErr(err)
		}
		return insertExercises(ctx, db, w.ID, w.Exercises)
	})
}

func (r *workoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workout, error) {
	db := executor(ctx, r.pool)
	var s workoutScan
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE id = $1`
	if err := db.QueryRow(ctx, query, id).Scan(s.targets()...); err != nil {
		return nil, mapErr(err)
	}
	w := s.result()
	exercises, err := loadExercises(ctx, db, w.ID)
	if err != nil {
		return nil, err
	}
	w.Exercises = exercises
	return &w, nil
}

func (r *workoutRepo) list(ctx context.Context, where string, arg any) ([]domain.Workout, error) {
	db := executor(ctx, r.pool)
	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE ` + where + ` ORDER BY created_at DESC`
	rows, err := db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	workouts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Workout, error) {
		var s workoutScan
		err := row.Scan(s.targets()...)
		return s.result(), err
	})
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		exercises, err := loadExercises(ctx, db, workouts[i].ID)
		if err != nil {
			return nil, err
		}
		workouts[i].Exercises = exercises
	}
	return workouts, nil
}

func (r *workoutRepo) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.Workout, error) {
	return r.list(ctx, "professional_id = $1", professionalID)
}

func (r *workoutRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Workout, error) {
	return r.list(ctx, "client_id = $1", clientID)
}

func (r *workoutRepo) Update(ctx context.Context, w *domain.Workout) error {
	query := `UPDATE workouts SET ` + planUpdateSet + `, division = $14, day_of_week = $15 WHERE id = $1`
	args := append(planUpdateArgs(&w.Plan), nullableString(w.Division), nullableString(w.DayOfWeek))
	tag, err := executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(tag)
}

func (r *workoutRepo) ReplaceExercises(ctx context.Context, workoutID uuid.UUID, exercises []domain.WorkoutExercise) error {
	return withinTx(ctx, r.pool, func(ctx context.Context, db dbExecutor) error {
		if _, err := db.Exec(ctx, `DELETE FROM workout_exercises WHERE workout_id = $1`, workoutID); err != nil {
			return err
		}
		return insertExercises(ctx, db, workoutID, exercises)
	})
}

func (r *workoutRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := executor(ctx, r.pool).Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}

func insertExercises(ctx context.Context, db dbExecutor, workoutID uuid.UUID, exercises []domain.WorkoutExercise) error {
	query := `
		INSERT INTO workout_exercises (id, workout_id, position, name, sets, reps, rest, notes, alternative, media_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, e := range exercises {
		_, err := db.Exec(ctx, query, e.ID, workoutID, e.Position, e.Name, e.Sets, e.Reps, e.Rest,
			e.Notes, e.Alternative, e.MediaKey)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func loadExercises(ctx context.Context, db dbExecutor, workoutID uuid.UUID) ([]domain.WorkoutExercise, error) {
	query := `
		SELECT id, workout_id, position, name, sets, reps, rest, notes, alternative, media_key
		FROM workout_exercises
		WHERE workout_id = $1
		ORDER BY position
	`
	rows, err := db.Query(ctx, query, workoutID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WorkoutExercise, error) {
		var e domain.WorkoutExercise
		err := row.Scan(&e.ID, &e.WorkoutID, &e.Position, &e.Name, &e.Sets, &e.Reps, &e.Rest,
			&e.Notes, &e.Alternative, &e.MediaKey)
		return e, err
	})
}
