package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"
	"alcyxob/ecofit/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrPlanNotFound        = errors.New("plan not found")
	ErrPlanRequestNotFound = errors.New("plan request not found")
	ErrInvalidPlanKind     = errors.New("invalid plan kind")
)

// PlanInput holds the header fields shared by diets and workouts.
type PlanInput struct {
	ClientID    *uuid.UUID
	Name        string
	Objective   string
	Methodology string
	Notes       string
}

type DietPlanInput struct {
	PlanInput
	Meals []domain.DietMeal
}

type WorkoutPlanInput struct {
	PlanInput
	Division  *domain.DivisionLabel
	DayOfWeek *domain.Weekday
	Exercises []domain.WorkoutExercise
}

// SendInput are the professional's parameters for delivering a plan.
type SendInput struct {
	StartDate     *time.Time
	DurationWeeks *int
	EndDate       *time.Time
	PlanRequestID *uuid.UUID
}

// SendResult is the sent plan header and the request it resolved, if any.
type SendResult struct {
	Plan    domain.Plan         `json:"plan"`
	Request *domain.PlanRequest `json:"plan_request,omitempty"`
}

type PlanService interface {
	CreateDiet(ctx context.Context, author Principal, input DietPlanInput) (*domain.Diet, error)
	GetDiet(ctx context.Context, caller Principal, id uuid.UUID) (*domain.Diet, error)
	ListDiets(ctx context.Context, author Principal) ([]domain.Diet, error)
	UpdateDiet(ctx context.Context, author Principal, id uuid.UUID, input DietPlanInput) (*domain.Diet, error)
	DeleteDiet(ctx context.Context, author Principal, id uuid.UUID) error

	CreateWorkout(ctx context.Context, author Principal, input WorkoutPlanInput) (*domain.Workout, error)
	GetWorkout(ctx context.Context, caller Principal, id uuid.UUID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, author Principal) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, author Principal, id uuid.UUID, input WorkoutPlanInput) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, author Principal, id uuid.UUID) error

	Submit(ctx context.Context, author Principal, kind domain.PlanKind, id uuid.UUID) (*domain.Plan, error)
	BackToDraft(ctx context.Context, author Principal, kind domain.PlanKind, id uuid.UUID) (*domain.Plan, error)
	// Send delivers the plan and resolves the matching plan request in the same
	// transaction.
	Send(ctx context.Context, author Principal, kind domain.PlanKind, id uuid.UUID, input SendInput) (*SendResult, error)

	// ClientDiets and ClientWorkouts return the client's active plans, newest
	// first, or the sent plans whose window has closed when expired is set.
	ClientDiets(ctx context.Context, clientID uuid.UUID, expired bool) ([]domain.Diet, error)
	ClientWorkouts(ctx context.Context, clientID uuid.UUID, expired bool) ([]domain.Workout, error)
}

type planService struct {
	store    *repository.Store
	files    storage.FileStorage
	calendar Calendar
	logger   *slog.Logger
}

// NewPlanService wires the plan operations. files may be nil when media storage
// is not configured.
func NewPlanService(store *repository.Store, files storage.FileStorage, calendar Calendar, logger *slog.Logger) PlanService {
	return &planService{store: store, files: files, calendar: calendar, logger: logger}
}

// --- validation ---

func (s *planService) checkAuthor(ctx context.Context, author Principal, kind domain.PlanKind) error {
	p, err := s.store.Profiles.GetByID(ctx, author.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if !p.CanAuthor(kind) {
		return ErrForbidden
	}
	return nil
}

func (s *planService) checkHeader(ctx context.Context, in *PlanInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.ErrPlanNameRequired
	}
	if in.ClientID != nil {
		if _, err := requireClient(ctx, s.store.Profiles, *in.ClientID); err != nil {
			return err
		}
	}
	return nil
}

func checkMeals(meals []domain.DietMeal) error {
	for i, m := range meals {
		if strings.TrimSpace(m.Name) == "" {
			return invalid("meal %d needs a name", i+1)
		}
		for j, f := range m.Foods {
			if strings.TrimSpace(f.Name) == "" {
				return invalid("food %d of meal %d needs a name", j+1, i+1)
			}
		}
	}
	return nil
}

func checkExercises(author uuid.UUID, exercises []domain.WorkoutExercise) error {
	for i, e := range exercises {
		if strings.TrimSpace(e.Name) == "" {
			return invalid("exercise %d needs a name", i+1)
		}
		if e.Sets < 0 {
			return invalid("exercise %d has negative sets", i+1)
		}
		if e.MediaKey != "" && !storage.OwnsMediaKey(author, e.MediaKey) {
			return invalid("exercise %d references unknown media", i+1)
		}
	}
	return nil
}

func checkSchedulingHints(division *domain.DivisionLabel, day *domain.Weekday) error {
	if division != nil && !division.Valid() {
		return invalid("division must be A, B or C")
	}
	if day != nil && !day.Valid() {
		return invalid("day_of_week must be mon..sun")
	}
	return nil
}

func applyHeader(p *domain.Plan, in PlanInput, now time.Time) {
	p.ClientID = in.ClientID
	p.Name = in.Name
	p.Objective = in.Objective
	p.Methodology = in.Methodology
	p.Notes = in.Notes
	p.UpdatedAt = now
}

func owned(author Principal, p *domain.Plan) error {
	if p.ProfessionalID != author.ID {
		return ErrForbidden
	}
	return nil
}

// canView lets the author, admins and the assigned client (once sent) read a plan.
func canView(caller Principal, p *domain.Plan) bool {
	switch {
	case caller.IsAdmin():
		return true
	case p.ProfessionalID == caller.ID:
		return true
	case p.ClientID != nil && *p.ClientID == caller.ID:
		return p.Status == domain.PlanStatusSent
	}
	return false
}

// --- diets ---

func (s *planService) CreateDiet(ctx context.Context, author Principal, input DietPlanInput) (*domain.Diet, error) {
	if err := s.checkAuthor(ctx, author, domain.PlanKindDiet); err != nil {
		return nil, err
	}
	if err := s.checkHeader(ctx, &input.PlanInput); err != nil {
		return nil, err
	}
	if err := checkMeals(input.Meals); err != nil {
		return nil, err
	}

	now := s.calendar.now()
	diet := domain.NewDiet(author.ID, input.ClientID, input.Name, now)
	applyHeader(&diet.Plan, input.PlanInput, now)
	diet.SetMeals(input.Meals)

	if err := s.store.Diets.Create(ctx, diet); err != nil {
		return nil, err
	}
	return diet, nil
}

func (s *planService) getDiet(ctx context.Context, id uuid.UUID) (*domain.Diet, error) {
	d, err := s.store.Diets.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	return d, err
}

func (s *planService) GetDiet(ctx context.Context, caller Principal, id uuid.UUID) (*domain.Diet, error) {
	d, err := s.getDiet(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, &d.Plan) {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *planService) ListDiets(ctx context.Context, author Principal) ([]domain.Diet, error) {
	return s.store.Diets.ListByProfessional(ctx, author.ID)
}

func (s *planService) UpdateDiet(ctx context.Context, author Principal, id uuid.UUID, input DietPlanInput) (*domain.Diet, error) {
	if err := s.checkHeader(ctx, &input.PlanInput); err != nil {
		return nil, err
	}
	if err := checkMeals(input.Meals); err != nil {
		return nil, err
	}

	var diet *domain.Diet
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		d, err := s.getDiet(ctx, id)
		if err != nil {
			return err
		}
		if err := owned(author, &d.Plan); err != nil {
			return err
		}
		if !d.Editable() {
			return domain.ErrPlanLocked
		}

		applyHeader(&d.Plan, input.PlanInput, s.calendar.now())
		d.SetMeals(input.Meals)
		if err := s.store.Diets.Update(ctx, d); err != nil {
			return err
		}
		if err := s.store.Diets.ReplaceMeals(ctx, d.ID, d.Meals); err != nil {
			return err
		}
		diet = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return diet, nil
}

func (s *planService) DeleteDiet(ctx context.Context, author Principal, id uuid.UUID) error {
	d, err := s.getDiet(ctx, id)
	if err != nil {
		return err
	}
	if err := owned(author, &d.Plan); err != nil {
		return err
	}
	return s.store.Diets.Delete(ctx, id)
}

// --- workouts ---

func (s *planService) CreateWorkout(ctx context.Context, author Principal, input WorkoutPlanInput) (*domain.Workout, error) {
	if err := s.checkAuthor(ctx, author, domain.PlanKindWorkout); err != nil {
		return nil, err
	}
	if err := s.checkHeader(ctx, &input.PlanInput); err != nil {
		return nil, err
	}
	if err := checkSchedulingHints(input.Division, input.DayOfWeek); err != nil {
		return nil, err
	}
	if err := checkExercises(author.ID, input.Exercises); err != nil {
		return nil, err
	}

	now := s.calendar.now()
	workout := domain.NewWorkout(author.ID, input.ClientID, input.Name, now)
	applyHeader(&workout.Plan, input.PlanInput, now)
	workout.Division = input.Division
	workout.DayOfWeek = input.DayOfWeek
	workout.SetExercises(input.Exercises)

	if err := s.store.Workouts.Create(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *planService) getWorkout(ctx context.Context, id uuid.UUID) (*domain.Workout, error) {
	w, err := s.store.Workouts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	return w, err
}

func (s *planService) GetWorkout(ctx context.Context, caller Principal, id uuid.UUID) (*domain.Workout, error) {
	w, err := s.getWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, &w.Plan) {
		return nil, ErrForbidden
	}
	return w, nil
}

func (s *planService) ListWorkouts(ctx context.Context, author Principal) ([]domain.Workout, error) {
	return s.store.Workouts.ListByProfessional(ctx, author.ID)
}

func (s *planService) UpdateWorkout(ctx context.Context, author Principal, id uuid.UUID, input WorkoutPlanInput) (*domain.Workout, error) {
	if err := s.checkHeader(ctx, &input.PlanInput); err != nil {
		return nil, err
	}
	if err := checkSchedulingHints(input.Division, input.DayOfWeek); err != nil {
		return nil, err
	}
	if err := checkExercises(author.ID, input.Exercises); err != nil {
		return nil, err
	}

	var workout *domain.Workout
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		w, err := s.getWorkout(ctx, id)
		if err != nil {
			return err
		}
		if err := owned(author, &w.Plan); err != nil {
			return err
		}
		if !w.Editable() {
			return domain.ErrPlanLocked
		}

		applyHeader(&w.Plan, input.PlanInput, s.calendar.now())
		w.Division = input.Division
		w.DayOfWeek = input.DayOfWeek
		w.SetExercises(input.Exercises)
		if err := s.store.Workouts.Update(ctx, w); err != nil {
			return err
		}
		if err := s.store.Workouts.ReplaceExercises(ctx, w.ID, w.Exercises); err != nil {
			return err
		}
		workout = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

// DeleteWorkout removes the workout, then deletes media objects no other workout
// of the author still references. Media cleanup failures are only logged.
func (s *planService) DeleteWorkout(ctx context.Context, author Principal, id uuid.UUID) error {
	w, err := s.getWorkout(ctx, id)
	if err != nil {
		return err
	}
	if err := owned(author, &w.Plan); err != nil {
		return err
	}
	if err := s.store.Workouts.Delete(ctx, id); err != nil {
		return err
	}

	keys := w.MediaKeys()
	if s.files == nil || len(keys) == 0 {
		return nil
	}
	remaining, err := s.store.Workouts.ListByProfessional(ctx, author.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "media cleanup skipped", "workout_id", id, "error", err)
		return nil
	}
	inUse := map[string]bool{}
	for _, other := range remaining {
		for _, k := range other.MediaKeys() {
			inUse[k] = true
		}
	}
	for _, key := range keys {
		if inUse[key] {
			continue
		}
		if err := s.files.DeleteObject(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "media object not deleted", "key", key, "error", err)
		}
	}
	return nil
}

// --- lifecycle ---

// planRecord is a loaded plan of either kind with a way to persist its header.
type planRecord struct {
	plan *domain.Plan
	save func(ctx context.Context) error
}

func (s *planService) load(ctx context.Context, kind domain.PlanKind, id uuid.UUID) (planRecord, error) {
	switch kind {
	case domain.PlanKindDiet:
		d, err := s.getDiet(ctx, id)
		if err != nil {
			return planRecord{}, err
		}
		return planRecord{plan: &d.Plan, save: func(ctx context.Context) error { return s.store.Diets.Update(ctx, d) }}, nil
	case domain.PlanKindWorkout:
		w, err := s.getWorkout(ctx, id)
		if err != nil {
			return planRecord{}, err
		}
		return planRecord{plan: &w.Plan, save: func(ctx context.Context) error { return s.store.Workouts.Update(ctx, w) }}, nil
	}
	return planRecord{}, ErrInvalidPlanKind
}

func (s *planService) transition(ctx context.Context, author Principal, kind domain.PlanKind, id uuid.UUID, apply func(p *domain.Plan) error) (*domain.Plan, error) {
	rec, err := s.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := owned(author, rec.plan); err != nil {
		return nil, err
	}
	if err := apply(rec.plan); err != nil {
		return nil, err
	}
	if err := rec.save(ctx); err != nil {
		return nil, err
	}
	return rec.plan, nil
}

func (s *planService) Submit(ctx context.Context, author Principal, kind domain.PlanKind, id uuid.UUID) (*domain.Plan, error) {
	return s.transition(ctx, author, kind, id, func(p *domain.Plan) error {
		return p.SubmitForReview(s.calendar.now())
	})
}

func (s *planService) BackToDraft(ctx context.Context, author Principal, kind domain.PlanKind, id uuid.UUID) (*domain.Plan, error) {
	return s.transition(ctx, author, kind, id, func(p *domain.Plan) error {
		return p.SendBackToDraft(s.calendar.now())
	})
}

func (s *planService) Send(ctx context.Context, author Principal, kind domain.PlanKind, id uuid.UUID, input SendInput) (*SendResult, error) {
	now := s.calendar.now()
	today := s.calendar.Today()

	var result *SendResult
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		plan, err := s.transition(ctx, author, kind, id, func(p *domain.Plan) error {
			return p.Send(now, today, domain.SendOptions{
				StartDate:     input.StartDate,
				DurationWeeks: input.DurationWeeks,
				EndDate:       input.EndDate,
			})
		})
		if err != nil {
			return err
		}

		req, err := s.resolveRequest(ctx, plan, kind, input.PlanRequestID, author.ID, now, today)
		if err != nil {
			return err
		}
		result = &SendResult{Plan: *plan, Request: req}
		return nil
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{"plan_id", id, "kind", kind, "client_id", result.Plan.ClientID}
	if result.Request != nil {
		attrs = append(attrs, "plan_request_id", result.Request.ID, "request_status", result.Request.Status)
	}
	s.logger.InfoContext(ctx, "plan sent", attrs...)
	return result, nil
}

// resolveRequest finds the request a send answers: the explicit one, else the
// client's open request covering kind. It returns nil when there is none.
func (s *planService) resolveRequest(ctx context.Context, plan *domain.Plan, kind domain.PlanKind, explicit *uuid.UUID, author uuid.UUID, now, today time.Time) (*domain.PlanRequest, error) {
	clientID := *plan.ClientID

	var req *domain.PlanRequest
	if explicit != nil {
		r, err := s.store.PlanRequests.GetByID(ctx, *explicit)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanRequestNotFound
		}
		if err != nil {
			return nil, err
		}
		if r.ClientID != clientID {
			return nil, invalid("plan request belongs to another client")
		}
		req = r
	} else {
		requests, err := s.store.PlanRequests.ListByClient(ctx, clientID)
		if err != nil {
			return nil, err
		}
		for i := range requests {
			if requests[i].IsOpen() && requests[i].Type.Covers(kind) {
				req = &requests[i]
				break
			}
		}
		if req == nil {
			return nil, nil
		}
	}

	kinds, err := activeKinds(ctx, s.store, clientID, today)
	if err != nil {
		return nil, err
	}
	if err := req.Fulfil(kind, kinds, author, now); err != nil {
		return nil, err
	}
	if err := s.store.PlanRequests.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *planService) ClientDiets(ctx context.Context, clientID uuid.UUID, expired bool) ([]domain.Diet, error) {
	today := s.calendar.Today()
	if !expired {
		return activeDiets(ctx, s.store.Diets, clientID, today)
	}
	all, err := s.store.Diets.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := []domain.Diet{}
	for _, d := range all {
		if d.IsExpired(today) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *planService) ClientWorkouts(ctx context.Context, clientID uuid.UUID, expired bool) ([]domain.Workout, error) {
	today := s.calendar.Today()
	if !expired {
		return activeWorkouts(ctx, s.store.Workouts, clientID, today)
	}
	all, err := s.store.Workouts.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := []domain.Workout{}
	for _, w := range all {
		if w.IsExpired(today) {
			out = append(out, w)
		}
	}
	return out, nil
}
