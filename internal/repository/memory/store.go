// Package memory is an in-process repository backend used by tests and local
// development. Stored values are copied on the way in and out.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
)

type sessionKey struct {
	userID    uuid.UUID
	workoutID uuid.UUID
	date      time.Time
}

type state struct {
	profiles     map[uuid.UUID]domain.Profile
	invitations  map[uuid.UUID]domain.Invitation
	diets        map[uuid.UUID]domain.Diet
	workouts     map[uuid.UUID]domain.Workout
	planRequests map[uuid.UUID]domain.PlanRequest
	sessions     map[sessionKey]domain.WorkoutSession
	gamification map[uuid.UUID]domain.UserGamification
	schedules    map[uuid.UUID][]domain.ScheduleEntry
}

func newState() *state {
	return &state{
		profiles:     map[uuid.UUID]domain.Profile{},
		invitations:  map[uuid.UUID]domain.Invitation{},
		diets:        map[uuid.UUID]domain.Diet{},
		workouts:     map[uuid.UUID]domain.Workout{},
		planRequests: map[uuid.UUID]domain.PlanRequest{},
		sessions:     map[sessionKey]domain.WorkoutSession{},
		gamification: map[uuid.UUID]domain.UserGamification{},
		schedules:    map[uuid.UUID][]domain.ScheduleEntry{},
	}
}

// clone copies the maps. Values are never mutated in place, so a shallow copy
// of each map is a full snapshot.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.invitations {
		c.invitations[k] = v
	}
	for k, v := range s.diets {
		c.diets[k] = v
	}
	for k, v := range s.workouts {
		c.workouts[k] = v
	}
	for k, v := range s.planRequests {
		c.planRequests[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.gamification {
		c.gamification[k] = v
	}
	for k, v := range s.schedules {
		c.schedules[k] = v
	}
	return c
}

// DB holds every collection behind one lock.
type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *state
}

// NewStore returns a Store backed by a fresh in-memory DB.
func NewStore() *repository.Store {
	db := &DB{data: newState()}
	return &repository.Store{
		Profiles:     &profileRepo{db: db},
		Invitations:  &invitationRepo{db: db},
		Diets:        &dietRepo{db: db},
		Workouts:     &workoutRepo{db: db},
		PlanRequests: &planRequestRepo{db: db},
		Sessions:     &sessionRepo{db: db},
		Gamification: &gamificationRepo{db: db},
		Schedules:    &scheduleRepo{db: db},
		Tx:           db,
		Close:        func(context.Context) error { return nil },
	}
}

type txKey struct{}

// WithinTx serializes transactions and restores the snapshot taken before fn
// when fn fails.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	snapshot := db.data.clone()
	db.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.mu.Lock()
		db.data = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

// --- profiles ---

type profileRepo struct{ db *DB }

func (r *profileRepo) Create(_ context.Context, p *domain.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.profiles[p.ID]; ok {
		return repository.ErrConflict
	}
	for _, existing := range r.db.data.profiles {
		if existing.Email == p.Email {
			return repository.ErrConflict
		}
	}
	r.db.data.profiles[p.ID] = *p
	return nil
}

func (r *profileRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.data.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *profileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.data.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *profileRepo) List(_ context.Context, role domain.Role) ([]domain.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Profile{}
	for _, p := range r.db.data.profiles {
		if role == "" || p.Role == role {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *profileRepo) Update(_ context.Context, p *domain.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.profiles[p.ID]; !ok {
		return repository.ErrNotFound
	}
	r.db.data.profiles[p.ID] = *p
	return nil
}

// --- invitations ---

type invitationRepo struct{ db *DB }

func (r *invitationRepo) Create(_ context.Context, inv *domain.Invitation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.data.invitations {
		if existing.Token == inv.Token {
			return repository.ErrConflict
		}
	}
	r.db.data.invitations[inv.ID] = *inv
	return nil
}

func (r *invitationRepo) GetByToken(_ context.Context, token string) (*domain.Invitation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, inv := range r.db.data.invitations {
		if inv.Token == token {
			return &inv, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *invitationRepo) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	inv, ok := r.db.data.invitations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if inv.UsedAt != nil {
		return repository.ErrConflict
	}
	inv.UsedAt = &usedAt
	r.db.data.invitations[id] = inv
	return nil
}

func (r *invitationRepo) ListByInviter(_ context.Context, inviterID uuid.UUID) ([]domain.Invitation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Invitation{}
	for _, inv := range r.db.data.invitations {
		if inv.InvitedBy != nil && *inv.InvitedBy == inviterID {
			out = append(out, inv)
		}
	}
	newestFirst(out, func(i domain.Invitation) time.Time { return i.CreatedAt })
	return out, nil
}

func (r *invitationRepo) LatestUsedByEmail(_ context.Context, email string) (*domain.Invitation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var latest *domain.Invitation
	for _, inv := range r.db.data.invitations {
		if inv.Email != email || inv.UsedAt == nil || inv.InvitedBy == nil {
			continue
		}
		if latest == nil || inv.UsedAt.After(*latest.UsedAt) {
			v := inv
			latest = &v
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

// --- diets ---

type dietRepo struct{ db *DB }

func cloneDiet(d domain.Diet) domain.Diet {
	meals := make([]domain.DietMeal, len(d.Meals))
	for i, m := range d.Meals {
		m.Foods = append([]domain.Food{}, m.Foods...)
		meals[i] = m
	}
	d.Meals = meals
	return d
}

func (r *dietRepo) Create(_ context.Context, d *domain.Diet) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.diets[d.ID]; ok {
		return repository.ErrConflict
	}
	r.db.data.diets[d.ID] = cloneDiet(*d)
	return nil
}

func (r *dietRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Diet, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	d, ok := r.db.data.diets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d = cloneDiet(d)
	return &d, nil
}

func (r *dietRepo) list(match func(domain.Diet) bool) []domain.Diet {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Diet{}
	for _, d := range r.db.data.diets {
		if match(d) {
			out = append(out, cloneDiet(d))
		}
	}
	newestFirst(out, func(d domain.Diet) time.Time { return d.CreatedAt })
	return out
}

func (r *dietRepo) ListByProfessional(_ context.Context, professionalID uuid.UUID) ([]domain.Diet, error) {
	return r.list(func(d domain.Diet) bool { return d.ProfessionalID == professionalID }), nil
}

func (r *dietRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]domain.Diet, error) {
	return r.list(func(d domain.Diet) bool { return d.ClientID != nil && *d.ClientID == clientID }), nil
}

func (r *dietRepo) Update(_ context.Context, d *domain.Diet) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.data.diets[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Plan = d.Plan
	r.db.data.diets[d.ID] = existing
	return nil
}

func (r *dietRepo) ReplaceMeals(_ context.Context, dietID uuid.UUID, meals []domain.DietMeal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.data.diets[dietID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Meals = meals
	r.db.data.diets[dietID] = cloneDiet(existing)
	return nil
}

func (r *dietRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.diets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.data.diets, id)
	return nil
}

// --- workouts ---

type workoutRepo struct{ db *DB }

func cloneWorkout(w domain.Workout) domain.Workout {
	w.Exercises = append([]domain.WorkoutExercise{}, w.Exercises...)
	return w
}

func (r *workoutRepo) Create(_ context.Context, w *domain.Workout) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.workouts[w.ID]; ok {
		return repository.ErrConflict
	}
	r.db.data.workouts[w.ID] = cloneWorkout(*w)
	return nil
}

func (r *workoutRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Workout, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	w, ok := r.db.data.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	w = cloneWorkout(w)
	return &w, nil
}

func (r *workoutRepo) list(match func(domain.Workout) bool) []domain.Workout {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Workout{}
	for _, w := range r.db.data.workouts {
		if match(w) {
			out = append(out, cloneWorkout(w))
		}
	}
	newestFirst(out, func(w domain.Workout) time.Time { return w.CreatedAt })
	return out
}

func (r *workoutRepo) ListByProfessional(_ context.Context, professionalID uuid.UUID) ([]domain.Workout, error) {
	return r.list(func(w domain.Workout) bool { return w.ProfessionalID == professionalID }), nil
}

func (r *workoutRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]domain.Workout, error) {
	return r.list(func(w domain.Workout) bool { return w.ClientID != nil && *w.ClientID == clientID }), nil
}

func (r *workoutRepo) Update(_ context.Context, w *domain.Workout) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.data.workouts[w.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Plan = w.Plan
	existing.Division = w.Division
	existing.DayOfWeek = w.DayOfWeek
	r.db.data.workouts[w.ID] = existing
	return nil
}

func (r *workoutRepo) ReplaceExercises(_ context.Context, workoutID uuid.UUID, exercises []domain.WorkoutExercise) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.data.workouts[workoutID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Exercises = exercises
	r.db.data.workouts[workoutID] = cloneWorkout(existing)
	return nil
}

func (r *workoutRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.data.workouts, id)
	return nil
}

// --- plan requests ---

type planRequestRepo struct{ db *DB }

func (r *planRequestRepo) Create(_ context.Context, req *domain.PlanRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.planRequests[req.ID]; ok {
		return repository.ErrConflict
	}
	r.db.data.planRequests[req.ID] = *req
	return nil
}

func (r *planRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.PlanRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	req, ok := r.db.data.planRequests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (r *planRequestRepo) Update(_ context.Context, req *domain.PlanRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.planRequests[req.ID]; !ok {
		return repository.ErrNotFound
	}
	r.db.data.planRequests[req.ID] = *req
	return nil
}

func (r *planRequestRepo) list(match func(domain.PlanRequest) bool) []domain.PlanRequest {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.PlanRequest{}
	for _, req := range r.db.data.planRequests {
		if match(req) {
			out = append(out, req)
		}
	}
	newestFirst(out, func(r domain.PlanRequest) time.Time { return r.CreatedAt })
	return out
}

func (r *planRequestRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]domain.PlanRequest, error) {
	return r.list(func(req domain.PlanRequest) bool { return req.ClientID == clientID }), nil
}

func (r *planRequestRepo) ListOpenForProfessional(_ context.Context, professionalID uuid.UUID) ([]domain.PlanRequest, error) {
	return r.list(func(req domain.PlanRequest) bool {
		if !req.IsOpen() {
			return false
		}
		return req.ProfessionalID == nil || *req.ProfessionalID == professionalID
	}), nil
}

// --- sessions ---

type sessionRepo struct{ db *DB }

func (r *sessionRepo) Get(_ context.Context, userID, workoutID uuid.UUID, date time.Time) (*domain.WorkoutSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	s, ok := r.db.data.sessions[sessionKey{userID, workoutID, domain.DateOf(date)}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.CompletedExerciseIDs = append([]uuid.UUID{}, s.CompletedExerciseIDs...)
	return &s, nil
}

func (r *sessionRepo) Upsert(_ context.Context, s *domain.WorkoutSession) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := sessionKey{s.UserID, s.WorkoutID, domain.DateOf(s.Date)}
	v := *s
	v.CompletedExerciseIDs = append([]uuid.UUID{}, s.CompletedExerciseIDs...)
	if existing, ok := r.db.data.sessions[key]; ok {
		v.ID = existing.ID
		v.CreatedAt = existing.CreatedAt
	}
	r.db.data.sessions[key] = v
	return nil
}

func (r *sessionRepo) ListByUserBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]domain.WorkoutSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	from, to = domain.DateOf(from), domain.DateOf(to)
	out := []domain.WorkoutSession{}
	for k, s := range r.db.data.sessions {
		if k.userID != userID || k.date.Before(from) || k.date.After(to) {
			continue
		}
		s.CompletedExerciseIDs = append([]uuid.UUID{}, s.CompletedExerciseIDs...)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// --- gamification ---

type gamificationRepo struct{ db *DB }

func (r *gamificationRepo) Get(_ context.Context, userID uuid.UUID) (*domain.UserGamification, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	g, ok := r.db.data.gamification[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r *gamificationRepo) Upsert(_ context.Context, g *domain.UserGamification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.data.gamification[g.UserID] = *g
	return nil
}

// --- schedules ---

type scheduleRepo struct{ db *DB }

func (r *scheduleRepo) GetByClient(_ context.Context, clientID uuid.UUID) ([]domain.ScheduleEntry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return append([]domain.ScheduleEntry{}, r.db.data.schedules[clientID]...), nil
}

func (r *scheduleRepo) Replace(_ context.Context, clientID uuid.UUID, entries []domain.ScheduleEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.data.schedules[clientID] = append([]domain.ScheduleEntry{}, entries...)
	return nil
}
