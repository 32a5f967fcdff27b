package mongo

import (
	"time"

	"alcyxob/ecofit/internal/domain"

	"github.com/google/uuid"
)

// uuid.UUID would encode as a binary array, so ids are stored as strings.

func idString(id uuid.UUID) string { return id.String() }

func optIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func parseOptID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

type profileDocument struct {
	ID               string                   `bson:"_id"`
	Email            string                   `bson:"email"`
	Name             string                   `bson:"name"`
	Role             domain.Role              `bson:"role"`
	ProfessionalType *domain.ProfessionalType `bson:"professionalType,omitempty"`
	PasswordHash     string                   `bson:"passwordHash"`
	CreatedAt        time.Time                `bson:"createdAt"`
	UpdatedAt        time.Time                `bson:"updatedAt"`
}

func toProfileDocument(p *domain.Profile) profileDocument {
	return profileDocument{
		ID: idString(p.ID), Email: p.Email, Name: p.Name, Role: p.Role, ProfessionalType: p.ProfessionalType,
		PasswordHash: p.PasswordHash, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (d profileDocument) toDomain() domain.Profile {
	return domain.Profile{
		ID: parseID(d.ID), Email: d.Email, Name: d.Name, Role: d.Role, ProfessionalType: d.ProfessionalType,
		PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type invitationDocument struct {
	ID               string                   `bson:"_id"`
	Email            string                   `bson:"email"`
	Role             domain.Role              `bson:"role"`
	ProfessionalType *domain.ProfessionalType `bson:"professionalType,omitempty"`
	Token            string                   `bson:"token"`
	InvitedBy        *string                  `bson:"invitedBy,omitempty"`
	CreatedAt        time.Time                `bson:"createdAt"`
	ExpiresAt        time.Time                `bson:"expiresAt"`
	UsedAt           *time.Time               `bson:"usedAt"`
}

func toInvitationDocument(i *domain.Invitation) invitationDocument {
	return invitationDocument{
		ID: idString(i.ID), Email: i.Email, Role: i.Role, ProfessionalType: i.ProfessionalType, Token: i.Token,
		InvitedBy: optIDString(i.InvitedBy), CreatedAt: i.CreatedAt, ExpiresAt: i.ExpiresAt, UsedAt: i.UsedAt,
	}
}

func (d invitationDocument) toDomain() domain.Invitation {
	return domain.Invitation{
		ID: parseID(d.ID), Email: d.Email, Role: d.Role, ProfessionalType: d.ProfessionalType, Token: d.Token,
		InvitedBy: parseOptID(d.InvitedBy), CreatedAt: d.CreatedAt.UTC(), ExpiresAt: d.ExpiresAt.UTC(),
		UsedAt: utcPtr(d.UsedAt),
	}
}

// planFields is embedded inline in diet and workout documents.
type planFields struct {
	ID             string            `bson:"_id"`
	ProfessionalID string            `bson:"professionalId"`
	ClientID       *string           `bson:"clientId"`
	Name           string            `bson:"name"`
	Objective      string            `bson:"objective,omitempty"`
	Methodology    string            `bson:"methodology,omitempty"`
	Notes          string            `bson:"notes,omitempty"`
	Status         domain.PlanStatus `bson:"status"`
	SubmittedAt    *time.Time        `bson:"submittedAt,omitempty"`
	SentAt         *time.Time        `bson:"sentAt,omitempty"`
	StartDate      *time.Time        `bson:"startDate,omitempty"`
	EndDate        *time.Time        `bson:"endDate,omitempty"`
	DurationWeeks  *int              `bson:"durationWeeks,omitempty"`
	CreatedAt      time.Time         `bson:"createdAt"`
	UpdatedAt      time.Time         `bson:"updatedAt"`
}

func toPlanFields(p *domain.Plan) planFields {
	return planFields{
		ID: idString(p.ID), ProfessionalID: idString(p.ProfessionalID), ClientID: optIDString(p.ClientID),
		Name: p.Name, Objective: p.Objective, Methodology: p.Methodology, Notes: p.Notes, Status: p.Status,
		SubmittedAt: p.SubmittedAt, SentAt: p.SentAt, StartDate: p.StartDate, EndDate: p.EndDate,
		DurationWeeks: p.DurationWeeks, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (f planFields) toDomain() domain.Plan {
	return domain.Plan{
		ID: parseID(f.ID), ProfessionalID: parseID(f.ProfessionalID), ClientID: parseOptID(f.ClientID),
		Name: f.Name, Objective: f.Objective, Methodology: f.Methodology, Notes: f.Notes, Status: f.Status,
		SubmittedAt: utcPtr(f.SubmittedAt), SentAt: utcPtr(f.SentAt), StartDate: utcPtr(f.StartDate),
		EndDate: utcPtr(f.EndDate), DurationWeeks: f.DurationWeeks,
		CreatedAt: f.CreatedAt.UTC(), UpdatedAt: f.UpdatedAt.UTC(),
	}
}

type mealDocument struct {
	ID       string        `bson:"id"`
	Position int           `bson:"position"`
	Name     string        `bson:"name"`
	Time     string        `bson:"time,omitempty"`
	Foods    []domain.Food `bson:"foods"`
	Notes    string        `bson:"notes,omitempty"`
}

type dietDocument struct {
	planFields `bson:",inline"`
	Meals      []mealDocument `bson:"meals"`
}

func toMealDocuments(meals []domain.DietMeal) []mealDocument {
	docs := make([]mealDocument, len(meals))
	for i, m := range meals {
		foods := m.Foods
		if foods == nil {
			foods = []domain.Food{}
		}
		docs[i] = mealDocument{ID: idString(m.ID), Position: m.Position, Name: m.Name, Time: m.Time, Foods: foods, Notes: m.Notes}
	}
	return docs
}

func toDietDocument(d *domain.Diet) dietDocument {
	return dietDocument{planFields: toPlanFields(&d.Plan), Meals: toMealDocuments(d.Meals)}
}

func (d dietDocument) toDomain() domain.Diet {
	diet := domain.Diet{Plan: d.planFields.toDomain(), Meals: make([]domain.DietMeal, len(d.Meals))}
	for i, m := range d.Meals {
		foods := m.Foods
		if foods == nil {
			foods = []domain.Food{}
		}
		diet.Meals[i] = domain.DietMeal{
			ID: parseID(m.ID), DietID: diet.ID, Position: m.Position, Name: m.Name, Time: m.Time, Foods: foods, Notes: m.Notes,
		}
	}
	return diet
}

type exerciseDocument struct {
	ID          string `bson:"id"`
	Position    int    `bson:"position"`
	Name        string `bson:"name"`
	Sets        int    `bson:"sets"`
	Reps        string `bson:"reps,omitempty"`
	Rest        string `bson:"rest,omitempty"`
	Notes       string `bson:"notes,omitempty"`
	Alternative string `bson:"alternative,omitempty"`
	MediaKey    string `bson:"mediaKey,omitempty"`
}

type workoutDocument struct {
	planFields `bson:",inline"`
	Division   *domain.DivisionLabel `bson:"division,omitempty"`
	DayOfWeek  *domain.Weekday       `bson:"dayOfWeek,omitempty"`
	Exercises  []exerciseDocument    `bson:"exercises"`
}

func toExerciseDocuments(exercises []domain.WorkoutExercise) []exerciseDocument {
	docs := make([]exerciseDocument, len(exercises))
	for i, e := range exercises {
		docs[i] = exerciseDocument{
			ID: idString(e.ID), Position: e.Position, Name: e.Name, Sets: e.Sets, Reps: e.Reps, Rest: e.Rest,
			Notes: e.Notes, Alternative: e.Alternative, MediaKey: e.MediaKey,
		}
	}
	return docs
}

func toWorkoutDocument(w *domain.Workout) workoutDocument {
	return workoutDocument{
		planFields: toPlanFields(&w.Plan), Division: w.Division, DayOfWeek: w.DayOfWeek,
		Exercises: toExerciseDocuments(w.Exercises),
	}
}

func (d workoutDocument) toDomain() domain.Workout {
	w := domain.Workout{
		Plan: d.planFields.toDomain(), Division: d.Division, DayOfWeek: d.DayOfWeek,
		Exercises: make([]domain.WorkoutExercise, len(d.Exercises)),
	}
	for i, e := range d.Exercises {
		w.Exercises[i] = domain.WorkoutExercise{
			ID: parseID(e.ID), WorkoutID: w.ID, Position: e.Position, Name: e.Name, Sets: e.Sets, Reps: e.Reps,
			Rest: e.Rest, Notes: e.Notes, Alternative: e.Alternative, MediaKey: e.MediaKey,
		}
	}
	return w
}

type planRequestDocument struct {
	ID             string                   `bson:"_id"`
	ClientID       string                   `bson:"clientId"`
	ProfessionalID *string                  `bson:"professionalId"`
	Type           domain.PlanRequestType   `bson:"type"`
	Status         domain.PlanRequestStatus `bson:"status"`
	Notes          string                   `bson:"notes,omitempty"`
	CreatedAt      time.Time                `bson:"createdAt"`
	UpdatedAt      time.Time                `bson:"updatedAt"`
	CompletedAt    *time.Time               `bson:"completedAt,omitempty"`
}

func toPlanRequestDocument(r *domain.PlanRequest) planRequestDocument {
	return planRequestDocument{
		ID: idString(r.ID), ClientID: idString(r.ClientID), ProfessionalID: optIDString(r.ProfessionalID),
		Type: r.Type, Status: r.Status, Notes: r.Notes, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		CompletedAt: r.CompletedAt,
	}
}

func (d planRequestDocument) toDomain() domain.PlanRequest {
	return domain.PlanRequest{
		ID: parseID(d.ID), ClientID: parseID(d.ClientID), ProfessionalID: parseOptID(d.ProfessionalID),
		Type: d.Type, Status: d.Status, Notes: d.Notes, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
		CompletedAt: utcPtr(d.CompletedAt),
	}
}

type sessionDocument struct {
	ID                   string     `bson:"_id"`
	UserID               string     `bson:"userId"`
	WorkoutID            string     `bson:"workoutId"`
	Date                 time.Time  `bson:"date"`
	CompletedExerciseIDs []string   `bson:"completedExerciseIds"`
	CompletedCount       int        `bson:"completedCount"`
	TotalCount           int        `bson:"totalCount"`
	Completed            bool       `bson:"completed"`
	XPEarned             int        `bson:"xpEarned"`
	CompletedAt          *time.Time `bson:"completedAt,omitempty"`
	CreatedAt            time.Time  `bson:"createdAt"`
	UpdatedAt            time.Time  `bson:"updatedAt"`
}

func toSessionDocument(s *domain.WorkoutSession) sessionDocument {
	ids := make([]string, len(s.CompletedExerciseIDs))
	for i, id := range s.CompletedExerciseIDs {
		ids[i] = id.String()
	}
	return sessionDocument{
		ID: idString(s.ID), UserID: idString(s.UserID), WorkoutID: idString(s.WorkoutID), Date: domain.DateOf(s.Date),
		CompletedExerciseIDs: ids, CompletedCount: s.CompletedCount, TotalCount: s.TotalCount, Completed: s.Completed,
		XPEarned: s.XPEarned, CompletedAt: s.CompletedAt, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func (d sessionDocument) toDomain() domain.WorkoutSession {
	ids := make([]uuid.UUID, 0, len(d.CompletedExerciseIDs))
	for _, s := range d.CompletedExerciseIDs {
		ids = append(ids, parseID(s))
	}
	return domain.WorkoutSession{
		ID: parseID(d.ID), UserID: parseID(d.UserID), WorkoutID: parseID(d.WorkoutID), Date: domain.DateOf(d.Date.UTC()),
		CompletedExerciseIDs: ids, CompletedCount: d.CompletedCount, TotalCount: d.TotalCount, Completed: d.Completed,
		XPEarned: d.XPEarned, CompletedAt: utcPtr(d.CompletedAt), CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type gamificationDocument struct {
	UserID          string     `bson:"_id"`
	TotalXP         int        `bson:"totalXp"`
	Level           int        `bson:"level"`
	CurrentStreak   int        `bson:"currentStreak"`
	LongestStreak   int        `bson:"longestStreak"`
	TotalSessions   int        `bson:"totalSessions"`
	LastWorkoutDate *time.Time `bson:"lastWorkoutDate,omitempty"`
	WeeklyTarget    *int       `bson:"weeklyTarget,omitempty"`
	UpdatedAt       time.Time  `bson:"updatedAt"`
}

func toGamificationDocument(g *domain.UserGamification) gamificationDocument {
	return gamificationDocument{
		UserID: idString(g.UserID), TotalXP: g.TotalXP, Level: g.Level, CurrentStreak: g.CurrentStreak,
		LongestStreak: g.LongestStreak, TotalSessions: g.TotalSessions, LastWorkoutDate: g.LastWorkoutDate,
		WeeklyTarget: g.WeeklyTarget, UpdatedAt: g.UpdatedAt,
	}
}

func (d gamificationDocument) toDomain() domain.UserGamification {
	return domain.UserGamification{
		UserID: parseID(d.UserID), TotalXP: d.TotalXP, Level: d.Level, CurrentStreak: d.CurrentStreak,
		LongestStreak: d.LongestStreak, TotalSessions: d.TotalSessions, LastWorkoutDate: utcPtr(d.LastWorkoutDate),
		WeeklyTarget: d.WeeklyTarget, UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type scheduleDocument struct {
	ClientID  string                `bson:"clientId"`
	DayOfWeek domain.Weekday        `bson:"dayOfWeek"`
	Label     *domain.DivisionLabel `bson:"label"`
	UpdatedAt time.Time             `bson:"updatedAt"`
}
