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

// MaxCalendarDays bounds a calendar projection and a session history query.
const MaxCalendarDays = 62

var ErrRangeTooLong = errors.New("date range is limited to 62 days")

// TodayWorkout answers "what do I train today". Workout is nil on rest days.
type TodayWorkout struct {
	Date      time.Time              `json:"date"`
	DayOfWeek domain.Weekday         `json:"day_of_week"`
	Label     *domain.DivisionLabel  `json:"label"`
	Rest      bool                   `json:"rest"`
	Workout   *domain.Workout        `json:"workout"`
	Session   *domain.WorkoutSession `json:"session,omitempty"`
}

type ScheduleService interface {
	Put(ctx context.Context, caller Principal, clientID uuid.UUID, week domain.WeekSchedule) (domain.ResolvedSchedule, error)
	Week(ctx context.Context, clientID uuid.UUID) (domain.ResolvedSchedule, error)
	Today(ctx context.Context, clientID uuid.UUID) (*TodayWorkout, error)
	Calendar(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]domain.CalendarDay, error)
	Month(ctx context.Context, clientID uuid.UUID, year int, month time.Month) ([]domain.CalendarDay, error)
}

type scheduleService struct {
	store    *repository.Store
	calendar Calendar
	logger   *slog.Logger
}

func NewScheduleService(store *repository.Store, calendar Calendar, logger *slog.Logger) ScheduleService {
	return &scheduleService{store: store, calendar: calendar, logger: logger}
}

// Put replaces all seven rows. Days missing from week become rest days.
func (s *scheduleService) Put(ctx context.Context, caller Principal, clientID uuid.UUID, week domain.WeekSchedule) (domain.ResolvedSchedule, error) {
	for day, label := range week {
		if !day.Valid() {
			return domain.ResolvedSchedule{}, invalid("unknown weekday %q", day)
		}
		if label != nil && !label.Valid() {
			return domain.ResolvedSchedule{}, invalid("label for %s must be A, B, C or null", day)
		}
	}
	if err := authorizeClientAccess(ctx, s.store, caller, clientID); err != nil {
		return domain.ResolvedSchedule{}, err
	}

	full := domain.NewWeekSchedule()
	for day, label := range week {
		full[day] = label
	}
	entries := full.Entries(clientID, s.calendar.now())
	if err := s.store.Schedules.Replace(ctx, clientID, entries); err != nil {
		return domain.ResolvedSchedule{}, err
	}
	s.logger.InfoContext(ctx, "schedule replaced", "client_id", clientID)
	return domain.ResolveWeek(entries, nil), nil
}

func (s *scheduleService) inputs(ctx context.Context, clientID uuid.UUID, day time.Time) ([]domain.ScheduleEntry, []domain.Workout, error) {
	entries, err := s.store.Schedules.GetByClient(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	workouts, err := activeWorkouts(ctx, s.store.Workouts, clientID, day)
	if err != nil {
		return nil, nil, err
	}
	return entries, workouts, nil
}

func (s *scheduleService) Week(ctx context.Context, clientID uuid.UUID) (domain.ResolvedSchedule, error) {
	entries, workouts, err := s.inputs(ctx, clientID, s.calendar.Today())
	if err != nil {
		return domain.ResolvedSchedule{}, err
	}
	return domain.ResolveWeek(entries, workouts), nil
}

func (s *scheduleService) Today(ctx context.Context, clientID uuid.UUID) (*TodayWorkout, error) {
	today := s.calendar.Today()
	entries, workouts, err := s.inputs(ctx, clientID, today)
	if err != nil {
		return nil, err
	}

	week := domain.ResolveWeek(entries, workouts)
	day := domain.WeekdayOf(today)
	out := &TodayWorkout{
		Date:      today,
		DayOfWeek: day,
		Label:     week.Days.Label(day),
		Workout:   domain.WorkoutForDate(today, entries, workouts),
	}
	out.Rest = out.Workout == nil
	if out.Workout == nil {
		return out, nil
	}

	sess, err := s.store.Sessions.Get(ctx, clientID, out.Workout.ID, today)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	out.Session = sess
	return out, nil
}

func (s *scheduleService) Calendar(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]domain.CalendarDay, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)
	if to.Before(from) {
		return nil, invalid("from must not be after to")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > MaxCalendarDays {
		return nil, ErrRangeTooLong
	}

	week, err := s.Week(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return week.Days.Project(from, to), nil
}

func (s *scheduleService) Month(ctx context.Context, clientID uuid.UUID, year int, month time.Month) ([]domain.CalendarDay, error) {
	if month < time.January || month > time.December {
		return nil, invalid("month must be between 1 and 12")
	}
	week, err := s.Week(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return week.Days.ProjectMonth(year, month), nil
}
