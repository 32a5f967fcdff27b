package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekday is a lowercase three-letter day name, Monday first.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// Weekdays lists the days of a week, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayAliases = map[string]Weekday{
	"monday": Monday, "tuesday": Tuesday, "wednesday": Wednesday, "thursday": Thursday,
	"friday": Friday, "saturday": Saturday, "sunday": Sunday,
	"tues": Tuesday, "wednes": Wednesday, "thur": Thursday, "thurs": Thursday,
}

func (d Weekday) Valid() bool {
	for _, w := range Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// WeekdayOf returns the weekday of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[(int(t.Weekday())+6)%7]
}

// ParseWeekday accepts short and long English names in any case, and ISO numbers 1 (Monday) to 7.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d := Weekday(s); d.Valid() {
		return d, true
	}
	if d, ok := weekdayAliases[s]; ok {
		return d, true
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 7 {
		return Weekdays[n-1], true
	}
	return "", false
}

// ScheduleEntry is one of the seven per-client rows. A nil Label is a rest day.
type ScheduleEntry struct {
	ClientID  uuid.UUID      `json:"client_id"`
	DayOfWeek Weekday        `json:"day_of_week"`
	Label     *DivisionLabel `json:"label"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// WeekSchedule maps every weekday to a label; nil means rest.
type WeekSchedule map[Weekday]*DivisionLabel

// NewWeekSchedule returns a week where every day is rest.
func NewWeekSchedule() WeekSchedule {
	s := make(WeekSchedule, len(Weekdays))
	for _, d := range Weekdays {
		s[d] = nil
	}
	return s
}

// Label returns the label scheduled for d, or nil for rest.
func (s WeekSchedule) Label(d Weekday) *DivisionLabel {
	return s[d]
}

// Entries expands the schedule into the seven rows stored per client.
func (s WeekSchedule) Entries(clientID uuid.UUID, now time.Time) []ScheduleEntry {
	out := make([]ScheduleEntry, 0, len(Weekdays))
	for _, d := range Weekdays {
		out = append(out, ScheduleEntry{ClientID: clientID, DayOfWeek: d, Label: s[d], UpdatedAt: now})
	}
	return out
}

// MarshalJSON always emits the seven days, with null for rest.
func (s WeekSchedule) MarshalJSON() ([]byte, error) {
	m := make(map[Weekday]*DivisionLabel, len(Weekdays))
	for _, d := range Weekdays {
		m[d] = s[d]
	}
	return json.Marshal(m)
}

// ScheduleSource tells where a resolved week came from.
type ScheduleSource string

const (
	ScheduleSourceSchedule ScheduleSource = "schedule"
	ScheduleSourceWorkouts ScheduleSource = "workouts"
	ScheduleSourceNone     ScheduleSource = "none"
)

// ResolvedSchedule is the week a client sees.
type ResolvedSchedule struct {
	Source ScheduleSource `json:"source"`
	Days   WeekSchedule   `json:"days"`
}

// ResolveWeek builds the client's week from the canonical rows, falling back to
// the day/label hints carried by the workouts when no rows exist.
func ResolveWeek(entries []ScheduleEntry, workouts []Workout) ResolvedSchedule {
	days := NewWeekSchedule()
	if len(entries) > 0 {
		for _, e := range entries {
			if e.DayOfWeek.Valid() {
				days[e.DayOfWeek] = e.Label
			}
		}
		return ResolvedSchedule{Source: ScheduleSourceSchedule, Days: days}
	}

	found := false
	for _, w := range workouts {
		if w.DayOfWeek == nil || !w.DayOfWeek.Valid() {
			continue
		}
		if days[*w.DayOfWeek] == nil {
			days[*w.DayOfWeek] = w.Division
		}
		found = true
	}
	if !found {
		return ResolvedSchedule{Source: ScheduleSourceNone, Days: days}
	}
	return ResolvedSchedule{Source: ScheduleSourceWorkouts, Days: days}
}

// WorkoutForDate answers "what should this client train on date". With canonical
// rows the workout is matched by label; without them by the workout's own weekday.
// A nil result means rest. workouts should be ordered by preference; the first
// match wins.
func WorkoutForDate(date time.Time, entries []ScheduleEntry, workouts []Workout) *Workout {
	day := WeekdayOf(date)
	if len(entries) > 0 {
		var label *DivisionLabel
		for _, e := range entries {
			if e.DayOfWeek == day {
				label = e.Label
				break
			}
		}
		if label == nil {
			return nil
		}
		for i := range workouts {
			if workouts[i].Division != nil && *workouts[i].Division == *label {
				return &workouts[i]
			}
		}
		return nil
	}

	for i := range workouts {
		if workouts[i].DayOfWeek != nil && *workouts[i].DayOfWeek == day {
			return &workouts[i]
		}
	}
	return nil
}

// CalendarDay is one projected day of the repeating week.
type CalendarDay struct {
	Date      time.Time      `json:"date"`
	DayOfWeek Weekday        `json:"day_of_week"`
	Label     *DivisionLabel `json:"label"`
	Rest      bool           `json:"rest"`
}

// Project re-applies the week across [from, to], both inclusive.
func (s WeekSchedule) Project(from, to time.Time) []CalendarDay {
	from, to = DateOf(from), DateOf(to)
	if to.Before(from) {
		return []CalendarDay{}
	}
	var out []CalendarDay
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		wd := WeekdayOf(d)
		label := s[wd]
		out = append(out, CalendarDay{Date: d, DayOfWeek: wd, Label: label, Rest: label == nil})
	}
	return out
}

// ProjectMonth projects the week over every day of the given month.
func (s WeekSchedule) ProjectMonth(year int, month time.Month) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return s.Project(first, last)
}
