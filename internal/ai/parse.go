package ai

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"alcyxob/ecofit/internal/domain"
)

// Outcome tags a parse result.
type Outcome string

const (
	OutcomeParsed   Outcome = "parsed"
	OutcomeRejected Outcome = "rejected"
)

// Result is either a parsed draft or the reason the completion was rejected.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Reason  string
}

func (r Result[T]) OK() bool { return r.Outcome == OutcomeParsed }

func parsed[T any](v T) Result[T] {
	return Result[T]{Outcome: OutcomeParsed, Value: v}
}

func rejected[T any](reason string) Result[T] {
	return Result[T]{Outcome: OutcomeRejected, Reason: reason}
}

type MealDraft struct {
	Name  string        `json:"name"`
	Time  string        `json:"time,omitempty"`
	Foods []domain.Food `json:"foods"`
	Notes string        `json:"notes,omitempty"`
}

type DietDraft struct {
	Name        string      `json:"name"`
	Objective   string      `json:"objective,omitempty"`
	Methodology string      `json:"methodology,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Meals       []MealDraft `json:"meals"`
}

type ExerciseDraft struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps,omitempty"`
	Rest        string `json:"rest,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Alternative string `json:"alternative,omitempty"`
}

type WorkoutDraft struct {
	Name        string          `json:"name"`
	Objective   string          `json:"objective,omitempty"`
	Methodology string          `json:"methodology,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Exercises   []ExerciseDraft `json:"exercises"`
}

type DivisionDraft struct {
	Label domain.DivisionLabel `json:"label"`
	WorkoutDraft
}

type DivisionsDraft struct {
	Name        string          `json:"name"`
	Methodology string          `json:"methodology,omitempty"`
	Divisions   []DivisionDraft `json:"divisions"`
}

type ScheduleDraft struct {
	Days      domain.WeekSchedule `json:"days"`
	Rationale string              `json:"rationale,omitempty"`
}

// extractJSON returns the outermost JSON object of a completion, tolerating
// markdown fences and chatter around it.
func extractJSON(raw string) ([]byte, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return []byte(s[start : end+1]), true
}

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(v))
		return nil
	}
	*s = looseString(b)
	return nil
}

// looseInt accepts 4, 4.0, "4" and "3-4" (first number wins).
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	digits := strings.TrimLeftFunc(string(s), func(r rune) bool { return r < '0' || r > '9' })
	end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		digits = digits[:end]
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseInt(v)
	return nil
}

// looseFloat accepts a number or a numeric string; anything else is absent.
type looseFloat struct {
	value *float64
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	str := strings.TrimSpace(strings.TrimSuffix(strings.ToLower(string(s)), "kcal"))
	if v, err := strconv.ParseFloat(str, 64); err == nil {
		f.value = &v
	}
	return nil
}

type wireFood struct {
	Name     looseString `json:"name"`
	Quantity looseString `json:"quantity"`
	Calories looseFloat  `json:"calories"`
	Notes    looseString `json:"notes"`
}

// wireFoods accepts a list of food objects or a list of plain names.
type wireFoods []wireFood

func (w *wireFoods) UnmarshalJSON(b []byte) error {
	var objects []wireFood
	if err := json.Unmarshal(b, &objects); err == nil {
		*w = objects
		return nil
	}
	var names []looseString
	if err := json.Unmarshal(b, &names); err != nil {
		*w = nil
		return nil
	}
	out := make([]wireFood, len(names))
	for i, n := range names {
		out[i] = wireFood{Name: n}
	}
	*w = out
	return nil
}

type wireMeal struct {
	Name  looseString `json:"name"`
	Time  looseString `json:"time"`
	Foods wireFoods   `json:"foods"`
	Notes looseString `json:"notes"`
}

type wireDiet struct {
	Name        looseString `json:"name"`
	Objective   looseString `json:"objective"`
	Methodology looseString `json:"methodology"`
	Notes       looseString `json:"notes"`
	Meals       []wireMeal  `json:"meals"`
}

type wireExercise struct {
	Name        looseString `json:"name"`
	Sets        looseInt    `json:"sets"`
	Reps        looseString `json:"reps"`
	Rest        looseString `json:"rest"`
	Notes       looseString `json:"notes"`
	Alternative looseString `json:"alternative"`
}

type wireWorkout struct {
	Name        looseString    `json:"name"`
	Objective   looseString    `json:"objective"`
	Methodology looseString    `json:"methodology"`
	Notes       looseString    `json:"notes"`
	Exercises   []wireExercise `json:"exercises"`
}

type wireDivision struct {
	Label looseString `json:"label"`
	wireWorkout
}

type wireDivisions struct {
	Name        looseString    `json:"name"`
	Methodology looseString    `json:"methodology"`
	Divisions   []wireDivision `json:"divisions"`
}

func decode(raw string, v any) string {
	body, ok := extractJSON(raw)
	if !ok {
		return "completion did not contain a JSON object"
	}
	if err := json.Unmarshal(body, v); err != nil {
		return "completion is not valid JSON: " + err.Error()
	}
	return ""
}

// ParseDiet turns a completion into a diet draft. Meals without a name and foods
// without a name are dropped; a draft without meals is rejected.
func ParseDiet(raw string) Result[DietDraft] {
	var w wireDiet
	if reason := decode(raw, &w); reason != "" {
		return rejected[DietDraft](reason)
	}

	draft := DietDraft{
		Name:        string(w.Name),
		Objective:   string(w.Objective),
		Methodology: string(w.Methodology),
		Notes:       string(w.Notes),
		Meals:       []MealDraft{},
	}
	for _, m := range w.Meals {
		if m.Name == "" {
			continue
		}
		meal := MealDraft{Name: string(m.Name), Time: string(m.Time), Notes: string(m.Notes), Foods: []domain.Food{}}
		for _, f := range m.Foods {
			if f.Name == "" {
				continue
			}
			meal.Foods = append(meal.Foods, domain.Food{
				Name:     string(f.Name),
				Quantity: string(f.Quantity),
				Calories: f.Calories.value,
				Notes:    string(f.Notes),
			})
		}
		draft.Meals = append(draft.Meals, meal)
	}

	if draft.Name == "" {
		draft.Name = "Diet draft"
	}
	if len(draft.Meals) == 0 {
		return rejected[DietDraft]("draft has no meals")
	}
	return parsed(draft)
}

func toWorkoutDraft(w wireWorkout) WorkoutDraft {
	draft := WorkoutDraft{
		Name:        string(w.Name),
		Objective:   string(w.Objective),
		Methodology: string(w.Methodology),
		Notes:       string(w.Notes),
		Exercises:   []ExerciseDraft{},
	}
	for _, e := range w.Exercises {
		if e.Name == "" {
			continue
		}
		sets := int(e.Sets)
		if sets < 0 {
			sets = 0
		}
		draft.Exercises = append(draft.Exercises, ExerciseDraft{
			Name:        string(e.Name),
			Sets:        sets,
			Reps:        string(e.Reps),
			Rest:        string(e.Rest),
			Notes:       string(e.Notes),
			Alternative: string(e.Alternative),
		})
	}
	return draft
}

// ParseWorkout turns a completion into a single workout draft.
func ParseWorkout(raw string) Result[WorkoutDraft] {
	var w wireWorkout
	if reason := decode(raw, &w); reason != "" {
		return rejected[WorkoutDraft](reason)
	}
	draft := toWorkoutDraft(w)
	if draft.Name == "" {
		draft.Name = "Workout draft"
	}
	if len(draft.Exercises) == 0 {
		return rejected[WorkoutDraft]("draft has no exercises")
	}
	return parsed(draft)
}

// ParseDivisions turns a completion into a split. Divisions whose label is not
// one of the first n labels, or repeats an earlier one, are dropped.
func ParseDivisions(raw string, n int) Result[DivisionsDraft] {
	var w wireDivisions
	if reason := decode(raw, &w); reason != "" {
		return rejected[DivisionsDraft](reason)
	}
	allowed := domain.Divisions[:clampDivisions(n)]

	draft := DivisionsDraft{
		Name:        string(w.Name),
		Methodology: string(w.Methodology),
		Divisions:   []DivisionDraft{},
	}
	seen := map[domain.DivisionLabel]bool{}
	for _, d := range w.Divisions {
		label, ok := domain.ParseDivisionLabel(string(d.Label))
		if !ok || seen[label] || !containsLabel(allowed, label) {
			continue
		}
		workout := toWorkoutDraft(d.wireWorkout)
		if len(workout.Exercises) == 0 {
			continue
		}
		if workout.Name == "" {
			workout.Name = "Workout " + string(label)
		}
		seen[label] = true
		draft.Divisions = append(draft.Divisions, DivisionDraft{Label: label, WorkoutDraft: workout})
	}

	if draft.Name == "" {
		draft.Name = "Training split"
	}
	if len(draft.Divisions) == 0 {
		return rejected[DivisionsDraft]("draft has no usable divisions")
	}
	return parsed(draft)
}

// ParseSchedule turns a completion into a week. The days may sit under "days" or
// at the top level. Labels outside allowed (or A/B/C when allowed is empty) become
// rest days.
func ParseSchedule(raw string, allowed []domain.DivisionLabel) Result[ScheduleDraft] {
	var top map[string]json.RawMessage
	if reason := decode(raw, &top); reason != "" {
		return rejected[ScheduleDraft](reason)
	}
	if len(allowed) == 0 {
		allowed = domain.Divisions
	}

	days := top
	if nested, ok := top["days"]; ok {
		days = nil
		if err := json.Unmarshal(nested, &days); err != nil {
			return rejected[ScheduleDraft]("days is not an object")
		}
	}

	draft := ScheduleDraft{Days: domain.NewWeekSchedule()}
	found := 0
	for key, value := range days {
		day, ok := domain.ParseWeekday(key)
		if !ok {
			continue
		}
		found++
		var s looseString
		if err := s.UnmarshalJSON(value); err != nil {
			continue
		}
		if label, ok := domain.ParseDivisionLabel(string(s)); ok && containsLabel(allowed, label) {
			draft.Days[day] = &label
		}
	}
	if found == 0 {
		return rejected[ScheduleDraft]("draft names no weekdays")
	}
	if r, ok := top["rationale"]; ok {
		var s looseString
		if err := s.UnmarshalJSON(r); err == nil {
			draft.Rationale = string(s)
		}
	}
	return parsed(draft)
}

func containsLabel(labels []domain.DivisionLabel, l domain.DivisionLabel) bool {
	for _, x := range labels {
		if x == l {
			return true
		}
	}
	return false
}
