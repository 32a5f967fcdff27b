package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DivisionLabel names one workout of a rotating split.
type DivisionLabel string

const (
	DivisionA DivisionLabel = "A"
	DivisionB DivisionLabel = "B"
	DivisionC DivisionLabel = "C"
)

// Divisions lists the labels in rotation order.
var Divisions = []DivisionLabel{DivisionA, DivisionB, DivisionC}

func (l DivisionLabel) Valid() bool {
	switch l {
	case DivisionA, DivisionB, DivisionC:
		return true
	}
	return false
}

// ParseDivisionLabel accepts "A", " b ", "Workout C" and similar. Anything else,
// including "rest" and the empty string, yields ok=false.
func ParseDivisionLabel(s string) (DivisionLabel, bool) {
	fields := strings.Fields(strings.ToUpper(s))
	if len(fields) == 0 {
		return "", false
	}
	l := DivisionLabel(fields[len(fields)-1])
	if !l.Valid() {
		return "", false
	}
	return l, true
}

// Workout is a training plan. Division and DayOfWeek are optional scheduling hints.
type Workout struct {
	Plan
	Division  *DivisionLabel    `json:"division,omitempty"`
	DayOfWeek *Weekday          `json:"day_of_week,omitempty"`
	Exercises []WorkoutExercise `json:"exercises"`
}

// WorkoutExercise is one ordered exercise of a workout.
type WorkoutExercise struct {
	ID          uuid.UUID `json:"id"`
	WorkoutID   uuid.UUID `json:"workout_id"`
	Position    int       `json:"position"`
	Name        string    `json:"name"`
	Sets        int       `json:"sets"`
	Reps        string    `json:"reps,omitempty"`
	Rest        string    `json:"rest,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Alternative string    `json:"alternative,omitempty"`
	MediaKey    string    `json:"media_key,omitempty"`
}

// NewWorkout returns a draft workout.
func NewWorkout(professionalID uuid.UUID, clientID *uuid.UUID, name string, now time.Time) *Workout {
	return &Workout{Plan: NewPlan(professionalID, clientID, name, now)}
}

// SetExercises replaces the exercise list, assigning ids and positions.
func (w *Workout) SetExercises(exercises []WorkoutExercise) {
	out := make([]WorkoutExercise, len(exercises))
	for i, e := range exercises {
		e.ID = uuid.New()
		e.WorkoutID = w.ID
		e.Position = i
		out[i] = e
	}
	w.Exercises = out
}

// Exercise returns the exercise with the given id.
func (w *Workout) Exercise(id uuid.UUID) (*WorkoutExercise, bool) {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i], true
		}
	}
	return nil, false
}

// ExerciseIDs returns exercise ids in position order.
func (w *Workout) ExerciseIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(w.Exercises))
	for i, e := range w.Exercises {
		ids[i] = e.ID
	}
	return ids
}

// MediaKeys returns the storage keys referenced by the workout's exercises.
func (w *Workout) MediaKeys() []string {
	var keys []string
	for _, e := range w.Exercises {
		if e.MediaKey != "" {
			keys = append(keys, e.MediaKey)
		}
	}
	return keys
}
