package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSession is one client-day's execution of a workout, unique per
// (user, workout, date).
type WorkoutSession struct {
	ID                   uuid.UUID   `json:"id"`
	UserID               uuid.UUID   `json:"user_id"`
	WorkoutID            uuid.UUID   `json:"workout_id"`
	Date                 time.Time   `json:"date"`
	CompletedExerciseIDs []uuid.UUID `json:"completed_exercise_ids"`
	CompletedCount       int         `json:"completed_count"`
	TotalCount           int         `json:"total_count"`
	Completed            bool        `json:"completed"`
	XPEarned             int         `json:"xp_earned"`
	CompletedAt          *time.Time  `json:"completed_at,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// SessionChange describes what a mutation did to a session, so the caller can
// apply the matching aggregate update.
type SessionChange struct {
	XPDelta          int
	BecameComplete   bool
	BecameIncomplete bool
}

// NewWorkoutSession starts an empty session for date.
func NewWorkoutSession(userID, workoutID uuid.UUID, date time.Time, total int, now time.Time) *WorkoutSession {
	return &WorkoutSession{
		ID:                   uuid.New(),
		UserID:               userID,
		WorkoutID:            workoutID,
		Date:                 DateOf(date),
		CompletedExerciseIDs: []uuid.UUID{},
		TotalCount:           total,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// IsExerciseCompleted reports whether exerciseID is marked done.
func (s *WorkoutSession) IsExerciseCompleted(exerciseID uuid.UUID) bool {
	for _, id := range s.CompletedExerciseIDs {
		if id == exerciseID {
			return true
		}
	}
	return false
}

// Toggle flips the completion of exerciseID. total is the workout's current
// exercise count.
func (s *WorkoutSession) Toggle(exerciseID uuid.UUID, total int, now time.Time) SessionChange {
	if s.IsExerciseCompleted(exerciseID) {
		kept := s.CompletedExerciseIDs[:0:0]
		for _, id := range s.CompletedExerciseIDs {
			if id != exerciseID {
				kept = append(kept, id)
			}
		}
		s.CompletedExerciseIDs = kept
	} else {
		s.CompletedExerciseIDs = append(s.CompletedExerciseIDs, exerciseID)
	}
	return s.recompute(total, now)
}

// CompleteAll marks every exercise in exerciseIDs as done.
func (s *WorkoutSession) CompleteAll(exerciseIDs []uuid.UUID, now time.Time) SessionChange {
	ids := make([]uuid.UUID, len(exerciseIDs))
	copy(ids, exerciseIDs)
	s.CompletedExerciseIDs = ids
	return s.recompute(len(exerciseIDs), now)
}

func (s *WorkoutSession) recompute(total int, now time.Time) SessionChange {
	wasComplete := s.Completed
	oldXP := s.XPEarned

	s.TotalCount = total
	s.CompletedCount = len(s.CompletedExerciseIDs)
	s.Completed = total > 0 && s.CompletedCount >= total
	s.XPEarned = SessionXP(s.CompletedCount, total)
	s.UpdatedAt = now

	change := SessionChange{XPDelta: s.XPEarned - oldXP}
	switch {
	case s.Completed && !wasComplete:
		s.CompletedAt = &now
		change.BecameComplete = true
	case !s.Completed && wasComplete:
		s.CompletedAt = nil
		change.BecameIncomplete = true
	}
	return change
}
