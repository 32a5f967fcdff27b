package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// XPPerExercise is awarded for each completed exercise.
	XPPerExercise = 10
	// SessionCompletionBonus is added when every exercise of a session is done.
	SessionCompletionBonus = 50
	// LevelThreshold is the XP span of one level.
	LevelThreshold = 500
)

// Level returns the 1-based level reached with totalXP.
func Level(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/LevelThreshold + 1
}

// XPInLevel returns the progress inside the current level.
func XPInLevel(totalXP int) int {
	if totalXP < 0 {
		return 0
	}
	return totalXP % LevelThreshold
}

// XPToNextLevel returns the XP missing to reach the next level.
func XPToNextLevel(totalXP int) int {
	return LevelThreshold - XPInLevel(totalXP)
}

// SessionXP is the XP a session is worth with completed of total exercises done.
func SessionXP(completed, total int) int {
	if completed < 0 {
		completed = 0
	}
	xp := completed * XPPerExercise
	if total > 0 && completed >= total {
		xp += SessionCompletionBonus
	}
	return xp
}

// NextStreak applies the streak recurrence for a completion on day d. A previous
// workout on d-1 or on d itself extends the streak; anything else restarts it at 1.
func NextStreak(lastWorkout *time.Time, current int, d time.Time) int {
	if lastWorkout == nil {
		return 1
	}
	last := DateOf(*lastWorkout)
	day := DateOf(d)
	if last.Equal(AddDays(day, -1)) || last.Equal(day) {
		return current + 1
	}
	return 1
}

// UserGamification aggregates a client's progress.
type UserGamification struct {
	UserID          uuid.UUID  `json:"user_id"`
	TotalXP         int        `json:"total_xp"`
	Level           int        `json:"level"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	TotalSessions   int        `json:"total_sessions"`
	LastWorkoutDate *time.Time `json:"last_workout_date,omitempty"`
	WeeklyTarget    *int       `json:"weekly_target,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewUserGamification returns the starting aggregate for a client.
func NewUserGamification(userID uuid.UUID, now time.Time) *UserGamification {
	return &UserGamification{UserID: userID, Level: 1, UpdatedAt: now}
}

// AddXP applies an XP delta, never letting the total go negative.
func (g *UserGamification) AddXP(delta int, now time.Time) {
	g.TotalXP += delta
	if g.TotalXP < 0 {
		g.TotalXP = 0
	}
	g.Level = Level(g.TotalXP)
	g.UpdatedAt = now
}

// RecordCompletion applies the streak rule for a session completed on day d.
func (g *UserGamification) RecordCompletion(d time.Time, now time.Time) {
	day := DateOf(d)
	g.CurrentStreak = NextStreak(g.LastWorkoutDate, g.CurrentStreak, day)
	if g.CurrentStreak > g.LongestStreak {
		g.LongestStreak = g.CurrentStreak
	}
	g.TotalSessions++
	if g.LastWorkoutDate == nil || day.After(DateOf(*g.LastWorkoutDate)) {
		g.LastWorkoutDate = &day
	}
	g.UpdatedAt = now
}

// RevokeCompletion undoes the session count of a completion. Streak credit already
// granted is left untouched.
func (g *UserGamification) RevokeCompletion(now time.Time) {
	if g.TotalSessions > 0 {
		g.TotalSessions--
	}
	g.UpdatedAt = now
}

// SetWeeklyTarget sets or clears the weekly session target.
func (g *UserGamification) SetWeeklyTarget(target *int, now time.Time) {
	g.WeeklyTarget = target
	g.UpdatedAt = now
}

// GamificationSummary is the client-facing progress view.
type GamificationSummary struct {
	TotalXP          int        `json:"total_xp"`
	Level            int        `json:"level"`
	XPInLevel        int        `json:"xp_in_level"`
	XPToNextLevel    int        `json:"xp_to_next_level"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalSessions    int        `json:"total_sessions"`
	LastWorkoutDate  *time.Time `json:"last_workout_date,omitempty"`
	WeeklyTarget     *int       `json:"weekly_target,omitempty"`
	SessionsThisWeek int        `json:"sessions_this_week"`
}

// Summary derives the progress view; sessionsThisWeek is supplied by the caller.
func (g *UserGamification) Summary(sessionsThisWeek int) GamificationSummary {
	return GamificationSummary{
		TotalXP:          g.TotalXP,
		Level:            Level(g.TotalXP),
		XPInLevel:        XPInLevel(g.TotalXP),
		XPToNextLevel:    XPToNextLevel(g.TotalXP),
		CurrentStreak:    g.CurrentStreak,
		LongestStreak:    g.LongestStreak,
		TotalSessions:    g.TotalSessions,
		LastWorkoutDate:  g.LastWorkoutDate,
		WeeklyTarget:     g.WeeklyTarget,
		SessionsThisWeek: sessionsThisWeek,
	}
}
