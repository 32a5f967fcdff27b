package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWorkoutSession_Toggle(t *testing.T) {
	now := time.Now()
	ex := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	s := NewWorkoutSession(uuid.New(), uuid.New(), day(2025, time.March, 12), len(ex), now)

	c := s.Toggle(ex[0], 3, now)
	assert.Equal(t, 10, c.XPDelta)
	assert.False(t, c.BecameComplete)
	assert.Equal(t, 1, s.CompletedCount)

	s.Toggle(ex[1], 3, now)
	c = s.Toggle(ex[2], 3, now)
	assert.Equal(t, 60, c.XPDelta)
	assert.True(t, c.BecameComplete)
	assert.True(t, s.Completed)
	assert.NotNil(t, s.CompletedAt)
	assert.Equal(t, 80, s.XPEarned)

	c = s.Toggle(ex[1], 3, now)
	assert.Equal(t, -60, c.XPDelta)
	assert.True(t, c.BecameIncomplete)
	assert.False(t, s.Completed)
	assert.Nil(t, s.CompletedAt)
	assert.Equal(t, 2, s.CompletedCount)
	assert.False(t, s.IsExerciseCompleted(ex[1]))
}

func TestWorkoutSession_CompleteAll(t *testing.T) {
	now := time.Now()
	ex := []uuid.UUID{uuid.New(), uuid.New()}
	s := NewWorkoutSession(uuid.New(), uuid.New(), day(2025, time.March, 11), 2, now)
	s.Toggle(ex[0], 2, now)

	c := s.CompleteAll(ex, now)
	assert.Equal(t, 60, c.XPDelta)
	assert.True(t, c.BecameComplete)
	assert.Equal(t, 70, s.XPEarned)

	c = s.CompleteAll(ex, now)
	assert.Equal(t, 0, c.XPDelta)
	assert.False(t, c.BecameComplete)
}

func TestWorkoutSession_EmptyWorkoutNeverCompletes(t *testing.T) {
	now := time.Now()
	s := NewWorkoutSession(uuid.New(), uuid.New(), now, 0, now)
	c := s.CompleteAll(nil, now)
	assert.False(t, c.BecameComplete)
	assert.Equal(t, 0, s.XPEarned)
}
