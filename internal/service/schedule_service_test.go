package service

import (
	"testing"
	"time"

	"alcyxob/ecofit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleService_WednesdayFallback(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	client := f.client()
	w := f.sentWorkout(pro, client.ID, 2, ptr(domain.DivisionA), ptr(domain.Wednesday))
	svc := f.schedules()

	week, err := svc.Week(f.ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleSourceWorkouts, week.Source)
	assert.Equal(t, domain.DivisionA, *week.Days[domain.Wednesday])
	assert.Nil(t, week.Days[domain.Monday])

	today, err := svc.Today(f.ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Wednesday, today.DayOfWeek)
	assert.False(t, today.Rest)
	require.NotNil(t, today.Workout)
	assert.Equal(t, w.ID, today.Workout.ID)
	assert.Nil(t, today.Session)

	_, err = f.progress().ToggleExercise(f.ctx, client.ID, w.ID, w.Exercises[0].ID)
	require.NoError(t, err)
	today, err = svc.Today(f.ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, today.Session)
	assert.Equal(t, 1, today.Session.CompletedCount)

	f.clock.Advance(24 * time.Hour)
	today, err = svc.Today(f.ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, today.Rest)
	assert.Nil(t, today.Workout)
}

func TestScheduleService_PutOverridesWorkoutHints(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	client := f.client()
	f.sentWorkout(pro, client.ID, 1, ptr(domain.DivisionA), ptr(domain.Wednesday))
	b := f.sentWorkout(pro, client.ID, 1, ptr(domain.DivisionB), nil)
	svc := f.schedules()

	put, err := svc.Put(f.ctx, pro, client.ID, domain.WeekSchedule{
		domain.Monday:    ptr(domain.DivisionA),
		domain.Wednesday: ptr(domain.DivisionB),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleSourceSchedule, put.Source)
	assert.Len(t, put.Days, 7)

	entries, err := f.store.Schedules.GetByClient(f.ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 7)

	today, err := svc.Today(f.ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, today.Workout)
	assert.Equal(t, b.ID, today.Workout.ID)
	assert.Equal(t, domain.DivisionB, *today.Label)

	// Replacing again keeps exactly seven rows.
	_, err = svc.Put(f.ctx, SystemPrincipal, client.ID, domain.WeekSchedule{domain.Friday: ptr(domain.DivisionC)})
	require.NoError(t, err)
	week, err := svc.Week(f.ctx, client.ID)
	require.NoError(t, err)
	assert.Nil(t, week.Days[domain.Monday])
	assert.Equal(t, domain.DivisionC, *week.Days[domain.Friday])

	today, err = svc.Today(f.ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, today.Rest)
}

func TestScheduleService_PutValidation(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	_, stranger := f.professional()
	client := f.client()
	f.sentWorkout(pro, client.ID, 1, nil, nil)
	svc := f.schedules()

	_, err := svc.Put(f.ctx, pro, client.ID, domain.WeekSchedule{domain.Monday: ptr(domain.DivisionLabel("D"))})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Put(f.ctx, pro, client.ID, domain.WeekSchedule{"someday": nil})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Put(f.ctx, stranger, client.ID, domain.WeekSchedule{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Put(f.ctx, pro, pro.ID, domain.WeekSchedule{})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestScheduleService_Calendar(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	client := f.client()
	f.sentWorkout(pro, client.ID, 1, nil, nil)
	svc := f.schedules()

	_, err := svc.Put(f.ctx, pro, client.ID, domain.WeekSchedule{domain.Monday: ptr(domain.DivisionA)})
	require.NoError(t, err)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	days, err := svc.Calendar(f.ctx, client.ID, from, from.AddDate(0, 0, 61))
	require.NoError(t, err)
	require.Len(t, days, 62)
	assert.Equal(t, domain.Sunday, days[0].DayOfWeek)
	assert.True(t, days[0].Rest)
	assert.Equal(t, domain.DivisionA, *days[1].Label)

	_, err = svc.Calendar(f.ctx, client.ID, from, from.AddDate(0, 0, 62))
	assert.ErrorIs(t, err, ErrRangeTooLong)

	_, err = svc.Calendar(f.ctx, client.ID, from, from.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScheduleService_Month(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	client := f.client()
	svc := f.schedules()

	_, err := svc.Put(f.ctx, pro, client.ID, domain.WeekSchedule{domain.Friday: ptr(domain.DivisionC)})
	require.NoError(t, err)

	days, err := svc.Month(f.ctx, client.ID, 2024, time.February)
	require.NoError(t, err)
	require.Len(t, days, 29)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, domain.DivisionC, *days[1].Label, "2 February 2024 was a Friday")
	assert.True(t, days[0].Rest)

	_, err = svc.Month(f.ctx, client.ID, 2024, time.Month(13))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
