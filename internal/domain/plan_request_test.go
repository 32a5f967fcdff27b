package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPlanRequestAllowed(t *testing.T) {
	tests := []struct {
		name     string
		reqType  PlanRequestType
		active   map[PlanKind]bool
		existing []PlanRequest
		want     error
	}{
		{name: "no history", reqType: PlanRequestDiet},
		{name: "invalid type", reqType: "yoga", want: ErrInvalidRequestType},
		{name: "active diet blocks diet", reqType: PlanRequestDiet, active: map[PlanKind]bool{PlanKindDiet: true}, want: ErrActivePlanExists},
		{name: "active diet blocks both", reqType: PlanRequestBoth, active: map[PlanKind]bool{PlanKindDiet: true}, want: ErrActivePlanExists},
		{name: "active diet allows workout", reqType: PlanRequestWorkout, active: map[PlanKind]bool{PlanKindDiet: true}},
		{
			name:     "pending both blocks workout",
			reqType:  PlanRequestWorkout,
			existing: []PlanRequest{{Type: PlanRequestBoth, Status: PlanRequestPending}},
			want:     ErrOpenRequestExists,
		},
		{
			name:     "in progress diet blocks diet",
			reqType:  PlanRequestDiet,
			existing: []PlanRequest{{Type: PlanRequestDiet, Status: PlanRequestInProgress}},
			want:     ErrOpenRequestExists,
		},
		{
			name:     "completed request does not block",
			reqType:  PlanRequestDiet,
			existing: []PlanRequest{{Type: PlanRequestDiet, Status: PlanRequestCompleted}},
		},
		{
			name:     "open diet does not block workout",
			reqType:  PlanRequestWorkout,
			existing: []PlanRequest{{Type: PlanRequestDiet, Status: PlanRequestPending}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPlanRequestAllowed(tt.reqType, tt.active, tt.existing)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPlanRequest_FulfilBoth(t *testing.T) {
	now := time.Now()
	pro := uuid.New()
	r, err := NewPlanRequest(uuid.New(), nil, PlanRequestBoth, "", now)
	require.NoError(t, err)

	require.NoError(t, r.Fulfil(PlanKindDiet, map[PlanKind]bool{PlanKindDiet: true}, pro, now))
	assert.Equal(t, PlanRequestInProgress, r.Status)
	require.NotNil(t, r.ProfessionalID)
	assert.Equal(t, pro, *r.ProfessionalID)

	require.NoError(t, r.Fulfil(PlanKindWorkout, map[PlanKind]bool{PlanKindDiet: true, PlanKindWorkout: true}, pro, now))
	assert.Equal(t, PlanRequestCompleted, r.Status)
	assert.NotNil(t, r.CompletedAt)

	assert.ErrorIs(t, r.Fulfil(PlanKindWorkout, nil, pro, now), ErrRequestNotOpen)
}

func TestPlanRequest_FulfilSingleKind(t *testing.T) {
	now := time.Now()
	r, err := NewPlanRequest(uuid.New(), nil, PlanRequestWorkout, "", now)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Fulfil(PlanKindDiet, nil, uuid.New(), now), ErrInvalidRequestType)
	require.NoError(t, r.Fulfil(PlanKindWorkout, nil, uuid.New(), now))
	assert.Equal(t, PlanRequestCompleted, r.Status)
}

func TestPlanRequest_ClaimAndCancel(t *testing.T) {
	now := time.Now()
	pro, other := uuid.New(), uuid.New()
	r, err := NewPlanRequest(uuid.New(), nil, PlanRequestDiet, "", now)
	require.NoError(t, err)

	require.NoError(t, r.Claim(pro, now))
	assert.Equal(t, PlanRequestInProgress, r.Status)
	assert.ErrorIs(t, r.Claim(other, now), ErrRequestAlreadyClaimed)

	require.NoError(t, r.Cancel(now))
	assert.ErrorIs(t, r.Cancel(now), ErrRequestNotOpen)
	assert.ErrorIs(t, r.Claim(pro, now), ErrRequestNotOpen)
}

func TestMatchProfessional(t *testing.T) {
	inviter := uuid.New()
	author := uuid.New()
	newer := uuid.New()
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	inv := &Invitation{InvitedBy: &inviter}
	old := &Plan{ProfessionalID: author, CreatedAt: base}
	recent := &Plan{ProfessionalID: newer, CreatedAt: base.Add(48 * time.Hour)}

	got := MatchProfessional(inv, old, recent)
	require.NotNil(t, got)
	assert.Equal(t, inviter, *got)

	got = MatchProfessional(nil, old, recent, nil)
	require.NotNil(t, got)
	assert.Equal(t, newer, *got)

	got = MatchProfessional(&Invitation{}, old)
	require.NotNil(t, got)
	assert.Equal(t, author, *got)

	assert.Nil(t, MatchProfessional(nil))
}
