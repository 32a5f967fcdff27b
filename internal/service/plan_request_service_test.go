package service

import (
	"testing"
	"time"

	"alcyxob/ecofit/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usedInvitation records that inviter brought client in.
func (f *fixture) usedInvitation(inviter uuid.UUID, client *domain.Profile) {
	f.t.Helper()
	inv, err := domain.NewInvitation(client.Email, domain.RoleClient, nil, &inviter, f.clock.Now(), 0)
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.Invitations.Create(f.ctx, inv))
	require.NoError(f.t, f.store.Invitations.MarkUsed(f.ctx, inv.ID, f.clock.Now()))
	f.clock.Advance(time.Second)
}

func TestPlanRequestService_Guards(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	client := f.client()
	svc := f.requests()

	_, err := svc.Create(f.ctx, client.ID, "yoga", "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequestType)

	_, err = svc.Create(f.ctx, pro.ID, domain.PlanRequestDiet, "")
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = svc.Create(f.ctx, client.ID, domain.PlanRequestDiet, "no dairy")
	require.NoError(t, err)

	_, err = svc.Create(f.ctx, client.ID, domain.PlanRequestBoth, "")
	assert.ErrorIs(t, err, domain.ErrOpenRequestExists)

	f.sentWorkout(pro, client.ID, 1, nil, nil)
	_, err = svc.Create(f.ctx, client.ID, domain.PlanRequestWorkout, "")
	assert.ErrorIs(t, err, domain.ErrActivePlanExists)
}

func TestPlanRequestService_MatchPrefersInviter(t *testing.T) {
	f := newFixture(t)
	inviter, _ := f.professional()
	_, author := f.professional()
	client := f.client()

	f.usedInvitation(inviter.ID, client)
	// A later plan by someone else does not override the invitation.
	f.sentDiet(author, client.ID, ptr(1))
	f.clock.Advance(8 * 24 * time.Hour)

	req, err := f.requests().Create(f.ctx, client.ID, domain.PlanRequestDiet, "")
	require.NoError(t, err)
	require.NotNil(t, req.ProfessionalID)
	assert.Equal(t, inviter.ID, *req.ProfessionalID)
}

func TestPlanRequestService_MatchFallsBackToLatestAuthor(t *testing.T) {
	f := newFixture(t)
	_, older := f.professional()
	_, newer := f.professional()
	client := f.client()

	f.sentWorkout(older, client.ID, 1, nil, nil)
	f.sentDiet(newer, client.ID, ptr(1))
	f.clock.Advance(8 * 24 * time.Hour)

	req, err := f.requests().Create(f.ctx, client.ID, domain.PlanRequestDiet, "")
	require.NoError(t, err)
	require.NotNil(t, req.ProfessionalID)
	assert.Equal(t, newer.ID, *req.ProfessionalID)
}

func TestPlanRequestService_ClaimAndCancel(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	_, rival := f.professional()
	client := f.client()
	other := f.client()
	svc := f.requests()

	req, err := svc.Create(f.ctx, client.ID, domain.PlanRequestWorkout, "")
	require.NoError(t, err)

	open, err := svc.ListOpen(f.ctx, rival.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	claimed, err := svc.Claim(f.ctx, pro.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanRequestInProgress, claimed.Status)

	_, err = svc.Claim(f.ctx, rival.ID, req.ID)
	assert.ErrorIs(t, err, domain.ErrRequestAlreadyClaimed)

	open, err = svc.ListOpen(f.ctx, rival.ID)
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = svc.Cancel(f.ctx, other.ID, req.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := svc.Cancel(f.ctx, client.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanRequestCancelled, cancelled.Status)

	_, err = svc.Cancel(f.ctx, client.ID, req.ID)
	assert.ErrorIs(t, err, domain.ErrRequestNotOpen)

	_, err = svc.Claim(f.ctx, pro.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPlanRequestNotFound)

	mine, err := svc.ListMine(f.ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.PlanRequestCancelled, mine[0].Status)
}
