package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvitation(t *testing.T) {
	now := time.Now()
	admin := uuid.New()
	pt := ProfessionalNutritionist

	inv, err := NewInvitation("  Coach@Example.COM ", RoleProfessional, &pt, &admin, now, 0)
	require.NoError(t, err)
	assert.Equal(t, "coach@example.com", inv.Email)
	assert.Len(t, inv.Token, 64)
	assert.Equal(t, now.Add(DefaultInvitationTTL), inv.ExpiresAt)
	require.NotNil(t, inv.ProfessionalType)

	inv, err = NewInvitation("client@example.com", RoleClient, &pt, &admin, now, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, inv.ProfessionalType, "only professionals carry a sub-type")

	_, err = NewInvitation("", RoleClient, nil, nil, now, 0)
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = NewInvitation("x@example.com", "owner", nil, nil, now, 0)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestInvitation_Validate(t *testing.T) {
	now := time.Now()
	inv, err := NewInvitation("client@example.com", RoleClient, nil, nil, now, time.Hour)
	require.NoError(t, err)

	assert.NoError(t, inv.Validate(now))
	assert.ErrorIs(t, inv.Validate(now.Add(time.Hour)), ErrInvitationExpired)
	assert.ErrorIs(t, inv.Validate(now.Add(2*time.Hour)), ErrInvitationExpired)

	require.NoError(t, inv.MarkUsed(now))
	assert.ErrorIs(t, inv.Validate(now), ErrInvitationUsed)
	assert.ErrorIs(t, inv.MarkUsed(now), ErrInvitationUsed)
}

func TestCanInvite(t *testing.T) {
	assert.True(t, CanInvite(RoleAdmin, RoleAdmin))
	assert.True(t, CanInvite(RoleAdmin, RoleProfessional))
	assert.True(t, CanInvite(RoleProfessional, RoleClient))
	assert.False(t, CanInvite(RoleProfessional, RoleProfessional))
	assert.False(t, CanInvite(RoleClient, RoleClient))
}

func TestProfile_CanAuthor(t *testing.T) {
	trainer := ProfessionalTrainer
	p := Profile{Role: RoleProfessional, ProfessionalType: &trainer}
	assert.True(t, p.CanAuthor(PlanKindWorkout))
	assert.False(t, p.CanAuthor(PlanKindDiet))

	p.ProfessionalType = nil
	assert.True(t, p.CanAuthor(PlanKindDiet))

	c := Profile{Role: RoleClient}
	assert.False(t, c.CanAuthor(PlanKindWorkout))
}
