package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"alcyxob/ecofit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) invitations() InvitationService {
	return NewInvitationService(f.store, f.auth(), f.mailer, 7*24*time.Hour, "https://app.test/", f.cal, f.logger)
}

func TestInvitationService_CreateSendsEmail(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()

	res, err := f.invitations().Create(f.ctx, pro, CreateInvitationInput{Email: " New.Client@Example.com ", Role: domain.RoleClient})
	require.NoError(t, err)

	assert.True(t, res.EmailSent)
	assert.Equal(t, "new.client@example.com", res.Invitation.Email)
	assert.Equal(t, pro.ID, *res.Invitation.InvitedBy)
	assert.Equal(t, testNow.Add(7*24*time.Hour), res.Invitation.ExpiresAt)
	assert.True(t, strings.HasPrefix(res.AcceptURL, "https://app.test/accept-invite?token="))
	assert.Len(t, res.Invitation.Token, 64)

	msg := f.mailer.last()
	assert.Equal(t, "new.client@example.com", msg.To)
	assert.Contains(t, msg.HTML, res.Invitation.Token)
}

func TestInvitationService_CreateSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("ses down")

	res, err := f.invitations().Create(f.ctx, SystemPrincipal, CreateInvitationInput{Email: "pro@example.com", Role: domain.RoleProfessional})
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Nil(t, res.Invitation.InvitedBy)

	status, err := f.invitations().Check(f.ctx, res.Invitation.Token)
	require.NoError(t, err)
	assert.True(t, status.Valid)
}

func TestInvitationService_CreateRules(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	existing := f.client()
	client := Principal{ID: existing.ID, Role: domain.RoleClient}

	tests := []struct {
		name    string
		inviter Principal
		input   CreateInvitationInput
		wantErr error
	}{
		{"professional cannot invite professional", pro, CreateInvitationInput{Email: "a@example.com", Role: domain.RoleProfessional}, ErrForbidden},
		{"client cannot invite", client, CreateInvitationInput{Email: "b@example.com", Role: domain.RoleClient}, ErrForbidden},
		{"unknown role", pro, CreateInvitationInput{Email: "c@example.com", Role: "coach"}, domain.ErrInvalidRole},
		{"email already registered", pro, CreateInvitationInput{Email: strings.ToUpper(existing.Email), Role: domain.RoleClient}, ErrEmailTaken},
		{"empty email", SystemPrincipal, CreateInvitationInput{Email: "  ", Role: domain.RoleClient}, domain.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.invitations().Create(f.ctx, tt.inviter, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestInvitationService_CheckStatuses(t *testing.T) {
	f := newFixture(t)
	svc := f.invitations()

	status, err := svc.Check(f.ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, &InvitationStatus{Valid: false, Reason: "not_found"}, status)

	res, err := svc.Create(f.ctx, SystemPrincipal, CreateInvitationInput{Email: "c@example.com", Role: domain.RoleClient})
	require.NoError(t, err)

	f.clock.Advance(8 * 24 * time.Hour)
	status, err = svc.Check(f.ctx, res.Invitation.Token)
	require.NoError(t, err)
	assert.False(t, status.Valid)
	assert.Equal(t, "expired", status.Reason)
	assert.Equal(t, "c@example.com", status.Email)
}

func TestInvitationService_CreateAccount(t *testing.T) {
	f := newFixture(t)
	svc := f.invitations()
	nutri := domain.ProfessionalNutritionist

	res, err := svc.Create(f.ctx, SystemPrincipal, CreateInvitationInput{
		Email:            "nutri@example.com",
		Role:             domain.RoleProfessional,
		ProfessionalType: &nutri,
	})
	require.NoError(t, err)

	_, _, err = svc.CreateAccount(f.ctx, CreateAccountInput{Token: res.Invitation.Token, Name: "Nina", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	token, profile, err := svc.CreateAccount(f.ctx, CreateAccountInput{Token: res.Invitation.Token, Name: " Nina ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Nina", profile.Name)
	assert.Equal(t, domain.RoleProfessional, profile.Role)
	assert.Equal(t, &nutri, profile.ProfessionalType)

	principal, err := f.auth().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, principal.ID)

	status, err := svc.Check(f.ctx, res.Invitation.Token)
	require.NoError(t, err)
	assert.Equal(t, "used", status.Reason)

	_, _, err = svc.CreateAccount(f.ctx, CreateAccountInput{Token: res.Invitation.Token, Name: "Again", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvitationInvalid)
	assert.ErrorIs(t, err, domain.ErrInvitationUsed)
}

func TestInvitationService_CreateAccountRollsBackOnTakenEmail(t *testing.T) {
	f := newFixture(t)
	svc := f.invitations()

	res, err := svc.Create(f.ctx, SystemPrincipal, CreateInvitationInput{Email: "late@example.com", Role: domain.RoleClient})
	require.NoError(t, err)

	// Someone registered the address after the invitation went out.
	taken := f.client()
	taken.Email = "late@example.com"
	require.NoError(t, f.store.Profiles.Update(f.ctx, taken))

	_, _, err = svc.CreateAccount(f.ctx, CreateAccountInput{Token: res.Invitation.Token, Name: "Late", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	status, err := svc.Check(f.ctx, res.Invitation.Token)
	require.NoError(t, err)
	assert.True(t, status.Valid)
}

func TestInvitationService_ListMine(t *testing.T) {
	f := newFixture(t)
	_, pro := f.professional()
	svc := f.invitations()

	for _, email := range []string{"one@example.com", "two@example.com"} {
		_, err := svc.Create(f.ctx, pro, CreateInvitationInput{Email: email, Role: domain.RoleClient})
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	list, err := svc.ListMine(f.ctx, pro)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two@example.com", list[0].Email)
}
