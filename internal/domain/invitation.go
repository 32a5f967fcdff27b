package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultInvitationTTL is how long an invitation stays redeemable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

const invitationTokenBytes = 32

var (
	ErrInvitationUsed    = errors.New("invitation has already been used")
	ErrInvitationExpired = errors.New("invitation has expired")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidEmail      = errors.New("invalid email")
)

// Invitation is a single-use token granting account creation for one email and role.
type Invitation struct {
	ID               uuid.UUID         `json:"id"`
	Email            string            `json:"email"`
	Role             Role              `json:"role"`
	ProfessionalType *ProfessionalType `json:"professional_type,omitempty"`
	Token            string            `json:"-"`
	InvitedBy        *uuid.UUID        `json:"invited_by,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	ExpiresAt        time.Time         `json:"expires_at"`
	UsedAt           *time.Time        `json:"used_at,omitempty"`
}

// NewInvitation builds an unused invitation with a fresh random token.
func NewInvitation(email string, role Role, proType *ProfessionalType, invitedBy *uuid.UUID, now time.Time, ttl time.Duration) (*Invitation, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role != RoleProfessional {
		proType = nil
	} else if proType != nil && !proType.Valid() {
		return nil, ErrInvalidRole
	}
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	return &Invitation{
		ID:               uuid.New(),
		Email:            email,
		Role:             role,
		ProfessionalType: proType,
		Token:            token,
		InvitedBy:        invitedBy,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}, nil
}

// NewToken returns 32 random bytes, hex encoded.
func NewToken() (string, error) {
	buf := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (i *Invitation) IsUsed() bool { return i.UsedAt != nil }

// IsExpired reports whether the invitation is past its expiry, independent of use.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Validate returns nil when the invitation can still be redeemed at now.
func (i *Invitation) Validate(now time.Time) error {
	if i.IsUsed() {
		return ErrInvitationUsed
	}
	if i.IsExpired(now) {
		return ErrInvitationExpired
	}
	return nil
}

// MarkUsed consumes the invitation.
func (i *Invitation) MarkUsed(now time.Time) error {
	if err := i.Validate(now); err != nil {
		return err
	}
	i.UsedAt = &now
	return nil
}

// CanInvite reports whether a profile with role inviter may invite someone as invitee.
// Admins invite anyone; professionals only invite clients.
func CanInvite(inviter, invitee Role) bool {
	switch inviter {
	case RoleAdmin:
		return invitee.Valid()
	case RoleProfessional:
		return invitee == RoleClient
	}
	return false
}
