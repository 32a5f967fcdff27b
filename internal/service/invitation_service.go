package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/mail"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvitationInvalid = errors.New("invitation is invalid, used or expired")
	ErrEmailTaken        = errors.New("a profile with this email already exists")
)

type CreateInvitationInput struct {
	Email            string
	Role             domain.Role
	ProfessionalType *domain.ProfessionalType
}

// InvitationResult reports the stored invitation and whether its email went out.
type InvitationResult struct {
	Invitation *domain.Invitation
	AcceptURL  string
	EmailSent  bool
}

// InvitationStatus is the public answer to "is this token usable".
type InvitationStatus struct {
	Valid            bool                     `json:"valid"`
	Reason           string                   `json:"reason,omitempty"`
	Email            string                   `json:"email,omitempty"`
	Role             domain.Role              `json:"role,omitempty"`
	ProfessionalType *domain.ProfessionalType `json:"professional_type,omitempty"`
	ExpiresAt        *time.Time               `json:"expires_at,omitempty"`
}

type CreateAccountInput struct {
	Token    string
	Name     string
	Password string
}

type InvitationService interface {
	Create(ctx context.Context, inviter Principal, input CreateInvitationInput) (*InvitationResult, error)
	Check(ctx context.Context, token string) (*InvitationStatus, error)
	CreateAccount(ctx context.Context, input CreateAccountInput) (token string, profile *domain.Profile, err error)
	ListMine(ctx context.Context, inviter Principal) ([]domain.Invitation, error)
}

type invitationService struct {
	store    *repository.Store
	auth     AuthService
	mailer   mail.Mailer
	ttl      time.Duration
	baseURL  string
	calendar Calendar
	logger   *slog.Logger
}

func NewInvitationService(store *repository.Store, auth AuthService, mailer mail.Mailer, ttl time.Duration, baseURL string, calendar Calendar, logger *slog.Logger) InvitationService {
	return &invitationService{
		store:    store,
		auth:     auth,
		mailer:   mailer,
		ttl:      ttl,
		baseURL:  strings.TrimRight(baseURL, "/"),
		calendar: calendar,
		logger:   logger,
	}
}

func (s *invitationService) acceptURL(token string) string {
	return s.baseURL + "/accept-invite?token=" + url.QueryEscape(token)
}

// Create stores the invitation first; the email is best effort and only
// reported through EmailSent.
func (s *invitationService) Create(ctx context.Context, inviter Principal, input CreateInvitationInput) (*InvitationResult, error) {
	if !input.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if !domain.CanInvite(inviter.Role, input.Role) {
		return nil, ErrForbidden
	}

	email := domain.NormalizeEmail(input.Email)
	if _, err := s.store.Profiles.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var invitedBy *uuid.UUID
	inviterName := ""
	if inviter.ID != uuid.Nil {
		id := inviter.ID
		invitedBy = &id
		if p, err := s.store.Profiles.GetByID(ctx, id); err == nil {
			inviterName = p.Name
		}
	}

	inv, err := domain.NewInvitation(email, input.Role, input.ProfessionalType, invitedBy, s.calendar.now(), s.ttl)
	if err != nil {
		return nil, err
	}
	if err := s.store.Invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	result := &InvitationResult{Invitation: inv, AcceptURL: s.acceptURL(inv.Token)}
	msg, err := mail.RenderInvitation(mail.InvitationEmail{
		To:          inv.Email,
		InviterName: inviterName,
		Role:        string(inv.Role),
		AcceptURL:   result.AcceptURL,
		ExpiresAt:   inv.ExpiresAt,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "invitation email failed", "invitation_id", inv.ID, "error", err)
	} else {
		result.EmailSent = true
	}

	s.logger.InfoContext(ctx, "invitation created",
		"invitation_id", inv.ID,
		"role", inv.Role,
		"email_sent", result.EmailSent,
	)
	return result, nil
}

func (s *invitationService) Check(ctx context.Context, token string) (*InvitationStatus, error) {
	inv, err := s.store.Invitations.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return &InvitationStatus{Valid: false, Reason: "not_found"}, nil
	}
	if err != nil {
		return nil, err
	}

	status := &InvitationStatus{
		Email:            inv.Email,
		Role:             inv.Role,
		ProfessionalType: inv.ProfessionalType,
		ExpiresAt:        &inv.ExpiresAt,
	}
	switch err := inv.Validate(s.calendar.now()); {
	case errors.Is(err, domain.ErrInvitationUsed):
		status.Reason = "used"
	case errors.Is(err, domain.ErrInvitationExpired):
		status.Reason = "expired"
	default:
		status.Valid = true
	}
	return status, nil
}

// CreateAccount redeems the invitation and creates the profile in one transaction.
func (s *invitationService) CreateAccount(ctx context.Context, input CreateAccountInput) (string, *domain.Profile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", nil, invalid("name is required")
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return "", nil, err
	}

	now := s.calendar.now()
	var profile *domain.Profile
	err = s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.store.Invitations.GetByToken(ctx, input.Token)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvitationInvalid
		}
		if err != nil {
			return err
		}
		if err := inv.MarkUsed(now); err != nil {
			return errors.Join(ErrInvitationInvalid, err)
		}

		profile = &domain.Profile{
			ID:               uuid.New(),
			Email:            inv.Email,
			Name:             name,
			Role:             inv.Role,
			ProfessionalType: inv.ProfessionalType,
			PasswordHash:     hash,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.store.Profiles.Create(ctx, profile); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailTaken
			}
			return err
		}
		if err := s.store.Invitations.MarkUsed(ctx, inv.ID, now); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrInvitationInvalid
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.auth.IssueToken(profile)
	if err != nil {
		return "", nil, err
	}
	s.logger.InfoContext(ctx, "account created", "profile_id", profile.ID, "role", profile.Role)
	return token, profile, nil
}

func (s *invitationService) ListMine(ctx context.Context, inviter Principal) ([]domain.Invitation, error) {
	return s.store.Invitations.ListByInviter(ctx, inviter.ID)
}
