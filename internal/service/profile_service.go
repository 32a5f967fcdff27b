package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileUpdate carries the admin-editable fields; nil leaves a field as is.
type ProfileUpdate struct {
	Name             *string
	Role             *domain.Role
	ProfessionalType *domain.ProfessionalType
}

type ProfileService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*domain.Profile, error)
	List(ctx context.Context, role domain.Role) ([]domain.Profile, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*domain.Profile, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	calendar Calendar
}

func NewProfileService(profiles repository.ProfileRepository, calendar Calendar) ProfileService {
	return &profileService{profiles: profiles, calendar: calendar}
}

func (s *profileService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *profileService) UpdateName(ctx context.Context, id uuid.UUID, name string) (*domain.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.UpdatedAt = s.calendar.now()
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *profileService) List(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	if role != "" && !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	return s.profiles.List(ctx, role)
}

// AdminUpdate edits a profile. The professional type is dropped when the role is
// not professional.
func (s *profileService) AdminUpdate(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*domain.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		p.Name = name
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		p.Role = *update.Role
	}
	if update.ProfessionalType != nil {
		if !update.ProfessionalType.Valid() {
			return nil, invalid("unknown professional type %q", *update.ProfessionalType)
		}
		t := *update.ProfessionalType
		p.ProfessionalType = &t
	}
	if p.Role != domain.RoleProfessional {
		p.ProfessionalType = nil
	}

	p.UpdatedAt = s.calendar.now()
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
