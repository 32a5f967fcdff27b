package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes what a profile may do in the system.
type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}

// ProfessionalType narrows which plan kinds a professional authors.
type ProfessionalType string

const (
	ProfessionalTrainer      ProfessionalType = "trainer"
	ProfessionalNutritionist ProfessionalType = "nutritionist"
	ProfessionalBoth         ProfessionalType = "both"
)

func (t ProfessionalType) Valid() bool {
	switch t {
	case ProfessionalTrainer, ProfessionalNutritionist, ProfessionalBoth:
		return true
	}
	return false
}

// CanAuthor reports whether a professional of this type may author plans of kind k.
func (t ProfessionalType) CanAuthor(k PlanKind) bool {
	switch t {
	case ProfessionalTrainer:
		return k == PlanKindWorkout
	case ProfessionalNutritionist:
		return k == PlanKindDiet
	default:
		return true
	}
}

// Profile is a person using the system. Profiles are never hard-deleted.
type Profile struct {
	ID               uuid.UUID         `json:"id"`
	Email            string            `json:"email"`
	Name             string            `json:"name"`
	Role             Role              `json:"role"`
	ProfessionalType *ProfessionalType `json:"professional_type,omitempty"`
	PasswordHash     string            `json:"-"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (p *Profile) IsClient() bool       { return p.Role == RoleClient }
func (p *Profile) IsProfessional() bool { return p.Role == RoleProfessional }
func (p *Profile) IsAdmin() bool        { return p.Role == RoleAdmin }

// CanAuthor reports whether the profile may author a plan of kind k.
// Professionals without a sub-type are treated as covering both kinds.
func (p *Profile) CanAuthor(k PlanKind) bool {
	if !p.IsProfessional() {
		return false
	}
	if p.ProfessionalType == nil {
		return true
	}
	return p.ProfessionalType.CanAuthor(k)
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
