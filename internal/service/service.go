package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("access denied")
	ErrClientNotFound = errors.New("client not found")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID   uuid.UUID
	Role domain.Role
}

func (p Principal) IsAdmin() bool        { return p.Role == domain.RoleAdmin }
func (p Principal) IsProfessional() bool { return p.Role == domain.RoleProfessional }

// SystemPrincipal acts for operators using the admin CLI.
var SystemPrincipal = Principal{Role: domain.RoleAdmin}

// Clock returns the current instant.
type Clock func() time.Time

// Calendar turns instants into the calendar days the business rules work with.
type Calendar struct {
	Now      Clock
	Location *time.Location
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

// Today is the current calendar day in the configured zone.
func (c Calendar) Today() time.Time {
	return domain.Today(c.now(), c.Location)
}

func requireClient(ctx context.Context, profiles repository.ProfileRepository, id uuid.UUID) (*domain.Profile, error) {
	p, err := profiles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsClient() {
		return nil, ErrClientNotFound
	}
	return p, nil
}

func activeWorkouts(ctx context.Context, workouts repository.WorkoutRepository, clientID uuid.UUID, day time.Time) ([]domain.Workout, error) {
	all, err := workouts.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := []domain.Workout{}
	for _, w := range all {
		if w.IsActive(day) {
			out = append(out, w)
		}
	}
	return out, nil
}

func activeDiets(ctx context.Context, diets repository.DietRepository, clientID uuid.UUID, day time.Time) ([]domain.Diet, error) {
	all, err := diets.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := []domain.Diet{}
	for _, d := range all {
		if d.IsActive(day) {
			out = append(out, d)
		}
	}
	return out, nil
}

// activeKinds reports which plan kinds the client has an active plan for on day.
func activeKinds(ctx context.Context, store *repository.Store, clientID uuid.UUID, day time.Time) (map[domain.PlanKind]bool, error) {
	workouts, err := activeWorkouts(ctx, store.Workouts, clientID, day)
	if err != nil {
		return nil, err
	}
	diets, err := activeDiets(ctx, store.Diets, clientID, day)
	if err != nil {
		return nil, err
	}
	return map[domain.PlanKind]bool{
		domain.PlanKindWorkout: len(workouts) > 0,
		domain.PlanKindDiet:    len(diets) > 0,
	}, nil
}

// servesClient reports whether professionalID works with clientID: they invited
// the client, authored a plan for them, or hold one of their requests.
func servesClient(ctx context.Context, store *repository.Store, professionalID, clientID uuid.UUID) (bool, error) {
	client, err := requireClient(ctx, store.Profiles, clientID)
	if err != nil {
		return false, err
	}

	inv, err := store.Invitations.LatestUsedByEmail(ctx, client.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if inv != nil && inv.InvitedBy != nil && *inv.InvitedBy == professionalID {
		return true, nil
	}

	workouts, err := store.Workouts.ListByClient(ctx, clientID)
	if err != nil {
		return false, err
	}
	for _, w := range workouts {
		if w.ProfessionalID == professionalID {
			return true, nil
		}
	}
	diets, err := store.Diets.ListByClient(ctx, clientID)
	if err != nil {
		return false, err
	}
	for _, d := range diets {
		if d.ProfessionalID == professionalID {
			return true, nil
		}
	}

	requests, err := store.PlanRequests.ListByClient(ctx, clientID)
	if err != nil {
		return false, err
	}
	for _, r := range requests {
		if r.ProfessionalID != nil && *r.ProfessionalID == professionalID {
			return true, nil
		}
	}
	return false, nil
}

// authorizeClientAccess lets admins through and checks professionals with servesClient.
func authorizeClientAccess(ctx context.Context, store *repository.Store, caller Principal, clientID uuid.UUID) error {
	if caller.IsAdmin() {
		_, err := requireClient(ctx, store.Profiles, clientID)
		return err
	}
	if !caller.IsProfessional() {
		return ErrForbidden
	}
	ok, err := servesClient(ctx, store, caller.ID, clientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
