package service

import (
	"context"
	"errors"
	"log/slog"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
)

type PlanRequestService interface {
	// Create applies the request guards and assigns a professional with the matcher.
	Create(ctx context.Context, clientID uuid.UUID, requestType domain.PlanRequestType, notes string) (*domain.PlanRequest, error)
	ListMine(ctx context.Context, clientID uuid.UUID) ([]domain.PlanRequest, error)
	Cancel(ctx context.Context, clientID, id uuid.UUID) (*domain.PlanRequest, error)
	ListOpen(ctx context.Context, professionalID uuid.UUID) ([]domain.PlanRequest, error)
	Claim(ctx context.Context, professionalID, id uuid.UUID) (*domain.PlanRequest, error)
}

type planRequestService struct {
	store    *repository.Store
	calendar Calendar
	logger   *slog.Logger
}

func NewPlanRequestService(store *repository.Store, calendar Calendar, logger *slog.Logger) PlanRequestService {
	return &planRequestService{store: store, calendar: calendar, logger: logger}
}

func (s *planRequestService) Create(ctx context.Context, clientID uuid.UUID, requestType domain.PlanRequestType, notes string) (*domain.PlanRequest, error) {
	if !requestType.Valid() {
		return nil, domain.ErrInvalidRequestType
	}

	var created *domain.PlanRequest
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		client, err := requireClient(ctx, s.store.Profiles, clientID)
		if err != nil {
			return err
		}

		// 1. Guards
		kinds, err := activeKinds(ctx, s.store, clientID, s.calendar.Today())
		if err != nil {
			return err
		}
		existing, err := s.store.PlanRequests.ListByClient(ctx, clientID)
		if err != nil {
			return err
		}
		if err := domain.CheckPlanRequestAllowed(requestType, kinds, existing); err != nil {
			return err
		}

		// 2. Matcher
		professionalID, err := s.matchProfessional(ctx, client)
		if err != nil {
			return err
		}

		req, err := domain.NewPlanRequest(clientID, professionalID, requestType, notes, s.calendar.now())
		if err != nil {
			return err
		}
		if err := s.store.PlanRequests.Create(ctx, req); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "plan request created",
		"plan_request_id", created.ID,
		"type", created.Type,
		"assigned", created.ProfessionalID != nil,
	)
	return created, nil
}

func (s *planRequestService) matchProfessional(ctx context.Context, client *domain.Profile) (*uuid.UUID, error) {
	inv, err := s.store.Invitations.LatestUsedByEmail(ctx, client.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var prior []*domain.Plan
	workouts, err := s.store.Workouts.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	if len(workouts) > 0 {
		prior = append(prior, &workouts[0].Plan)
	}
	diets, err := s.store.Diets.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	if len(diets) > 0 {
		prior = append(prior, &diets[0].Plan)
	}

	return domain.MatchProfessional(inv, prior...), nil
}

func (s *planRequestService) ListMine(ctx context.Context, clientID uuid.UUID) ([]domain.PlanRequest, error) {
	return s.store.PlanRequests.ListByClient(ctx, clientID)
}

func (s *planRequestService) get(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error) {
	req, err := s.store.PlanRequests.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPlanRequestNotFound
	}
	return req, err
}

func (s *planRequestService) Cancel(ctx context.Context, clientID, id uuid.UUID) (*domain.PlanRequest, error) {
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ClientID != clientID {
		return nil, ErrForbidden
	}
	if err := req.Cancel(s.calendar.now()); err != nil {
		return nil, err
	}
	if err := s.store.PlanRequests.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *planRequestService) ListOpen(ctx context.Context, professionalID uuid.UUID) ([]domain.PlanRequest, error) {
	return s.store.PlanRequests.ListOpenForProfessional(ctx, professionalID)
}

func (s *planRequestService) Claim(ctx context.Context, professionalID, id uuid.UUID) (*domain.PlanRequest, error) {
	var claimed *domain.PlanRequest
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if err := req.Claim(professionalID, s.calendar.now()); err != nil {
			return err
		}
		if err := s.store.PlanRequests.Update(ctx, req); err != nil {
			return err
		}
		claimed = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}
