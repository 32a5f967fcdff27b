package postgres

import (
	"context"

	"alcyxob/ecofit/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type planRequestRepo struct {
	pool *pgxpool.Pool
}

const planRequestColumns = `id, client_id, professional_id, type, status, notes, created_at, updated_at, completed_at`

func scanPlanRequest(row pgx.Row) (domain.PlanRequest, error) {
	var (
		req            domain.PlanRequest
		reqType, state string
	)
	err := row.Scan(&req.ID, &req.ClientID, &req.ProfessionalID, &reqType, &state, &req.Notes,
		&req.CreatedAt, &req.UpdatedAt, &req.CompletedAt)
	req.Type = domain.PlanRequestType(reqType)
	req.Status = domain.PlanRequestStatus(state)
	return req, err
}

func (r *planRequestRepo) Create(ctx context.Context, req *domain.PlanRequest) error {
	query := `
		INSERT INTO plan_requests (` + planRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := executor(ctx, r.pool).Exec(ctx, query,
		req.ID, req.ClientID, req.ProfessionalID, string(req.Type), string(req.Status), req.Notes,
		req.CreatedAt, req.UpdatedAt, req.CompletedAt,
	)
	return mapErr(err)
}

func (r *planRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error) {
	query := `SELECT ` + planRequestColumns + ` FROM plan_requests WHERE id = $1`
	req, err := scanPlanRequest(executor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}

func (r *planRequestRepo) Update(ctx context.Context, req *domain.PlanRequest) error {
	query := `
		UPDATE plan_requests
		SET professional_id = $2, status = $3, notes = $4, updated_at = $5, completed_at = $6
		WHERE id = $1
	`
	tag, err := executor(ctx, r.pool).Exec(ctx, query,
		req.ID, req.ProfessionalID, string(req.Status), req.Notes, req.UpdatedAt, req.CompletedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(tag)
}

func (r *planRequestRepo) list(ctx context.Context, query string, arg any) ([]domain.PlanRequest, error) {
	rows, err := executor(ctx, r.pool).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PlanRequest, error) {
		return scanPlanRequest(row)
	})
}

func (r *planRequestRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.PlanRequest, error) {
	query := `
		SELECT ` + planRequestColumns + `
		FROM plan_requests
		WHERE client_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, clientID)
}

func (r *planRequestRepo) ListOpenForProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.PlanRequest, error) {
	query := `
		SELECT ` + planRequestColumns + `
		FROM plan_requests
		WHERE status IN ('pending', 'in_progress')
		  AND (professional_id IS NULL OR professional_id = $1)
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, professionalID)
}
