package postgres

import (
	"context"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type invitationRepo struct {
	pool *pgxpool.Pool
}

const invitationColumns = `id, email, role, professional_type, token, invited_by, created_at, expires_at, used_at`

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var (
		inv     domain.Invitation
		role    string
		proType *string
	)
	err := row.Scan(&inv.ID, &inv.Email, &role, &proType, &inv.Token, &inv.InvitedBy,
		&inv.CreatedAt, &inv.ExpiresAt, &inv.UsedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	inv.Role = domain.Role(role)
	inv.ProfessionalType = fromNullableString[domain.ProfessionalType](proType)
	return &inv, nil
}

func (r *invitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := executor(ctx, r.pool).Exec(ctx, query,
		inv.ID, inv.Email, string(inv.Role), nullableString(inv.ProfessionalType), inv.Token,
		inv.InvitedBy, inv.CreatedAt, inv.ExpiresAt, inv.UsedAt,
	)
	return mapErr(err)
}

func (r *invitationRepo) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(executor(ctx, r.pool).QueryRow(ctx, query, token))
}

func (r *invitationRepo) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	db := executor(ctx, r.pool)
	tag, err := db.Exec(ctx, `UPDATE invitations SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, id, usedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invitations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

func (r *invitationRepo) ListByInviter(ctx context.Context, inviterID uuid.UUID) ([]domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE invited_by = $1
		ORDER BY created_at DESC
	`
	rows, err := executor(ctx, r.pool).Query(ctx, query, inviterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

func (r *invitationRepo) LatestUsedByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE email = $1 AND used_at IS NOT NULL AND invited_by IS NOT NULL
		ORDER BY used_at DESC
		LIMIT 1
	`
	return scanInvitation(executor(ctx, r.pool).QueryRow(ctx, query, email))
}
