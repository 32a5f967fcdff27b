package postgres

import (
	"context"
	"time"

	"alcyxob/ecofit/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type profileRepo struct {
	pool *pgxpool.Pool
}

const profileColumns = `id, email, name, role, professional_type, password_hash, created_at, updated_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		p       domain.Profile
		role    string
		proType *string
	)
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &role, &proType, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	p.Role = domain.Role(role)
	p.ProfessionalType = fromNullableString[domain.ProfessionalType](proType)
	return &p, nil
}

func (r *profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := executor(ctx, r.pool).Exec(ctx, query,
		p.ID, p.Email, p.Name, string(p.Role), nullableString(p.ProfessionalType),
		p.PasswordHash, p.CreatedAt, p.UpdatedAt,
	)
	return mapErr(err)
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(executor(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(executor(ctx, r.pool).QueryRow(ctx, query, email))
}

func (r *profileRepo) List(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE $1 = '' OR role = $1
		ORDER BY name, created_at
	`
	rows, err := executor(ctx, r.pool).Query(ctx, query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) Update(ctx context.Context, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET name = $2, role = $3, professional_type = $4, password_hash = $5, updated_at = $6
		WHERE id = $1
	`
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	tag, err := executor(ctx, r.pool).Exec(ctx, query,
		p.ID, p.Name, string(p.Role), nullableString(p.ProfessionalType), p.PasswordHash, p.UpdatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(tag)
}
