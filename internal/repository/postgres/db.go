// Package postgres implements the repositories on PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"alcyxob/ecofit/internal/repository"

	migrate "github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	// Registers the "pgx" database/sql driver used by the migration connection.
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string, maxConns int) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is required for PostgreSQL")
	}

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate brings the schema at url up to the newest embedded migration and
// returns the version it ends on. Applied versions are recorded in
// schema_migrations, so a second run is a no-op.
func Migrate(url string) (uint, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return 0, fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to initialize migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty, fix it and force the version", version)
	}
	return version, nil
}

// NewStore wires every repository to pool.
func NewStore(pool *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Profiles:     &profileRepo{pool: pool},
		Invitations:  &invitationRepo{pool: pool},
		Diets:        &dietRepo{pool: pool},
		Workouts:     &workoutRepo{pool: pool},
		PlanRequests: &planRequestRepo{pool: pool},
		Sessions:     &sessionRepo{pool: pool},
		Gamification: &gamificationRepo{pool: pool},
		Schedules:    &scheduleRepo{pool: pool},
		Tx:           &Transactor{pool: pool},
		Close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}

type txKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok && tx != nil
}

// dbExecutor abstracts pgxpool.Pool and pgx.Tx.
type dbExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// executor returns the transaction in ctx when present, otherwise the pool.
func executor(ctx context.Context, pool *pgxpool.Pool) dbExecutor {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return pool
}

// Transactor runs a function inside one database transaction. Nested calls
// join the outer transaction.
type Transactor struct {
	pool *pgxpool.Pool
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// withinTx runs fn in the caller's transaction or a fresh one, for repository
// methods that issue several statements.
func withinTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context, db dbExecutor) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(ctx, tx)
	}
	t := &Transactor{pool: pool}
	return t.WithinTx(ctx, func(ctx context.Context) error {
		tx, _ := txFromContext(ctx)
		return fn(ctx, tx)
	})
}

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrConflict
	}
	return err
}

func requireAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullableString[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func fromNullableString[T ~string](s *string) *T {
	if s == nil || *s == "" {
		return nil
	}
	v := T(*s)
	return &v
}
