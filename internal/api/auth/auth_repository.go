package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/devfolio/portfolio-api/internal/api"
	"github.com/devfolio/portfolio-api/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the contract for user and token-revocation persistence.
type AuthRepo interface {
	// CreateUser inserts a new user with an already-hashed password.
	// Returns types.ErrConflict when the email is taken.
	CreateUser(ctx context.Context, name, email, hashedPassword string) (*types.User, error)

	// GetUserByEmail returns types.ErrNotFound when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// GetUserByID returns types.ErrNotFound when no such user exists.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// RevokeToken records a token id so the middleware rejects it until it
	// would have expired anyway.
	RevokeToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error

	// IsTokenRevoked reports whether a token id has been revoked.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     api.DB
}

func NewPostgresAuthRepo(db api.DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, name, email, hashedPassword string) (*types.User, error) {
	var user types.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
         VALUES ($1, $2, $3)
         RETURNING id, name, email, created_at, updated_at`,
		name, email, hashedPassword).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("email already registered: %w", types.ErrConflict)
		}
		return nil, fmt.Errorf("create user: db insert failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
         FROM users WHERE email = $1`,
		email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: query failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	var user types.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
         FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by id: query failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) RevokeToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO revoked_tokens (jti, user_id, expires_at)
         VALUES ($1, $2, $3)
         ON CONFLICT (jti) DO NOTHING`,
		jti, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("revoke token: db insert failed: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`,
		jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("is token revoked: query failed: %w", err)
	}
	return revoked, nil
}
