package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkravetz/sixtyfix/internal/common"
	"github.com/dkravetz/sixtyfix/internal/dbx"
	"github.com/dkravetz/sixtyfix/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// pg error code for unique_violation
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash, is_verified)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.IsVerified).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetByLogin looks a user up by username or email, whichever matches.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, is_verified, created_at FROM users
		 WHERE username = $1 OR email = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, login).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsVerified, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, is_verified, created_at FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsVerified, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, is_verified, created_at FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsVerified, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// SetVerified marks the user's email as confirmed. Idempotent.
func (r *PostgresRepository) SetVerified(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET is_verified = true
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// Delete removes the user; owned items go with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM users
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
