// Package items provides PostgreSQL-backed storage for user-owned items.
// Every read and write is filtered by owner, so one user can never see or
// touch another user's rows.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkravetz/sixtyfix/internal/common"
	"github.com/dkravetz/sixtyfix/internal/dbx"
	"github.com/dkravetz/sixtyfix/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements item storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO items (id, user_id, title, data)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, item.ID, item.UserID, item.Title, item.Data).
		Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// Update rewrites title and data for the owner's row, bumps updated_at, and
// reads the timestamps back into item.
func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) error {
	query :=
		`UPDATE items SET title = $3, data = $4, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, item.ID, item.UserID, item.Title, item.Data).
		Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, userID string) (*models.Item, error) {
	query :=
		`SELECT id, user_id, title, data, created_at, updated_at FROM items
		 WHERE id = $1 AND user_id = $2
		 `

	item := &models.Item{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&item.ID, &item.UserID, &item.Title, &item.Data, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// ListByOwner returns the user's items, most recently updated first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Item, error) {
	query :=
		`SELECT id, user_id, title, data, created_at, updated_at FROM items
		 WHERE user_id = $1
		 ORDER BY updated_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.Data, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByIDAndOwner(ctx context.Context, id, userID string) error {
	query :=
		`DELETE FROM items
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
