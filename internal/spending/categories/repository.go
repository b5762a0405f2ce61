package categories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennyledger/pennyledger/internal/shared"
)

// Repository provides owner-scoped persistence for user categories. Every
// lookup is keyed by (id, owner_id); a row owned by someone else is
// indistinguishable from a missing row.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]Category, error)
	GetOwned(ctx context.Context, id, ownerID int64) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, category Category) error
	Delete(ctx context.Context, id, ownerID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description, ''), owner_id, created_at, updated_at FROM user_categories WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) GetOwned(ctx context.Context, id, ownerID int64) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, COALESCE(description, ''), owner_id, created_at, updated_at FROM user_categories WHERE id = $1 AND owner_id = $2`, id, ownerID).
		Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO user_categories (name, description, owner_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		category.Name, category.Description, category.OwnerID, now).Scan(&category.ID)
	if err != nil {
		return Category{}, mapConstraint(err)
	}
	category.CreatedAt = now
	category.UpdatedAt = now
	return category, nil
}

func (r *repository) Update(ctx context.Context, category Category) error {
	tag, err := r.pool.Exec(ctx, `UPDATE user_categories SET name = $1, description = $2, updated_at = NOW() WHERE id = $3 AND owner_id = $4`,
		category.Name, category.Description, category.ID, category.OwnerID)
	if err != nil {
		return mapConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_categories WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}
