package expenses

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennyledger/pennyledger/internal/shared"
)

// Repository provides owner-scoped persistence for user expenses.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID, categoryID int64) ([]Expense, error)
	GetOwned(ctx context.Context, id, ownerID int64) (Expense, error)
	Create(ctx context.Context, expense Expense) (Expense, error)
	Update(ctx context.Context, expense Expense) error
	Delete(ctx context.Context, id, ownerID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectExpense = `SELECT e.id, e.name, e.category_id, c.name, e.owner_id, e.created_at, e.updated_at
FROM user_expenses e JOIN user_categories c ON c.id = e.category_id`

// ListByOwner returns the caller's expenses, optionally restricted to one of
// their categories when categoryID is positive.
func (r *repository) ListByOwner(ctx context.Context, ownerID, categoryID int64) ([]Expense, error) {
	query := selectExpense + ` WHERE e.owner_id = $1`
	args := []any{ownerID}
	if categoryID > 0 {
		query += ` AND e.category_id = $` + strconv.Itoa(len(args)+1)
		args = append(args, categoryID)
	}
	query += ` ORDER BY e.name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Name, &e.CategoryID, &e.CategoryName, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *repository) GetOwned(ctx context.Context, id, ownerID int64) (Expense, error) {
	var e Expense
	err := r.pool.QueryRow(ctx, selectExpense+` WHERE e.id = $1 AND e.owner_id = $2`, id, ownerID).
		Scan(&e.ID, &e.Name, &e.CategoryID, &e.CategoryName, &e.OwnerID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, shared.ErrNotFound
		}
		return Expense{}, err
	}
	return e, nil
}

func (r *repository) Create(ctx context.Context, expense Expense) (Expense, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO user_expenses (name, category_id, owner_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		expense.Name, expense.CategoryID, expense.OwnerID, now).Scan(&expense.ID)
	if err != nil {
		return Expense{}, err
	}
	expense.CreatedAt = now
	expense.UpdatedAt = now
	return expense, nil
}

func (r *repository) Update(ctx context.Context, expense Expense) error {
	tag, err := r.pool.Exec(ctx, `UPDATE user_expenses SET name = $1, category_id = $2, updated_at = NOW() WHERE id = $3 AND owner_id = $4`,
		expense.Name, expense.CategoryID, expense.ID, expense.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_expenses WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
