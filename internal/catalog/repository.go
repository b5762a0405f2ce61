package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides read access to the global catalog.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListExpenses(ctx context.Context, categoryID int64) ([]Expense, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	ExpenseExists(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description, '') FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListExpenses returns all predefined expenses, or only those in the given
// category when categoryID is positive.
func (r *repository) ListExpenses(ctx context.Context, categoryID int64) ([]Expense, error) {
	query := `SELECT e.id, e.name, e.category_id, c.name FROM expenses e JOIN categories c ON c.id = e.category_id`
	args := []any{}
	if categoryID > 0 {
		query += ` WHERE e.category_id = $1`
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
		if err := rows.Scan(&e.ID, &e.Name, &e.CategoryID, &e.CategoryName); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repository) ExpenseExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM expenses WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
