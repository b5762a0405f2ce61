package records

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennyledger/pennyledger/internal/shared"
)

// Repository provides owner-scoped persistence for expense records.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID int64, filter ListFilter) ([]Record, int, error)
	GetOwned(ctx context.Context, id, ownerID int64) (Record, error)
	Create(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, record Record) error
	Delete(ctx context.Context, id, ownerID int64) error
	SummarizeByOwner(ctx context.Context, ownerID int64, start, end *time.Time) ([]SummaryRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const recordColumns = `id, category_type, category_id, user_category_id, expense_id, user_expense_id, amount, date, COALESCE(note, ''), owner_id, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.CategoryType, &rec.CategoryID, &rec.UserCategoryID, &rec.ExpenseID, &rec.UserExpenseID, &rec.Amount, &rec.Date, &rec.Note, &rec.OwnerID, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

// ListByOwner uses a dynamically built filter clause, the same shape for the
// count and the page query.
func (r *repository) ListByOwner(ctx context.Context, ownerID int64, filter ListFilter) ([]Record, int, error) {
	where := ` WHERE owner_id = $1`
	args := []any{ownerID}

	addFilter := func(clause string, value any) {
		where += ` AND ` + clause + `$` + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if filter.StartDate != nil {
		addFilter("date >= ", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addFilter("date <= ", *filter.EndDate)
	}
	if filter.CategoryID > 0 {
		addFilter("category_id = ", filter.CategoryID)
	}
	if filter.UserCategoryID > 0 {
		addFilter("user_category_id = ", filter.UserCategoryID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expense_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + recordColumns + ` FROM expense_records` + where + ` ORDER BY date DESC, id DESC`
	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filter.PerPage, (page-1)*filter.PerPage)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, rec)
	}
	return result, total, rows.Err()
}

func (r *repository) GetOwned(ctx context.Context, id, ownerID int64) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM expense_records WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *repository) Create(ctx context.Context, record Record) (Record, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO expense_records (category_type, category_id, user_category_id, expense_id, user_expense_id, amount, date, note, owner_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`,
		record.CategoryType, record.CategoryID, record.UserCategoryID, record.ExpenseID, record.UserExpenseID, record.Amount, record.Date, record.Note, record.OwnerID, now).Scan(&record.ID)
	if err != nil {
		return Record{}, err
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	return record, nil
}

func (r *repository) Update(ctx context.Context, record Record) error {
	tag, err := r.pool.Exec(ctx, `UPDATE expense_records SET category_type = $1, category_id = $2, user_category_id = $3, expense_id = $4, user_expense_id = $5, amount = $6, date = $7, note = $8, updated_at = NOW()
WHERE id = $9 AND owner_id = $10`,
		record.CategoryType, record.CategoryID, record.UserCategoryID, record.ExpenseID, record.UserExpenseID, record.Amount, record.Date, record.Note, record.ID, record.OwnerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expense_records WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SummarizeByOwner totals spend per referenced category over the range.
// Records without a category reference fall into an "uncategorized" bucket.
func (r *repository) SummarizeByOwner(ctx context.Context, ownerID int64, start, end *time.Time) ([]SummaryRow, error) {
	where := ` WHERE r.owner_id = $1`
	args := []any{ownerID}
	if start != nil {
		where += ` AND r.date >= $` + strconv.Itoa(len(args)+1)
		args = append(args, *start)
	}
	if end != nil {
		where += ` AND r.date <= $` + strconv.Itoa(len(args)+1)
		args = append(args, *end)
	}

	query := `SELECT r.category_type, r.category_id, r.user_category_id,
COALESCE(gc.name, uc.name, 'uncategorized'), SUM(r.amount), COUNT(*)
FROM expense_records r
LEFT JOIN categories gc ON gc.id = r.category_id
LEFT JOIN user_categories uc ON uc.id = r.user_category_id` + where + `
GROUP BY r.category_type, r.category_id, r.user_category_id, gc.name, uc.name
ORDER BY SUM(r.amount) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.CategoryType, &row.CategoryID, &row.UserCategoryID, &row.CategoryName, &row.Total, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
