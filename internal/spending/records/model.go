package records

import "time"

// CategoryType discriminates which reference pair a record uses: the global
// catalog (category_id/expense_id) or the caller's own definitions
// (user_category_id/user_expense_id).
type CategoryType string

const (
	// CategoryGlobal records spend against the global catalog.
	CategoryGlobal CategoryType = "global"
	// CategoryUser records spend against the caller's own categories.
	CategoryUser CategoryType = "user"
)

// Record is a single logged expense. Amount is always strictly positive.
type Record struct {
	ID             int64
	CategoryType   CategoryType
	CategoryID     *int64
	UserCategoryID *int64
	ExpenseID      *int64
	UserExpenseID  *int64
	Amount         float64
	Date           time.Time
	Note           string
	OwnerID        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListFilter narrows a record listing. Zero values mean "no filter".
type ListFilter struct {
	StartDate      *time.Time
	EndDate        *time.Time
	CategoryID     int64
	UserCategoryID int64
	Page           int
	PerPage        int
}

// SummaryRow aggregates spend per category over a date range.
type SummaryRow struct {
	CategoryType   CategoryType `json:"category_type"`
	CategoryID     *int64       `json:"category_id,omitempty"`
	UserCategoryID *int64       `json:"user_category_id,omitempty"`
	CategoryName   string       `json:"category_name"`
	Total          float64      `json:"total"`
	Count          int          `json:"count"`
}
