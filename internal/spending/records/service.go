package records

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pennyledger/pennyledger/internal/shared"
	"github.com/pennyledger/pennyledger/internal/spending/categories"
	"github.com/pennyledger/pennyledger/internal/spending/expenses"
)

// CatalogResolver validates references into the global catalog.
type CatalogResolver interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
	ExpenseExists(ctx context.Context, id int64) (bool, error)
}

// UserCategoryResolver validates a user category reference against the
// caller's ownership.
type UserCategoryResolver interface {
	Get(ctx context.Context, caller shared.Identity, id int64) (categories.Category, error)
}

// UserExpenseResolver validates a user expense reference against the
// caller's ownership.
type UserExpenseResolver interface {
	Get(ctx context.Context, caller shared.Identity, id int64) (expenses.Expense, error)
}

// Input carries the writable fields of a record.
type Input struct {
	CategoryType   string  `validate:"required,oneof=global user"`
	CategoryID     *int64  `validate:"omitempty,gt=0"`
	UserCategoryID *int64  `validate:"omitempty,gt=0"`
	ExpenseID      *int64  `validate:"omitempty,gt=0"`
	UserExpenseID  *int64  `validate:"omitempty,gt=0"`
	Amount         float64 `validate:"required,gt=0"`
	Date           time.Time
	Note           string
}

// Service applies ownership, validation and cross-reference rules for
// expense records.
type Service struct {
	repo           Repository
	catalog        CatalogResolver
	userCategories UserCategoryResolver
	userExpenses   UserExpenseResolver
	audit          *shared.AuditLogger
	validate       *validator.Validate
}

// NewService constructs a Service.
func NewService(repo Repository, catalog CatalogResolver, userCategories UserCategoryResolver, userExpenses UserExpenseResolver, audit *shared.AuditLogger) *Service {
	return &Service{
		repo:           repo,
		catalog:        catalog,
		userCategories: userCategories,
		userExpenses:   userExpenses,
		audit:          audit,
		validate:       validator.New(),
	}
}

// List returns the caller's records, filtered and paginated.
func (s *Service) List(ctx context.Context, caller shared.Identity, filter ListFilter) ([]Record, int, error) {
	return s.repo.ListByOwner(ctx, caller.UserID, filter)
}

// Get returns a single record owned by the caller.
func (s *Service) Get(ctx context.Context, caller shared.Identity, id int64) (Record, error) {
	if id <= 0 {
		return Record{}, shared.ErrNotFound
	}
	return s.repo.GetOwned(ctx, id, caller.UserID)
}

// Create stores a new record owned by the caller.
func (s *Service) Create(ctx context.Context, caller shared.Identity, input Input) (Record, error) {
	record, err := s.buildRecord(ctx, caller, input)
	if err != nil {
		return Record{}, err
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return Record{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "create",
		Entity:   "expense_record",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"amount": created.Amount, "category_type": string(created.CategoryType)},
	})
	return created, nil
}

// UpdateInput carries partial changes to a record. Nil fields keep the
// current value.
type UpdateInput struct {
	CategoryType   *string
	CategoryID     *int64
	UserCategoryID *int64
	ExpenseID      *int64
	UserExpenseID  *int64
	Amount         *float64
	Date           *time.Time
	Note           *string
}

// Update merges the changes onto the stored record and revalidates the
// result, including reference ownership.
func (s *Service) Update(ctx context.Context, caller shared.Identity, id int64, changes UpdateInput) (Record, error) {
	current, err := s.Get(ctx, caller, id)
	if err != nil {
		return Record{}, err
	}

	merged := Input{
		CategoryType:   string(current.CategoryType),
		CategoryID:     current.CategoryID,
		UserCategoryID: current.UserCategoryID,
		ExpenseID:      current.ExpenseID,
		UserExpenseID:  current.UserExpenseID,
		Amount:         current.Amount,
		Date:           current.Date,
		Note:           current.Note,
	}
	if changes.CategoryType != nil {
		merged.CategoryType = *changes.CategoryType
	}
	if changes.CategoryID != nil {
		merged.CategoryID = changes.CategoryID
	}
	if changes.UserCategoryID != nil {
		merged.UserCategoryID = changes.UserCategoryID
	}
	if changes.ExpenseID != nil {
		merged.ExpenseID = changes.ExpenseID
	}
	if changes.UserExpenseID != nil {
		merged.UserExpenseID = changes.UserExpenseID
	}
	if changes.Amount != nil {
		merged.Amount = *changes.Amount
	}
	if changes.Date != nil {
		merged.Date = *changes.Date
	}
	if changes.Note != nil {
		merged.Note = *changes.Note
	}

	record, err := s.buildRecord(ctx, caller, merged)
	if err != nil {
		return Record{}, err
	}
	record.ID = current.ID
	record.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, record); err != nil {
		return Record{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "update",
		Entity:   "expense_record",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"amount": record.Amount, "category_type": string(record.CategoryType)},
	})
	return record, nil
}

// Delete removes a record owned by the caller.
func (s *Service) Delete(ctx context.Context, caller shared.Identity, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.Delete(ctx, id, caller.UserID); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "delete",
		Entity:   "expense_record",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

// Summarize aggregates the caller's spend per category over a date range.
func (s *Service) Summarize(ctx context.Context, caller shared.Identity, start, end *time.Time) ([]SummaryRow, error) {
	return s.repo.SummarizeByOwner(ctx, caller.UserID, start, end)
}

// buildRecord validates the input and resolves every reference under the
// caller's identity. The owner is always the caller.
func (s *Service) buildRecord(ctx context.Context, caller shared.Identity, input Input) (Record, error) {
	if err := s.validate.Struct(input); err != nil {
		return Record{}, inputError(err)
	}

	record := Record{
		CategoryType: CategoryType(input.CategoryType),
		Amount:       input.Amount,
		Date:         input.Date,
		Note:         input.Note,
		OwnerID:      caller.UserID,
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	switch record.CategoryType {
	case CategoryGlobal:
		// References into the other family are dropped, mirroring the type switch.
		record.CategoryID = input.CategoryID
		record.ExpenseID = input.ExpenseID
		if record.CategoryID != nil {
			ok, err := s.catalog.CategoryExists(ctx, *record.CategoryID)
			if err != nil {
				return Record{}, err
			}
			if !ok {
				return Record{}, fmt.Errorf("%w: category %d", shared.ErrInvalidReference, *record.CategoryID)
			}
		}
		if record.ExpenseID != nil {
			ok, err := s.catalog.ExpenseExists(ctx, *record.ExpenseID)
			if err != nil {
				return Record{}, err
			}
			if !ok {
				return Record{}, fmt.Errorf("%w: expense %d", shared.ErrInvalidReference, *record.ExpenseID)
			}
		}
	case CategoryUser:
		record.UserCategoryID = input.UserCategoryID
		record.UserExpenseID = input.UserExpenseID
		if record.UserCategoryID != nil {
			if _, err := s.userCategories.Get(ctx, caller, *record.UserCategoryID); err != nil {
				return Record{}, refError(err, "user category", *record.UserCategoryID)
			}
		}
		if record.UserExpenseID != nil {
			if _, err := s.userExpenses.Get(ctx, caller, *record.UserExpenseID); err != nil {
				return Record{}, refError(err, "user expense", *record.UserExpenseID)
			}
		}
	}
	return record, nil
}

func refError(err error, kind string, id int64) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", shared.ErrInvalidReference, kind, id)
	}
	return err
}

// inputError folds validator failures into the input sentinel with a message
// naming the first offending field.
func inputError(err error) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		switch fields[0].Field() {
		case "Amount":
			return fmt.Errorf("%w: amount must be greater than zero", shared.ErrInvalidInput)
		case "CategoryType":
			return fmt.Errorf("%w: category_type must be global or user", shared.ErrInvalidInput)
		default:
			return fmt.Errorf("%w: %s", shared.ErrInvalidInput, fields[0].Field())
		}
	}
	return fmt.Errorf("%w: invalid record payload", shared.ErrInvalidInput)
}
