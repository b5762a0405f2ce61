package expenses

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pennyledger/pennyledger/internal/spending/categories"
	"github.com/pennyledger/pennyledger/internal/shared"
)

// CategoryResolver checks that a user category exists and is owned by the
// caller before a reference to it is accepted.
type CategoryResolver interface {
	Get(ctx context.Context, caller shared.Identity, id int64) (categories.Category, error)
}

// Service applies ownership and cross-reference rules for user expenses.
type Service struct {
	repo       Repository
	categories CategoryResolver
	audit      *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, resolver CategoryResolver, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, categories: resolver, audit: audit}
}

// List returns the caller's expenses, optionally filtered by category.
func (s *Service) List(ctx context.Context, caller shared.Identity, categoryID int64) ([]Expense, error) {
	return s.repo.ListByOwner(ctx, caller.UserID, categoryID)
}

// Get returns a single expense owned by the caller.
func (s *Service) Get(ctx context.Context, caller shared.Identity, id int64) (Expense, error) {
	if id <= 0 {
		return Expense{}, shared.ErrNotFound
	}
	return s.repo.GetOwned(ctx, id, caller.UserID)
}

// Create stores a new expense owned by the caller. The referenced category
// must pass the same ownership check; a category owned by another user is
// rejected exactly like a nonexistent one.
func (s *Service) Create(ctx context.Context, caller shared.Identity, name string, categoryID int64) (Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" || categoryID <= 0 {
		return Expense{}, fmt.Errorf("%w: expense name and category id are required", shared.ErrInvalidInput)
	}
	category, err := s.resolveCategory(ctx, caller, categoryID)
	if err != nil {
		return Expense{}, err
	}
	created, err := s.repo.Create(ctx, Expense{
		Name:       name,
		CategoryID: category.ID,
		OwnerID:    caller.UserID,
	})
	if err != nil {
		return Expense{}, err
	}
	created.CategoryName = category.Name
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "create",
		Entity:   "user_expense",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"name": created.Name, "category_id": created.CategoryID},
	})
	return created, nil
}

// Update applies partial changes to an expense owned by the caller. A new
// category reference is cross-checked against the caller's ownership.
func (s *Service) Update(ctx context.Context, caller shared.Identity, id int64, name *string, categoryID *int64) (Expense, error) {
	current, err := s.Get(ctx, caller, id)
	if err != nil {
		return Expense{}, err
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return Expense{}, fmt.Errorf("%w: expense name is required", shared.ErrInvalidInput)
		}
		current.Name = trimmed
	}
	if categoryID != nil {
		category, err := s.resolveCategory(ctx, caller, *categoryID)
		if err != nil {
			return Expense{}, err
		}
		current.CategoryID = category.ID
		current.CategoryName = category.Name
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Expense{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "update",
		Entity:   "user_expense",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"name": current.Name, "category_id": current.CategoryID},
	})
	return current, nil
}

// Delete removes an expense owned by the caller.
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
		Entity:   "user_expense",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

func (s *Service) resolveCategory(ctx context.Context, caller shared.Identity, categoryID int64) (categories.Category, error) {
	category, err := s.categories.Get(ctx, caller, categoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return categories.Category{}, fmt.Errorf("%w: category %d", shared.ErrInvalidReference, categoryID)
		}
		return categories.Category{}, err
	}
	return category, nil
}
