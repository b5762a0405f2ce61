package categories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pennyledger/pennyledger/internal/shared"
)

// Service applies ownership and validation rules for user categories.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns the caller's categories.
func (s *Service) List(ctx context.Context, caller shared.Identity) ([]Category, error) {
	return s.repo.ListByOwner(ctx, caller.UserID)
}

// Get returns a single category owned by the caller.
func (s *Service) Get(ctx context.Context, caller shared.Identity, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrNotFound
	}
	return s.repo.GetOwned(ctx, id, caller.UserID)
}

// Create stores a new category owned by the caller. Any owner supplied by
// the client is ignored.
func (s *Service) Create(ctx context.Context, caller shared.Identity, name, description string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", shared.ErrInvalidInput)
	}
	created, err := s.repo.Create(ctx, Category{
		Name:        name,
		Description: description,
		OwnerID:     caller.UserID,
	})
	if err != nil {
		return Category{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "create",
		Entity:   "user_category",
		EntityID: strconv.FormatInt(created.ID, 10),
		Meta:     map[string]any{"name": created.Name},
	})
	return created, nil
}

// Update applies partial changes to a category owned by the caller.
func (s *Service) Update(ctx context.Context, caller shared.Identity, id int64, name, description *string) (Category, error) {
	current, err := s.Get(ctx, caller, id)
	if err != nil {
		return Category{}, err
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return Category{}, fmt.Errorf("%w: category name is required", shared.ErrInvalidInput)
		}
		current.Name = trimmed
	}
	if description != nil {
		current.Description = *description
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Category{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  caller.UserID,
		Action:   "update",
		Entity:   "user_category",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"name": current.Name},
	})
	return current, nil
}

// Delete removes a category owned by the caller.
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
		Entity:   "user_category",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}
