package catalog

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Service serves the global catalog through the cache. Concurrent cache
// fills for the same key collapse into a single repository query.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewService constructs a Service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ListCategories returns every global category.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	key, err := s.cache.BuildKey(ctx, "catalog", "categories")
	if err != nil {
		return nil, err
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		var categories []Category
		err := s.cache.FetchJSON(ctx, key, &categories, func(ctx context.Context) (any, error) {
			return s.repo.ListCategories(ctx)
		})
		return categories, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]Category), nil
}

// ListExpenses returns predefined expenses, optionally filtered by category.
func (s *Service) ListExpenses(ctx context.Context, categoryID int64) ([]Expense, error) {
	if categoryID < 0 {
		categoryID = 0
	}
	key, err := s.cache.BuildKey(ctx, "catalog", "expenses", strconv.FormatInt(categoryID, 10))
	if err != nil {
		return nil, err
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		var expenses []Expense
		err := s.cache.FetchJSON(ctx, key, &expenses, func(ctx context.Context) (any, error) {
			return s.repo.ListExpenses(ctx, categoryID)
		})
		return expenses, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]Expense), nil
}

// CategoryExists reports whether a global category id is valid.
func (s *Service) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return s.repo.CategoryExists(ctx, id)
}

// ExpenseExists reports whether a global expense id is valid.
func (s *Service) ExpenseExists(ctx context.Context, id int64) (bool, error) {
	return s.repo.ExpenseExists(ctx, id)
}

// Invalidate bumps the cache version so every cached listing is reloaded.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warm pre-populates the cached listings. Used by the background worker.
func (s *Service) Warm(ctx context.Context) error {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ListExpenses(ctx, 0); err != nil {
		return err
	}
	for _, c := range categories {
		if _, err := s.ListExpenses(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}
