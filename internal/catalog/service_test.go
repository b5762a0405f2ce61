package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalogRepo struct {
	categories    []Category
	expenses      []Expense
	categoryCalls int
	expenseCalls  int
}

func (m *mockCatalogRepo) ListCategories(ctx context.Context) ([]Category, error) {
	m.categoryCalls++
	return m.categories, nil
}

func (m *mockCatalogRepo) ListExpenses(ctx context.Context, categoryID int64) ([]Expense, error) {
	m.expenseCalls++
	if categoryID <= 0 {
		return m.expenses, nil
	}
	var out []Expense
	for _, e := range m.expenses {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) CategoryExists(ctx context.Context, id int64) (bool, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCatalogRepo) ExpenseExists(ctx context.Context, id int64) (bool, error) {
	for _, e := range m.expenses {
		if e.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func newFixture(t *testing.T) (*Service, *mockCatalogRepo, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &mockCatalogRepo{
		categories: []Category{
			{ID: 1, Name: "Food", Description: "groceries and dining"},
			{ID: 2, Name: "Transport"},
		},
		expenses: []Expense{
			{ID: 10, Name: "Lunch", CategoryID: 1, CategoryName: "Food"},
			{ID: 11, Name: "Bus ticket", CategoryID: 2, CategoryName: "Transport"},
		},
	}
	cache := NewCache(client, time.Minute)
	return NewService(repo, cache), repo, cache
}

func TestListCategoriesCaches(t *testing.T) {
	svc, repo, _ := newFixture(t)
	ctx := context.Background()

	first, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.categoryCalls, "second read must come from cache")
}

func TestListExpensesFilterKeysAreDistinct(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	all, err := svc.ListExpenses(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	food, err := svc.ListExpenses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "Lunch", food[0].Name)
}

func TestInvalidateReloadsFromRepository(t *testing.T) {
	svc, repo, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.ListCategories(ctx)
	require.NoError(t, err)

	repo.categories = append(repo.categories, Category{ID: 3, Name: "Hobbies"})
	require.NoError(t, svc.Invalidate(ctx))

	reloaded, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, reloaded, 3)
	assert.Equal(t, 2, repo.categoryCalls)
}

func TestNilCacheClientLoadsDirect(t *testing.T) {
	repo := &mockCatalogRepo{categories: []Category{{ID: 1, Name: "Food"}}}
	svc := NewService(repo, NewCache(nil, time.Minute))

	for i := 0; i < 2; i++ {
		categories, err := svc.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	}
	assert.Equal(t, 2, repo.categoryCalls, "without redis every read hits the repository")
}

func TestWarmPopulatesListings(t *testing.T) {
	svc, repo, _ := newFixture(t)
	require.NoError(t, svc.Warm(context.Background()))

	warmedCategoryCalls := repo.categoryCalls
	warmedExpenseCalls := repo.expenseCalls

	_, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	_, err = svc.ListExpenses(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, warmedCategoryCalls, repo.categoryCalls)
	assert.Equal(t, warmedExpenseCalls, repo.expenseCalls)
}
