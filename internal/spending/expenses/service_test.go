package expenses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennyledger/pennyledger/internal/shared"
	"github.com/pennyledger/pennyledger/internal/spending/categories"
)

type mockRepository struct {
	expenses map[int64]Expense
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{expenses: make(map[int64]Expense), nextID: 1}
}

func (m *mockRepository) ListByOwner(ctx context.Context, ownerID, categoryID int64) ([]Expense, error) {
	var out []Expense
	for _, e := range m.expenses {
		if e.OwnerID != ownerID {
			continue
		}
		if categoryID > 0 && e.CategoryID != categoryID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockRepository) GetOwned(ctx context.Context, id, ownerID int64) (Expense, error) {
	e, ok := m.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return Expense{}, shared.ErrNotFound
	}
	return e, nil
}

func (m *mockRepository) Create(ctx context.Context, expense Expense) (Expense, error) {
	expense.ID = m.nextID
	m.nextID++
	m.expenses[expense.ID] = expense
	return expense, nil
}

func (m *mockRepository) Update(ctx context.Context, expense Expense) error {
	current, ok := m.expenses[expense.ID]
	if !ok || current.OwnerID != expense.OwnerID {
		return shared.ErrNotFound
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id, ownerID int64) error {
	e, ok := m.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return shared.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

// mockResolver returns categories keyed by (owner, id), mirroring the
// ownership filter of the real category service.
type mockResolver struct {
	categories map[int64]categories.Category
}

func (m *mockResolver) Get(ctx context.Context, caller shared.Identity, id int64) (categories.Category, error) {
	c, ok := m.categories[id]
	if !ok || c.OwnerID != caller.UserID {
		return categories.Category{}, shared.ErrNotFound
	}
	return c, nil
}

var (
	alice = shared.Identity{UserID: 1, Login: "alice"}
	bob   = shared.Identity{UserID: 2, Login: "bob"}
)

func fixture() *Service {
	resolver := &mockResolver{categories: map[int64]categories.Category{
		10: {ID: 10, Name: "Hobbies", OwnerID: alice.UserID},
		20: {ID: 20, Name: "Travel", OwnerID: bob.UserID},
	}}
	return NewService(newMockRepository(), resolver, nil)
}

func TestCreateExpense(t *testing.T) {
	svc := fixture()

	created, err := svc.Create(context.Background(), alice, "Board games", 10)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, created.OwnerID)
	assert.Equal(t, "Hobbies", created.CategoryName)
}

func TestCreateExpenseValidation(t *testing.T) {
	svc := fixture()

	_, err := svc.Create(context.Background(), alice, "", 10)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Create(context.Background(), alice, "Board games", 0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateExpenseCrossOwnerCategory(t *testing.T) {
	svc := fixture()

	// Bob's category is rejected the same way a nonexistent one is.
	_, err := svc.Create(context.Background(), alice, "Board games", 20)
	assert.ErrorIs(t, err, shared.ErrInvalidReference)

	_, err = svc.Create(context.Background(), alice, "Board games", 999)
	assert.ErrorIs(t, err, shared.ErrInvalidReference)
}

func TestUpdateExpenseRechecksCategory(t *testing.T) {
	svc := fixture()
	created, err := svc.Create(context.Background(), alice, "Board games", 10)
	require.NoError(t, err)

	foreign := int64(20)
	_, err = svc.Update(context.Background(), alice, created.ID, nil, &foreign)
	assert.ErrorIs(t, err, shared.ErrInvalidReference)

	name := "Card games"
	updated, err := svc.Update(context.Background(), alice, created.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Card games", updated.Name)
	assert.Equal(t, int64(10), updated.CategoryID)
}

func TestExpenseOwnershipScoping(t *testing.T) {
	svc := fixture()
	created, err := svc.Create(context.Background(), alice, "Board games", 10)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), bob, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), bob, created.ID), shared.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), alice, created.ID))
}

func TestListExpensesFilteredByCategory(t *testing.T) {
	resolver := &mockResolver{categories: map[int64]categories.Category{
		10: {ID: 10, Name: "Hobbies", OwnerID: alice.UserID},
		11: {ID: 11, Name: "Food", OwnerID: alice.UserID},
	}}
	svc := NewService(newMockRepository(), resolver, nil)

	_, err := svc.Create(context.Background(), alice, "Board games", 10)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), alice, "Groceries", 11)
	require.NoError(t, err)

	list, err := svc.List(context.Background(), alice, 11)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Groceries", list[0].Name)
}
