package categories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennyledger/pennyledger/internal/shared"
)

type mockRepository struct {
	categories map[int64]Category
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{categories: make(map[int64]Category), nextID: 1}
}

func (m *mockRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Category, error) {
	var out []Category
	for _, c := range m.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepository) GetOwned(ctx context.Context, id, ownerID int64) (Category, error) {
	c, ok := m.categories[id]
	if !ok || c.OwnerID != ownerID {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *mockRepository) Create(ctx context.Context, category Category) (Category, error) {
	for _, c := range m.categories {
		if c.OwnerID == category.OwnerID && c.Name == category.Name {
			return Category{}, shared.ErrDuplicate
		}
	}
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = category
	return category, nil
}

func (m *mockRepository) Update(ctx context.Context, category Category) error {
	current, ok := m.categories[category.ID]
	if !ok || current.OwnerID != category.OwnerID {
		return shared.ErrNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id, ownerID int64) error {
	c, ok := m.categories[id]
	if !ok || c.OwnerID != ownerID {
		return shared.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

var (
	alice = shared.Identity{UserID: 1, Login: "alice"}
	bob   = shared.Identity{UserID: 2, Login: "bob"}
)

func TestCreateCategory(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	created, err := svc.Create(context.Background(), alice, "  Hobbies  ", "fun money")
	require.NoError(t, err)
	assert.Equal(t, "Hobbies", created.Name, "name is trimmed")
	assert.Equal(t, alice.UserID, created.OwnerID)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Create(context.Background(), alice, "   ", "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Create(context.Background(), alice, "Hobbies", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), alice, "Hobbies", "")
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestGetCategoryOwnership(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), alice, "Hobbies", "")
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Another user's category reads as missing, never as forbidden.
	_, err = svc.Get(context.Background(), bob, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateCategoryPartial(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	created, err := svc.Create(context.Background(), alice, "Hobbies", "old")
	require.NoError(t, err)

	name := "Games"
	updated, err := svc.Update(context.Background(), alice, created.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Games", updated.Name)
	assert.Equal(t, "old", updated.Description, "untouched field keeps its value")

	blank := "  "
	_, err = svc.Update(context.Background(), alice, created.ID, &blank, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestUpdateCategoryNotOwned(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	created, err := svc.Create(context.Background(), alice, "Hobbies", "")
	require.NoError(t, err)

	name := "Hijacked"
	_, err = svc.Update(context.Background(), bob, created.ID, &name, nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteCategory(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	created, err := svc.Create(context.Background(), alice, "Hobbies", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), bob, created.ID), shared.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), alice, created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), alice, created.ID), shared.ErrNotFound)
}

func TestListCategoriesScopedToOwner(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	_, err := svc.Create(context.Background(), alice, "Hobbies", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bob, "Travel", "")
	require.NoError(t, err)

	list, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hobbies", list[0].Name)
}
