package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pennyledger/pennyledger/internal/auth"
	"github.com/pennyledger/pennyledger/internal/catalog"
	"github.com/pennyledger/pennyledger/internal/shared"
	"github.com/pennyledger/pennyledger/internal/spending/categories"
	"github.com/pennyledger/pennyledger/internal/spending/expenses"
	"github.com/pennyledger/pennyledger/internal/spending/records"
)

// In-memory repositories backing a full router, so requests travel the real
// middleware chain: token gate, ownership filtering, response envelope.

type fakeUserRepo struct {
	users map[string]*auth.User
}

func (f *fakeUserRepo) FindByLogin(ctx context.Context, login string) (*auth.User, error) {
	u, ok := f.users[login]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

type fakeCatalogRepo struct{}

func (fakeCatalogRepo) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return []catalog.Category{{ID: 1, Name: "Food"}}, nil
}

func (fakeCatalogRepo) ListExpenses(ctx context.Context, categoryID int64) ([]catalog.Expense, error) {
	return []catalog.Expense{{ID: 5, Name: "Lunch", CategoryID: 1, CategoryName: "Food"}}, nil
}

func (fakeCatalogRepo) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return id == 1, nil
}

func (fakeCatalogRepo) ExpenseExists(ctx context.Context, id int64) (bool, error) {
	return id == 5, nil
}

type fakeCategoryRepo struct {
	rows   map[int64]categories.Category
	nextID int64
}

func (f *fakeCategoryRepo) ListByOwner(ctx context.Context, ownerID int64) ([]categories.Category, error) {
	var out []categories.Category
	for _, c := range f.rows {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) GetOwned(ctx context.Context, id, ownerID int64) (categories.Category, error) {
	c, ok := f.rows[id]
	if !ok || c.OwnerID != ownerID {
		return categories.Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategoryRepo) Create(ctx context.Context, c categories.Category) (categories.Category, error) {
	c.ID = f.nextID
	f.nextID++
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, c categories.Category) error {
	current, ok := f.rows[c.ID]
	if !ok || current.OwnerID != c.OwnerID {
		return shared.ErrNotFound
	}
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id, ownerID int64) error {
	c, ok := f.rows[id]
	if !ok || c.OwnerID != ownerID {
		return shared.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeExpenseRepo struct {
	rows   map[int64]expenses.Expense
	nextID int64
}

func (f *fakeExpenseRepo) ListByOwner(ctx context.Context, ownerID, categoryID int64) ([]expenses.Expense, error) {
	var out []expenses.Expense
	for _, e := range f.rows {
		if e.OwnerID == ownerID && (categoryID <= 0 || e.CategoryID == categoryID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) GetOwned(ctx context.Context, id, ownerID int64) (expenses.Expense, error) {
	e, ok := f.rows[id]
	if !ok || e.OwnerID != ownerID {
		return expenses.Expense{}, shared.ErrNotFound
	}
	return e, nil
}

func (f *fakeExpenseRepo) Create(ctx context.Context, e expenses.Expense) (expenses.Expense, error) {
	e.ID = f.nextID
	f.nextID++
	f.rows[e.ID] = e
	return e, nil
}

func (f *fakeExpenseRepo) Update(ctx context.Context, e expenses.Expense) error {
	current, ok := f.rows[e.ID]
	if !ok || current.OwnerID != e.OwnerID {
		return shared.ErrNotFound
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeExpenseRepo) Delete(ctx context.Context, id, ownerID int64) error {
	e, ok := f.rows[id]
	if !ok || e.OwnerID != ownerID {
		return shared.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeRecordRepo struct {
	rows   map[int64]records.Record
	nextID int64
}

func (f *fakeRecordRepo) ListByOwner(ctx context.Context, ownerID int64, filter records.ListFilter) ([]records.Record, int, error) {
	var out []records.Record
	for _, r := range f.rows {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (f *fakeRecordRepo) GetOwned(ctx context.Context, id, ownerID int64) (records.Record, error) {
	r, ok := f.rows[id]
	if !ok || r.OwnerID != ownerID {
		return records.Record{}, shared.ErrNotFound
	}
	return r, nil
}

func (f *fakeRecordRepo) Create(ctx context.Context, r records.Record) (records.Record, error) {
	r.ID = f.nextID
	f.nextID++
	f.rows[r.ID] = r
	return r, nil
}

func (f *fakeRecordRepo) Update(ctx context.Context, r records.Record) error {
	current, ok := f.rows[r.ID]
	if !ok || current.OwnerID != r.OwnerID {
		return shared.ErrNotFound
	}
	f.rows[r.ID] = r
	return nil
}

func (f *fakeRecordRepo) Delete(ctx context.Context, id, ownerID int64) error {
	r, ok := f.rows[id]
	if !ok || r.OwnerID != ownerID {
		return shared.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRecordRepo) SummarizeByOwner(ctx context.Context, ownerID int64, start, end *time.Time) ([]records.SummaryRow, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo := &fakeUserRepo{users: map[string]*auth.User{
		"alice": {ID: 1, Login: "alice", PasswordHash: string(hash), APIEnabled: true},
		"bob":   {ID: 2, Login: "bob", PasswordHash: string(hash), APIEnabled: true},
	}}

	tokens, err := auth.NewTokenService("router-secret", time.Hour)
	require.NoError(t, err)

	authService := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(logger, authService, nil)

	catalogService := catalog.NewService(fakeCatalogRepo{}, catalog.NewCache(nil, time.Minute))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	categoriesService := categories.NewService(&fakeCategoryRepo{rows: map[int64]categories.Category{}, nextID: 1}, nil)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	expensesService := expenses.NewService(&fakeExpenseRepo{rows: map[int64]expenses.Expense{}, nextID: 1}, categoriesService, nil)
	expensesHandler := expenses.NewHandler(logger, expensesService)

	recordsService := records.NewService(&fakeRecordRepo{rows: map[int64]records.Record{}, nextID: 1}, catalogService, categoriesService, expensesService, nil)
	recordsHandler := records.NewHandler(logger, recordsService)

	return NewRouter(RouterParams{
		Logger:                logger,
		Config:                &Config{AppRequestTimeout: 5 * time.Second},
		AuthHandler:           authHandler,
		AuthMiddleware:        auth.Middleware{Tokens: tokens, Logger: logger},
		CatalogHandler:        catalogHandler,
		UserCategoriesHandler: categoriesHandler,
		UserExpensesHandler:   expensesHandler,
		RecordsHandler:        recordsHandler,
	})
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env apiEnvelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	}
	return rec, env
}

func login(t *testing.T, router http.Handler, user string) string {
	t.Helper()
	rec, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", `{"login":"`+user+`","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/categories", "/api/expenses", "/api/user_categories", "/api/user_expenses", "/api/records"} {
		rec, env := doJSON(t, router, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.False(t, env.Success)
		assert.Equal(t, "missing authorization header", env.Message)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginThenBrowseCatalog(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "alice")

	rec, env := doJSON(t, router, http.MethodGet, "/api/categories", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var cats []catalog.Category
	require.NoError(t, json.Unmarshal(env.Data, &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "Food", cats[0].Name)
}

func TestUserCategoryLifecycleAcrossUsers(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := login(t, router, "alice")
	bobToken := login(t, router, "bob")

	rec, env := doJSON(t, router, http.MethodPost, "/api/user_categories", aliceToken, `{"name":"Hobbies","description":"fun money"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created categories.Category
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// Alice sees her category in the listing.
	rec, env = doJSON(t, router, http.MethodGet, "/api/user_categories", aliceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []categories.Category
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Hobbies", list[0].Name)

	// Bob sees nothing, and a direct fetch reads as not found.
	rec, env = doJSON(t, router, http.MethodGet, "/api/user_categories", bobToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var bobList []categories.Category
	require.NoError(t, json.Unmarshal(env.Data, &bobList))
	assert.Empty(t, bobList)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/user_categories/1", bobToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordCreationOverAPI(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "alice")

	rec, env := doJSON(t, router, http.MethodPost, "/api/records", token, `{"category_type":"global","category_id":1,"expense_id":5,"amount":12.5,"date":"2026-08-01","note":"lunch"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	var data struct {
		ID     int64   `json:"id"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 12.5, data.Amount)
	assert.Equal(t, "2026-08-01", data.Date)

	// Strictly positive amount is enforced at the API boundary.
	rec, env = doJSON(t, router, http.MethodPost, "/api/records", token, `{"category_type":"global","amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	// A bad reference is a 400, not a 404.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/records", token, `{"category_type":"global","category_id":999,"amount":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
