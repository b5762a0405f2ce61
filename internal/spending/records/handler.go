package records

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pennyledger/pennyledger/internal/platform/httpx"
	"github.com/pennyledger/pennyledger/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler serves the expense record endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers record routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/summary", h.summary)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type recordRequest struct {
	CategoryType   *string  `json:"category_type"`
	CategoryID     *int64   `json:"category_id"`
	UserCategoryID *int64   `json:"user_category_id"`
	ExpenseID      *int64   `json:"expense_id"`
	UserExpenseID  *int64   `json:"user_expense_id"`
	Amount         *float64 `json:"amount"`
	Date           *string  `json:"date"`
	Note           *string  `json:"note"`
}

type recordResponse struct {
	ID             int64        `json:"id"`
	CategoryType   CategoryType `json:"category_type"`
	CategoryID     *int64       `json:"category_id,omitempty"`
	UserCategoryID *int64       `json:"user_category_id,omitempty"`
	ExpenseID      *int64       `json:"expense_id,omitempty"`
	UserExpenseID  *int64       `json:"user_expense_id,omitempty"`
	Amount         float64      `json:"amount"`
	Date           string       `json:"date"`
	Note           string       `json:"note,omitempty"`
}

func toResponse(rec Record) recordResponse {
	return recordResponse{
		ID:             rec.ID,
		CategoryType:   rec.CategoryType,
		CategoryID:     rec.CategoryID,
		UserCategoryID: rec.UserCategoryID,
		ExpenseID:      rec.ExpenseID,
		UserExpenseID:  rec.UserExpenseID,
		Amount:         rec.Amount,
		Date:           rec.Date.Format(dateLayout),
		Note:           rec.Note,
	}
}

type listResponse struct {
	Records    []recordResponse  `json:"records"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, total, err := h.service.List(r.Context(), caller, filter)
	if err != nil {
		h.logger.Error("list records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]recordResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, toResponse(rec))
	}
	page := shared.NewPagination(filter.Page, filter.PerPage, total)
	httpx.Success(w, http.StatusOK, "records retrieved", listResponse{Records: out, Pagination: page})
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	var filter ListFilter

	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return ListFilter{}, shared.ErrInvalidInput
		}
		filter.StartDate = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return ListFilter{}, shared.ErrInvalidInput
		}
		filter.EndDate = &t
	}
	var err error
	if filter.CategoryID, err = parseIDParam(q.Get("category_id")); err != nil {
		return ListFilter{}, err
	}
	if filter.UserCategoryID, err = parseIDParam(q.Get("user_category_id")); err != nil {
		return ListFilter{}, err
	}
	if raw := q.Get("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("per_page"); raw != "" {
		filter.PerPage, _ = strconv.Atoi(raw)
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 50
	}
	return filter, nil
}

func parseIDParam(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrInvalidInput
	}
	return id, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	rec, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, "record retrieved", toResponse(rec))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	input := Input{
		CategoryID:     req.CategoryID,
		UserCategoryID: req.UserCategoryID,
		ExpenseID:      req.ExpenseID,
		UserExpenseID:  req.UserExpenseID,
	}
	if req.CategoryType != nil {
		input.CategoryType = *req.CategoryType
	}
	if req.Amount != nil {
		input.Amount = *req.Amount
	}
	if req.Note != nil {
		input.Note = *req.Note
	}
	if req.Date != nil {
		t, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			httpx.RespondError(w, shared.ErrInvalidInput)
			return
		}
		input.Date = t
	}
	created, err := h.service.Create(r.Context(), caller, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, http.StatusCreated, "record created", toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	changes := UpdateInput{
		CategoryType:   req.CategoryType,
		CategoryID:     req.CategoryID,
		UserCategoryID: req.UserCategoryID,
		ExpenseID:      req.ExpenseID,
		UserExpenseID:  req.UserExpenseID,
		Amount:         req.Amount,
		Note:           req.Note,
	}
	if req.Date != nil {
		t, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			httpx.RespondError(w, shared.ErrInvalidInput)
			return
		}
		changes.Date = &t
	}
	updated, err := h.service.Update(r.Context(), caller, id, changes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, "record updated", toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, "record deleted", map[string]int64{"id": id})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	q := r.URL.Query()
	var start, end *time.Time
	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.RespondError(w, shared.ErrInvalidInput)
			return
		}
		start = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.RespondError(w, shared.ErrInvalidInput)
			return
		}
		end = &t
	}
	rows, err := h.service.Summarize(r.Context(), caller, start, end)
	if err != nil {
		h.logger.Error("summarize records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if rows == nil {
		rows = []SummaryRow{}
	}
	httpx.Success(w, http.StatusOK, "summary retrieved", rows)
}
