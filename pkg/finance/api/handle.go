package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/spendwise/spendwise/pkg/auth"
	"github.com/spendwise/spendwise/pkg/finance"
)

type Handle struct {
	financeService *finance.FinanceService
}

// NewHandle creates a new Handle
func NewHandle(financeService *finance.FinanceService) *Handle {
	return &Handle{
		financeService: financeService,
	}
}

// Routes returns a http.Handler for categories, transactions and the monthly
// summary. Every route requires a session token.
func Routes(h *Handle, mw *auth.Middleware) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Verifier(), mw.Authenticator)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Patch("/{id}/active", h.SetCategoryActive)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.ListTransactions)
		r.Post("/", h.CreateTransaction)
		r.Get("/{id}", h.GetTransaction)
		r.Patch("/{id}", h.UpdateTransaction)
		r.Delete("/{id}", h.DeleteTransaction)
	})

	r.Get("/summary", h.MonthlySummary)

	return r
}

type CreateCategoryRequest struct {
	Name   string `json:"name"`
	Global bool   `json:"global"`
}

// CreateCategory creates a category owned by the caller; admins may pass
// global=true to create one usable by everyone.
// (POST /categories)
func (h *Handle) CreateCategory(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateCategoryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	params := finance.CreateCategoryParams{}
	if err := copier.Copy(&params, req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	c, err := h.financeService.CreateCategory(r.Context(), acting, params)
	if err != nil {
		slog.Error("Create category error", "err", err)
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{"success": true, "data": c})
}

// ListCategories returns global categories plus the caller's own.
// (GET /categories)
func (h *Handle) ListCategories(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	categories, err := h.financeService.ListCategories(r.Context(), acting.ID)
	if err != nil {
		slog.Error("List categories error", "err", err)
		fail(w, r, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": categories})
}

type SetCategoryActiveRequest struct {
	Active bool `json:"active"`
}

// SetCategoryActive enables or disables a category.
// (PATCH /categories/{id}/active)
func (h *Handle) SetCategoryActive(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid category id")
		return
	}

	var req SetCategoryActiveRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	c, err := h.financeService.SetCategoryActive(r.Context(), acting, id, req.Active)
	if err != nil {
		switch {
		case errors.Is(err, finance.ErrCategoryNotFound):
			fail(w, r, http.StatusNotFound, "Category not found")
		case errors.Is(err, finance.ErrCategoryForbidden):
			fail(w, r, http.StatusForbidden, "Access denied.")
		default:
			slog.Error("Set category active error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": c})
}

type CreateTransactionRequest struct {
	CategoryID  uuid.UUID               `json:"categoryId"`
	Type        finance.TransactionType `json:"type"`
	Amount      float64                 `json:"amount"`
	Description string                  `json:"description"`
	Date        string                  `json:"date"`
}

// CreateTransaction records a new income or expense entry for the caller.
// (POST /transactions)
func (h *Handle) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateTransactionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	params := finance.CreateTransactionParams{}
	if err := copier.Copy(&params, req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		params.Date = date
	}

	t, err := h.financeService.CreateTransaction(r.Context(), acting.ID, params)
	if err != nil {
		switch {
		case errors.Is(err, finance.ErrMissingFields),
			errors.Is(err, finance.ErrInvalidType):
			fail(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, finance.ErrCategoryNotFound):
			fail(w, r, http.StatusNotFound, "Category not found")
		case errors.Is(err, finance.ErrCategoryForbidden):
			fail(w, r, http.StatusForbidden, err.Error())
		default:
			slog.Error("Create transaction error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Failed to create transaction")
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{"success": true, "data": t})
}

// ListTransactions returns the caller's transactions, optionally filtered by
// month (YYYY-MM) and category via query parameters.
// (GET /transactions)
func (h *Handle) ListTransactions(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	params := finance.ListTransactionsParams{
		Month: r.URL.Query().Get("month"),
	}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "invalid category id")
			return
		}
		params.CategoryID = &categoryID
	}

	transactions, err := h.financeService.ListTransactions(r.Context(), acting.ID, params)
	if err != nil {
		if errors.Is(err, finance.ErrInvalidMonth) {
			fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("List transactions error", "err", err)
		fail(w, r, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": transactions})
}

// GetTransaction returns one of the caller's transactions.
// (GET /transactions/{id})
func (h *Handle) GetTransaction(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid transaction id")
		return
	}

	t, err := h.financeService.GetTransaction(r.Context(), acting.ID, id)
	if err != nil {
		if errors.Is(err, finance.ErrTransactionNotFound) {
			fail(w, r, http.StatusNotFound, "Transaction not found")
			return
		}
		slog.Error("Get transaction error", "err", err)
		fail(w, r, http.StatusInternalServerError, "Failed to fetch transaction")
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": t})
}

type UpdateTransactionRequest struct {
	CategoryID  *uuid.UUID               `json:"categoryId"`
	Type        *finance.TransactionType `json:"type"`
	Amount      *float64                 `json:"amount"`
	Description *string                  `json:"description"`
	Date        *string                  `json:"date"`
}

// UpdateTransaction applies a partial update to one of the caller's
// transactions. Absent fields are left unchanged.
// (PATCH /transactions/{id})
func (h *Handle) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req UpdateTransactionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}

	params := finance.UpdateTransactionParams{ID: id}
	if err := copier.Copy(&params, req); err != nil {
		fail(w, r, http.StatusBadRequest, "unable to parse body")
		return
	}
	params.Date = nil
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		params.Date = &date
	}

	t, err := h.financeService.UpdateTransaction(r.Context(), acting.ID, params)
	if err != nil {
		switch {
		case errors.Is(err, finance.ErrInvalidType):
			fail(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, finance.ErrCategoryNotFound):
			fail(w, r, http.StatusNotFound, "Category not found")
		case errors.Is(err, finance.ErrCategoryForbidden):
			fail(w, r, http.StatusForbidden, err.Error())
		case errors.Is(err, finance.ErrTransactionNotFound):
			fail(w, r, http.StatusNotFound, "Transaction not found")
		default:
			slog.Error("Update transaction error", "err", err)
			fail(w, r, http.StatusInternalServerError, "Failed to update transaction")
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": t})
}

// DeleteTransaction removes one of the caller's transactions.
// (DELETE /transactions/{id})
func (h *Handle) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.financeService.DeleteTransaction(r.Context(), acting.ID, id); err != nil {
		if errors.Is(err, finance.ErrTransactionNotFound) {
			fail(w, r, http.StatusNotFound, "Transaction not found")
			return
		}
		slog.Error("Delete transaction error", "err", err)
		fail(w, r, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"message": "Transaction deleted.",
	})
}

// MonthlySummary aggregates the caller's income and expenses for the month
// given by the required ?month=YYYY-MM query parameter.
// (GET /summary)
func (h *Handle) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	acting, ok := auth.CurrentUser(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	summary, err := h.financeService.MonthlySummary(r.Context(), acting.ID, r.URL.Query().Get("month"))
	if err != nil {
		if errors.Is(err, finance.ErrInvalidMonth) {
			fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Monthly summary error", "err", err)
		fail(w, r, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	render.JSON(w, r, map[string]interface{}{"success": true, "data": summary})
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
