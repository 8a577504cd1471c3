package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "listsync/internal/delivery/http/helpers"
	"listsync/internal/delivery/http/middleware"
	"listsync/internal/domain"
)

// CreateStoreRequest is the request body for POST /stores.
type CreateStoreRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CreateStoreRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// EnsureCategoryRequest is the request body for POST /categories.
type EnsureCategoryRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c EnsureCategoryRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// CategoryPage is the paginated response body for GET /categories.
type CategoryPage struct {
	Categories []*domain.Category `json:"categories"`
	Pagination h.PaginationMeta   `json:"pagination"`
}

type StoreController struct {
	Logger  *slog.Logger
	Service domain.StoreService
}

func NewStoreController(logger *slog.Logger, svc domain.StoreService) *StoreController {
	return &StoreController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *StoreController) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "store not found")
	case errors.Is(err, domain.ErrPermissionDenied):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "insufficient permission")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}

// Create godoc
// @Summary Create a store
// @Description Creates a store owned by the authenticated user. Items can reference it to group shopping by location.
// @Tags stores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateStoreRequest true "Store data"
// @Success 201 {object} helpers.APIResponse "data contains the created store"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /stores [post]
func (c *StoreController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	store, err := c.Service.CreateStore(r.Context(), userID, req.Name)
	if err != nil {
		c.writeStoreError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, store)
}

// ListMine godoc
// @Summary List my stores
// @Description Returns all stores owned by the authenticated user.
// @Tags stores
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the stores"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /stores [get]
func (c *StoreController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	stores, err := c.Service.ListMyStores(r.Context(), userID)
	if err != nil {
		c.writeStoreError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, stores)
}

// Get godoc
// @Summary Get a store
// @Description Returns the store. Only the owner may read it.
// @Tags stores
// @Produce json
// @Security BearerAuth
// @Param storeID path string true "Store ID"
// @Success 200 {object} helpers.APIResponse "data contains the store"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /stores/{storeID} [get]
func (c *StoreController) Get(w http.ResponseWriter, r *http.Request) {
	storeID := r.PathValue("storeID")
	if storeID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing storeID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	store, err := c.Service.GetStore(r.Context(), storeID, userID)
	if err != nil {
		c.writeStoreError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, store)
}

// EnsureCategory godoc
// @Summary Create or resolve a category
// @Description Resolves a category by name, creating it if missing. Categories are shared across users.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EnsureCategoryRequest true "Category name"
// @Success 200 {object} helpers.APIResponse "data contains the category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [post]
func (c *StoreController) EnsureCategory(w http.ResponseWriter, r *http.Request) {
	var req EnsureCategoryRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.EnsureCategory(r.Context(), req.Name)
	if err != nil {
		c.writeStoreError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, category)
}

// ListCategories godoc
// @Summary List categories
// @Description Returns one page of categories ordered by name.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains CategoryPage"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [get]
func (c *StoreController) ListCategories(w http.ResponseWriter, r *http.Request) {
	p := h.ParsePagination(r)
	categories, total, err := c.Service.ListCategories(r.Context(), p)
	if err != nil {
		c.writeStoreError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, CategoryPage{
		Categories: categories,
		Pagination: h.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}
