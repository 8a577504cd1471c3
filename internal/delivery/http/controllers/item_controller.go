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

// AddItemRequest is the request body for POST /lists/{listID}/items.
type AddItemRequest struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	StoreID    string `json:"store_id"`
	CategoryID string `json:"category_id"`
}

// Validate implements Validator.
func (a AddItemRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, "name is required")
	}
	if a.Quantity < 0 {
		errs = append(errs, "quantity must not be negative")
	}
	return errs
}

// UpdateItemRequest is the request body for PATCH /items/{itemID}. All fields
// optional; omitted fields are unchanged.
type UpdateItemRequest struct {
	Name       *string `json:"name"`
	Quantity   *int    `json:"quantity"`
	StoreID    *string `json:"store_id"`
	CategoryID *string `json:"category_id"`
}

// Validate implements Validator.
func (u UpdateItemRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.Quantity != nil && *u.Quantity < 0 {
		errs = append(errs, "quantity must not be negative")
	}
	return errs
}

// MarkItemRequest is the request body for POST /items/{itemID}/mark.
type MarkItemRequest struct {
	Marked bool `json:"marked"`
}

type ItemController struct {
	Logger  *slog.Logger
	Service domain.ItemService
}

func NewItemController(logger *slog.Logger, svc domain.ItemService) *ItemController {
	return &ItemController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *ItemController) writeItemError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "item not found")
	case errors.Is(err, domain.ErrPermissionDenied):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "insufficient permission")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}

// Add godoc
// @Summary Add an item to a list
// @Description Adds an item. Requires WRITE on the list.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param body body AddItemRequest true "Item data"
// @Success 201 {object} helpers.APIResponse "data contains the created item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/items [post]
func (c *ItemController) Add(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing listID")
		return
	}
	var req AddItemRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	item := &domain.Item{
		Name:       strings.TrimSpace(req.Name),
		Quantity:   req.Quantity,
		StoreID:    req.StoreID,
		CategoryID: req.CategoryID,
	}
	created, err := c.Service.AddItem(r.Context(), listID, userID, item)
	if err != nil {
		c.writeItemError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, created)
}

// List godoc
// @Summary List the items on a list
// @Description Returns all items. Requires READ on the list.
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {object} helpers.APIResponse "data contains the items"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/items [get]
func (c *ItemController) List(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing listID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Service.ListItems(r.Context(), listID, userID)
	if err != nil {
		c.writeItemError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, items)
}

// Update godoc
// @Summary Update an item
// @Description Updates item fields. Omitted fields are unchanged. Requires WRITE on the owning list.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Param body body UpdateItemRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /items/{itemID} [patch]
func (c *ItemController) Update(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemID")
	if itemID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing itemID")
		return
	}
	var req UpdateItemRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	patch := &domain.Item{}
	if req.Name != nil {
		patch.Name = strings.TrimSpace(*req.Name)
	}
	if req.Quantity != nil {
		patch.Quantity = *req.Quantity
	}
	if req.StoreID != nil {
		patch.StoreID = *req.StoreID
	}
	if req.CategoryID != nil {
		patch.CategoryID = *req.CategoryID
	}
	updated, err := c.Service.UpdateItem(r.Context(), itemID, userID, patch)
	if err != nil {
		c.writeItemError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, updated)
}

// Mark godoc
// @Summary Mark or unmark an item
// @Description Sets the marked flag, e.g. ticking an item off. Requires WRITE on the owning list.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Param body body MarkItemRequest true "Marked flag"
// @Success 200 {object} helpers.APIResponse "data contains the updated item"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /items/{itemID}/mark [post]
func (c *ItemController) Mark(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemID")
	if itemID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing itemID")
		return
	}
	var req MarkItemRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	updated, err := c.Service.MarkItem(r.Context(), itemID, userID, req.Marked)
	if err != nil {
		c.writeItemError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, updated)
}

// Remove godoc
// @Summary Remove an item
// @Description Deletes the item. Requires WRITE on the owning list.
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param itemID path string true "Item ID"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /items/{itemID} [delete]
func (c *ItemController) Remove(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemID")
	if itemID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing itemID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RemoveItem(r.Context(), itemID, userID); err != nil {
		c.writeItemError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}
