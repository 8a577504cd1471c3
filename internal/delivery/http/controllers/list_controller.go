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

// CreateListRequest is the request body for POST /lists.
type CreateListRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CreateListRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// RenameListRequest is the request body for PATCH /lists/{listID}.
type RenameListRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (u RenameListRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(u.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

type ListController struct {
	Logger  *slog.Logger
	Service domain.ListService
}

func NewListController(logger *slog.Logger, svc domain.ListService) *ListController {
	return &ListController{
		Logger:  logger,
		Service: svc,
	}
}

// writeListError maps domain errors shared by every list endpoint.
func (c *ListController) writeListError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "list not found")
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
// @Summary Create a list
// @Description Creates a list owned by the authenticated user, who is granted ADMIN on it.
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateListRequest true "List data"
// @Success 201 {object} helpers.APIResponse "data contains the created list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists [post]
func (c *ListController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.CreateList(r.Context(), req.Name, userID)
	if err != nil {
		c.writeListError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, list)
}

// ListMine godoc
// @Summary List my lists
// @Description Returns all lists the authenticated user owns or has been granted access to.
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the lists"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists [get]
func (c *ListController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	lists, err := c.Service.ListMyLists(r.Context(), userID)
	if err != nil {
		c.writeListError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, lists)
}

// Get godoc
// @Summary Get a list
// @Description Returns the list. Requires READ on the list.
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {object} helpers.APIResponse "data contains the list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID} [get]
func (c *ListController) Get(w http.ResponseWriter, r *http.Request) {
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
	list, err := c.Service.GetList(r.Context(), listID, userID)
	if err != nil {
		c.writeListError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, list)
}

// Rename godoc
// @Summary Rename a list
// @Description Renames the list. Requires ADMIN on the list.
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param body body RenameListRequest true "New name"
// @Success 200 {object} helpers.APIResponse "data contains the updated list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID} [patch]
func (c *ListController) Rename(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing listID")
		return
	}
	var req RenameListRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.RenameList(r.Context(), listID, userID, req.Name)
	if err != nil {
		c.writeListError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, list)
}

// Delete godoc
// @Summary Delete a list
// @Description Deletes the list, revokes every permission on it, and deactivates its invitations. Requires ADMIN on the list.
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID} [delete]
func (c *ListController) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.DeleteList(r.Context(), listID, userID); err != nil {
		c.writeListError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}
