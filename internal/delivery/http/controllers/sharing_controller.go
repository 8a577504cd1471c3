package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "listsync/internal/delivery/http/helpers"
	"listsync/internal/delivery/http/middleware"
	"listsync/internal/domain"
)

// IssueInvitationRequest is the request body for POST /lists/{listID}/invitations.
type IssueInvitationRequest struct {
	Tier string `json:"tier"`
	// TTLSeconds overrides the server default time-to-live when positive.
	TTLSeconds int `json:"ttl_seconds"`
}

// Validate implements Validator.
func (i IssueInvitationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(i.Tier) == "" {
		errs = append(errs, "tier is required")
	} else if _, err := domain.ParseTier(i.Tier); err != nil {
		errs = append(errs, "tier must be \"read\", \"write\", or \"admin\"")
	}
	if i.TTLSeconds < 0 {
		errs = append(errs, "ttl_seconds must not be negative")
	}
	return errs
}

// RedeemInvitationRequest is the request body for POST /invitations/redeem.
type RedeemInvitationRequest struct {
	Hash string `json:"hash"`
}

// Validate implements Validator.
func (r RedeemInvitationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Hash) == "" {
		errs = append(errs, "hash is required")
	}
	return errs
}

// RedeemInvitationResponse is the response body for POST /invitations/redeem.
type RedeemInvitationResponse struct {
	Invitation *domain.Invitation `json:"invitation"`
	Permission *domain.Permission `json:"permission"`
}

type SharingController struct {
	Logger  *slog.Logger
	Service domain.SharingService
}

func NewSharingController(logger *slog.Logger, svc domain.SharingService) *SharingController {
	return &SharingController{
		Logger:  logger,
		Service: svc,
	}
}

// writeSharingError maps the sharing domain errors onto the envelope. Expired
// and inactive invitations are both unauthorized, with distinct messages.
func (c *SharingController) writeSharingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvitationNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "invitation not found")
	case errors.Is(err, domain.ErrInvitationExpired):
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invitation expired")
	case errors.Is(err, domain.ErrInvitationInactive):
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invitation is no longer active")
	case errors.Is(err, domain.ErrPermissionDenied):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "insufficient permission")
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "no permission grant for that user")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}

// Issue godoc
// @Summary Issue a share invitation
// @Description Creates an invitation for the list at the given tier and returns it, including the redeemable hash. The hash is shown only to the issuer; delivery to invitees is out of band. Requires ADMIN on the list.
// @Tags sharing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param body body IssueInvitationRequest true "Invitation parameters"
// @Success 201 {object} helpers.APIResponse "data contains the invitation with its hash"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/invitations [post]
func (c *SharingController) Issue(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	if listID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing listID")
		return
	}
	var req IssueInvitationRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	tier, _ := domain.ParseTier(req.Tier)
	ttl := time.Duration(req.TTLSeconds) * time.Second
	invitation, err := c.Service.Issue(r.Context(), listID, userID, tier, ttl)
	if err != nil {
		c.writeSharingError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, invitation)
}

// Redeem godoc
// @Summary Redeem an invitation hash
// @Description Grants the authenticated user the invitation's tier on its list, creating the permission or raising a lower one. Redeeming never lowers an existing tier, and the invitation stays redeemable for others.
// @Tags sharing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RedeemInvitationRequest true "Invitation hash"
// @Success 200 {object} helpers.APIResponse "data contains the invitation and resulting permission"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (expired or cancelled)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/redeem [post]
func (c *SharingController) Redeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemInvitationRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invitation, permission, err := c.Service.Redeem(r.Context(), strings.TrimSpace(req.Hash), userID)
	if err != nil {
		c.writeSharingError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, RedeemInvitationResponse{Invitation: invitation, Permission: permission})
}

// Cancel godoc
// @Summary Cancel an invitation
// @Description Deactivates the invitation so its hash can no longer be redeemed. Permissions already granted through it are untouched. Requires ADMIN on the invitation's list.
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID"
// @Success 200 {object} helpers.APIResponse "data contains {cancelled: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID} [delete]
func (c *SharingController) Cancel(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing invitationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Cancel(r.Context(), invitationID, userID); err != nil {
		c.writeSharingError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// RevokeAccess godoc
// @Summary Revoke a user's access to a list
// @Description Removes the target user's permission grant on the list. Invitations the user could still redeem are untouched; cancel those separately. Requires ADMIN on the list.
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Param userID path string true "Target user ID"
// @Success 200 {object} helpers.APIResponse "data contains {revoked: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/permissions/{userID} [delete]
func (c *SharingController) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("listID")
	targetUserID := r.PathValue("userID")
	if listID == "" || targetUserID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing listID or userID")
		return
	}
	actingUserID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RevokeAccess(r.Context(), listID, targetUserID, actingUserID); err != nil {
		c.writeSharingError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"revoked": true})
}

// ListActive godoc
// @Summary List active invitations for a list
// @Description Returns all currently redeemable invitations for the list. Requires ADMIN on the list.
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {object} helpers.APIResponse "data contains the invitations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /lists/{listID}/invitations [get]
func (c *SharingController) ListActive(w http.ResponseWriter, r *http.Request) {
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
	invitations, err := c.Service.ListActive(r.Context(), listID, userID)
	if err != nil {
		c.writeSharingError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, invitations)
}
