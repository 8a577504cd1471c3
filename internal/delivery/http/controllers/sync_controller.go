package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	h "listsync/internal/delivery/http/helpers"
	"listsync/internal/delivery/http/middleware"
	"listsync/internal/domain"
	"listsync/internal/realtime"
)

// SyncController serves the live sync streams. Both transports deliver the
// same JSON event envelope; SSE is the primary transport, the websocket
// endpoint exists for clients behind proxies that buffer SSE.
type SyncController struct {
	Logger      *slog.Logger
	Gateway     *realtime.Gateway
	Permissions domain.PermissionLedger
	Upgrader    *websocket.Upgrader
}

func NewSyncController(logger *slog.Logger, gateway *realtime.Gateway, permissions domain.PermissionLedger) *SyncController {
	return &SyncController{
		Logger:      logger,
		Gateway:     gateway,
		Permissions: permissions,
		// Origins are already filtered by the CORS middleware.
		Upgrader: &websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

func (c *SyncController) authorize(w http.ResponseWriter, r *http.Request) (listID, userID string, ok bool) {
	listID = r.PathValue("listID")
	if listID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing listID")
		return "", "", false
	}
	userID, authed := middleware.UserIDFromContext(r.Context())
	if !authed {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return "", "", false
	}
	// Any grant implies at least READ, which is all a live subscription needs.
	allowed, err := c.Permissions.HasAny(r.Context(), userID, listID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return "", "", false
	}
	if !allowed {
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "insufficient permission")
		return "", "", false
	}
	return listID, userID, true
}

// StreamSSE godoc
// @Summary Subscribe to live list events over SSE
// @Description Streams list events as Server-Sent Events. The first event is a `connection` ack; `keep-alive` events follow as heartbeats. Requires READ on the list. The token may be passed as an access_token query parameter.
// @Tags sync
// @Produce text/event-stream
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /lists/{listID}/events [get]
func (c *SyncController) StreamSSE(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := c.authorize(w, r)
	if !ok {
		return
	}

	transport, err := realtime.NewSSETransport(w)
	if err != nil {
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	sub, err := c.Gateway.Subscribe(listID, userID, transport)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "subscribe failed", "list_id", listID, "user_id", userID, "err", err)
		return
	}
	defer sub.Close()

	// Hold the handler open until the client disconnects or the gateway
	// drops the subscription.
	select {
	case <-r.Context().Done():
	case <-sub.Done():
	}
}

// StreamWS godoc
// @Summary Subscribe to live list events over a websocket
// @Description Upgrades to a websocket and delivers the same JSON events as the SSE stream, one per text frame. Requires READ on the list.
// @Tags sync
// @Security BearerAuth
// @Param listID path string true "List ID"
// @Success 101 {string} string "switching protocols"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /lists/{listID}/ws [get]
func (c *SyncController) StreamWS(w http.ResponseWriter, r *http.Request) {
	listID, userID, ok := c.authorize(w, r)
	if !ok {
		return
	}

	transport, err := realtime.UpgradeWebSocket(w, r, c.Upgrader)
	if err != nil {
		// Upgrade already wrote the handshake error response.
		c.Logger.WarnContext(r.Context(), "websocket upgrade failed", "list_id", listID, "err", err)
		return
	}
	sub, err := c.Gateway.Subscribe(listID, userID, transport)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "subscribe failed", "list_id", listID, "user_id", userID, "err", err)
		_ = transport.Close()
		return
	}
	defer sub.Close()

	select {
	case <-r.Context().Done():
	case <-sub.Done():
	}
}
