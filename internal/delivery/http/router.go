package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"listsync/internal/delivery/http/controllers"
	"listsync/internal/delivery/http/middleware"
	"listsync/internal/domain"
)

// Controllers bundles the controllers the router mounts.
type Controllers struct {
	Auth    *controllers.AuthController
	List    *controllers.ListController
	Item    *controllers.ItemController
	Store   *controllers.StoreController
	Sharing *controllers.SharingController
	Sync    *controllers.SyncController
	Health  *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/me", auth(c.Auth.Me))

	// Lists
	mux.HandleFunc("POST /lists", auth(c.List.Create))
	mux.HandleFunc("GET /lists", auth(c.List.ListMine))
	mux.HandleFunc("GET /lists/{listID}", auth(c.List.Get))
	mux.HandleFunc("PATCH /lists/{listID}", auth(c.List.Rename))
	mux.HandleFunc("DELETE /lists/{listID}", auth(c.List.Delete))

	// Items
	mux.HandleFunc("POST /lists/{listID}/items", auth(c.Item.Add))
	mux.HandleFunc("GET /lists/{listID}/items", auth(c.Item.List))
	mux.HandleFunc("PATCH /items/{itemID}", auth(c.Item.Update))
	mux.HandleFunc("POST /items/{itemID}/mark", auth(c.Item.Mark))
	mux.HandleFunc("DELETE /items/{itemID}", auth(c.Item.Remove))

	// Stores and categories
	mux.HandleFunc("POST /stores", auth(c.Store.Create))
	mux.HandleFunc("GET /stores", auth(c.Store.ListMine))
	mux.HandleFunc("GET /stores/{storeID}", auth(c.Store.Get))
	mux.HandleFunc("POST /categories", auth(c.Store.EnsureCategory))
	mux.HandleFunc("GET /categories", auth(c.Store.ListCategories))

	// Sharing
	mux.HandleFunc("POST /lists/{listID}/invitations", auth(c.Sharing.Issue))
	mux.HandleFunc("GET /lists/{listID}/invitations", auth(c.Sharing.ListActive))
	mux.HandleFunc("POST /invitations/redeem", auth(c.Sharing.Redeem))
	mux.HandleFunc("DELETE /invitations/{invitationID}", auth(c.Sharing.Cancel))
	mux.HandleFunc("DELETE /lists/{listID}/permissions/{userID}", auth(c.Sharing.RevokeAccess))

	// Live sync
	mux.HandleFunc("GET /lists/{listID}/events", auth(c.Sync.StreamSSE))
	mux.HandleFunc("GET /lists/{listID}/ws", auth(c.Sync.StreamWS))

	// Health
	mux.HandleFunc("GET /health", c.Health.Live)
	mux.HandleFunc("GET /health/outbox", c.Health.OutboxHealth)
	mux.HandleFunc("POST /health/outbox/reset", auth(c.Health.ResetOutbox))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
