package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"listsync/config"
	"listsync/internal/adapters/auth"
	"listsync/internal/adapters/capability"
	"listsync/internal/adapters/email"
	httpdelivery "listsync/internal/delivery/http"
	"listsync/internal/delivery/http/controllers"
	"listsync/internal/delivery/http/middleware"
	"listsync/internal/realtime"
	"listsync/internal/repository/postgres"
	"listsync/internal/services"
	"listsync/internal/usecase"
)

// @title ListSync API
// @version 1.0
// @description Collaborative list sharing and synchronization service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	listRepo := postgres.NewListRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	permissions := postgres.NewPermissionRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	storeRepo := postgres.NewStoreRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(10)
	tokenCodec := auth.NewJWTCodec(cfg.JWTSecret)
	hashGen := capability.NewGenerator()
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	authService := services.NewAuthService(userRepo, hasher, tokenCodec, cfg.TokenExpiry, emailService, logger)
	outboxService := services.NewOutboxService(outboxRepo, logger, cfg.OutboxRetention, cfg.RelayMaxAttempts, services.OutboxThresholds{
		WarnPending:  cfg.OutboxWarnPending,
		ErrorPending: cfg.OutboxErrorPending,
		WarnAge:      cfg.OutboxWarnAge,
		ErrorAge:     cfg.OutboxErrorAge,
	})
	listService := services.NewListService(listRepo, itemRepo, permissions, invitationRepo, outboxService, txManager, logger)
	itemService := services.NewItemService(itemRepo, listRepo, permissions, outboxService, txManager, logger)
	storeService := services.NewStoreService(storeRepo, logger)
	sharingService := services.NewSharingService(invitationRepo, permissions, hashGen, txManager, logger, cfg.InvitationTTL, cfg.HashMaxAttempts)

	// Live sync
	gateway := realtime.NewGateway(logger, cfg.KeepAliveInterval, cfg.SubscriberWriteTimeout)
	relay := usecase.NewRelay(outboxService, gateway, logger, cfg.RelayPollInterval, cfg.RelayBatchSize)
	maintenance := usecase.NewMaintenance(sharingService, outboxService, logger, cfg.SweepInterval)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	go relay.Run(bgCtx)
	go maintenance.Run(bgCtx)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:    controllers.NewAuthController(logger, authService),
		List:    controllers.NewListController(logger, listService),
		Item:    controllers.NewItemController(logger, itemService),
		Store:   controllers.NewStoreController(logger, storeService),
		Sharing: controllers.NewSharingController(logger, sharingService),
		Sync:    controllers.NewSyncController(logger, gateway, permissions),
		Health:  controllers.NewHealthController(logger, outboxService),
	}, tokenCodec, logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	stopBackground()
	gateway.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
