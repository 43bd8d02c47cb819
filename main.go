package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/account-service/internal/api"
	"github.com/isdelr/account-service/internal/api/handlers"
	"github.com/isdelr/account-service/internal/auth"
	"github.com/isdelr/account-service/internal/config"
	"github.com/isdelr/account-service/internal/database"
	"github.com/isdelr/account-service/internal/logger"
	"github.com/isdelr/account-service/internal/security"
	"github.com/isdelr/account-service/internal/services"
	"github.com/isdelr/account-service/internal/store"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)

	// Set up document store
	st, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize store")
	}
	st = store.WithLogging(st)

	// Set up services
	eventService := services.NewEventService(st)
	userService := services.NewUserService(st, eventService, security.NewGenerator(cfg.SaltLength, cfg.TokenLength))

	// Set up authentication
	cookies := auth.NewCookies(cfg.CookieSecret, cfg.CookieSecure)
	if cfg.CookieSecret == "" {
		log.Warn().Msg("COOKIE_SECRET is not set, session cookies will not be signed")
	}
	guard := auth.NewGuard(auth.NewCredentialAuthenticator(st), auth.NewTokenAuthenticator(st), cookies, eventService)

	// Set up router
	router := api.NewRouter(guard, handlers.NewUserHandler(userService, cookies), cfg.CORSOrigins)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := st.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close store")
	}

	log.Info().Msg("Server exiting")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.StoreTimeout)
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory store, accounts will not survive a restart")
		return store.NewMemory(), nil
	default:
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		return store.NewSQLite(db), nil
	}
}
