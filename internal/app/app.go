package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-user-service/internal/config"
	"go-user-service/internal/database"
	"go-user-service/internal/handler"
	"go-user-service/internal/middleware"
	"go-user-service/internal/repository"
	"go-user-service/internal/router"
	"go-user-service/internal/service"
	"go-user-service/internal/session"
	"go-user-service/internal/token"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	codec, err := token.NewCodec(token.CodecConfig{
		Access: token.KeyPairPEM{
			Private: cfg.AccessTokenPrivateKey,
			Public:  cfg.AccessTokenPublicKey,
		},
		Refresh: token.KeyPairPEM{
			Private: cfg.RefreshTokenPrivateKey,
			Public:  cfg.RefreshTokenPublicKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load token keys: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	slog.Info("connecting to Redis")
	sessions, err := session.Open(context.Background(), session.Config{URL: cfg.RedisURL})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to session store: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	userService := service.NewUserService(userRepo)

	authService, err := service.NewAuthService(codec, sessions, userRepo, cfg.JWTIssuer, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		db.Close()
		_ = sessions.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	gate := middleware.NewAuthGate(authService, cfg.CORSAllowOrigin, cfg.PublicPaths, cfg.TokenExemptPaths)
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)

	appRouter := router.New(cfg, gate, authHandler, userHandler)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			func() { db.Close() },
			func() { _ = sessions.Close() },
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
