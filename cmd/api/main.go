package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"

	"educhat-platform/internal/access"
	"educhat-platform/internal/auth"
	"educhat-platform/internal/authlog"
	"educhat-platform/internal/config"
	"educhat-platform/internal/database"
	"educhat-platform/internal/httpapi"
	"educhat-platform/internal/identity"
	"educhat-platform/internal/session"
	"educhat-platform/internal/sso"
	"educhat-platform/pkg/logger"
	"educhat-platform/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Bootstrap {
		if err := database.EnsureSchema(rootCtx, db); err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Services
	users := identity.NewService(db)
	sessions := session.NewService(db, authManager, cfg.Auth.RefreshTokenTTL)
	events := authlog.NewService(authlog.NewPGRepo(db))
	ssoService := sso.NewService(
		sso.NewClient(cfg.SSO.ServerURL, cfg.SSO.RequestTimeout),
		users,
		sessions,
		rdb,
		cfg.App.Domain,
		cfg.SSOEnv(),
	)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(access.Gate(authManager, access.DefaultMatrix()))

	registerRoutes(r, httpapi.Handlers{
		SSO:       ssoService,
		Sessions:  sessions,
		Users:     users,
		Events:    events,
		AuthCodes: auth.NewAuthCode(cfg.Auth.AuthCodeSalt),
		DB:        db,
		RDB:       rdb,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.App.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         3600,
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           corsHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
