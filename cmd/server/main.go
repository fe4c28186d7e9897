// @title                       Client Manager API
// @version                     1.0
// @description                 Client relationship management API with ownership-scoped client records and administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/clientespro/client-manager/internal/api"
	"github.com/clientespro/client-manager/internal/api/handler"
	"github.com/clientespro/client-manager/internal/api/middleware"
	"github.com/clientespro/client-manager/internal/core/service"
	"github.com/clientespro/client-manager/internal/infrastructure/config"
	mongostore "github.com/clientespro/client-manager/internal/infrastructure/db/mongo"
	redisstore "github.com/clientespro/client-manager/internal/infrastructure/db/redis"
	"github.com/clientespro/client-manager/internal/infrastructure/notify"
	"github.com/clientespro/client-manager/internal/infrastructure/queue"
	"github.com/clientespro/client-manager/internal/infrastructure/scheduler"
	"github.com/clientespro/client-manager/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty || cfg.IsDevelopment(),
		Service: "client-manager",
	})

	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	if err := mongostore.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure mongodb schema")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}

	users := mongostore.NewUserRepository(db)
	clients := mongostore.NewClientRepository(db)
	denylist := redisstore.NewTokenDenylist(rdb)

	// --- Background work ---
	workCtx, stopWork := context.WithCancel(ctx)
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notify.NewLogSender(logger.Component("notify")), logger.Component("dispatcher"))
	dispatcher.Start(workCtx)

	jobs, err := scheduler.New(users, cfg.Jobs.Interval, logger.Component("scheduler"))
	if err != nil {
		log.Fatal().Err(err).Msg("create scheduler")
	}
	jobs.Start()

	// --- Services ---
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil)
	authService := service.NewAuthService(users, tokens, service.AuthOptions{
		MinPasswordLength: cfg.Auth.PasswordMinLength,
		BcryptCost:        cfg.Auth.BcryptCost,
		ResetTokenTTL:     cfg.Auth.ResetTokenTTL,
		Denylist:          denylist,
		Limiter:           redisstore.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginAttemptWindow),
		Notifier:          dispatcher,
	}, logger.Component("auth"))

	if cfg.Auth.AdminEmail != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("seed admin account")
		}
	}

	e := api.NewRouter(api.Deps{
		Auth:    authService,
		Clients: service.NewClientService(clients, nil, logger.Component("clients")),
		Admin:   service.NewAdminService(users, logger.Component("admin")),
		Stats:   service.NewStatsService(clients, users, nil),
		Gate:    middleware.NewGate(tokens, denylist, users, logger.Component("auth_gate")),
		Pingers: map[string]handler.Pinger{
			"mongodb": mongostore.NewPinger(mongoClient),
			"redis":   redisstore.NewPinger(rdb),
		},
		Log:              logger.Component("http"),
		ExposeResetToken: cfg.Auth.ExposeResetToken,
		EnableMetrics:    true,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := jobs.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown")
	}
	stopWork()
	dispatcher.Wait()

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("close redis")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("disconnect mongodb")
	}
	log.Info().Msg("shutdown complete")
}
