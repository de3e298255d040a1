// Package main provides the portal API server entry point.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/companyos/portal-api/internal/api"
	"github.com/companyos/portal-api/internal/core/ports"
	mongodb "github.com/companyos/portal-api/internal/infrastructure/db/mongo"
	redisdb "github.com/companyos/portal-api/internal/infrastructure/db/redis"
	"github.com/companyos/portal-api/internal/infrastructure/mail"
	"github.com/companyos/portal-api/internal/infrastructure/queue"
	"github.com/companyos/portal-api/internal/infrastructure/templates"
	"github.com/companyos/portal-api/internal/pkg/config"
	"github.com/companyos/portal-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	jwtSecret, fallback := cfg.ResolveJWTSecret()
	if fallback {
		log.Warn().Msg("JWT_SECRET not set; using development-only fallback key")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Mail transport ---
	smtpCfg := mail.SMTPConfig{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: cfg.SMTP.From,
	}
	var mailer ports.Mailer
	if smtpCfg.Configured() {
		mailer = mail.NewSMTPMailer(smtpCfg)
	} else {
		log.Warn().Msg("no SMTP credentials found; emails will be simulated")
		mailer = mail.NewNoopMailer(log)
	}

	dispatcher := queue.NewDispatcher(cfg.EmailWorkers, mailer, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		DB:         db,
		Redis:      rdb,
		Mailer:     mailer,
		Dispatcher: dispatcher,
		Templates:  templates.NewStore(cfg.EmailTemplatesDir),
		JWTSecret:  jwtSecret,
		Logger:     log,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal API listening")
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

// ensureIndexes creates the uniqueness and TTL indexes the concurrency
// contracts depend on. Failing here is fatal: without the unique keys the
// atomic-write guarantees do not hold.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewOTPRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewAttendanceRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongodb.NewEmailRepository(db).EnsureIndexes(ctx)
}
