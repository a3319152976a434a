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

	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/api"
	"github.com/reel2bits/accounts-api/internal/api/handler"
	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/service"
	mongodb "github.com/reel2bits/accounts-api/internal/infrastructure/db/mongo"
	redisdb "github.com/reel2bits/accounts-api/internal/infrastructure/db/redis"
	"github.com/reel2bits/accounts-api/internal/infrastructure/mail"
	"github.com/reel2bits/accounts-api/internal/infrastructure/queue"
	"github.com/reel2bits/accounts-api/internal/pkg/config"
	"github.com/reel2bits/accounts-api/pkg/logger"
)

// @title        reel2bits accounts API
// @version      1.0
// @description  Account registration and OAuth2 bootstrap token exchange.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Repositories ---
	accountRepo := mongodb.NewAccountRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	tokenRepo := mongodb.NewTokenRepository(db)
	clientRepo := mongodb.NewClientRepository(db)
	statsRepo := mongodb.NewStatsRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"accounts": accountRepo.EnsureIndexes,
		"roles":    roleRepo.EnsureIndexes,
		"tokens":   tokenRepo.EnsureIndexes,
		"clients":  clientRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	if err := roleRepo.Provision(ctx, domain.RoleUser, "Simple user"); err != nil {
		return err
	}
	if err := roleRepo.Provision(ctx, domain.RoleAdmin, "Admin"); err != nil {
		return err
	}

	// --- Confirmation pipeline ---
	confirmation := service.NewConfirmationService(
		accountRepo,
		redisdb.NewConfirmationStore(rdb),
		mail.NewLogMailer(log),
		cfg.Instance.URL,
		cfg.Confirmation.TTL,
		log,
	)
	dispatcher := queue.NewDispatcher(cfg.Confirmation.Workers, confirmation, logger.For("confirmation_queue"))
	dispatcher.Start(ctx)

	// --- Services ---
	exchange := service.NewTokenExchangeService(
		tokenRepo,
		clientRepo,
		service.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Instance.URL, cfg.Auth.TokenTTL),
		log,
	)
	registration := service.NewRegistrationService(service.RegistrationDeps{
		Credentials: accountRepo,
		Roles:       roleRepo,
		Accounts:    accountRepo,
		Tokens:      exchange,
		Confirmer:   service.NewConfirmer(cfg.Confirmation.Required, dispatcher),
		Hasher:      service.NewBcryptHasher(cfg.Auth.BcryptCost),
		Actors:      service.NewActorFactory(cfg.Instance.URL),
	}, log)
	accounts := service.NewAccountService(
		accountRepo,
		accountRepo,
		statsRepo,
		service.NewAccountProjection(cfg.Instance.DefaultAvatar, cfg.Instance.DefaultHeader),
		log,
	)

	e := api.NewRouter(api.Dependencies{
		Registration: registration,
		Accounts:     accounts,
		Confirmation: confirmation,
		Tokens:       tokenRepo,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("received interruption signal, shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
