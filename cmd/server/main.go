package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cadastrahub/registry-api/internal/api"
	"github.com/cadastrahub/registry-api/internal/api/handler"
	"github.com/cadastrahub/registry-api/internal/core/ports"
	"github.com/cadastrahub/registry-api/internal/core/service"
	"github.com/cadastrahub/registry-api/internal/infrastructure/auth"
	"github.com/cadastrahub/registry-api/internal/infrastructure/config"
	"github.com/cadastrahub/registry-api/internal/infrastructure/db/migrate"
	mongodb "github.com/cadastrahub/registry-api/internal/infrastructure/db/mongo"
	"github.com/cadastrahub/registry-api/internal/infrastructure/db/postgres"
	redisdb "github.com/cadastrahub/registry-api/internal/infrastructure/db/redis"
	"github.com/cadastrahub/registry-api/internal/infrastructure/queue"
	"github.com/cadastrahub/registry-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       CadastraHub Registry API
// @version                     1.0
// @description                 Accounts, authorization and material lot ownership registry.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	if err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet; fall back to defaults.
		logger.Init(logger.Options{Service: "cadastrahub-registry"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "cadastrahub-registry",
	})

	// --- Relational store ---
	if cfg.Postgres.Migrate {
		if err := migrate.Up(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
		log.Info().Msg("database migrations applied")
	}

	pg, err := postgres.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer pg.Close()

	health := map[string]handler.PingFunc{"postgres": pg.Ping}

	// --- Audit trail (optional) ---
	var (
		recorder   ports.AuditRecorder
		dispatcher *queue.Dispatcher
	)
	if cfg.Mongo.URI != "" {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		audits := mongodb.NewAuditRepository(db)
		if err := audits.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit indexes not ensured")
		}

		dispatcher = queue.NewDispatcher(cfg.AuditWorkers, audits, log)
		dispatcher.Start()
		recorder = dispatcher
		health["mongodb"] = mongodb.Pinger(client)
	} else {
		log.Info().Msg("MONGO_URI not set, audit trail disabled")
	}

	// --- Authorization ---
	accounts := postgres.NewAccountRepository(pg)
	lotsRepo := postgres.NewLotRepository(pg)

	var (
		roles       ports.RoleResolver = service.NewRepositoryRoleResolver(accounts)
		invalidator ports.RoleInvalidator
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()

		cached := redisdb.NewCachedRoleResolver(rdb, roles, cfg.Auth.RoleCacheTTL, log)
		roles, invalidator = cached, cached
		health["redis"] = redisdb.Pinger(rdb)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL, log)
	if err != nil {
		return err
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.HashAlgorithm, cfg.Auth.BcryptCost)

	// --- Services ---
	lotService := service.NewLotService(lotsRepo, accounts, recorder, log)
	accountService := service.NewAccountService(accounts, invalidator, recorder, log)
	authService := service.NewAuthService(accounts, lotService, hasher, tokens, recorder, log)

	if cfg.Bootstrap.Enabled && cfg.Bootstrap.Token == "" {
		log.Warn().Msg("POST /admin/register is enabled without ADMIN_BOOTSTRAP_TOKEN; anyone can create administrators")
	}

	e := api.NewRouter(api.Dependencies{
		Auth:             authService,
		Accounts:         accountService,
		Lots:             lotService,
		Tokens:           tokens,
		Roles:            roles,
		BootstrapEnabled: cfg.Bootstrap.Enabled,
		BootstrapToken:   cfg.Bootstrap.Token,
		LoginRateLimit:   cfg.Auth.LoginRateLimit,
		LoginRateBurst:   cfg.Auth.LoginRateBurst,
		Health:           health,
		Logger:           log,
	})

	// --- Serve until signalled ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	return shutdown(e, dispatcher, log)
}

type server interface {
	Shutdown(ctx context.Context) error
}

// shutdown stops accepting requests first, then drains pending audit events.
// Store connections are closed by the deferred calls in run.
func shutdown(srv server, dispatcher *queue.Dispatcher, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if dispatcher != nil {
		if err := dispatcher.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	log.Info().Msg("server stopped")
	return errors.Join(errs...)
}
