// @title                       Help Desk API
// @version                     1.0.0
// @description                 User, team and session management for the help desk.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/helpdesk/helpdesk-api/docs"
	"github.com/helpdesk/helpdesk-api/internal/api"
	"github.com/helpdesk/helpdesk-api/internal/api/handler"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
	"github.com/helpdesk/helpdesk-api/internal/core/service"
	mongostore "github.com/helpdesk/helpdesk-api/internal/infrastructure/db/mongo"
	redisstore "github.com/helpdesk/helpdesk-api/internal/infrastructure/db/redis"
	"github.com/helpdesk/helpdesk-api/internal/infrastructure/db/relational"
	"github.com/helpdesk/helpdesk-api/internal/pkg/config"
	"github.com/helpdesk/helpdesk-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.Service,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	store := service.NewCredentialStore(st.users, cfg.BcryptCost, log)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	users := service.NewUserService(store, st.teams, log)

	if cfg.Bootstrap.Email != "" {
		created, err := users.EnsureAdmin(ctx, cfg.Bootstrap.Email, cfg.Bootstrap.Password)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", cfg.Bootstrap.Email).Msg("bootstrap administrator created")
		}
	}

	deps := api.Deps{
		Auth:       service.NewAuthService(store, tokens, log),
		Users:      users,
		Teams:      service.NewTeamService(st.teams, log),
		Tokens:     tokens,
		Identities: store,
		Log:        log,
		Debug:      cfg.IsDevelopment(),
		Readiness:  st.pings,
	}
	if cfg.Metrics {
		deps.MetricsRegisterer = prometheus.DefaultRegisterer
		deps.MetricsGatherer = prometheus.DefaultGatherer
	}
	e := api.NewRouter(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("driver", cfg.DB.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// stores holds the repositories selected by DB_DRIVER.
type stores struct {
	users   ports.UserRepository
	teams   ports.TeamRepository
	pings   map[string]handler.PingFunc
	closers []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	st := &stores{pings: make(map[string]handler.PingFunc)}

	if cfg.DB.Driver == "mongo" {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = client.Disconnect(context.Background()) })

		userRepo := mongostore.NewUserRepository(db, cfg.DB.QueryTimeout)
		teamRepo := mongostore.NewTeamRepository(db, cfg.DB.QueryTimeout)
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			st.close()
			return nil, err
		}
		if err := teamRepo.EnsureIndexes(ctx); err != nil {
			st.close()
			return nil, err
		}
		st.users, st.teams = userRepo, teamRepo
		st.pings["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	} else {
		dsn := cfg.DB.DSN
		if dsn == "" {
			var err error
			dsn, err = relational.BuildDSN(cfg.DB.Driver, cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Pass, cfg.DB.Name)
			if err != nil {
				return nil, err
			}
		}
		db, err := relational.Open(relational.Config{
			Driver:          cfg.DB.Driver,
			DSN:             dsn,
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = relational.Close(db) })

		if err := relational.Migrate(db); err != nil {
			st.close()
			return nil, err
		}
		st.users = relational.NewUserRepository(db, cfg.DB.QueryTimeout)
		st.teams = relational.NewTeamRepository(db, cfg.DB.QueryTimeout)
		st.pings["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("database connected")

	if cfg.Redis.Addr != "" {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			st.close()
			return nil, fmt.Errorf("identity cache: %w", err)
		}
		st.closers = append(st.closers, func() { _ = client.Close() })
		st.users = redisstore.NewCachedUserRepository(st.users, client, cfg.Redis.CacheTTL, log)
		st.pings["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("identity cache enabled")
	}

	return st, nil
}
