package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/config"
	"github.com/iliyamo/allclear/internal/database"
	"github.com/iliyamo/allclear/internal/logging"
	"github.com/iliyamo/allclear/internal/repository"
	"github.com/iliyamo/allclear/internal/repository/memrepo"
	"github.com/iliyamo/allclear/internal/repository/mongorepo"
	"github.com/iliyamo/allclear/internal/repository/mysqlrepo"
	"github.com/iliyamo/allclear/internal/router"
	"github.com/iliyamo/allclear/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.JWTSecretIsDev {
		log.Warn().Msg("JWT_SECRET is not set; using the development signing key")
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
			log.Error().Err(err).Msg("sentry init failed; error reporting disabled")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store connection failed")
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled {
		if rdb = config.NewRedisClient(cfg.Redis); rdb == nil {
			log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable; response cache disabled")
		}
	}

	sessions := service.NewSessions(cfg.JWTSecret, cfg.JWTTTL, store.Users(), time.Now)
	e := router.New(router.Deps{
		Config:    cfg,
		Log:       log,
		Store:     store,
		Sessions:  sessions,
		Accounts:  service.NewAccounts(store, sessions, cfg.BcryptCost, time.Now, log),
		Friends:   service.NewFriends(store.Friends(), time.Now),
		Locations: service.NewLocations(store.Locations(), time.Now),
		Redis:     rdb,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("listening")
	serveErr := serve(e, addr, quit, log)
	if serveErr != nil {
		log.Error().Err(serveErr).Msg("server failed; shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if serveErr != nil {
		cancel()
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
}

// serve runs e on addr until a signal arrives on quit or the listener
// fails.  The listener error is returned; a signal returns nil.  The
// caller shuts e down either way.
func serve(e *echo.Echo, addr string, quit <-chan os.Signal, log zerolog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		return nil
	case err := <-serveErr:
		return err
	}
}

// openStore connects the configured backend and prepares its schema.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		log.Info().Str("uri", database.MaskURI(cfg.MongoURI)).Msg("connecting to MongoDB")
		client, err := database.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		st := mongorepo.New(client, cfg.MongoDatabase)
		idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := st.EnsureIndexes(idxCtx); err != nil {
			_ = st.Close(context.Background())
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return st, nil

	case config.DriverMySQL:
		log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connecting to MySQL")
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		migCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := mysqlrepo.Migrate(migCtx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return mysqlrepo.New(db), nil

	case config.DriverMemory:
		log.Warn().Msg("using the in-memory store; data is lost on restart")
		return memrepo.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
