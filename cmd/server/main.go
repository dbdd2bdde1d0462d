package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/iliyamo/tiered-catalog/internal/config"
	"github.com/iliyamo/tiered-catalog/internal/database"
	"github.com/iliyamo/tiered-catalog/internal/handler"
	"github.com/iliyamo/tiered-catalog/internal/media"
	"github.com/iliyamo/tiered-catalog/internal/middleware"
	"github.com/iliyamo/tiered-catalog/internal/queue"
	"github.com/iliyamo/tiered-catalog/internal/repository"
	"github.com/iliyamo/tiered-catalog/internal/router"
	"github.com/iliyamo/tiered-catalog/internal/service"
)

// stores groups the three repositories the services depend on.
type stores struct {
	movies service.MovieStore
	users  service.UserStore
	genres service.GenreStore
	check  handler.Check
	close  func()
}

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.close()

	// Redis is optional: the cache and the rate limiter pass through without it.
	rdb, err := config.NewRedisClient()
	if err != nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	uploader, err := media.NewCloudinaryUploader(cfg.CloudinaryURL, media.CloudinaryOptions{
		Folder:  cfg.MediaFolder,
		Timeout: cfg.UploadTimeout,
	})
	if err != nil {
		logger.Fatal("media uploader", zap.Error(err))
	}

	var events service.EventPublisher = queue.Discard{}
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.RabbitURL, logger)
		defer pub.Close()
		events = pub
		consumer := &queue.Consumer{URL: cfg.RabbitURL, Dir: cfg.EventLogDir, Log: logger}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("catalog consumer stopped", zap.Error(err))
			}
		}()
	}

	accounts := service.NewAccounts(st.users, cfg.BcryptCost, logger)
	catalog := service.NewCatalog(st.movies, st.genres, uploader, events, logger)
	genres := service.NewGenres(st.genres, st.movies)

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, logger)
	checks := map[string]handler.Check{"store": st.check}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	e := router.New(router.Deps{
		JWTSecret:  cfg.JWTSecret,
		CORSOrigin: cfg.CORSOrigin,
		Log:        logger,
		Users:      accounts,
		Movies:     handler.NewMovieHandler(catalog, cache, logger, router.BasePath),
		Accounts: handler.NewUserHandler(accounts, cfg.JWTSecret,
			time.Duration(cfg.SessionTTLDays)*24*time.Hour, !cfg.Dev(), logger),
		Genres:    handler.NewGenreHandler(genres, logger),
		Health:    &handler.Health{Checks: checks},
		Cache:     cache,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Dev() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStores connects the configured backend and prepares its schema.
func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case "mysql":
		db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateMySQL(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return mysqlStores(db), nil
	case "memory":
		mem := repository.NewMemoryStore()
		return &stores{
			movies: mem.Movies(),
			users:  mem.Users(),
			genres: mem.Genres(),
			check:  func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	default:
		client, db, err := database.OpenMongo(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return mongoStores(client, db), nil
	}
}

func mysqlStores(db *sql.DB) *stores {
	return &stores{
		movies: repository.NewMovieRepo(db),
		users:  repository.NewUserRepo(db),
		genres: repository.NewGenreRepo(db),
		check:  db.PingContext,
		close:  func() { _ = db.Close() },
	}
}

func mongoStores(client *mongo.Client, db *mongo.Database) *stores {
	return &stores{
		movies: repository.NewMongoMovieRepo(db),
		users:  repository.NewMongoUserRepo(db),
		genres: repository.NewMongoGenreRepo(db),
		check:  func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		close:  func() { _ = client.Disconnect(context.Background()) },
	}
}
