package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"inkwell/config"
	"inkwell/internal/adapter/in/rest"
	"inkwell/internal/adapter/out/files"
	memstore "inkwell/internal/adapter/out/storage/inmemory"
	mongostore "inkwell/internal/adapter/out/storage/mongodb"
	pgstore "inkwell/internal/adapter/out/storage/postgres"
	"inkwell/internal/service"
	"inkwell/pkg/logger"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	cfg   config.Config
	srv   *http.Server
	pool  *pgxpool.Pool
	mongo *mongo.Client
}

func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.FromContext(ctx)

	// userStore and categoryStore combine the storage interfaces with the
	// directories the post service resolves authors and categories through.
	type userStore interface {
		service.UserStorage
		service.UserDirectory
	}
	type categoryStore interface {
		service.CategoryStorage
		service.CategoryDirectory
	}

	var (
		postStorage     service.PostStorage
		userStorage     userStore
		categoryStorage categoryStore
		pool            *pgxpool.Pool
		mongoClient     *mongo.Client
	)

	switch cfg.StorageType {
	case "postgres":
		var err error
		pool, err = pgxpool.New(ctx, cfg.Postgres.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("pgxpool: %w", err)
		}
		postStorage = pgstore.NewPostStorage(pool, trmpgx.DefaultCtxGetter)
		userStorage = pgstore.NewUserStorage(pool, trmpgx.DefaultCtxGetter)
		categoryStorage = pgstore.NewCategoryStorage(pool, trmpgx.DefaultCtxGetter)

	case "inmemory":
		postStorage = memstore.NewPostStorage()
		userStorage = memstore.NewUserStorage()
		categoryStorage = memstore.NewCategoryStorage()

	default:
		var err error
		mongoClient, err = mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		db := mongoClient.Database(cfg.Mongo.Database)

		users := mongostore.NewUserStorage(db)
		categories := mongostore.NewCategoryStorage(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			log.Warn("user indexes", "error", err)
		}
		if err := categories.EnsureIndexes(ctx); err != nil {
			log.Warn("category indexes", "error", err)
		}

		postStorage = mongostore.NewPostStorage(db)
		userStorage = users
		categoryStorage = categories
	}

	uploadStore, err := files.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		return nil, fmt.Errorf("upload store: %w", err)
	}

	tokens := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	postSvc := service.NewPostService(postStorage, userStorage, categoryStorage)
	authSvc := service.NewAuthService(userStorage, tokens)
	categorySvc := service.NewCategoryService(categoryStorage)

	handler := rest.NewHandler(postSvc, categorySvc, authSvc, uploadStore, tokens)
	router := rest.NewRouter(handler)

	addr := ":" + cfg.HTTP.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("app initialized", "addr", addr, "storage", cfg.StorageType)
	return &App{cfg: cfg, srv: srv, pool: pool, mongo: mongoClient}, nil
}

func (a *App) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(shCtx)
		a.closeStores(shCtx)
		return nil

	case err := <-errCh:
		a.closeStores(context.Background())
		return err
	}
}

func (a *App) closeStores(ctx context.Context) {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
}
