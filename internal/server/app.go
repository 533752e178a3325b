// Package server wires the StockKeeper server together: storage backends,
// token machinery, services and the gRPC and HTTP listeners, with graceful
// shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
	"github.com/dmitrijs2005/stockkeeper/internal/server/storage"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/stockkeeper/internal/server/grpc"
)

// openDB and newObjectStore are seams for tests.
var (
	openDB         = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
	newObjectStore = func(ctx context.Context, c *config.Config) (services.ObjectStore, error) {
		return storage.NewS3Store(ctx, storage.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
	}
)

// runner is a long-running component; it returns when ctx is done.
type runner struct {
	name string
	run  func(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	closers []func() error
	runners []runner
}

// NewApp validates the configuration and builds every component. Nothing
// listens until Run.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{config: c, logger: logger}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	app.closers = append(app.closers, db.Close)

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	refresh, err := app.refreshStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	store, err := newObjectStore(ctx, c)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	signer, err := auth.NewSigner(c.AccessSecret, c.ResourceSecret)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("signer init error: %w", err)
	}
	hasher := auth.NewBcryptHasher(c.HashCost)

	resources := services.NewResourceService(signer, store, c.PublicBaseURL, logger)
	svc := gs.Services{
		Auth:          services.NewAuthService(db, rm, refresh, signer, hasher, c, logger),
		Organizations: services.NewOrganizationService(db, rm, logger),
		Tags:          services.NewTagService(db, rm, logger),
		Items:         services.NewItemService(db, rm, resources, store, logger),
	}

	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, auth.NewGate(signer, logger), svc)
	httpServer := httpapi.NewServer(c.EndpointAddrHTTP, logger, resources, db.PingContext)

	app.runners = []runner{
		{name: "grpc", run: grpcServer.Run},
		{name: "http", run: httpServer.Run},
	}
	return app, nil
}

// refreshStore returns nil for the PostgreSQL store, which the auth service
// builds from the repository manager.
func (app *App) refreshStore(ctx context.Context) (refreshtokens.Repository, error) {
	if app.config.RefreshStore != config.RefreshStoreRedis {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
	})
	app.closers = append(app.closers, rdb.Close)

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return refreshtokens.NewRedisRepository(rdb), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts every component and blocks until a signal arrives, ctx is
// cancelled or one of the components fails. A failure stops the others.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "grpc", app.config.EndpointAddrGRPC, "http", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, r := range app.runners {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.run(ctx); err != nil {
				app.logger.Error(ctx, "component failed", "component", r.name, "error", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", r.name, err)
				}
				mu.Unlock()
				cancelFunc()
			}
		}()
	}
	wg.Wait()

	app.Close()
	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}

// Close releases the database and Redis connections.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
