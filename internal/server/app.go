// Package server initializes and runs the PolicySignoff server.
// It opens the database, applies migrations, connects object storage and
// runs the JSON API next to the gRPC health endpoint until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/clock"
	"github.com/dmitrijs2005/policysignoff/internal/logging"
	"github.com/dmitrijs2005/policysignoff/internal/server/config"
	"github.com/dmitrijs2005/policysignoff/internal/server/httpapi"
	"github.com/dmitrijs2005/policysignoff/internal/server/objectstore"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/policysignoff/internal/server/services"
	"github.com/dmitrijs2005/policysignoff/internal/validate"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/policysignoff/internal/server/grpc"
)

const tokenPurgeInterval = time.Hour

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	userService   *services.UserService
	policyService *services.PolicyService
	fileService   *services.FileService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if c.MigrateOnStart {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	store, err := objectstore.NewS3Store(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	v := validate.New()
	clk := clock.Real()

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		userService:   services.NewUserService(db, rm, v, clk, c),
		policyService: services.NewPolicyService(db, rm, v, clk, loc),
		fileService:   services.NewFileService(db, rm, store, v, c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(httpapi.Options{
		Users:          app.userService,
		Policies:       app.policyService,
		Files:          app.fileService,
		DB:             app.db,
		Logger:         app.logger,
		AllowedOrigins: app.config.CORSAllowedOrigins,
		SecureCookies:  app.config.SecureCookies,
	})

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeTokens drops expired refresh tokens once per tokenPurgeInterval.
func (app *App) purgeTokens(ctx context.Context) {
	t := time.NewTicker(tokenPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "refresh token purge failed", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired refresh tokens purged", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err.Error())
	}
	app.logger.Info(context.Background(), "App stopped")
}
