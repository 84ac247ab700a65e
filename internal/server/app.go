// Package server initializes and runs the marketplace server: it opens the
// database, applies migrations, wires repositories into services, and starts
// the HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/anypart/marketplace/internal/logging"
	"github.com/anypart/marketplace/internal/server/config"
	"github.com/anypart/marketplace/internal/server/httpapi"
	"github.com/anypart/marketplace/internal/server/repositories/repomanager"
	"github.com/anypart/marketplace/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sessionPurgeInterval controls how often expired session rows are reaped.
const sessionPurgeInterval = time.Hour

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	httpServer     *httpapi.Server
	sessionService *services.SessionService
}

func NewApp(cfg *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repomanager init error: %w", err)
	}
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	unlockService := services.NewUnlockService(db, rm, cfg, logger)
	ledgerService := services.NewLedgerService(db, rm, cfg)
	sessionService := services.NewSessionService(db, rm, cfg, logger)
	catalogService := services.NewCatalogService(db, rm)
	paymentService := services.NewPaymentService(db, rm, cfg, logger)
	chatService := services.NewChatService(db, rm)
	adminService := services.NewAdminService(db, rm, cfg)
	imageService := services.NewImageService(cfg)

	httpServer := httpapi.NewServer(logger, unlockService, ledgerService, sessionService,
		catalogService, paymentService, chatService, adminService, imageService)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		httpServer:     httpServer,
		sessionService: sessionService,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx, app.config.EndpointAddrHTTP); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startSessionReaper(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := app.sessionService.PurgeExpired(ctx); err != nil {
				app.logger.Error(ctx, "session purge failed", "error", err)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSessionReaper(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
