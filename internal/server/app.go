// Package server initializes and runs the application: it opens the
// database, applies migrations, wires services to their backends, and
// starts the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dkravetz/sixtyfix/internal/logging"
	"github.com/dkravetz/sixtyfix/internal/server/aifix"
	"github.com/dkravetz/sixtyfix/internal/server/auth"
	"github.com/dkravetz/sixtyfix/internal/server/config"
	"github.com/dkravetz/sixtyfix/internal/server/httpapi"
	"github.com/dkravetz/sixtyfix/internal/server/mail"
	"github.com/dkravetz/sixtyfix/internal/server/repositories/repomanager"
	"github.com/dkravetz/sixtyfix/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer := auth.NewIssuer([]byte(cfg.SecretKey))
	notifier := mail.NewNotifier(cfg.Mail, logger)
	generator := aifix.NewGenerator(cfg.AI, logger)

	us := services.NewUserService(db, rm, issuer, notifier, cfg, logger)
	is := services.NewItemService(db, rm, generator, logger)

	srv := httpapi.NewServer(cfg, logger, us, is, generator)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
