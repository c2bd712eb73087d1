package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"

	"github.com/roombook/backend/internal/auth"
	"github.com/roombook/backend/internal/controllers"
	"github.com/roombook/backend/internal/database"
	"github.com/roombook/backend/internal/database/migrations"
	"github.com/roombook/backend/internal/router"
	"github.com/roombook/backend/internal/service"
)

func main() {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "unable to load .env: %s\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "roombook-api",
		Usage: "room booking HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Value: false,
				EnvVars: []string{
					"ROOMBOOK_API_DEBUG",
				},
			},
			&cli.StringFlag{
				Name:  "http-listen-address",
				Value: "127.0.0.1:3000",
				EnvVars: []string{
					"ROOMBOOK_API_HTTP_LISTEN_ADDRESS",
				},
			},
			&cli.StringFlag{
				Name: "postgres-uri",
				EnvVars: []string{
					"ROOMBOOK_API_POSTGRES_URI",
				},
			},
			&cli.StringFlag{
				Name:  "token-secret",
				Usage: "base64 encoded ed25519 secret key, see the keygen command",
				EnvVars: []string{
					"ROOMBOOK_API_TOKEN_SECRET",
				},
			},
			&cli.DurationFlag{
				Name:  "token-ttl",
				Value: time.Hour,
				EnvVars: []string{
					"ROOMBOOK_API_TOKEN_TTL",
				},
			},
			&cli.StringSliceFlag{
				Name: "cors-allowed-origins",
				EnvVars: []string{
					"ROOMBOOK_API_CORS_ALLOWED_ORIGINS",
				},
			},
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "apply pending migrations before serving",
				EnvVars: []string{
					"ROOMBOOK_API_MIGRATE",
				},
			},
		},
		Before: func(cctx *cli.Context) (err error) {
			err = setupLogging(cctx.Bool("debug"))
			return
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the HTTP API (default)",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: migrateAction(migrations.Up)},
					{Name: "down", Usage: "roll back the latest migration", Action: migrateAction(migrations.Down)},
					{Name: "status", Usage: "print migration status", Action: migrateAction(migrations.Status)},
				},
			},
			{
				Name:   "keygen",
				Usage:  "print a fresh token secret",
				Action: keygen,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		zap.L().Fatal("unhandled error", zap.Error(err))
	}
}

func setupLogging(debugMode bool) error {
	var cfg zap.Config

	if debugMode {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level.SetLevel(zapcore.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Development = false
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level.SetLevel(zapcore.InfoLevel)
	}

	cfg.OutputPaths = []string{
		"stdout",
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(logger)

	return nil
}

func openDB(cctx *cli.Context) (db *bun.DB, err error) {
	uri := cctx.String("postgres-uri")
	if uri == "" {
		err = errors.New("--postgres-uri (ROOMBOOK_API_POSTGRES_URI) is required")
		return
	}
	return database.Open(cctx.Context, uri)
}

func setupMigrations() error {
	return migrations.Setup(zap.NewStdLog(zap.L().Named("goose")))
}

func migrateAction(run func(db *sql.DB) error) cli.ActionFunc {
	return func(cctx *cli.Context) (err error) {
		defer func() { _ = zap.L().Sync() }()

		if err = setupMigrations(); err != nil {
			return
		}

		var db *bun.DB
		if db, err = openDB(cctx); err != nil {
			return
		}
		defer func() { _ = db.Close() }()

		err = run(db.DB)
		return
	}
}

func keygen(cctx *cli.Context) error {
	_, encoded := auth.GenerateSecretKey()
	_, err := fmt.Fprintln(cctx.App.Writer, encoded)
	return err
}

func loadTokens(cctx *cli.Context) (tokens *auth.Tokens, err error) {
	secret := cctx.String("token-secret")
	if secret == "" {
		zap.L().Warn("no token secret configured, generating an ephemeral one; tokens will not survive a restart")
		key, _ := auth.GenerateSecretKey()
		tokens = auth.NewTokens(key, cctx.Duration("token-ttl"))
		return
	}

	key, err := auth.LoadSecretKey(secret)
	if err != nil {
		err = fmt.Errorf("unable to load token secret: %w", err)
		return
	}
	tokens = auth.NewTokens(key, cctx.Duration("token-ttl"))
	return
}

func serve(cctx *cli.Context) (err error) {
	ctx := cctx.Context
	defer func() { _ = zap.L().Sync() }()

	db, err := openDB(cctx)
	if err != nil {
		return
	}
	defer func() { _ = db.Close() }()

	if cctx.Bool("debug") {
		var dbLogger io.WriteCloser = &zapio.Writer{Log: zap.L().With(zap.String("section", "bun")), Level: zapcore.DebugLevel}
		defer func() { _ = dbLogger.Close() }()

		database.LogQueries(db, dbLogger)
	}

	if cctx.Bool("migrate") {
		if err = setupMigrations(); err != nil {
			return
		}
		if err = migrations.Up(db.DB); err != nil {
			err = fmt.Errorf("failed to apply migrations: %w", err)
			return
		}
	}

	tokens, err := loadTokens(cctx)
	if err != nil {
		return
	}

	stores := service.Stores{
		Users:    database.NewUserStore(db),
		Rooms:    database.NewRoomStore(db),
		Bookings: database.NewBookingStore(db),
	}
	authSvc := service.NewAuthService(stores, auth.Hasher{}, tokens)
	roomSvc := service.NewRoomService(stores)
	bookingSvc := service.NewBookingService(stores)

	mr := mux.NewRouter()
	mr.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.WriteJSON(w, http.StatusNotFound, router.ErrorBody{Message: "Not found"})
	})
	mr.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.WriteJSON(w, http.StatusMethodNotAllowed, router.ErrorBody{Message: "Method not allowed"})
	})

	if cctx.Bool("debug") {
		(&controllers.GoDebugController{}).Register(mr)
	}
	router.RegisterAll(mr,
		&controllers.HealthController{DB: db},
		&controllers.AuthController{Auth: authSvc},
	)

	api := mr.PathPrefix("/api/v1").Subrouter()
	api.Use(router.RequireBearer(authSvc))
	router.RegisterAll(api,
		&controllers.RoomController{Rooms: roomSvc, Bookings: bookingSvc},
		&controllers.BookingController{Bookings: bookingSvc},
	)

	accessLog := &zapio.Writer{Log: zap.L().With(zap.String("section", "http")), Level: zapcore.InfoLevel}
	defer func() { _ = accessLog.Close() }()

	httpErrors := zap.NewStdLog(zap.L().Named("http"))
	srv := &http.Server{
		Addr: cctx.String("http-listen-address"),
		Handler: router.Chain(mr, router.ChainOptions{
			AccessLog:      accessLog,
			ErrorLog:       httpErrors,
			AllowedOrigins: cctx.StringSlice("cors-allowed-origins"),
			Debug:          cctx.Bool("debug"),
		}),
		ErrorLog:     httpErrors,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	err = listenAndDrain(ctx, srv, 10*time.Second)
	return
}

// listenAndDrain serves srv until ctx is done, then gives in-flight requests
// up to drain to finish. A failure to listen is returned.
func listenAndDrain(ctx context.Context, srv *http.Server, drain time.Duration) (err error) {
	var listenErr error
	serverDone := make(chan interface{})
	go func() {
		zap.L().Info("serving requests", zap.String("addr", "http://"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr = fmt.Errorf("failed to listen for http requests: %w", err)
		}
		close(serverDone)
	}()

	select {
	case <-serverDone:
		// listenErr is written before serverDone is closed
		err = listenErr
		return
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed to drain http server: %w", err)
	}
	<-serverDone
	if listenErr != nil {
		err = listenErr
	}
	return
}
