package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/field-expense/internal"
	"github.com/frahmantamala/field-expense/internal/auth"
	authPostgres "github.com/frahmantamala/field-expense/internal/auth/postgres"
	"github.com/frahmantamala/field-expense/internal/core/events"
	"github.com/frahmantamala/field-expense/internal/expense"
	expensePostgres "github.com/frahmantamala/field-expense/internal/expense/postgres"
	"github.com/frahmantamala/field-expense/internal/ledger"
	"github.com/frahmantamala/field-expense/internal/limit"
	limitPostgres "github.com/frahmantamala/field-expense/internal/limit/postgres"
	"github.com/frahmantamala/field-expense/internal/mission"
	missionPostgres "github.com/frahmantamala/field-expense/internal/mission/postgres"
	"github.com/frahmantamala/field-expense/internal/receipt"
	"github.com/frahmantamala/field-expense/internal/report"
	"github.com/frahmantamala/field-expense/internal/transport"
	"github.com/frahmantamala/field-expense/internal/transport/middleware"
	"github.com/frahmantamala/field-expense/internal/transport/rest"
	"github.com/frahmantamala/field-expense/internal/user"
	userPostgres "github.com/frahmantamala/field-expense/internal/user/postgres"
	"github.com/frahmantamala/field-expense/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let audit handlers finish before the pool goes away
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	authService := auth.NewService(
		authPostgres.NewRepository(deps.Gorm),
		auth.NewJWTTokenGenerator(cfg.Security),
		cfg.Security.BCryptCost,
		lg,
	)

	userRepo := userPostgres.NewUserRepository(deps.Gorm)
	userService := user.NewService(userRepo, authService, lg)
	limitService := limit.NewService(limitPostgres.NewLimitRepository(deps.Gorm), authService, deps.EventBus, lg)
	missionService := mission.NewService(missionPostgres.NewMissionRepository(deps.Gorm), lg)

	expenseRepo := expensePostgres.NewExpenseRepository(deps.Gorm)
	expenseService := expense.NewService(expenseRepo, authService, missionService, limitService, deps.EventBus, lg)

	store, err := receipt.NewStore(cfg.Storage.ReceiptDir)
	if err != nil {
		return fmt.Errorf("receipt store: %w", err)
	}
	receiptService := receipt.NewService(store, cfg.Storage.PublicBaseURL, lg)

	reportService := report.NewService(expenseRepo, userRepo, limitService, authService, lg)

	opts := rest.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SpecPath:       cfg.OpenAPI.SpecPath,
	}
	if cfg.OpenAPI.ValidateRequests {
		doc, err := middleware.LoadOpenAPI(context.Background(), cfg.OpenAPI.SpecPath)
		if err != nil {
			return err
		}
		validator, err := middleware.NewRequestValidator(doc, rest.APIPrefix, lg)
		if err != nil {
			return err
		}
		opts.Validator = validator
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB, rest.Handlers{
		Auth:    auth.NewHandler(base, authService),
		User:    user.NewHandler(base, userService),
		Limit:   limit.NewHandler(base, limitService),
		Mission: mission.NewHandler(base, missionService),
		Expense: expense.NewHandler(base, expenseService),
		Ledger:  ledger.NewHandler(base, expenseService),
		Receipt: receipt.NewHandler(base, receiptService, store.FS(), rest.APIPrefix+"/receipts/", cfg.Storage.MaxUploadBytes),
		Report:  report.NewHandler(base, reportService),
	}, authService.RBACAuthorization(), opts, lg)

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db, config.Observability.Logging.Level)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.AllEvents, events.AuditTrail(lg))

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gdb,
		Router:   chi.NewRouter(),
		EventBus: bus,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm reuses the sqlx pool so both share one set of connections.
func initGorm(db *sqlx.DB, logLevel string) (*gorm.DB, error) {
	level := gormLogger.Warn
	if strings.EqualFold(logLevel, "debug") {
		level = gormLogger.Info
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(level),
	})
}
