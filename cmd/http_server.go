package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/festflow/festflow/internal"
	"github.com/festflow/festflow/internal/advance"
	advancedb "github.com/festflow/festflow/internal/advance/postgres"
	"github.com/festflow/festflow/internal/audit"
	auditdb "github.com/festflow/festflow/internal/audit/postgres"
	"github.com/festflow/festflow/internal/auth"
	"github.com/festflow/festflow/internal/event"
	eventdb "github.com/festflow/festflow/internal/event/postgres"
	"github.com/festflow/festflow/internal/expense"
	expensedb "github.com/festflow/festflow/internal/expense/postgres"
	"github.com/festflow/festflow/internal/history"
	historydb "github.com/festflow/festflow/internal/history/postgres"
	"github.com/festflow/festflow/internal/report"
	"github.com/festflow/festflow/internal/transport/rest"
	"github.com/festflow/festflow/internal/transport/swagger"
	"github.com/festflow/festflow/internal/upload"
	"github.com/festflow/festflow/internal/user"
	userdb "github.com/festflow/festflow/internal/user/postgres"
	"github.com/festflow/festflow/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
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
	Config *internal.Config
	DB     *gorm.DB
	SQLDB  *sql.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
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
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.SQLDB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.L()

	if err := swagger.ValidateSpec("./api/openapi.yml"); err != nil {
		return nil, err
	}

	db, sqlDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	uploadStore, err := upload.NewDiskStore(config.Storage.UploadsDir)
	if err != nil {
		return nil, err
	}

	userRepo := userdb.NewUserRepository(db)
	eventRepo := eventdb.NewEventRepository(db)
	expenseRepo := expensedb.NewExpenseRepository(db)
	advanceRepo := advancedb.NewAdvanceRepository(db)
	auditRepo := auditdb.NewAuditRepository(db)
	historyRepo := historydb.NewHistoryRepository(db)

	userService := user.NewService(userRepo, log)
	eventService := event.NewService(eventRepo, log)
	expenseService := expense.NewService(expenseRepo, userService, log)
	advanceService := advance.NewService(advanceRepo, log)
	auditService := audit.NewService(auditRepo, log)
	historyService := history.NewService(historyRepo, log)
	reportService := report.NewService(expenseRepo, eventService, log)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userService, tokens, log)

	handlers := rest.Handlers{
		Auth:    auth.NewHandler(authService),
		User:    user.NewHandler(userService),
		Event:   event.NewHandler(eventService),
		Expense: expense.NewHandler(expenseService),
		Advance: advance.NewHandler(advanceService),
		Report:  report.NewHandler(reportService),
		History: history.NewHandler(historyService),
		Audit:   audit.NewHandler(auditService),
		Upload:  upload.NewHandler(uploadStore),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB, handlers, config.Storage.UploadsDir, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		SQLDB:  sqlDB,
		Router: router,
	}, nil
}

// initDB opens the database for the configured driver. Postgres goes
// through sqlx over pgx so pool settings apply to the shared
// connection; GORM reuses that connection.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sql.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Driver {
	case "postgres":
		sqlxDB, connErr := sqlx.Connect("pgx", cfg.Source)
		if connErr != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", connErr)
		}
		sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlxDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlxDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		db, err = gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Source), &gorm.Config{})
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, sqlDB, nil
}
