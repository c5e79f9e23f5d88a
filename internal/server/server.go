package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mapstead/skiptrace/internal/queue"
	mid "github.com/mapstead/skiptrace/internal/server/middleware"
	"github.com/mapstead/skiptrace/internal/util"
	"github.com/mapstead/skiptrace/pkg/logger"
	"github.com/mapstead/skiptrace/pkg/store"
	pgstore "github.com/mapstead/skiptrace/pkg/store/pgx"
	"github.com/mapstead/skiptrace/pkg/store/sqlite"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage := openStorage(ctx)

	quota := util.GetEnvInt64("STORAGE_QUOTA_BYTES", store.DefaultQuotaBytes)
	manager := store.NewManager(storage, quota)

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	app := &mid.App{
		Sessions: manager,
		Queue:    ch,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// openStorage selects the session storage backend: the local SQLite
// store by default, PostgreSQL when STORE_ADAPTER=postgres.
func openStorage(ctx context.Context) store.SessionStorage {
	switch util.GetEnv("STORE_ADAPTER") {
	case "postgres":
		pool, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		storage, err := pgstore.NewSessionDBStorage(ctx, pool)
		if err != nil {
			logger.Fatal("Failed to initialize session storage", "err", err)
		}
		return storage
	default:
		path := util.GetEnvString("LOCAL_STORE_PATH", "skiptrace.db")
		storage, err := sqlite.Open(ctx, path)
		if err != nil {
			logger.Fatal("Failed to open local store", "path", path, "err", err)
		}
		return storage
	}
}
