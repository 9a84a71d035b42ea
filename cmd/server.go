package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/applyflow/applyflow/pipeline/application/applicationapi"
	"github.com/applyflow/applyflow/pipeline/apply/applyapi"
	"github.com/applyflow/applyflow/pipeline/candidateauth"
	"github.com/applyflow/applyflow/pipeline/listing/listingapi"
	"github.com/applyflow/applyflow/pipeline/match/matchapi"
	"github.com/applyflow/applyflow/pipeline/profile/profileapi"
	"github.com/applyflow/applyflow/pkg/errx"
	"github.com/applyflow/applyflow/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Initialize Logger
	logx.SetLevel(logx.LevelInfo)
	logx.Info("Starting ApplyFlow API Server...")

	// 2. Initialize Dependency Container
	container := NewContainer()
	defer container.DB.Close()
	defer container.Redis.Close()

	// 3. Create Fiber App with Config
	app := fiber.New(fiber.Config{
		AppName:               "ApplyFlow API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
	})

	// 4. Global Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*", // Configure for production
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// 5. Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"db":     container.DB.Ping() == nil,
			"redis":  container.Redis.Ping(c.Context()).Err() == nil,
		})
	})

	// 6. Register Routes
	authMiddleware := candidateauth.Middleware(container.TokenService)

	profileapi.RegisterRoutes(app, container.ProfileHandlers, authMiddleware)
	listingapi.RegisterRoutes(app, container.ListingHandlers)
	matchapi.RegisterRoutes(app, container.MatchHandlers, authMiddleware)
	applyapi.RegisterRoutes(app, container.ApplyHandlers, authMiddleware)
	applicationapi.RegisterRoutes(app, container.ApplicationHandlers, authMiddleware)

	// 7. Background Work: queue workers, delayed-job promotion, stale
	// sweep, periodic scoring.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	container.WorkerPool.Start(workerCtx)
	if err := container.Scheduler.Start(); err != nil {
		logx.Fatalf("Failed to start scheduler: %v", err)
	}

	// 8. Start Server with graceful shutdown
	go func() {
		addr := ":" + container.Config.HTTP.Port
		logx.Infof("Listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			logx.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logx.Info("Shutting down...")
	container.Scheduler.Stop()
	stopWorkers()
	container.WorkerPool.Wait()
	container.Tasks.Shutdown()
	if err := app.Shutdown(); err != nil {
		logx.Errorf("Server shutdown error: %v", err)
	}
	logx.Info("Shutdown complete")
}

// globalErrorHandler renders registry errors with their mapped status and
// everything else as a generic 500.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *errx.Error
	if errors.As(err, &appErr) {
		return c.Status(appErr.HTTPStatus).JSON(appErr.ToHTTPResponse())
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	}

	logx.Errorf("Unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
