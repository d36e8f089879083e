// Package rest exposes the task-keeper HTTP API over Fiber.
package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/and161185/task-keeper/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth  service.AuthService
	tasks service.TaskService
	log   *zap.Logger
}

// New constructs a REST server with injected services.
func New(auth service.AuthService, tasks service.TaskService, log *zap.Logger) *Server {
	return &Server{auth: auth, tasks: tasks, log: log}
}

// App builds the Fiber application: middleware chain, error mapping and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: s.errorHandler,
	})

	app.Use(s.recoverMiddleware())
	app.Use(s.loggingMiddleware())
	app.Use(metricsMiddleware())
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Post("/auth/register", s.handleRegister)
	api.Post("/auth/login", s.handleLogin)

	tasks := api.Group("/tasks", s.requireAuth)
	tasks.Post("/", s.handleCreateTask)
	tasks.Get("/", s.handleListTasks)
	tasks.Get("/search", s.handleSearchTasks)
	tasks.Get("/status/:status", s.handleListTasksByStatus)
	tasks.Get("/:id", s.handleGetTask)
	tasks.Put("/:id", s.handleUpdateTask)
	tasks.Delete("/:id", s.handleDeleteTask)

	return app
}
