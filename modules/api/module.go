package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/calculator-api-demo/middleware/ratelimit"
	"github.com/example/calculator-api-demo/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
)

// APIModule is the HTTP module: JSON API plus the templated web UI.
type APIModule struct {
	app           *fiber.App
	authContainer mono.ServiceContainer
	calcContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	redisClient   *redis.Client
	addr          string
	templatesDir  string
	staticDir     string
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule configured from the environment.
func NewModule() *APIModule {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	templatesDir := os.Getenv("TEMPLATES_DIR")
	if templatesDir == "" {
		templatesDir = "./templates"
	}
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./static"
	}
	return &APIModule{
		addr:         addr,
		templatesDir: templatesDir,
		staticDir:    staticDir,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "calculation"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	case "calculation":
		m.calcContainer = container
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(ctx context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.calcContainer == nil {
		return fmt.Errorf("calculation dependency not set")
	}

	engine := html.New(m.templatesDir, ".html")

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		Views:                 engine,
	})

	// Add middleware
	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	// Setup routes
	m.setupRoutes(ctx)

	// Start server in goroutine
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.redisClient != nil {
		m.redisClient.Close()
	}
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
		},
	}
}

// setupRoutes configures all routes: web pages, static assets and the
// JSON API.
func (m *APIModule) setupRoutes(ctx context.Context) {
	handlers := NewHandlers(m.authContainer, m.calcContainer, m.authAdapter)

	// Web pages
	m.app.Get("/", handlers.IndexPage)
	m.app.Get("/login", handlers.LoginPage)
	m.app.Get("/register", handlers.RegisterPage)
	m.app.Get("/dashboard", handlers.DashboardPage)
	m.app.Get("/dashboard/view/:id", handlers.ViewCalculationPage)
	m.app.Get("/dashboard/edit/:id", handlers.EditCalculationPage)
	m.app.Static("/static", m.staticDir)

	// Health check endpoint
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	// Public auth routes, rate limited when Redis is available
	authRoutes := m.app.Group("/auth")
	if limiter := m.credentialLimiter(ctx); limiter != nil {
		authRoutes.Use(limiter)
	}
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)
	authRoutes.Post("/token", handlers.Token)
	authRoutes.Post("/refresh", handlers.Refresh)

	// Protected calculation routes (require authentication)
	calcRoutes := m.app.Group("/calculations")
	calcRoutes.Use(AuthMiddleware(m.authAdapter))
	calcRoutes.Post("/", handlers.CreateCalculation)
	calcRoutes.Get("/", handlers.ListCalculations)
	calcRoutes.Get("/:id", handlers.GetCalculation)
	calcRoutes.Put("/:id", handlers.UpdateCalculation)
	calcRoutes.Delete("/:id", handlers.DeleteCalculation)
}

// credentialLimiter builds the rate limiting middleware for credential
// endpoints. Returns nil when Redis is not configured or unreachable.
func (m *APIModule) credentialLimiter(ctx context.Context) fiber.Handler {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        redisAddr,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[api] Redis unavailable, auth rate limiting disabled: %v", err)
		client.Close()
		return nil
	}

	m.redisClient = client
	log.Printf("[api] Auth rate limiting enabled (redis: %s)", redisAddr)
	return ratelimit.New(client, ratelimit.DefaultConfig())
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
