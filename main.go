package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/calculator-api-demo/modules/api"
	"github.com/example/calculator-api-demo/modules/auth"
	"github.com/example/calculator-api-demo/modules/cache"
	"github.com/example/calculator-api-demo/modules/calculation"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Calculator API ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework.
	// Order: independent modules first, then dependent modules.
	cacheModule := cache.NewModule()
	calcModule := calculation.NewModule()

	app.Register(cacheModule)
	app.Register(auth.NewModule())
	app.Register(calcModule)
	app.Register(api.NewModule())

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wire the optional read-through cache once both modules are up.
	calcModule.SetCache(cacheModule.GetCache())

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Web UI (http://localhost:3000):")
	log.Println("  GET    /                    - Landing page")
	log.Println("  GET    /login               - Login page")
	log.Println("  GET    /register            - Registration page")
	log.Println("  GET    /dashboard           - Calculations dashboard")
	log.Println("")
	log.Println("REST API:")
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /auth/register       - Register a new user")
	log.Println("  POST   /auth/login          - Login and get tokens")
	log.Println("  POST   /auth/token          - Form login (access token only)")
	log.Println("  POST   /auth/refresh        - Refresh access token")
	log.Println("  GET    /health              - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  POST   /calculations        - Create a calculation")
	log.Println("  GET    /calculations        - List your calculations")
	log.Println("  GET    /calculations/:id    - Get a calculation")
	log.Println("  PUT    /calculations/:id    - Edit inputs/type (recomputes result)")
	log.Println("  DELETE /calculations/:id    - Delete a calculation")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
