package calculation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	domain "github.com/example/calculator-api-demo/domain/calculation"
	"github.com/example/calculator-api-demo/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CalculationModule provides calculation BREAD services via GORM + SQLite,
// with an optional Redis read-through cache.
type CalculationModule struct {
	db     *gorm.DB
	repo   *Repository
	cache  *cache.Cache
	dbPath string
}

// Compile-time interface checks.
var _ mono.Module = (*CalculationModule)(nil)
var _ mono.ServiceProviderModule = (*CalculationModule)(nil)
var _ mono.HealthCheckableModule = (*CalculationModule)(nil)

// NewModule creates a new CalculationModule.
func NewModule() *CalculationModule {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "calculator.db"
	}
	return &CalculationModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *CalculationModule) Name() string {
	return "calculation"
}

// SetCache wires the optional read-through cache. A nil cache means
// requests go straight to the repository.
func (m *CalculationModule) SetCache(c *cache.Cache) {
	m.cache = c
}

// Start initializes the database connection and runs migrations.
func (m *CalculationModule) Start(_ context.Context) error {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := m.db.AutoMigrate(&domain.Calculation{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.repo = NewRepository(m.db)

	log.Printf("[calculation] Module started (database: %s, cache: %v)", m.dbPath, m.cache != nil)
	return nil
}

// Stop gracefully closes the database connection.
func (m *CalculationModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[calculation] Module stopped")
	return nil
}

// Health performs a health check on the calculation module.
func (m *CalculationModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.dbPath,
			"cached": m.cache != nil,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *CalculationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.createCalculation,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getCalculation,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listCalculations,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.updateCalculation,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.deleteCalculation,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	log.Printf("[calculation] Registered services: create, get, list, update, delete")
	return nil
}
