// Package db opens the PostgreSQL connection and prepares the schema.
package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DylanJC13/movil-2/internal/config"
	"github.com/DylanJC13/movil-2/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MigrationsSource is where golang-migrate reads the SQL files from.
var MigrationsSource = "file://migrations"

const connectAttempts = 10

// Models lists every table owned by the application, in dependency order.
func Models() []any {
	return []any{&models.Client{}, &models.Product{}, &models.Invoice{}, &models.InvoiceLine{}, &models.Course{}}
}

// Connect opens the database, retrying while Postgres starts, and sizes the pool.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.ConnString())
	if dsn == "" {
		return nil, errors.New("database DSN is empty, check DATABASE_DSN or DB_* settings")
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Printf("[DB] connect attempt %d/%d failed: %v", i+1, connectAttempts, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	// Basic connectivity test
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Println("[DB] Using DSN:", MaskDSN(dsn))
	return db, nil
}

// Migrate prepares the schema. With sqlMigrations the versioned files under
// MigrationsSource are applied with golang-migrate; otherwise gorm AutoMigrate
// is used (dev convenience).
func Migrate(db *gorm.DB, dsn string, sqlMigrations bool) error {
	if sqlMigrations {
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(dsn))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(db); err != nil {
		return err
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"clients", "products", "invoices", "invoice_lines", "courses"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("[DB] AutoMigrate detailed error model=%T type=%T value=%#v", m, err, err)
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// runSQLMigrations executes migrations from MigrationsSource using golang-migrate.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New(MigrationsSource, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Seed inserts a demo client and a few products. Safe to run repeatedly.
func Seed(db *gorm.DB) error {
	clients := []models.Client{
		{Name: "Consumidor Final", Identification: "9999999999", Email: "ventas@example.com"},
		{Name: "Comercial Andina", Identification: "1790012345001", Phone: "022345678", Address: "Av. Amazonas N34"},
	}
	for _, c := range clients {
		if err := db.Where(models.Client{Identification: c.Identification}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed client %s: %w", c.Identification, err)
		}
	}

	products := []models.Product{
		{Name: "Cuaderno universitario", SKU: "CUA-100", UnitPrice: decimal.RequireFromString("2.50"), Stock: 120, MinStock: 20},
		{Name: "Esfero azul", SKU: "ESF-001", UnitPrice: decimal.RequireFromString("0.45"), Stock: 500, MinStock: 50},
		{Name: "Mochila escolar", SKU: "MOC-010", UnitPrice: decimal.RequireFromString("24.90"), Stock: 8, MinStock: 10},
	}
	for _, p := range products {
		if err := db.Where(models.Product{SKU: p.SKU}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
	}
	return nil
}
