package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/DylanJC13/movil-2/internal/events"
	"github.com/DylanJC13/movil-2/internal/models"
	"github.com/DylanJC13/movil-2/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) (*gorm.DB, *store.Store) {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Client{}, &models.Product{}, &models.Invoice{}, &models.InvoiceLine{}, &models.Course{}))
	return db, store.New(db)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func seedClient(t *testing.T, db *gorm.DB, name, identification string) models.Client {
	t.Helper()
	c := models.Client{Name: name, Identification: identification}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, sku, price string, stock, minStock int) models.Product {
	t.Helper()
	p := models.Product{Name: "Product " + sku, SKU: sku, UnitPrice: decimal.RequireFromString(price), Stock: stock, MinStock: minStock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func countInvoices(t *testing.T, db *gorm.DB) (headers, lines int64) {
	t.Helper()
	require.NoError(t, db.Model(&models.Invoice{}).Count(&headers).Error)
	require.NoError(t, db.Model(&models.InvoiceLine{}).Count(&lines).Error)
	return headers, lines
}
