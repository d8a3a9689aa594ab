package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/DylanJC13/movil-2/internal/models"
	"github.com/DylanJC13/movil-2/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Requires a disposable postgres database, e.g.
// TEST_DATABASE_DSN="host=localhost user=billing password=billing dbname=billing_test sslmode=disable"
func setupPostgres(t *testing.T) (*gorm.DB, *store.Store) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Client{}, &models.Product{}, &models.Invoice{}, &models.InvoiceLine{}))
	return db, store.New(db)
}

func TestCreateInvoice_ConcurrentLastUnit(t *testing.T) {
	db, st := setupPostgres(t)
	suffix := uuid.NewString()[:8]
	c := seedClient(t, db, "Race Co", "RACE-"+suffix)
	p := seedProduct(t, db, "RACE-"+suffix, "9.99", 1, 0)
	svc := newTestInvoiceService(st, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
				ClientID: c.ID,
				Lines:    []LineRequest{{ProductID: p.ID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, stockOf(t, db, p.ID))
}

func TestCreateInvoice_LockTimeout(t *testing.T) {
	db, st := setupPostgres(t)
	suffix := uuid.NewString()[:8]
	c := seedClient(t, db, "Lock Co", "LOCK-"+suffix)
	p := seedProduct(t, db, "LOCK-"+suffix, "1.00", 5, 0)

	cfg := DefaultInvoiceConfig()
	cfg.LockTimeout = 200 * time.Millisecond
	svc := NewInvoiceService(st, st, cfg, nil)

	holder := db.Begin()
	require.NoError(t, holder.Error)
	defer holder.Rollback()
	require.NoError(t, holder.Exec("SELECT id FROM products WHERE id = ? FOR UPDATE", p.ID).Error)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ClientID: c.ID,
		Lines:    []LineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 5, stockOf(t, db, p.ID))
}
