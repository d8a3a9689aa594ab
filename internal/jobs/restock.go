// Package jobs holds the scheduled background work of the server.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/DylanJC13/movil-2/internal/events"
	"github.com/DylanJC13/movil-2/internal/models"
	"github.com/robfig/cron/v3"
)

// LowStockSource lists products at or below their reorder threshold.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]models.Product, error)
}

type RestockScanner struct {
	source LowStockSource
	pub    events.Publisher
}

func NewRestockScanner(source LowStockSource, pub events.Publisher) *RestockScanner {
	if pub == nil {
		pub = events.Nop{}
	}
	return &RestockScanner{source: source, pub: pub}
}

// Scan publishes one product.low_stock event per product needing restock
// and returns how many were found. Publish failures are logged.
func (s *RestockScanner) Scan(ctx context.Context) (int, error) {
	products, err := s.source.LowStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("restock scan: %w", err)
	}
	for _, p := range products {
		log.Printf("[RESTOCK] %s (%s) stock=%d min=%d", p.Name, p.SKU, p.Stock, p.MinStock)
		ev := events.New(events.ProductLowStock, events.LowStockPayload{
			ProductID: p.ID, SKU: p.SKU, Name: p.Name, Stock: p.Stock, MinStock: p.MinStock,
		})
		if err := s.pub.Publish(ctx, ev); err != nil {
			log.Printf("[RESTOCK] publish for product %d failed: %v", p.ID, err)
		}
	}
	return len(products), nil
}

// Schedule registers the scanner on c using a robfig/cron spec such as
// "@every 15m" or "0 7 * * *".
func Schedule(c *cron.Cron, spec string, s *RestockScanner) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := s.Scan(ctx)
		if err != nil {
			log.Printf("[RESTOCK] %v", err)
			return
		}
		log.Printf("[RESTOCK] scan finished, %d product(s) below threshold", n)
	})
}
