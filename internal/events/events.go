// Package events defines the domain events emitted after billing state
// changes and the Publisher port used to deliver them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	InvoiceCreated  Type = "invoice.created"
	ProductLowStock Type = "product.low_stock"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New stamps payload with a fresh id and the current time.
func New(t Type, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type InvoiceCreatedPayload struct {
	InvoiceID uint           `json:"invoice_id"`
	Number    string         `json:"number"`
	ClientID  uint           `json:"client_id"`
	Total     string         `json:"total"`
	Lines     []LineQuantity `json:"lines"`
}

type LineQuantity struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type LowStockPayload struct {
	ProductID uint   `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}
