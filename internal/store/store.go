// Package store is the relational storage gateway used by the billing
// services. It owns transactions, row locks and the read-side join queries.
package store

import (
	"context"
	"time"

	"github.com/DylanJC13/movil-2/internal/models"
	"github.com/shopspring/decimal"
)

// Gateway opens units of work. fn runs inside one transaction which is
// committed when fn returns nil and rolled back on error or panic.
// A positive timeout bounds the whole unit of work, lock waits included.
type Gateway interface {
	WithinTx(ctx context.Context, timeout time.Duration, fn func(Tx) error) error
}

// Tx is the set of writes the invoice flow performs inside a transaction.
// Lookups return (nil, nil) when the row does not exist.
type Tx interface {
	FindClientByID(id uint) (*models.Client, error)
	// LockProductByID reads the product holding an exclusive row lock
	// until the transaction ends.
	LockProductByID(id uint) (*models.Product, error)
	DecrementProductStock(id uint, amount int) error
	InsertInvoiceHeader(h NewInvoiceHeader) (*InsertedInvoice, error)
	InsertInvoiceDetailLine(l NewInvoiceLine) error
}

// Reader serves the invoice read paths. No locks are taken.
type Reader interface {
	FindInvoiceHeaderWithClient(ctx context.Context, id uint) (*InvoiceHeaderRow, error)
	FindInvoiceDetailLinesWithProductNames(ctx context.Context, invoiceID uint) ([]InvoiceLineRow, error)
	ListRecentInvoicesWithClientsAndDetails(ctx context.Context, limit int) ([]InvoiceRow, error)
}

// CatalogStore reads and writes products outside the invoice flow.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

// ClientStore reads and writes clients.
type ClientStore interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
}

// CourseStore reads and writes the course catalog.
type CourseStore interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	CreateCourse(ctx context.Context, c *models.Course) error
	CountCourses(ctx context.Context) (int64, error)
}

type NewInvoiceHeader struct {
	ClientID uint
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Note     *string
}

// InsertedInvoice carries the values assigned by storage on insert.
type InsertedInvoice struct {
	ID       uint
	Number   string
	IssuedAt time.Time
	Status   models.InvoiceStatus
}

type NewInvoiceLine struct {
	InvoiceID uint
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// InvoiceHeaderRow is an invoice joined with its client.
type InvoiceHeaderRow struct {
	ID                   uint
	Number               *string
	IssuedAt             time.Time
	Subtotal             decimal.Decimal
	Tax                  decimal.Decimal
	Total                decimal.Decimal
	Status               models.InvoiceStatus
	Note                 *string
	ClientID             uint
	ClientName           string
	ClientIdentification string
}

// InvoiceLineRow is a detail line joined with its product name.
type InvoiceLineRow struct {
	ID          uint
	InvoiceID   uint
	ProductID   uint
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// InvoiceRow is a header plus all of its lines. Lines is never nil.
type InvoiceRow struct {
	InvoiceHeaderRow
	Lines []InvoiceLineRow
}
