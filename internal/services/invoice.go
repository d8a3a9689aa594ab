package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/DylanJC13/movil-2/internal/events"
	"github.com/DylanJC13/movil-2/internal/store"
	"github.com/shopspring/decimal"
)

// Invoices is the invoice API consumed by handlers and decorators.
type Invoices interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceView, error)
	GetInvoiceByID(ctx context.Context, id uint) (*InvoiceView, error)
	ListInvoices(ctx context.Context, limit int) ([]InvoiceView, error)
}

type InvoiceConfig struct {
	TaxRate decimal.Decimal
	// LockTimeout bounds the creation transaction, lock waits included.
	LockTimeout      time.Duration
	DefaultListLimit int
	MaxListLimit     int
}

func DefaultInvoiceConfig() InvoiceConfig {
	return InvoiceConfig{
		TaxRate:          decimal.RequireFromString("0.12"),
		LockTimeout:      5 * time.Second,
		DefaultListLimit: 100,
		MaxListLimit:     500,
	}
}

type InvoiceService struct {
	gw     store.Gateway
	reader store.Reader
	cfg    InvoiceConfig
	pub    events.Publisher
}

var _ Invoices = (*InvoiceService)(nil)

func NewInvoiceService(gw store.Gateway, reader store.Reader, cfg InvoiceConfig, pub events.Publisher) *InvoiceService {
	def := DefaultInvoiceConfig()
	if cfg.DefaultListLimit <= 0 {
		cfg.DefaultListLimit = def.DefaultListLimit
	}
	if cfg.MaxListLimit < cfg.DefaultListLimit {
		cfg.MaxListLimit = cfg.DefaultListLimit
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &InvoiceService{gw: gw, reader: reader, cfg: cfg, pub: pub}
}

// ComputeTotals returns tax and total for subtotal, each rounded to two
// decimals once.
func ComputeTotals(subtotal, rate decimal.Decimal) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(rate).Round(2)
	total = subtotal.Add(tax).Round(2)
	return tax, total
}

// CreateInvoice validates, locks, computes and persists one invoice in a
// single transaction. Lines are processed in order, so a product repeated
// across lines is checked against the stock left by the earlier lines.
// Any failure rolls the whole invoice back.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceView, error) {
	if len(req.Lines) == 0 {
		return nil, InvalidInput("invoice requires at least one line", map[string]string{"lines": "required"})
	}

	var view *InvoiceView
	var lowStock []events.LowStockPayload
	err := s.gw.WithinTx(ctx, s.cfg.LockTimeout, func(tx store.Tx) error {
		view, lowStock = nil, nil

		client, err := tx.FindClientByID(req.ClientID)
		if err != nil {
			return fromStore("find client", err)
		}
		if client == nil {
			return NotFound("client", req.ClientID)
		}

		subtotal := decimal.Zero
		lines := make([]InvoiceLineView, 0, len(req.Lines))
		for i, l := range req.Lines {
			if l.ProductID == 0 || l.Quantity <= 0 {
				return InvalidInput(fmt.Sprintf("line %d: product_id and quantity must be positive", i),
					map[string]string{fmt.Sprintf("lines[%d]", i): "must_be_positive"})
			}
			// prices are stored as numeric(12,2)
			if l.UnitPrice != nil && !l.UnitPrice.Equal(l.UnitPrice.Truncate(2)) {
				return InvalidInput(fmt.Sprintf("line %d: unit_price has more than two decimals", i),
					map[string]string{fmt.Sprintf("lines[%d].unit_price", i): "too_many_decimals"})
			}

			product, err := tx.LockProductByID(l.ProductID)
			if err != nil {
				return fromStore("lock product", err)
			}
			if product == nil {
				return NotFound("product", l.ProductID)
			}
			if product.Stock < l.Quantity {
				return InsufficientStock(product.ID, product.Name, product.Stock, l.Quantity)
			}

			price := product.UnitPrice
			if l.UnitPrice != nil && l.UnitPrice.IsPositive() {
				price = *l.UnitPrice
			}
			lineSubtotal := price.Mul(decimal.NewFromInt(int64(l.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)

			if err := tx.DecrementProductStock(product.ID, l.Quantity); err != nil {
				return fromStore("decrement stock", err)
			}
			product.Stock -= l.Quantity
			if product.RequiresRestock() {
				lowStock = append(lowStock, events.LowStockPayload{
					ProductID: product.ID, SKU: product.SKU, Name: product.Name,
					Stock: product.Stock, MinStock: product.MinStock,
				})
			}

			lines = append(lines, InvoiceLineView{
				ProductID:   product.ID,
				Description: product.Name,
				Quantity:    l.Quantity,
				UnitPrice:   NewMoney(price),
				Subtotal:    NewMoney(lineSubtotal),
			})
		}

		tax, total := ComputeTotals(subtotal, s.cfg.TaxRate)
		inserted, err := tx.InsertInvoiceHeader(store.NewInvoiceHeader{
			ClientID: client.ID,
			Subtotal: subtotal,
			Tax:      tax,
			Total:    total,
			Note:     req.Note,
		})
		if err != nil {
			return fromStore("insert invoice", err)
		}
		for _, l := range lines {
			if err := tx.InsertInvoiceDetailLine(store.NewInvoiceLine{
				InvoiceID: inserted.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice.Decimal,
				Subtotal:  l.Subtotal.Decimal,
			}); err != nil {
				return fromStore("insert invoice line", err)
			}
		}

		view = &InvoiceView{
			ID:       inserted.ID,
			Number:   inserted.Number,
			IssuedAt: inserted.IssuedAt,
			Client:   ClientRef{ID: client.ID, Name: client.Name, Identification: client.Identification},
			Subtotal: NewMoney(subtotal),
			Tax:      NewMoney(tax),
			Total:    NewMoney(total),
			Status:   inserted.Status,
			Note:     req.Note,
			Lines:    lines,
		}
		return nil
	})
	if err != nil {
		return nil, fromStore("create invoice", err)
	}

	s.publishCreated(ctx, view, lowStock)
	return view, nil
}

// publishCreated runs after commit; failures are logged and never undo the invoice.
func (s *InvoiceService) publishCreated(ctx context.Context, v *InvoiceView, lowStock []events.LowStockPayload) {
	ctx = context.WithoutCancel(ctx)

	payload := events.InvoiceCreatedPayload{
		InvoiceID: v.ID,
		Number:    v.Number,
		ClientID:  v.Client.ID,
		Total:     v.Total.StringFixed(2),
		Lines:     make([]events.LineQuantity, 0, len(v.Lines)),
	}
	for _, l := range v.Lines {
		payload.Lines = append(payload.Lines, events.LineQuantity{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	if err := s.pub.Publish(ctx, events.New(events.InvoiceCreated, payload)); err != nil {
		log.Printf("[EVENTS] %s for invoice %d not published: %v", events.InvoiceCreated, v.ID, err)
	}
	for _, p := range lowStock {
		if err := s.pub.Publish(ctx, events.New(events.ProductLowStock, p)); err != nil {
			log.Printf("[EVENTS] %s for product %d not published: %v", events.ProductLowStock, p.ProductID, err)
		}
	}
}

func (s *InvoiceService) GetInvoiceByID(ctx context.Context, id uint) (*InvoiceView, error) {
	h, err := s.reader.FindInvoiceHeaderWithClient(ctx, id)
	if err != nil {
		return nil, fromStore("find invoice", err)
	}
	if h == nil {
		return nil, NotFound("invoice", id)
	}
	lines, err := s.reader.FindInvoiceDetailLinesWithProductNames(ctx, id)
	if err != nil {
		return nil, fromStore("find invoice lines", err)
	}
	v := assembleInvoice(*h, lines)
	return &v, nil
}

// ListInvoices returns the most recent invoices first. A non-positive limit
// selects the default; larger limits are capped.
func (s *InvoiceService) ListInvoices(ctx context.Context, limit int) ([]InvoiceView, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if limit > s.cfg.MaxListLimit {
		limit = s.cfg.MaxListLimit
	}
	rows, err := s.reader.ListRecentInvoicesWithClientsAndDetails(ctx, limit)
	if err != nil {
		return nil, fromStore("list invoices", err)
	}
	return assembleList(rows), nil
}
