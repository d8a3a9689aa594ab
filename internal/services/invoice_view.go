package services

import (
	"time"

	"github.com/DylanJC13/movil-2/internal/models"
	"github.com/DylanJC13/movil-2/internal/store"
	"github.com/shopspring/decimal"
)

// Money is a decimal amount serialised as a fixed two-decimal string.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

// InvoiceView is the assembled invoice returned by every invoice read and
// by creation.
type InvoiceView struct {
	ID       uint                 `json:"id"`
	Number   string               `json:"number"`
	IssuedAt time.Time            `json:"issued_at"`
	Client   ClientRef            `json:"client"`
	Subtotal Money                `json:"subtotal"`
	Tax      Money                `json:"tax"`
	Total    Money                `json:"total"`
	Status   models.InvoiceStatus `json:"status"`
	Note     *string              `json:"note,omitempty"`
	Lines    []InvoiceLineView    `json:"lines"`
}

type ClientRef struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Identification string `json:"identification,omitempty"`
}

type InvoiceLineView struct {
	ProductID   uint   `json:"product_id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
	Subtotal    Money  `json:"subtotal"`
}

// assembleInvoice builds the by-id shape from a header joined with its
// client and the lines joined with product names, already ordered.
func assembleInvoice(h store.InvoiceHeaderRow, lines []store.InvoiceLineRow) InvoiceView {
	v := InvoiceView{
		ID:       h.ID,
		IssuedAt: h.IssuedAt,
		Client: ClientRef{
			ID:             h.ClientID,
			Name:           h.ClientName,
			Identification: h.ClientIdentification,
		},
		Subtotal: NewMoney(h.Subtotal),
		Tax:      NewMoney(h.Tax),
		Total:    NewMoney(h.Total),
		Status:   h.Status,
		Note:     h.Note,
		Lines:    make([]InvoiceLineView, 0, len(lines)),
	}
	if h.Number != nil {
		v.Number = *h.Number
	}
	for _, l := range lines {
		v.Lines = append(v.Lines, InvoiceLineView{
			ProductID:   l.ProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   NewMoney(l.UnitPrice),
			Subtotal:    NewMoney(l.Subtotal),
		})
	}
	return v
}

// assembleList builds the list shape. Each row already carries its lines,
// possibly none.
func assembleList(rows []store.InvoiceRow) []InvoiceView {
	out := make([]InvoiceView, 0, len(rows))
	for _, r := range rows {
		out = append(out, assembleInvoice(r.InvoiceHeaderRow, r.Lines))
	}
	return out
}
