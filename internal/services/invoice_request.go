package services

import (
	"fmt"
	"unicode/utf8"

	"github.com/DylanJC13/movil-2/internal/validation"
	"github.com/shopspring/decimal"
)

// MaxNoteLength bounds the free-text invoice note, in characters.
const MaxNoteLength = 500

// CreateInvoiceInput is the decoded request body of POST /invoices.
type CreateInvoiceInput struct {
	ClientID int64       `json:"client_id"`
	Lines    []LineInput `json:"lines"`
	Note     *string     `json:"note"`
}

type LineInput struct {
	ProductID int64            `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest is an already-checked invoice request.
type CreateInvoiceRequest struct {
	ClientID uint
	Lines    []LineRequest
	Note     *string
}

type LineRequest struct {
	ProductID uint
	Quantity  int
	// UnitPrice overrides the catalog price when set and positive.
	UnitPrice *decimal.Decimal
}

const maxQuantity = 1_000_000

// Validate checks the input and produces the typed request.
func (in CreateInvoiceInput) Validate() (CreateInvoiceRequest, error) {
	v := validation.Violations{}
	if in.ClientID <= 0 {
		v["client_id"] = "must_be_positive"
	}
	if len(in.Lines) == 0 {
		v["lines"] = "required"
	}
	for i, l := range in.Lines {
		prefix := fmt.Sprintf("lines[%d].", i)
		if l.ProductID <= 0 {
			v[prefix+"product_id"] = "must_be_positive"
		}
		if l.Quantity <= 0 {
			v[prefix+"quantity"] = "must_be_positive"
		} else if l.Quantity > maxQuantity {
			v[prefix+"quantity"] = "out_of_range"
		}
		if l.UnitPrice != nil {
			validation.PositiveDecimal(prefix+"unit_price", *l.UnitPrice, v)
			validation.MaxDecimals(prefix+"unit_price", *l.UnitPrice, 2, v)
		}
	}
	var note *string
	if in.Note != nil {
		if utf8.RuneCountInString(*in.Note) > MaxNoteLength {
			v["note"] = "too_long"
		}
		if *in.Note != "" {
			n := *in.Note
			note = &n
		}
	}
	if !v.Empty() {
		return CreateInvoiceRequest{}, InvalidInput("invalid invoice request", v)
	}

	req := CreateInvoiceRequest{ClientID: uint(in.ClientID), Note: note, Lines: make([]LineRequest, len(in.Lines))}
	for i, l := range in.Lines {
		req.Lines[i] = LineRequest{ProductID: uint(l.ProductID), Quantity: int(l.Quantity), UnitPrice: l.UnitPrice}
	}
	return req, nil
}
