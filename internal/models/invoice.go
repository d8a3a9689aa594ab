package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is the invoice header. It is written once, together with its lines,
// and never modified afterwards by the billing flow.
type Invoice struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Number is the human readable sequence number, derived from ID right
	// after insert (see AfterCreate). NULL only inside the creating transaction.
	Number *string `gorm:"size:20;uniqueIndex" json:"number"`

	IssuedAt time.Time `gorm:"autoCreateTime;not null;index" json:"issued_at"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Subtotal decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"tax"`
	Total    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`

	Status InvoiceStatus `gorm:"size:20;not null;default:'issued'" json:"status"`
	Note   *string       `gorm:"size:500" json:"note,omitempty"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// AfterCreate assigns the sequence number inside the creating transaction.
func (i *Invoice) AfterCreate(tx *gorm.DB) error {
	number := InvoiceNumber(i.ID)
	if err := tx.Model(&Invoice{}).Where("id = ?", i.ID).UpdateColumn("number", number).Error; err != nil {
		return fmt.Errorf("assign invoice number: %w", err)
	}
	i.Number = &number
	return nil
}

// InvoiceNumber formats the sequence number for an invoice id.
// Format: INV-NNNNNN (e.g., INV-000042)
func InvoiceNumber(id uint) string {
	return fmt.Sprintf("INV-%06d", id)
}

// InvoiceLine is one product/quantity/price entry of an invoice.
// UnitPrice is captured at sale time and does not follow later catalog changes.
type InvoiceLine struct {
	ID uint `gorm:"primaryKey" json:"id"`

	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	ProductID uint     `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Quantity  int             `gorm:"not null;check:chk_invoice_lines_quantity,quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
}
