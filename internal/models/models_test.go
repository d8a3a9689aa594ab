package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestProduct_RequiresRestock(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		minStock int
		want     bool
	}{
		{"above threshold", 10, 3, false},
		{"at threshold", 3, 3, true},
		{"below threshold", 1, 3, true},
		{"empty without threshold", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Stock: tt.stock, MinStock: tt.minStock}
			if got := p.RequiresRestock(); got != tt.want {
				t.Errorf("RequiresRestock() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvoiceNumber(t *testing.T) {
	tests := []struct {
		id   uint
		want string
	}{
		{1, "INV-000001"},
		{42, "INV-000042"},
		{1234567, "INV-1234567"},
	}
	for _, tt := range tests {
		if got := InvoiceNumber(tt.id); got != tt.want {
			t.Errorf("InvoiceNumber(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestInvoice_AfterCreateAssignsNumber(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Client{}, &Product{}, &Invoice{}, &InvoiceLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	client := Client{Name: "Acme", Identification: "900123"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}

	inv := Invoice{ClientID: client.ID, Subtotal: decimal.NewFromInt(10), Tax: decimal.NewFromFloat(1.2), Total: decimal.NewFromFloat(11.2), Status: InvoiceStatusIssued}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.Number == nil || *inv.Number != InvoiceNumber(inv.ID) {
		t.Fatalf("expected number %s on struct, got %v", InvoiceNumber(inv.ID), inv.Number)
	}
	if inv.IssuedAt.IsZero() {
		t.Fatalf("expected issued_at to be assigned")
	}

	var stored Invoice
	if err := db.First(&stored, inv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Number == nil || *stored.Number != InvoiceNumber(inv.ID) {
		t.Fatalf("expected stored number %s, got %v", InvoiceNumber(inv.ID), stored.Number)
	}
	if !stored.Total.Equal(decimal.NewFromFloat(11.2)) {
		t.Fatalf("expected total 11.2 got %s", stored.Total)
	}
}
