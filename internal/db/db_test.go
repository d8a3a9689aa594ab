package db

import (
	"testing"

	"github.com/DylanJC13/movil-2/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{`  "postgres://u:p@h:5432/db?sslmode=require" `, "postgres://u:p@h:5432/db?sslmode=require"},
		{"host=h   user=u dbname=d", "host=h user=u dbname=d sslmode=disable"},
		{"host=h user=u dbname=d sslmode=require", "host=h user=u dbname=d sslmode=require"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := NormalizeDSN(tt.in); got != tt.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5433 user=billing password=secret dbname=billing sslmode=disable")
	want := "postgres://billing:secret@db:5433/billing?sslmode=disable"
	if got != want {
		t.Fatalf("ToURLDSN = %q, want %q", got, want)
	}
	if incomplete := "host=db user=billing"; ToURLDSN(incomplete) != incomplete {
		t.Fatalf("incomplete dsn should be returned unchanged")
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=h user=u password=s3cret dbname=d"); got != "host=h user=u password=*** dbname=d" {
		t.Fatalf("kv mask: %q", got)
	}
	if got := MaskDSN("postgres://u:s3cret@h:5432/d"); got != "postgres://u:xxxxx@h:5432/d" {
		t.Fatalf("url mask: %q", got)
	}
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestMigrateAutoPath(t *testing.T) {
	d := openSQLite(t)
	if err := Migrate(d, "", false); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !d.Migrator().HasIndex(&models.Product{}, "idx_products_sku") {
		t.Fatal("expected unique sku index")
	}
}

func TestSeedIdempotent(t *testing.T) {
	d := openSQLite(t)
	if err := AutoMigrate(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	var clients, products int64
	d.Model(&models.Client{}).Count(&clients)
	d.Model(&models.Product{}).Count(&products)
	if clients != 2 || products != 3 {
		t.Fatalf("seed duplicated or missing rows: clients=%d products=%d", clients, products)
	}
	var low int64
	d.Model(&models.Product{}).Where("stock <= min_stock").Count(&low)
	if low != 1 {
		t.Fatalf("expected one seeded product below threshold, got %d", low)
	}
}
