package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DylanJC13/movil-2/internal/models"
	"github.com/DylanJC13/movil-2/internal/store"
	"github.com/DylanJC13/movil-2/internal/validation"
	"github.com/shopspring/decimal"
)

type CatalogService struct {
	store store.CatalogStore
}

func NewCatalogService(cs store.CatalogStore) *CatalogService {
	return &CatalogService{store: cs}
}

type ProductView struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	SKU             string    `json:"sku"`
	UnitPrice       Money     `json:"unit_price"`
	Stock           int       `json:"stock"`
	MinStock        int       `json:"min_stock"`
	RequiresRestock bool      `json:"requires_restock"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func productView(p *models.Product) ProductView {
	return ProductView{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		SKU:             p.SKU,
		UnitPrice:       NewMoney(p.UnitPrice),
		Stock:           p.Stock,
		MinStock:        p.MinStock,
		RequiresRestock: p.RequiresRestock(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func productViews(products []models.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for i := range products {
		out = append(out, productView(&products[i]))
	}
	return out
}

// InventoryItem is one row of the stock report.
type InventoryItem struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Stock           int    `json:"stock"`
	MinStock        int    `json:"min_stock"`
	RequiresRestock bool   `json:"requires_restock"`
}

type CreateProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
}

func (in CreateProductInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.Required("sku", in.SKU, v)
	validation.MaxLen("sku", in.SKU, 64, v)
	validation.MaxLen("description", in.Description, 500, v)
	validation.PositiveDecimal("unit_price", in.UnitPrice, v)
	validation.MaxDecimals("unit_price", in.UnitPrice, 2, v)
	validation.NonNegativeInt("stock", in.Stock, v)
	validation.NonNegativeInt("min_stock", in.MinStock, v)
	return v
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fromStore("list products", err)
	}
	return productViews(products), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*ProductView, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, fromStore("get product", err)
	}
	if p == nil {
		return nil, NotFound("product", id)
	}
	v := productView(p)
	return &v, nil
}

// CreateProduct stores a new product. SKUs are unique and upper-cased.
func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*ProductView, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	in.Description = strings.TrimSpace(in.Description)
	if v := in.validate(); !v.Empty() {
		return nil, InvalidInput("invalid product", v)
	}

	p := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		SKU:         in.SKU,
		UnitPrice:   in.UnitPrice,
		Stock:       in.Stock,
		MinStock:    in.MinStock,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &Error{
				Kind:    KindConflictDuplicate,
				Message: "a product with this SKU already exists",
				Details: map[string]string{"sku": "already_exists"},
				Err:     err,
			}
		}
		return nil, fromStore("create product", err)
	}
	v := productView(p)
	return &v, nil
}

// Inventory reports stock levels for every product, ordered by name.
func (s *CatalogService) Inventory(ctx context.Context) ([]InventoryItem, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fromStore("inventory", err)
	}
	out := make([]InventoryItem, 0, len(products))
	for i := range products {
		p := &products[i]
		out = append(out, InventoryItem{
			ID:              p.ID,
			Name:            p.Name,
			SKU:             p.SKU,
			Stock:           p.Stock,
			MinStock:        p.MinStock,
			RequiresRestock: p.RequiresRestock(),
		})
	}
	return out, nil
}

// LowStock returns the products at or below their reorder threshold.
func (s *CatalogService) LowStock(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.ListLowStock(ctx)
	if err != nil {
		return nil, fromStore("low stock", err)
	}
	return products, nil
}
