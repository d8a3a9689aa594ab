package handlers

import (
	"net/http"
	"strconv"

	"github.com/DylanJC13/movil-2/internal/httpx"
	"github.com/DylanJC13/movil-2/internal/services"
)

type ProductHandler struct {
	catalog *services.CatalogService
}

func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateProductInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "invalid json body", nil)
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/products/"+strconv.FormatUint(uint64(product.ID), 10))
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error(), nil)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Inventory handles GET /inventory: stock levels with restock flags.
func (h *ProductHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Inventory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}
