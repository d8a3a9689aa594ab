package handlers

import (
	"net/http"
	"strconv"

	"github.com/DylanJC13/movil-2/internal/httpx"
	"github.com/DylanJC13/movil-2/internal/services"
)

type InvoiceHandler struct {
	svc services.Invoices
}

func NewInvoiceHandler(svc services.Invoices) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// List handles GET /invoices?limit=N.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "limit must be an integer", map[string]string{"limit": "invalid"})
			return
		}
		limit = n
	}

	invoices, err := h.svc.ListInvoices(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateInvoiceInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "invalid json body", nil)
		return
	}
	req, err := in.Validate()
	if err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.svc.CreateInvoice(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/invoices/"+strconv.FormatUint(uint64(inv.ID), 10))
	httpx.JSON(w, http.StatusCreated, inv)
}

// View handles GET /invoices/{id}.
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error(), nil)
		return
	}
	inv, err := h.svc.GetInvoiceByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}
