package handlers

import (
	"net/http"

	"github.com/DylanJC13/movil-2/internal/httpx"
	"github.com/DylanJC13/movil-2/internal/services"
)

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateClientInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		badRequest(w, "invalid json body", nil)
		return
	}
	client, err := h.clients.CreateClient(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}
