package services

import (
	"context"
	"errors"
	"strings"

	"github.com/DylanJC13/movil-2/internal/models"
	"github.com/DylanJC13/movil-2/internal/store"
	"github.com/DylanJC13/movil-2/internal/validation"
)

type ClientService struct {
	store store.ClientStore
}

func NewClientService(cs store.ClientStore) *ClientService {
	return &ClientService{store: cs}
}

type CreateClientInput struct {
	Name           string `json:"name"`
	Identification string `json:"identification"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
}

func (s *ClientService) ListClients(ctx context.Context) ([]models.Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, fromStore("list clients", err)
	}
	if clients == nil {
		clients = []models.Client{}
	}
	return clients, nil
}

// CreateClient stores a new client; identifications are unique.
func (s *ClientService) CreateClient(ctx context.Context, in CreateClientInput) (*models.Client, error) {
	c := &models.Client{
		Name:           strings.TrimSpace(in.Name),
		Identification: strings.TrimSpace(in.Identification),
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Address:        strings.TrimSpace(in.Address),
	}

	v := validation.Violations{}
	validation.Required("name", c.Name, v)
	validation.MaxLen("name", c.Name, 255, v)
	validation.Required("identification", c.Identification, v)
	validation.MaxLen("identification", c.Identification, 50, v)
	validation.Email("email", c.Email, v)
	validation.MaxLen("phone", c.Phone, 50, v)
	validation.MaxLen("address", c.Address, 500, v)
	if !v.Empty() {
		return nil, InvalidInput("invalid client", v)
	}

	if err := s.store.CreateClient(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &Error{
				Kind:    KindConflictDuplicate,
				Message: "a client with this identification already exists",
				Details: map[string]string{"identification": "already_exists"},
				Err:     err,
			}
		}
		return nil, fromStore("create client", err)
	}
	return c, nil
}
