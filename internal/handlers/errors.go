package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/DylanJC13/movil-2/internal/httpx"
	"github.com/DylanJC13/movil-2/internal/services"
)

// writeError translates a service error into its JSON response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, 0, err)
}

// writeErrorStatus is writeError with the status forced when status is non-zero.
func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	var e *services.Error
	if !errors.As(err, &e) {
		log.Printf("[HTTP] %s %s: %v", r.Method, r.URL.Path, err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
		return
	}

	if status == 0 {
		status = e.Status()
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", r.Method, r.URL.Path, err)
	}
	details := map[string]string{}
	for k, v := range e.Details {
		details[k] = v
	}
	if e.Entity != "" {
		details["entity"] = e.Entity
		if e.ID != 0 {
			details["id"] = strconv.FormatUint(uint64(e.ID), 10)
		}
	}
	var body any
	if len(details) > 0 {
		body = details
	}
	httpx.JSONError(w, status, string(e.Kind), e.Message, body)
}

func badRequest(w http.ResponseWriter, msg string, details any) {
	httpx.JSONError(w, http.StatusBadRequest, string(services.KindInvalidInput), msg, details)
}

// pathID parses the {id} path segment as a positive integer.
func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
