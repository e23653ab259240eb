package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vanminhgroup/qlts/internal/auth"
	"github.com/vanminhgroup/qlts/internal/store"
	"github.com/vanminhgroup/qlts/internal/transfer"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"message": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, transfer.ErrInvalidQuantity), errors.Is(err, transfer.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, transfer.ErrForbidden), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, transfer.ErrInsufficientStock), errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// errorBody builds the response body for err. Internal errors are logged and
// replaced by a generic message.
func errorBody(r *http.Request, err error) (int, map[string]string) {
	status := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal error"
	}
	return status, map[string]string{"message": message}
}

// writeError writes err as a {"message"} response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(r, err)
	jsonResponse(w, status, body)
}

// queryInt reads an integer query parameter, returning 0 when it is absent
// or not a number.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

// idsRequest is the body of bulk delete endpoints.
type idsRequest struct {
	IDs []string `json:"ids"`
}

// pageResponse is one page of a list endpoint.
type pageResponse[T any] struct {
	Total      int `json:"total"`
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

func newPage[T any](items []T, total, page, limit int) pageResponse[T] {
	if items == nil {
		items = []T{}
	}
	page, limit = store.Page(page, limit)
	return pageResponse[T]{
		Total:      total,
		Items:      items,
		Page:       page,
		TotalPages: store.TotalPages(total, limit),
	}
}
