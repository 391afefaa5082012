package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pawtrail/dogdeck/pkg/dogapi"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps client errors onto HTTP statuses.
func statusFor(err error) int {
	var svcErr *dogapi.ServiceError
	var decErr *dogapi.DecodingError
	switch {
	case errors.Is(err, dogapi.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &decErr):
		return http.StatusBadGateway
	case errors.As(err, &svcErr):
		if svcErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the text shown to the user for err.
func messageFor(err error) string {
	var svcErr *dogapi.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
