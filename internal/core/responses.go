// responses.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, successEnvelope{Success: true, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSONError writes an AppError as-is; any other error becomes a
// generic 500 with the cause logged server-side only.
func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		InternalServerError(w, err)
		return
	}

	writeJSON(w, appErr.Status, errorEnvelope{
		Success: false,
		Error: errorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError(message))
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)

	writeJSON(w, http.StatusInternalServerError, errorEnvelope{
		Success: false,
		Error: errorBody{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	})
}
