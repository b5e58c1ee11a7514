package httpapi

import (
	"encoding/json"
	"net/http"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// WriteJSON: respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError: error JSON estándar con request id si el middleware lo puso.
func WriteError(w http.ResponseWriter, status int, code, desc string) {
	rid := w.Header().Get("X-Request-ID")
	WriteJSON(w, status, apiError{Error: code, ErrorDescription: desc, RequestID: rid})
}
