// Package respond writes JSON bodies for handlers and middlewares.
package respond

import (
	"encoding/json"
	"net/http"
)

// Messages shared by more than one writer.
const (
	MsgServerError  = "server error"
	MsgUnauthorized = "Unauthorized request"
	MsgForbidden    = "Forbidden"
	MsgRateLimited  = "Too many requests"
	MsgInvalidJSON  = "Invalid JSON in request body"
)

type errorBody struct {
	Message string `json:"message"`
}

// ErrorResponse is the envelope every error is sent in.
type ErrorResponse struct {
	Error errorBody `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error":{"message":msg}} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: errorBody{Message: msg}})
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
