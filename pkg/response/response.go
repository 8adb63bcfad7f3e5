// Package response writes the JSON envelope every endpoint returns:
//
//	{"status": 200, "message": "...", "data": ..., "errors": ...}
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

// Message sends a 200 with a message and no data.
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Message: message})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Status: status, Message: message})
}

// Respond sends an envelope with both a message and data.
func Respond(w http.ResponseWriter, status int, message string, data interface{}) {
	write(w, status, envelope{Status: status, Message: message, Data: data})
}

// ErrorWith sends an error response that also carries a data payload, e.g.
// the lines that failed a stock check.
func ErrorWith(w http.ResponseWriter, status int, message string, data interface{}) {
	Respond(w, status, message, data)
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

// Conflict sends a 409.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}
