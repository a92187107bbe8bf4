// Package httpx provides the JSON action envelope used by every endpoint.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ActionResult is the envelope returned by every action: the UI branches on
// Status and shows Message either way.
type ActionResult struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes a successful envelope.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, ActionResult{Status: true, Message: message, Data: data})
}

// Created writes a successful envelope with 201.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, ActionResult{Status: true, Message: message, Data: data})
}

// Fail writes a failed envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ActionResult{Status: false, Message: message})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(target)
}
