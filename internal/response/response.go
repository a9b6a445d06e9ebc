// Package response normalizes every outbound API result, success or
// failure, into a uniform envelope.
package response

import (
	"encoding/json"
	"net/http"
	"time"
)

// Meta describes the request the envelope answers.
type Meta struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Path       string `json:"path"`
	Timestamp  string `json:"timestamp"`
}

// ErrorDetails carries the error half of an envelope.
type ErrorDetails struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Details     any    `json:"details,omitempty"`
}

// Envelope is the uniform response shape. Exactly one of Data and
// Error is populated.
type Envelope struct {
	Meta  Meta          `json:"meta"`
	Data  any           `json:"data,omitempty"`
	Error *ErrorDetails `json:"error,omitempty"`
}

// Success builds a success envelope around data.
func Success(data any, message string, statusCode int, path string) Envelope {
	if message == "" {
		message = "operation successful"
	}
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	return Envelope{
		Meta: Meta{
			Message:    message,
			StatusCode: statusCode,
			Path:       path,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		},
		Data: data,
	}
}

// Error builds an error envelope.
func Error(code, description string, statusCode int, path string) Envelope {
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	return Envelope{
		Meta: Meta{
			Message:    description,
			StatusCode: statusCode,
			Path:       path,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		},
		Error: &ErrorDetails{Code: code, Description: description},
	}
}

// WriteJSON writes the envelope with its own status code.
func WriteJSON(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Meta.StatusCode)
	json.NewEncoder(w).Encode(env)
}
