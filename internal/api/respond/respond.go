// Package respond writes JSON response bodies, including the generic error
// body shared by every failing endpoint.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorBody is the JSON body of every error response. It never carries
// internal detail such as store causes or attempted usernames.
type ErrorBody struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

var messages = map[int]string{
	http.StatusBadRequest:          "The request could not be understood by the server",
	http.StatusUnauthorized:        "The request requires user authentication",
	http.StatusNotFound:            "Resource was not found",
	http.StatusMethodNotAllowed:    "The method is not allowed for the requested resource",
	http.StatusPreconditionFailed:  "A precondition of the request was not met",
	http.StatusInternalServerError: "The server encountered an internal error while processing this request",
	http.StatusServiceUnavailable:  "The server is temporarily unable to handle this request",
}

// Message returns the generic client-facing message for status.
func Message(status int) string {
	if m, ok := messages[status]; ok {
		return m
	}
	return http.StatusText(status)
}

// JSON writes payload as the response body with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("Failed to write HTTP response")
	}
}

// Error writes the generic error body for status.
func Error(w http.ResponseWriter, status int) {
	JSON(w, status, ErrorBody{
		Status:     "error",
		StatusCode: status,
		Message:    Message(status),
	})
}
