// Package response writes the API's two reply formats: JSON for listings,
// login and list failures; plain text confirmations and rejections for
// writes.
package response

import (
	"encoding/json"
	"net/http"
)

// MsgInvalidBody answers a request whose body is not valid JSON. The
// decoder's own error stays in the server log.
const MsgInvalidBody = "Invalid request body."

// Response is the JSON error envelope:
//
//	{ "status": "error", "error": "failed to load events" }
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

const StatusError = "error"

// Message builds the error envelope around a fixed, client-safe message.
func Message(msg string) Response {
	return Response{Status: StatusError, Error: msg}
}

// WriteJSON sets the content type, then the status, then encodes data.
// Headers cannot change once WriteHeader has run.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteText writes msg as a plain text body.
func WriteText(w http.ResponseWriter, status int, msg string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, err := w.Write([]byte(msg))
	return err
}
