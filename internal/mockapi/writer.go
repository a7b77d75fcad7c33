package mockapi

import (
	"encoding/json"
	"net/http"
)

// apiError represents a single error as emitted by the mock upstream.
// The key endpoint error shape mirrors the real upstream: clients pick the
// first present field out of 'error_description', 'error' and 'message'.
type apiError struct {
	ErrorDescription string `json:"error_description,omitempty"`
	Error            string `json:"error,omitempty"`
	Message          string `json:"message,omitempty"`
}

var (
	errNotFound         = &apiError{Message: "resource not found"}
	errMethodNotAllowed = &apiError{Message: "method not allowed"}
	errUnauthorized     = &apiError{ErrorDescription: "Invalid or expired request key"}
)

// writer helps writing unified mock upstream responses
type writer struct {
	internalErrorHook func(err error)
}

// writeJSONCode writes the JSON representation of value to the given response writer using the given HTTP status code
func (writer *writer) writeJSONCode(rw http.ResponseWriter, code int, value interface{}) {
	val, _ := json.Marshal(value)
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	rw.Write(val)
}

// writeJSON writes the JSON representation of value to the given response writer.
// This method sends 200 OK as the HTTP status code; use writeJSONCode to use a different one.
func (writer *writer) writeJSON(rw http.ResponseWriter, value interface{}) {
	writer.writeJSONCode(rw, http.StatusOK, value)
}

// writeError sends an error response
func (writer *writer) writeError(rw http.ResponseWriter, code int, err *apiError) {
	writer.writeJSONCode(rw, code, err)
}

// writeInternalError processes an internal server error and writes it to the response
func (writer *writer) writeInternalError(rw http.ResponseWriter, err error) {
	writer.internalErrorHook(err)
	writer.writeError(rw, http.StatusInternalServerError, &apiError{Message: "internal error"})
}
