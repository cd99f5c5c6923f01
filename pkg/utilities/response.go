package utilities

import (
	"encoding/json"
	"net/http"
)

// Messages shared by every handler.
const (
	MsgValidationFailed = "Validation failed"
	MsgInternal         = "Internal server error"
	MsgEndpointNotFound = "Endpoint not found"
	MsgReferenceGone    = "Referenced resource no longer exists"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination accompanies list responses.
type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Envelope is the uniform response body: {success, data?|error, details?}.
type Envelope struct {
	Success    bool         `json:"success"`
	Data       any          `json:"data,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	Error      string       `json:"error,omitempty"`
	Details    []FieldError `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a successful envelope around data.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WritePage writes a successful list envelope with pagination metadata.
func WritePage(w http.ResponseWriter, data any, p Pagination) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// WriteError writes a failed envelope with a human-readable message.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Success: false, Error: msg})
}

// WriteValidation writes a 400 envelope listing the rejected fields.
func WriteValidation(w http.ResponseWriter, details []FieldError) {
	WriteJSON(w, http.StatusBadRequest, Envelope{Success: false, Error: MsgValidationFailed, Details: details})
}
