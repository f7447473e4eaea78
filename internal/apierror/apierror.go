// Package apierror defines the error envelopes every 4xx/5xx response uses.
// Handlers never serialize raw errors: whatever a repo or gorm returns stays
// server-side and only a client-safe detail string goes out.
package apierror

// APIError carries a single human-readable message, in Spanish, matching the
// storefront's error toasts.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError adds a per-field breakdown so forms can mark the exact
// input that failed.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
