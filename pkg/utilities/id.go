package utilities

import (
	"github.com/segmentio/ksuid"
)

// RequestIDHeader is echoed back on every response and carried in request logs.
const RequestIDHeader = "X-Request-ID"

// NewRequestID generates a new globally unique, time-sortable KSUID string.
func NewRequestID() string {
	return ksuid.New().String()
}

// ValidRequestID reports whether an inbound request id looks like one we issued.
// Anything else is replaced so logs never carry arbitrary client input.
func ValidRequestID(s string) bool {
	_, err := ksuid.Parse(s)
	return err == nil
}
