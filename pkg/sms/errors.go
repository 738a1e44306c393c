package sms

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured     = errors.New("sms gateway url or api key not configured")
	ErrMalformedResponse = errors.New("malformed gateway response")
	ErrRejected          = errors.New("gateway rejected message")
)

// StatusError reports a non-2xx gateway response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}
