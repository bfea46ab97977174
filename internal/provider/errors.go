package provider

import "fmt"

// UpstreamError is a non-success response from the remote provider.
// The raw body is kept so callers can attach it as error detail.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}
