package ups

import "fmt"

// AuthError means the OAuth token request failed. No shipment can be
// fetched without a token, so a pass aborts on it.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("ups: token request failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// UpstreamError means the tracking fetch returned a non-success HTTP
// status. Callers fold it into an error snapshot instead of aborting
// the pass.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ups: tracking API returned status %d: %s", e.StatusCode, e.Body)
}
