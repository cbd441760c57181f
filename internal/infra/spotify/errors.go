package spotify

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrMissingToken is returned when no token document has been stored.
// Every Web API call requires a bearer token, so this is fatal for the
// invocation.
var ErrMissingToken = errors.New("no spotify token stored")

// UpstreamError represents a non-2xx response from the Spotify Web API.
type UpstreamError struct {
	Endpoint string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("spotify API error: %s returned status %d", e.Endpoint, e.Status)
}

// AuthError represents a rejected token refresh. Body carries the
// response body from the accounts service for diagnostics.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("spotify token refresh rejected: status %d: %s", e.Status, e.Body)
}
