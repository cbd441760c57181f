// Package tokenstore persists the single Spotify OAuth token pair.
package tokenstore

import "context"

// Token represents the stored access/refresh token pair.
type Token struct {
	AccessToken  string
	RefreshToken string
}

// Store is the accessor for the token singleton. There is exactly one
// record; it is created out of band by the auth tool and mutated only by
// the token refresh flow.
type Store interface {
	// Get returns the stored token, or (nil, nil) when no token has been
	// stored yet. An error means the store itself could not be reached.
	Get(ctx context.Context) (*Token, error)
	// Set overwrites the stored token.
	Set(ctx context.Context, token Token) error
}
