package api

import (
	"context"
	"fmt"
	"net/http"

	zlog "github.com/rs/zerolog/log"
)

// TokenRefresher refreshes the stored Spotify access token.
type TokenRefresher interface {
	RefreshToken(ctx context.Context) error
}

// RefreshHandler is the scheduled token refresh trigger, hit by an
// external cron.
type RefreshHandler struct {
	spotify TokenRefresher
}

// NewRefreshHandler creates the refresh trigger.
func NewRefreshHandler(spotify TokenRefresher) *RefreshHandler {
	return &RefreshHandler{spotify: spotify}
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.spotify.RefreshToken(r.Context()); err != nil {
		zlog.Error().Err(err).Msg("failed to refresh token")
		http.Error(w, "token refresh failed", http.StatusInternalServerError)
		return
	}

	fmt.Fprint(w, "token refreshed")
}
