// Package nowplaying resolves the currently playing track of the linked
// Spotify account and serves the `nowplaying` chat command.
package nowplaying

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/npbot/internal/domain/track"
)

// SpotifyAPI is the subset of the Spotify client used for resolution.
type SpotifyAPI interface {
	CurrentlyPlaying(ctx context.Context) (*track.Playback, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]track.PlaylistEntry, error)
	User(ctx context.Context, userID string) (*track.User, error)
}

// Resolver turns "what is playing" into a track annotated with the user
// who added it to the playlist. Attribution is only possible inside a
// playlist context, so album and artist playback resolve to nothing.
type Resolver struct {
	api SpotifyAPI
}

// NewResolver creates a Resolver.
func NewResolver(api SpotifyAPI) *Resolver {
	return &Resolver{api: api}
}

// Resolve returns the currently playing track with contributor info, or
// (nil, nil) when there is nothing attributable: player idle, no track
// item, non-playlist context, or the track no longer in the playlist.
// Only upstream and token failures are errors.
func (r *Resolver) Resolve(ctx context.Context) (*track.Resolved, error) {
	playback, err := r.api.CurrentlyPlaying(ctx)
	if err != nil {
		return nil, err
	}
	if playback == nil || playback.Item == nil {
		return nil, nil
	}

	if playback.Context.Type != track.ContextTypePlaylist {
		zlog.Debug().Str("context_type", string(playback.Context.Type)).Msg("unsupported playback context")
		return nil, nil
	}

	playlistID := playback.Context.PlaylistID()

	entries, err := r.api.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	var entry *track.PlaylistEntry
	for i := range entries {
		if entries[i].Track.ID == playback.Item.ID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		// Playlist may have been edited while the track kept playing
		zlog.Debug().Str("track_id", playback.Item.ID).Str("playlist_id", playlistID).Msg("playing track not found in playlist")
		return nil, nil
	}

	user, err := r.api.User(ctx, entry.AddedByID)
	if err != nil {
		return nil, err
	}

	return &track.Resolved{
		Track:   *playback.Item,
		AddedBy: user.DisplayName,
	}, nil
}
