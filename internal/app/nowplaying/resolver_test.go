package nowplaying

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/osa030/npbot/internal/domain/track"
)

// mockSpotify is a scripted SpotifyAPI for resolver tests.
type mockSpotify struct {
	playback      *track.Playback
	playbackErr   error
	entries       []track.PlaylistEntry
	entriesErr    error
	user          *track.User
	userErr       error
	playlistCalls []string
	userCalls     []string
}

func (m *mockSpotify) CurrentlyPlaying(context.Context) (*track.Playback, error) {
	return m.playback, m.playbackErr
}

func (m *mockSpotify) PlaylistTracks(_ context.Context, playlistID string) ([]track.PlaylistEntry, error) {
	m.playlistCalls = append(m.playlistCalls, playlistID)
	return m.entries, m.entriesErr
}

func (m *mockSpotify) User(_ context.Context, userID string) (*track.User, error) {
	m.userCalls = append(m.userCalls, userID)
	return m.user, m.userErr
}

func playingTrack() *track.Track {
	return &track.Track{
		ID:      "track1",
		Name:    "Everything In Its Right Place",
		Artists: []string{"Radiohead"},
		AlbumImages: []track.Image{
			{Height: 640, Width: 640, URL: "https://i.scdn.co/image/kid-a"},
		},
	}
}

func TestResolveHappyPath(t *testing.T) {
	api := &mockSpotify{
		playback: &track.Playback{
			Item: playingTrack(),
			Context: track.Context{
				Type: track.ContextTypePlaylist,
				Href: "https://api.spotify.com/v1/users/x/playlists/ABC123",
			},
		},
		entries: []track.PlaylistEntry{
			{AddedByID: "alice", Track: track.Track{ID: "other"}},
			{AddedByID: "bob", Track: *playingTrack()},
		},
		user: &track.User{ID: "bob", DisplayName: "Bob"},
	}

	resolved, err := NewResolver(api).Resolve(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, resolved)
	assert.Equal(t, "Everything In Its Right Place", resolved.Name)
	assert.Equal(t, "Bob", resolved.AddedBy)
	assert.Equal(t, []string{"ABC123"}, api.playlistCalls)
	assert.Equal(t, []string{"bob"}, api.userCalls)
}

func TestResolveNothingPlaying(t *testing.T) {
	api := &mockSpotify{playback: nil}

	resolved, err := NewResolver(api).Resolve(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, resolved)
	assert.Empty(t, api.playlistCalls)
}

func TestResolveNoTrackItem(t *testing.T) {
	api := &mockSpotify{
		playback: &track.Playback{
			Context: track.Context{Type: track.ContextTypePlaylist, Href: "https://api.spotify.com/v1/playlists/ABC"},
		},
	}

	resolved, err := NewResolver(api).Resolve(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, resolved)
	assert.Empty(t, api.playlistCalls)
}

func TestResolveUnsupportedContexts(t *testing.T) {
	for _, ctxType := range []track.ContextType{track.ContextTypeAlbum, track.ContextTypeArtist} {
		t.Run(string(ctxType), func(t *testing.T) {
			api := &mockSpotify{
				playback: &track.Playback{
					Item:    playingTrack(),
					Context: track.Context{Type: ctxType, Href: "https://api.spotify.com/v1/albums/XYZ"},
				},
			}

			resolved, err := NewResolver(api).Resolve(context.Background())
			assert.NoError(t, err)
			assert.Nil(t, resolved)
			assert.Empty(t, api.playlistCalls)
		})
	}
}

func TestResolveTrackNotInPlaylist(t *testing.T) {
	api := &mockSpotify{
		playback: &track.Playback{
			Item: playingTrack(),
			Context: track.Context{
				Type: track.ContextTypePlaylist,
				Href: "https://api.spotify.com/v1/users/x/playlists/ABC123",
			},
		},
		entries: []track.PlaylistEntry{
			{AddedByID: "alice", Track: track.Track{ID: "another_track"}},
		},
	}

	resolved, err := NewResolver(api).Resolve(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, resolved)
	assert.Empty(t, api.userCalls)
}

func TestResolvePropagatesUpstreamError(t *testing.T) {
	api := &mockSpotify{playbackErr: errors.New("upstream down")}

	_, err := NewResolver(api).Resolve(context.Background())
	assert.Error(t, err)

	api = &mockSpotify{
		playback: &track.Playback{
			Item:    playingTrack(),
			Context: track.Context{Type: track.ContextTypePlaylist, Href: "https://api.spotify.com/v1/playlists/ABC"},
		},
		entriesErr: errors.New("upstream down"),
	}

	_, err = NewResolver(api).Resolve(context.Background())
	assert.Error(t, err)
}
