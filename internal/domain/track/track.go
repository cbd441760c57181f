// Package track provides the Track domain entity.
package track

import "strings"

// Image represents album art in a single size.
type Image struct {
	Height int    // Pixel height
	Width  int    // Pixel width
	URL    string // Image URL
}

// Track represents a Spotify track entity.
// Contains only information retrieved from Spotify API.
type Track struct {
	ID          string   // Spotify Track ID
	Name        string   // Track name
	Artists     []string // Artist names
	AlbumImages []Image  // Album art, largest first (Spotify API order)
}

// User represents a Spotify user profile.
type User struct {
	ID          string // Spotify user ID
	DisplayName string // Display name
}

// PlaylistEntry represents one track inside a playlist together with
// the user who added it.
type PlaylistEntry struct {
	AddedByID string // Spotify user ID of the contributor
	Track     Track  // Spotify track info
}

// ContextType represents the type of the current playback context.
type ContextType string

const (
	ContextTypeAlbum    ContextType = "album"
	ContextTypeArtist   ContextType = "artist"
	ContextTypePlaylist ContextType = "playlist"
)

// Context represents the playback context of the currently playing track.
type Context struct {
	Type ContextType // album, artist or playlist
	Href string      // API reference URL of the context
}

// PlaylistID extracts the playlist ID from the context href.
// The href looks like
// `https://api.spotify.com/v1/users/spotify/playlists/49znshcYJROspEqBoHg3Sv`
// and the ID is the final path segment.
func (c Context) PlaylistID() string {
	href := strings.TrimRight(c.Href, "/")
	idx := strings.LastIndex(href, "/")
	if idx < 0 {
		return href
	}
	return href[idx+1:]
}

// Playback represents the player state returned by the currently-playing
// endpoint. Item is nil when the player reports no track.
type Playback struct {
	Item    *Track  // Currently playing track, if any
	Context Context // Playback context
}

// Resolved represents a currently playing track annotated with the
// display name of the user who added it to the playlist.
type Resolved struct {
	Track
	AddedBy string // Display name of the contributor
}

// ArtistsLabel returns the artist names joined for display.
func (t Track) ArtistsLabel() string {
	return strings.Join(t.Artists, ", ")
}

// FirstImageURL returns the URL of the first album image, or "" if the
// album has no images.
func (t Track) FirstImageURL() string {
	if len(t.AlbumImages) == 0 {
		return ""
	}
	return t.AlbumImages[0].URL
}
