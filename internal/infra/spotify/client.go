// Package spotify provides a client for the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/osa030/npbot/internal/domain/track"
	"github.com/osa030/npbot/internal/infra/tokenstore"
)

// pageSize is the playlist page size fixed by the Web API.
const pageSize = 100

// Client is a Spotify Web API client. The bearer token is read from the
// token store on every call, so a refresh performed by another invocation
// is picked up without restarting.
type Client struct {
	api          *spotify.Client
	clientID     string
	clientSecret string
	accountsURL  string
	httpClient   *http.Client
	tokens       tokenstore.Store
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Tokens       tokenstore.Store

	// APIURL overrides the Web API base URL. Used in tests.
	APIURL string
	// AccountsURL overrides the accounts service base URL. Used in tests.
	AccountsURL string
}

// refreshResponse represents the response from the accounts token endpoint.
type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// storeTokenSource hands out the stored access token without an expiry.
// The transport asks for a token on every request, so each API call sees
// the latest persisted token. Refreshing is the refresh trigger's job,
// never the transport's.
type storeTokenSource struct {
	tokens tokenstore.Store
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	stored, err := s.tokens.Get(context.Background())
	if err != nil {
		return nil, errors.Wrap(err, "failed to read token")
	}
	if stored == nil {
		return nil, ErrMissingToken
	}
	return &oauth2.Token{AccessToken: stored.AccessToken}, nil
}

// languageTransport asks for localized track metadata, matching the
// linked account's locale.
type languageTransport struct {
	base http.RoundTripper
}

func (t *languageTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept-Language", "ja;q=1")
	return t.base.RoundTrip(req)
}

// New creates a new Spotify client.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token store is required")
	}

	apiClient := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &oauth2.Transport{
			Source: &storeTokenSource{tokens: cfg.Tokens},
			Base:   &languageTransport{base: http.DefaultTransport},
		},
	}

	var opts []spotify.ClientOption
	if cfg.APIURL != "" {
		opts = append(opts, spotify.WithBaseURL(strings.TrimRight(cfg.APIURL, "/")+"/"))
	}

	accountsURL := cfg.AccountsURL
	if accountsURL == "" {
		accountsURL = "https://accounts.spotify.com"
	}

	return &Client{
		api:          spotify.New(apiClient, opts...),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		accountsURL:  accountsURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		tokens:       cfg.Tokens,
	}, nil
}

// CurrentlyPlaying retrieves the player state of the linked account.
// Returns (nil, nil) when no track item is playing.
func (c *Client) CurrentlyPlaying(ctx context.Context) (*track.Playback, error) {
	playing, err := c.api.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return nil, apiError("currently-playing", err)
	}
	if playing.Item == nil {
		return nil, nil
	}

	item := convertTrack(playing.Item)
	playback := &track.Playback{
		Item: &item,
		Context: track.Context{
			Type: track.ContextType(playing.PlaybackContext.Type),
			Href: playing.PlaybackContext.Endpoint,
		},
	}

	zlog.Debug().
		Str("context_type", string(playback.Context.Type)).
		Str("track_id", item.ID).
		Msg("fetched currently playing")

	return playback, nil
}

// PlaylistTracks retrieves all entries of a playlist. Pages of 100 are
// fetched until a short page is returned; a failure on any page discards
// the partial result.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]track.PlaylistEntry, error) {
	var entries []track.PlaylistEntry
	offset := 0

	for {
		page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID),
			spotify.Limit(pageSize),
			spotify.Offset(offset),
		)
		if err != nil {
			return nil, apiError("playlist-tracks", err)
		}

		for _, item := range page.Items {
			// Only process tracks (exclude episodes)
			if item.Track.Track == nil || item.Track.Track.ID == "" {
				continue
			}
			entries = append(entries, track.PlaylistEntry{
				AddedByID: item.AddedBy.ID,
				Track:     convertTrack(item.Track.Track),
			})
		}

		if len(page.Items) < pageSize {
			break
		}
		offset += pageSize
	}

	zlog.Debug().Str("playlist_id", playlistID).Int("count", len(entries)).Msg("fetched playlist tracks")

	return entries, nil
}

// User retrieves a user profile by ID.
func (c *Client) User(ctx context.Context, userID string) (*track.User, error) {
	user, err := c.api.GetUsersPublicProfile(ctx, spotify.ID(userID))
	if err != nil {
		return nil, apiError("user", err)
	}
	return &track.User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// RefreshToken exchanges the stored refresh token for a new access token
// and persists it. The refresh token is not rotated by this flow, so the
// same one is written back.
func (c *Client) RefreshToken(ctx context.Context) error {
	stored, err := c.tokens.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read token")
	}
	if stored == nil {
		return ErrMissingToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", stored.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var refreshed refreshResponse
	if err := json.Unmarshal(body, &refreshed); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	if refreshed.AccessToken == "" {
		return errors.New("token endpoint returned no access token")
	}

	if err := c.tokens.Set(ctx, tokenstore.Token{
		AccessToken:  refreshed.AccessToken,
		RefreshToken: stored.RefreshToken,
	}); err != nil {
		return errors.Wrap(err, "failed to persist refreshed token")
	}

	zlog.Info().Msg("refreshed spotify access token")

	return nil
}

// apiError translates Web API failures into the client's error surface.
func apiError(endpoint string, err error) error {
	if errors.Is(err, ErrMissingToken) {
		return ErrMissingToken
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{Endpoint: endpoint, Status: apiErr.Status}
	}
	return errors.Wrapf(err, "failed to call %s", endpoint)
}

// convertTrack converts a Web API track object to the domain Track.
func convertTrack(t *spotify.FullTrack) track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	images := make([]track.Image, len(t.Album.Images))
	for i, img := range t.Album.Images {
		images[i] = track.Image{Height: int(img.Height), Width: int(img.Width), URL: img.URL}
	}

	return track.Track{
		ID:          string(t.ID),
		Name:        t.Name,
		Artists:     artists,
		AlbumImages: images,
	}
}
