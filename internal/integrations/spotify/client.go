// Package spotify implements the optional playlist stage on top of the
// Spotify Web API. The OAuth token is cached process-wide and refreshed
// through the oauth2 transport, which serializes concurrent refreshes.
package spotify

import (
	"context"
	"fmt"
	"time"

	"moodtunes/config"
	"moodtunes/internal/core/emotion"
	"moodtunes/internal/core/pipeline"
	"moodtunes/internal/core/recommend"

	log "github.com/sirupsen/logrus"
	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// webAPI is the slice of the Spotify client the orchestrator uses; tests
// substitute a fake.
type webAPI interface {
	Search(query string, t spotify.SearchType) (*spotify.SearchResult, error)
	CreatePlaylistForUser(userID, playlistName, description string, public bool) (*spotify.FullPlaylist, error)
	AddTracksToPlaylist(playlistID spotify.ID, trackIDs ...spotify.ID) (string, error)
}

// Client orchestrates playlist creation for detected moods.
type Client struct {
	api     webAPI
	userID  string
	public  bool
	timeout time.Duration
}

// NewClient builds a Spotify client from configuration. Playlist creation
// acts on behalf of the configured user, so a user refresh token is
// preferred; without one the client falls back to the client-credentials
// grant, which can search but not own playlists.
func NewClient(ctx context.Context, cfg config.SpotifyConfig) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("spotify client_id/client_secret are not configured")
	}

	var api spotify.Client
	if cfg.RefreshToken != "" {
		auth := spotify.NewAuthenticator(cfg.RedirectURL,
			spotify.ScopePlaylistModifyPublic, spotify.ScopePlaylistModifyPrivate)
		auth.SetAuthInfo(cfg.ClientID, cfg.ClientSecret)

		// An expired token forces the oauth2 transport to refresh on first
		// use; subsequent refreshes are cached and single-flight.
		token := &oauth2.Token{
			RefreshToken: cfg.RefreshToken,
			Expiry:       time.Now().Add(-time.Minute),
		}
		api = auth.NewClient(token)
	} else {
		ccfg := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     spotify.TokenURL,
		}
		// ccfg.Client defers token acquisition to the first request and
		// re-acquires on expiry; a one-shot token would go stale after an
		// hour with no way to refresh it.
		api = spotify.NewClient(ccfg.Client(ctx))
		log.Warn("Spotify is configured without a user refresh token; playlist creation will be rejected by the provider")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	log.Info("Spotify client initialized")
	return &Client{api: &api, userID: cfg.UserID, public: cfg.PlaylistPublic, timeout: timeout}, nil
}

// CreateMoodPlaylist creates a playlist titled after the mood, resolves each
// recommended song through search and adds the hits in one batched call.
// Songs with no search hit are silently dropped; a playlist with zero tracks
// is still a success.
func (c *Client) CreateMoodPlaylist(ctx context.Context, mood emotion.Label, songs []recommend.Song) (*pipeline.Playlist, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	title := fmt.Sprintf("%s Mood Playlist", mood)
	description := fmt.Sprintf("Songs for a %s mood, generated by moodtunes", mood)

	playlist, err := c.api.CreatePlaylistForUser(c.userID, title, description, c.public)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	var trackIDs []spotify.ID
	for _, song := range songs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// The raw recommendation line is the search query; lines are never
		// split into title/artist fields first.
		result, err := c.api.Search(string(song), spotify.SearchTypeTrack)
		if err != nil {
			log.WithError(err).Debugf("Search failed for %q, dropping entry", song)
			continue
		}
		if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
			log.Debugf("No track found for %q, dropping entry", song)
			continue
		}
		trackIDs = append(trackIDs, result.Tracks.Tracks[0].ID)
	}

	if len(trackIDs) > 0 {
		if _, err := c.api.AddTracksToPlaylist(playlist.ID, trackIDs...); err != nil {
			return nil, fmt.Errorf("failed to add tracks to playlist: %w", err)
		}
	} else {
		log.Warnf("No recommendations resolved to tracks, playlist %s stays empty", playlist.ID)
	}

	url := playlist.ExternalURLs["spotify"]
	if url == "" {
		url = fmt.Sprintf("https://open.spotify.com/playlist/%s", playlist.ID)
	}

	return &pipeline.Playlist{
		ID:         string(playlist.ID),
		URL:        url,
		TrackCount: len(trackIDs),
	}, nil
}
