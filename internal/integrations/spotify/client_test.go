package spotify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"moodtunes/config"
	"moodtunes/internal/core/emotion"
	"moodtunes/internal/core/recommend"

	"github.com/zmb3/spotify"
)

type fakeAPI struct {
	hits map[string]spotify.ID // query -> track id; absent queries return no hits

	createCalls int
	createErr   error
	created     string

	addCalls  int
	addedIDs  []spotify.ID
	addErr    error
	searchErr map[string]error
}

func (f *fakeAPI) Search(query string, t spotify.SearchType) (*spotify.SearchResult, error) {
	if err := f.searchErr[query]; err != nil {
		return nil, err
	}
	id, ok := f.hits[query]
	if !ok {
		return &spotify.SearchResult{Tracks: &spotify.FullTrackPage{}}, nil
	}
	track := spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{ID: id}}
	return &spotify.SearchResult{
		Tracks: &spotify.FullTrackPage{Tracks: []spotify.FullTrack{track}},
	}, nil
}

func (f *fakeAPI) CreatePlaylistForUser(userID, playlistName, description string, public bool) (*spotify.FullPlaylist, error) {
	f.createCalls++
	f.created = playlistName
	if f.createErr != nil {
		return nil, f.createErr
	}
	pl := &spotify.FullPlaylist{}
	pl.ID = "pl123"
	pl.ExternalURLs = map[string]string{"spotify": "https://open.spotify.com/playlist/pl123"}
	return pl, nil
}

func (f *fakeAPI) AddTracksToPlaylist(playlistID spotify.ID, trackIDs ...spotify.ID) (string, error) {
	f.addCalls++
	f.addedIDs = append(f.addedIDs, trackIDs...)
	if f.addErr != nil {
		return "", f.addErr
	}
	return "snapshot", nil
}

func newTestClient(api webAPI) *Client {
	return &Client{api: api, userID: "listener", public: true, timeout: 5 * time.Second}
}

func TestCreateMoodPlaylistPartialResolution(t *testing.T) {
	api := &fakeAPI{hits: map[string]spotify.ID{
		"1. Song A - X": "trackA",
		"3. Song C - Z": "trackC",
	}}
	c := newTestClient(api)

	songs := []recommend.Song{"1. Song A - X", "2. Song B - Y", "3. Song C - Z"}
	result, err := c.CreateMoodPlaylist(context.Background(), emotion.Happy, songs)
	if err != nil {
		t.Fatalf("CreateMoodPlaylist: %v", err)
	}

	if result.TrackCount != 2 {
		t.Errorf("TrackCount = %d, want 2 (one entry had no hit)", result.TrackCount)
	}
	if api.addCalls != 1 {
		t.Errorf("AddTracksToPlaylist called %d times, want one batched call", api.addCalls)
	}
	if len(api.addedIDs) != 2 || api.addedIDs[0] != "trackA" || api.addedIDs[1] != "trackC" {
		t.Errorf("added track ids = %v", api.addedIDs)
	}
	if result.URL != "https://open.spotify.com/playlist/pl123" {
		t.Errorf("URL = %s", result.URL)
	}
}

func TestCreateMoodPlaylistTitle(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(api)

	if _, err := c.CreateMoodPlaylist(context.Background(), emotion.Sad, nil); err != nil {
		t.Fatalf("CreateMoodPlaylist: %v", err)
	}
	if api.created != "Sad Mood Playlist" {
		t.Errorf("playlist title = %q, want %q", api.created, "Sad Mood Playlist")
	}
}

func TestCreateMoodPlaylistZeroResolvedStillSucceeds(t *testing.T) {
	api := &fakeAPI{} // no hits at all
	c := newTestClient(api)

	result, err := c.CreateMoodPlaylist(context.Background(), emotion.Neutral,
		[]recommend.Song{"Unknown Song - Nobody"})
	if err != nil {
		t.Fatalf("empty playlist must not be a failure: %v", err)
	}
	if result.TrackCount != 0 {
		t.Errorf("TrackCount = %d, want 0", result.TrackCount)
	}
	if api.addCalls != 0 {
		t.Errorf("AddTracksToPlaylist called %d times for empty resolution, want 0", api.addCalls)
	}
}

func TestCreateMoodPlaylistSearchErrorDropsEntry(t *testing.T) {
	api := &fakeAPI{
		hits:      map[string]spotify.ID{"Song B - Y": "trackB"},
		searchErr: map[string]error{"Song A - X": errors.New("rate limited")},
	}
	c := newTestClient(api)

	result, err := c.CreateMoodPlaylist(context.Background(), emotion.Fear,
		[]recommend.Song{"Song A - X", "Song B - Y"})
	if err != nil {
		t.Fatalf("individual search failures must not fail the stage: %v", err)
	}
	if result.TrackCount != 1 {
		t.Errorf("TrackCount = %d, want 1", result.TrackCount)
	}
}

func TestNewClientClientCredentialsDefersTokenAcquisition(t *testing.T) {
	cfg := config.SpotifyConfig{
		Enabled:      true,
		ClientID:     "id",
		ClientSecret: "secret",
		UserID:       "listener",
	}

	// No network here: the token must be fetched lazily by the transport on
	// first use, which also lets it re-acquire after expiry.
	c, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.api == nil {
		t.Fatal("client has no API backend")
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), config.SpotifyConfig{Enabled: true})
	if err == nil {
		t.Fatal("expected error without client credentials")
	}
}

func TestCreateMoodPlaylistCreateFailure(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("401 unauthorized")}
	c := newTestClient(api)

	_, err := c.CreateMoodPlaylist(context.Background(), emotion.Angry,
		[]recommend.Song{"Song A - X"})
	if err == nil {
		t.Fatal("expected error when playlist creation fails")
	}
	if !strings.Contains(err.Error(), "failed to create playlist") {
		t.Errorf("unexpected error: %v", err)
	}
}
