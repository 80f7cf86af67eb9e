package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"tracktidy/config"
	"tracktidy/types"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake image payload")

// newCatalogStub serves a token endpoint, a search endpoint, and an image.
// searchBody is the JSON returned for every search.
func newCatalogStub(t *testing.T, searchBody string) (token, api, image *httptest.Server) {
	t.Helper()

	token = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(token.Close)

	api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchBody)
	}))
	t.Cleanup(api.Close)

	image = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	t.Cleanup(image.Close)

	return token, api, image
}

// newTestCoverService points a cover art service at stub servers
func newTestCoverService(token, api *httptest.Server) *CoverArtService {
	svc := NewCoverArtService(config.Credentials{ClientID: "id", ClientSecret: "secret"})
	svc.tokenURL = token.URL
	svc.apiBaseURL = api.URL
	return svc
}

func searchFixture(imageURL string) string {
	return fmt.Sprintf(`{
		"tracks": {
			"items": [
				{
					"name": "Come Together",
					"artists": [{"name": "The Beatles"}],
					"album": {
						"name": "Abbey Road",
						"images": [
							{"url": %q, "width": 640, "height": 640},
							{"url": "small.jpg", "width": 64, "height": 64}
						]
					}
				},
				{
					"name": "Come Together (Remaster)",
					"artists": [{"name": "The Beatles"}],
					"album": {
						"name": "Abbey Road (Deluxe)",
						"images": [{"url": %q, "width": 300, "height": 300}]
					}
				}
			]
		}
	}`, imageURL, imageURL)
}

// TestSearchArtwork tests result mapping and largest-image selection
func TestSearchArtwork(t *testing.T) {
	token, api, _ := newCatalogStub(t, searchFixture("http://img/large.jpg"))
	svc := newTestCoverService(token, api)

	candidates, err := svc.SearchArtwork(context.Background(), "Come Together", "The Beatles")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Come Together", candidates[0].TrackName)
	assert.Equal(t, "The Beatles", candidates[0].ArtistName)
	assert.Equal(t, "Abbey Road", candidates[0].AlbumName)
	assert.Equal(t, "http://img/large.jpg", candidates[0].ImageURL)
}

// TestSearchArtworkNoMatch tests the empty-result error
func TestSearchArtworkNoMatch(t *testing.T) {
	token, api, _ := newCatalogStub(t, `{"tracks":{"items":[]}}`)
	svc := newTestCoverService(token, api)

	_, err := svc.SearchArtwork(context.Background(), "zzzzz", "nobody")
	assert.ErrorIs(t, err, ErrNoMatch)
}

// TestSearchArtworkMissingCredentials tests that unset credentials fail
// before any network round trip
func TestSearchArtworkMissingCredentials(t *testing.T) {
	svc := NewCoverArtService(config.Credentials{})

	_, err := svc.SearchArtwork(context.Background(), "track", "artist")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

// TestSearchArtworkRejectedToken tests that a rejected token request maps
// to the credentials error
func TestSearchArtworkRejectedToken(t *testing.T) {
	badToken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusBadRequest)
	}))
	defer badToken.Close()

	svc := NewCoverArtService(config.Credentials{ClientID: "id", ClientSecret: "wrong"})
	svc.tokenURL = badToken.URL

	_, err := svc.SearchArtwork(context.Background(), "track", "artist")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

// TestValidateToleratesNoMatch tests that the probe search accepts an
// empty result as success
func TestValidateToleratesNoMatch(t *testing.T) {
	token, api, _ := newCatalogStub(t, `{"tracks":{"items":[]}}`)
	svc := newTestCoverService(token, api)

	assert.NoError(t, svc.Validate(context.Background()))
}

// TestDownloadImageFailure tests that server errors map to the download error
func TestDownloadImageFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer broken.Close()

	svc := NewCoverArtService(config.Credentials{ClientID: "id", ClientSecret: "secret"})
	_, err := svc.DownloadImage(context.Background(), broken.URL+"/cover.jpg")
	assert.ErrorIs(t, err, ErrDownloadFailed)
}

// TestEmbedCoverRejectsNonMP3 tests the MP3-only embed constraint
func TestEmbedCoverRejectsNonMP3(t *testing.T) {
	path := writeTempAudio(t, "song.flac")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	svc := NewCoverArtService(config.Credentials{})
	assert.ErrorIs(t, svc.EmbedCover(path, pngBytes), ErrNotAnMP3)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// TestFetchAndEmbed tests the whole flow against stub servers
func TestFetchAndEmbed(t *testing.T) {
	path := writeTempMP3(t, "song.mp3")

	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer imageSrv.Close()

	token, api, _ := newCatalogStub(t, searchFixture(imageSrv.URL+"/cover.png"))
	svc := newTestCoverService(token, api)

	chosen, err := svc.FetchAndEmbed(context.Background(), types.JobRequest{
		Source:      path,
		TrackQuery:  "Come Together",
		ArtistQuery: "The Beatles",
	})
	require.NoError(t, err)
	require.NotNil(t, chosen)
	assert.Equal(t, "Come Together", chosen.TrackName)

	mp3Tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer mp3Tag.Close()

	frames := mp3Tag.GetFrames(mp3Tag.CommonID("Attached picture"))
	require.Len(t, frames, 1)

	picture, ok := frames[0].(id3v2.PictureFrame)
	require.True(t, ok)
	assert.Equal(t, pngBytes, picture.Picture)
	assert.Equal(t, byte(id3v2.PTFrontCover), picture.PictureType)
}

// TestFetchAndEmbedRejectsNonMP3 tests that a bad target fails before any
// catalog work
func TestFetchAndEmbedRejectsNonMP3(t *testing.T) {
	path := writeTempAudio(t, "song.flac")
	svc := NewCoverArtService(config.Credentials{})

	_, err := svc.FetchAndEmbed(context.Background(), types.JobRequest{
		Source:      path,
		TrackQuery:  "x",
		ArtistQuery: "y",
	})
	assert.ErrorIs(t, err, ErrNotAnMP3)
}

// TestFetchAndEmbedUsesPicker tests that a custom picker selects the candidate
func TestFetchAndEmbedUsesPicker(t *testing.T) {
	path := writeTempMP3(t, "song.mp3")

	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer imageSrv.Close()

	token, api, _ := newCatalogStub(t, searchFixture(imageSrv.URL+"/cover.png"))
	svc := newTestCoverService(token, api)
	svc.SetPicker(func(candidates []ArtworkCandidate) int { return 1 })

	chosen, err := svc.FetchAndEmbed(context.Background(), types.JobRequest{
		Source:      path,
		TrackQuery:  "Come Together",
		ArtistQuery: "The Beatles",
	})
	require.NoError(t, err)
	assert.Equal(t, "Come Together (Remaster)", chosen.TrackName)
}
