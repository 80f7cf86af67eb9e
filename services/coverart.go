package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tracktidy/config"
	"tracktidy/types"

	id3v2 "github.com/bogem/id3v2/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com"

	// searchLimit bounds how many candidates a lookup returns.
	searchLimit = 5
)

// ArtworkCandidate is one search result with a usable artwork URL.
type ArtworkCandidate struct {
	TrackName  string `json:"trackName"`
	ArtistName string `json:"artistName"`
	AlbumName  string `json:"albumName"`
	ImageURL   string `json:"imageUrl"`
}

// PickFunc selects one candidate from a non-empty result list.
type PickFunc func(candidates []ArtworkCandidate) int

// PickFirst is the default candidate selection: the catalog's top match.
func PickFirst(candidates []ArtworkCandidate) int { return 0 }

// CoverArtService searches the Spotify catalog for track artwork, downloads
// the image, and embeds it into an MP3's picture frame.
type CoverArtService struct {
	creds      config.Credentials
	httpClient *http.Client
	tokenURL   string
	apiBaseURL string
	pick       PickFunc
}

// NewCoverArtService creates a cover art service with the given credential
// record. An unset record fails lookups with ErrMissingCredentials.
func NewCoverArtService(creds config.Credentials) *CoverArtService {
	return &CoverArtService{
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokenURL:   spotifyTokenURL,
		apiBaseURL: spotifyAPIURL,
		pick:       PickFirst,
	}
}

// SetCredentials replaces the credential record used for future lookups.
func (s *CoverArtService) SetCredentials(creds config.Credentials) {
	s.creds = creds
}

// HasCredentials reports whether a credential record is present.
func (s *CoverArtService) HasCredentials() bool {
	return s.creds.IsSet()
}

// SetPicker overrides how a candidate is chosen when the search returns
// more than one match.
func (s *CoverArtService) SetPicker(pick PickFunc) {
	if pick != nil {
		s.pick = pick
	}
}

// apiClient returns an HTTP client that injects a client-credentials
// bearer token into every request.
func (s *CoverArtService) apiClient(ctx context.Context) (*http.Client, error) {
	if !s.creds.IsSet() {
		return nil, ErrMissingCredentials
	}

	conf := &clientcredentials.Config{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		TokenURL:     s.tokenURL,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	return conf.Client(ctx), nil
}

// spotifySearchResponse mirrors the fields we need from the search API.
type spotifySearchResponse struct {
	Tracks struct {
		Items []struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name   string `json:"name"`
				Images []struct {
					URL    string `json:"url"`
					Width  int    `json:"width"`
					Height int    `json:"height"`
				} `json:"images"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

// SearchArtwork queries the catalog for a track and returns artwork
// candidates. Every call re-queries the API; nothing is cached.
func (s *CoverArtService) SearchArtwork(ctx context.Context, track, artist string) ([]ArtworkCandidate, error) {
	client, err := s.apiClient(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("track:%s artist:%s", track, artist)
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(searchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBaseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: token request rejected", ErrMissingCredentials)
		}
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: API returned %s", ErrMissingCredentials, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: unexpected status %s", resp.Status)
	}

	var result spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var candidates []ArtworkCandidate
	for _, item := range result.Tracks.Items {
		if len(item.Album.Images) == 0 {
			continue
		}
		candidate := ArtworkCandidate{
			TrackName: item.Name,
			AlbumName: item.Album.Name,
			// Spotify orders images largest first
			ImageURL: item.Album.Images[0].URL,
		}
		if len(item.Artists) > 0 {
			candidate.ArtistName = item.Artists[0].Name
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s by %s", ErrNoMatch, track, artist)
	}

	return candidates, nil
}

// Validate issues a probe search to verify the credential record works.
func (s *CoverArtService) Validate(ctx context.Context) error {
	_, err := s.SearchArtwork(ctx, "test", "")
	if err != nil && !errors.Is(err, ErrNoMatch) {
		return err
	}
	return nil
}

// DownloadImage fetches the artwork bytes.
func (s *CoverArtService) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrDownloadFailed, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	return data, nil
}

// EmbedCover writes the image into the MP3's attached-picture frame,
// replacing any existing embedded picture. Cover embedding is MP3-specific.
func (s *CoverArtService) EmbedCover(path string, image []byte) error {
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return fmt.Errorf("%w: %s", ErrNotAnMP3, path)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}

	mp3Tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnMP3, err)
	}
	defer mp3Tag.Close()

	mp3Tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// Overwrite any existing embedded picture
	mp3Tag.DeleteFrames(mp3Tag.CommonID("Attached picture"))
	mp3Tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    http.DetectContentType(image),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     image,
	})

	if err := mp3Tag.Save(); err != nil {
		return fmt.Errorf("failed to save cover art: %w", err)
	}

	return nil
}

// FetchAndEmbed runs the full flow: search, pick a candidate, download the
// artwork, and embed it into the target MP3. The target file is checked
// before any network work so a bad path never costs API calls.
func (s *CoverArtService) FetchAndEmbed(ctx context.Context, req types.JobRequest) (*ArtworkCandidate, error) {
	if strings.ToLower(filepath.Ext(req.Source)) != ".mp3" {
		return nil, fmt.Errorf("%w: %s", ErrNotAnMP3, req.Source)
	}
	if _, err := os.Stat(req.Source); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, req.Source)
	}

	candidates, err := s.SearchArtwork(ctx, req.TrackQuery, req.ArtistQuery)
	if err != nil {
		return nil, err
	}

	idx := s.pick(candidates)
	if idx < 0 || idx >= len(candidates) {
		idx = 0
	}
	chosen := candidates[idx]

	image, err := s.DownloadImage(ctx, chosen.ImageURL)
	if err != nil {
		return nil, err
	}

	if err := s.EmbedCover(req.Source, image); err != nil {
		return nil, err
	}

	return &chosen, nil
}
