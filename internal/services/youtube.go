// YouTube Data API v3 implementation of [CatalogService]
//
// Response types based on https://developers.google.com/youtube/v3/docs
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/ytsort/internal/shared"
	"golang.org/x/oauth2"
)

const (
	youtubeAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	youtubeTokenURL = "https://oauth2.googleapis.com/token"
	youtubeBaseURL  = "https://www.googleapis.com/youtube/v3"
	youtubeScope    = "https://www.googleapis.com/auth/youtube"

	maxPageSize = 50
)

// youtubePlaylistSnippet is the snippet of a playlist resource.
type youtubePlaylistSnippet struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type youtubeContentDetails struct {
	ItemCount int    `json:"itemCount"`
	VideoID   string `json:"videoId"`
}

type youtubePlaylistResource struct {
	ID             string                 `json:"id"`
	Snippet        youtubePlaylistSnippet `json:"snippet"`
	ContentDetails youtubeContentDetails  `json:"contentDetails"`
}

type youtubeResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type youtubeItemSnippet struct {
	Title                 string            `json:"title"`
	ChannelTitle          string            `json:"channelTitle"`
	VideoOwnerChannelName string            `json:"videoOwnerChannelTitle"`
	PublishedAt           string            `json:"publishedAt"`
	PlaylistID            string            `json:"playlistId,omitempty"`
	ResourceID            youtubeResourceID `json:"resourceId"`
}

type youtubeItemResource struct {
	ID             string                `json:"id"`
	Snippet        youtubeItemSnippet    `json:"snippet"`
	ContentDetails youtubeContentDetails `json:"contentDetails"`
}

type youtubePlaylistPage struct {
	Items         []youtubePlaylistResource `json:"items"`
	NextPageToken string                    `json:"nextPageToken"`
}

type youtubeItemPage struct {
	Items         []youtubeItemResource `json:"items"`
	NextPageToken string                `json:"nextPageToken"`
}

type youtubeErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// YouTubeService implements [CatalogService] against the YouTube Data API
// using an OAuth2 token persisted on disk.
type YouTubeService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	tokenPath  string
	httpClient *http.Client
}

// NewYouTubeService creates a YouTube client from OAuth client credentials.
// The token itself is loaded separately via [YouTubeService.LoadCredential].
func NewYouTubeService(cfg shared.YouTubeConfig) (*YouTubeService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: youtube client_id/client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8989/callback"
	}

	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		tokenPath = "token.json"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{youtubeScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  youtubeAuthURL,
			TokenURL: youtubeTokenURL,
		},
	}

	return &YouTubeService{
		config:     config,
		tokenPath:  tokenPath,
		httpClient: http.DefaultClient,
	}, nil
}

func (y *YouTubeService) Name() string {
	return "YouTube"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (y *YouTubeService) GetAuthURL(state string) string {
	return y.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it.
func (y *YouTubeService) Exchange(ctx context.Context, code string) error {
	token, err := y.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if err := y.saveToken(token); err != nil {
		return err
	}
	y.useToken(ctx, token)
	return nil
}

// LoadCredential reads the persisted token from disk. Returns false without
// error when no token file exists yet.
func (y *YouTubeService) LoadCredential(ctx context.Context) (bool, error) {
	data, err := os.ReadFile(y.tokenPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return false, fmt.Errorf("%w: malformed token file %s", shared.ErrInvalidConfig, y.tokenPath)
	}

	y.useToken(ctx, &token)
	return true, nil
}

// Token returns the loaded token, if any.
func (y *YouTubeService) Token() *oauth2.Token {
	return y.token
}

func (y *YouTubeService) useToken(ctx context.Context, token *oauth2.Token) {
	y.token = token
	y.httpClient = y.config.Client(ctx, token)
}

func (y *YouTubeService) saveToken(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(y.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// doRequest performs an authenticated request against the Data API and maps
// failure status codes onto the shared error kinds.
func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if y.token == nil {
		return fmt.Errorf("%w: run auth login first", shared.ErrUnauthenticated)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, youtubeBaseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return y.mapAPIError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrTransient, err)
		}
	}

	return nil
}

// mapAPIError classifies an error response. A 403 or a quota marker in the
// body means the daily catalog quota is spent; retrying is pointless.
func (y *YouTubeService) mapAPIError(resp *http.Response) error {
	var body youtubeErrorBody
	detail := ""
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		detail = body.Error.Message
	}

	quotaMarker := strings.Contains(strings.ToLower(detail), "quota")
	for _, e := range body.Error.Errors {
		if e.Reason == "quotaExceeded" || e.Reason == "rateLimitExceeded" {
			quotaMarker = true
		}
	}

	switch {
	case resp.StatusCode == http.StatusForbidden || quotaMarker:
		return fmt.Errorf("%w: youtube API status %d: %s", shared.ErrQuotaExceeded, resp.StatusCode, detail)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: youtube API status %d", shared.ErrUnauthenticated, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: youtube API status %d: %s", shared.ErrNotFound, resp.StatusCode, detail)
	default:
		return fmt.Errorf("%w: youtube API status %d: %s", shared.ErrTransient, resp.StatusCode, detail)
	}
}

// ListCollections retrieves the user's playlists, paginating until no next
// page token is returned.
func (y *YouTubeService) ListCollections(ctx context.Context) ([]Collection, error) {
	var collections []Collection
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/playlists?part=snippet,contentDetails&mine=true&maxResults=%d", maxPageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubePlaylistPage
		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			collections = append(collections, Collection{
				ID:        item.ID,
				Title:     item.Snippet.Title,
				ItemCount: item.ContentDetails.ItemCount,
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return collections, nil
}

// ListCollectionItems retrieves every item of a remote playlist.
func (y *YouTubeService) ListCollectionItems(ctx context.Context, collectionID string) ([]CollectionItem, error) {
	var items []CollectionItem
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/playlistItems?part=snippet,contentDetails&playlistId=%s&maxResults=%d",
			url.QueryEscape(collectionID), maxPageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubeItemPage
		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			channel := item.Snippet.VideoOwnerChannelName
			if channel == "" {
				channel = item.Snippet.ChannelTitle
			}
			items = append(items, CollectionItem{
				ExternalID:  item.Snippet.ResourceID.VideoID,
				Title:       item.Snippet.Title,
				ChannelName: channel,
				AddedAt:     parseTimestamp(item.Snippet.PublishedAt),
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return items, nil
}

// ListLikedItems retrieves the user's liked videos.
func (y *YouTubeService) ListLikedItems(ctx context.Context) ([]CollectionItem, error) {
	var items []CollectionItem
	pageToken := ""

	for {
		endpoint := fmt.Sprintf("/videos?part=snippet&myRating=like&maxResults=%d", maxPageSize)
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page youtubeItemPage
		if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			items = append(items, CollectionItem{
				ExternalID:  item.ID,
				Title:       item.Snippet.Title,
				ChannelName: item.Snippet.ChannelTitle,
				AddedAt:     parseTimestamp(item.Snippet.PublishedAt),
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return items, nil
}

// CreatePlaylist creates a private playlist and returns the remote id.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	body := map[string]any{
		"snippet": map[string]any{
			"title":       name,
			"description": description,
		},
		"status": map[string]any{
			"privacyStatus": "private",
		},
	}

	var created youtubePlaylistResource
	if err := y.doRequest(ctx, http.MethodPost, "/playlists?part=snippet,status", body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: playlist created without id", shared.ErrTransient)
	}

	return created.ID, nil
}

// AddPlaylistItem appends one video to a remote playlist.
func (y *YouTubeService) AddPlaylistItem(ctx context.Context, remotePlaylistID, externalItemID string) error {
	body := map[string]any{
		"snippet": map[string]any{
			"playlistId": remotePlaylistID,
			"resourceId": map[string]any{
				"kind":    "youtube#video",
				"videoId": externalItemID,
			},
		},
	}

	return y.doRequest(ctx, http.MethodPost, "/playlistItems?part=snippet", body, nil)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
