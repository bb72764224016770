package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "herboscope/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	searchLimit   = 20
	maxImageHits  = 12
	fileNamespace = "6"
	userAgent     = "Herboscope/1.0 (plant catalog image search)"
)

// WikimediaClient searches Wikimedia Commons for images.
type WikimediaClient struct {
	endpoint      string
	client        *http.Client
	log           *zap.Logger
	SearchTimeout time.Duration
	DetailTimeout time.Duration
}

// NewWikimediaClient creates a client for a MediaWiki api.php endpoint.
func NewWikimediaClient(endpoint string, client *http.Client, log *zap.Logger) *WikimediaClient {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WikimediaClient{
		endpoint:      endpoint,
		client:        client,
		log:           log,
		SearchTimeout: 15 * time.Second,
		DetailTimeout: 10 * time.Second,
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			ImageInfo []struct {
				URL    string `json:"url"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
				MIME   string `json:"mime"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// SearchImages looks up file titles matching query, then fetches image
// details for the first 12 concurrently. Candidates whose detail lookup
// fails or that are not images are dropped; the search order is kept.
func (c *WikimediaClient) SearchImages(ctx context.Context, query string) ([]ImageHit, error) {
	titles, err := c.searchTitles(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(titles) > maxImageHits {
		titles = titles[:maxImageHits]
	}

	found := make([]*ImageHit, len(titles))
	var g errgroup.Group
	for i, title := range titles {
		i, title := i, title
		g.Go(func() error {
			hit, err := c.imageInfo(ctx, title)
			if err != nil {
				c.log.Warn("image detail lookup failed", zap.String("title", title), zap.Error(err))
				return nil
			}
			found[i] = hit
			return nil
		})
	}
	_ = g.Wait()

	hits := make([]ImageHit, 0, len(found))
	for _, h := range found {
		if h != nil && strings.HasPrefix(h.MIME, "image/") {
			hits = append(hits, *h)
		}
	}
	return hits, nil
}

func (c *WikimediaClient) searchTitles(ctx context.Context, query string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.SearchTimeout)
	defer cancel()

	params := url.Values{
		"action":      {"query"},
		"list":        {"search"},
		"srsearch":    {query},
		"srnamespace": {fileNamespace},
		"srlimit":     {fmt.Sprint(searchLimit)},
		"format":      {"json"},
	}
	var out searchResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "Wikimedia API error: "+se.status)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "image search failed")
	}

	titles := make([]string, 0, len(out.Query.Search))
	for _, s := range out.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

func (c *WikimediaClient) imageInfo(ctx context.Context, title string) (*ImageHit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.DetailTimeout)
	defer cancel()

	params := url.Values{
		"action": {"query"},
		"titles": {title},
		"prop":   {"imageinfo"},
		"iiprop": {"url|size|mime"},
		"format": {"json"},
	}
	var out imageInfoResponse
	if err := c.getJSON(ctx, params, &out); err != nil {
		return nil, err
	}
	for _, page := range out.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}
		info := page.ImageInfo[0]
		return &ImageHit{
			Title:  title,
			URL:    info.URL,
			Width:  info.Width,
			Height: info.Height,
			MIME:   info.MIME,
		}, nil
	}
	return nil, fmt.Errorf("no image info for %q", title)
}

// statusError is a non-2xx answer from the API.
type statusError struct {
	status string
}

func (e *statusError) Error() string {
	return "wikimedia API error: " + e.status
}

func (c *WikimediaClient) getJSON(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wikimedia response: %w", err)
	}
	return nil
}
