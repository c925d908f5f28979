package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/normalize"
)

const (
	authorResultLimit    = 15
	similarResultLimit   = 10
	publisherResultLimit = 10
	languageResultLimit  = 10
)

// SearchByAuthor finds more volumes by an author, best matches first.
func (c *Client) SearchByAuthor(ctx context.Context, author string) []domain.RecommendationCandidate {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("inauthor:%q", normalize.Query(author)))
	params.Set("maxResults", fmt.Sprintf("%d", authorResultLimit))
	params.Set("orderBy", "relevance")
	return c.search(ctx, params)
}

// SearchSimilar finds volumes similar to a given title and author. The query
// is the plain combined text; quoting either term narrows the search to
// exact phrase matches and starves the strategy of results.
func (c *Client) SearchSimilar(ctx context.Context, title, author string) []domain.RecommendationCandidate {
	params := url.Values{}
	params.Set("q", normalize.Query(title)+" "+normalize.Query(author))
	params.Set("maxResults", fmt.Sprintf("%d", similarResultLimit))
	return c.search(ctx, params)
}

// SearchByPublisher finds recent volumes from a publisher.
func (c *Client) SearchByPublisher(ctx context.Context, publisher string) []domain.RecommendationCandidate {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("inpublisher:%q", normalize.Query(publisher)))
	params.Set("maxResults", fmt.Sprintf("%d", publisherResultLimit))
	params.Set("orderBy", "newest")
	return c.search(ctx, params)
}

// SearchByLanguage finds popular volumes in a given language.
func (c *Client) SearchByLanguage(ctx context.Context, language string) []domain.RecommendationCandidate {
	params := url.Values{}
	params.Set("q", "")
	params.Set("langRestrict", language)
	params.Set("maxResults", fmt.Sprintf("%d", languageResultLimit))
	return c.search(ctx, params)
}

// search executes a volume query. Any failure (missing API key, transport
// error, bad status, malformed body) logs a warning and returns an empty
// slice so callers never see catalog errors.
func (c *Client) search(ctx context.Context, params url.Values) []domain.RecommendationCandidate {
	if c.apiKey == "" {
		c.logger.Warn("catalog search skipped, no API key configured")
		return nil
	}

	if err := c.wait(ctx); err != nil {
		c.logger.Warn("catalog rate limit wait failed", "error", err)
		return nil
	}

	params.Set("key", c.apiKey)
	searchURL := c.baseURL + "/volumes?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		c.logger.Warn("catalog request build failed", "error", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog search failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("catalog search returned non-OK status",
			"status", resp.StatusCode,
			"query", params.Get("q"),
		)
		return nil
	}

	var volumesResp volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumesResp); err != nil {
		c.logger.Warn("catalog response parse failed", "error", err)
		return nil
	}

	candidates := make([]domain.RecommendationCandidate, 0, len(volumesResp.Items))
	for i := range volumesResp.Items {
		candidates = append(candidates, normalizeVolume(&volumesResp.Items[i]))
	}
	return candidates
}

// normalizeVolume converts a raw catalog volume into a recommendation
// candidate with display-safe defaults.
func normalizeVolume(v *volume) domain.RecommendationCandidate {
	info := &v.VolumeInfo

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = "Unknown Title"
	}

	authors := info.Authors
	if len(authors) == 0 {
		authors = []string{"Unknown Author"}
	}

	thumbnail := info.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = info.ImageLinks.SmallThumbnail
	}
	// Catalog thumbnails come back over plain http.
	thumbnail = strings.Replace(thumbnail, "http://", "https://", 1)

	return domain.RecommendationCandidate{
		CatalogID:     v.ID,
		Title:         title,
		Authors:       authors,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   htmlToMarkdown(info.Description),
		ThumbnailURL:  thumbnail,
		Language:      info.Language,
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
	}
}
