// Package marketplace implements the feed collaborator: a REST client for
// the marketplace's index-query API, mapping API assets to domain listings.
package marketplace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"cardhawk/internal/domain"
)

var pageParam = regexp.MustCompile(`page=\d+&`)

// ClientConfig holds feed endpoints and request parameters.
type ClientConfig struct {
	// StorefrontURL is the browse URL whose filter parameters define which
	// listings the run covers; it is converted into index-query API calls.
	StorefrontURL string
	// QueryURL is the index-query API root, e.g.
	// "https://api.courtyard.io/index/query".
	QueryURL string
	// AssetBaseURL is the public asset page root used to build listing URLs
	// from proof-of-integrity identifiers.
	AssetBaseURL string
	// UserAgent is sent on every request.
	UserAgent string
}

// Client is the HTTP client for the marketplace feed.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a feed Client with a 30-second request timeout.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IndexQueryURL converts the configured storefront URL into an index-query
// API URL for the given window: the filter parameters after the page
// parameter carry over, paging and sort are appended.
func (c *Client) IndexQueryURL(offset, limit int) (string, error) {
	if c.cfg.StorefrontURL == "" {
		return fmt.Sprintf("%s?offset=%d&limit=%d&sortBy=listingDate%%3Adesc",
			c.cfg.QueryURL, offset, limit), nil
	}

	marker := pageParam.FindString(c.cfg.StorefrontURL)
	if marker == "" {
		return "", fmt.Errorf("marketplace: storefront url %q has no page parameter", c.cfg.StorefrontURL)
	}

	_, params, _ := strings.Cut(c.cfg.StorefrontURL, marker)
	return fmt.Sprintf("%s?%s&offset=%d&limit=%d&sortBy=listingDate%%3Adesc",
		c.cfg.QueryURL, params, offset, limit), nil
}

// FetchPage retrieves one page of listings. The raw response body is kept on
// the page for snapshot archival.
func (c *Client) FetchPage(ctx context.Context, offset, limit int) (domain.FeedPage, error) {
	queryURL, err := c.IndexQueryURL(offset, limit)
	if err != nil {
		return domain.FeedPage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return domain.FeedPage{}, fmt.Errorf("marketplace: create request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.FeedPage{}, fmt.Errorf("marketplace: fetch page offset %d: %w", offset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.FeedPage{}, fmt.Errorf("marketplace: fetch page offset %d: unexpected status %d", offset, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.FeedPage{}, fmt.Errorf("marketplace: read page offset %d: %w", offset, err)
	}

	return DecodePage(body)
}

// ListingURL builds the public listing URL from a proof-of-integrity
// identifier.
func (c *Client) ListingURL(proofOfIntegrity string) string {
	return strings.TrimRight(c.cfg.AssetBaseURL, "/") + "/" + proofOfIntegrity
}
