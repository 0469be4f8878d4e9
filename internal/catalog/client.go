package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cardhawk/internal/domain"
)

// ClientConfig holds catalog endpoints and request parameters.
type ClientConfig struct {
	// SearchURL is the search endpoint root, e.g.
	// "https://www.pricecharting.com/search-products".
	SearchURL string
	// ProductMarker is the URL path fragment that identifies a product page
	// (a search that resolves to a single item redirects to one).
	ProductMarker string
	// UserAgent is sent on every request; the catalog rejects bare clients.
	UserAgent string
}

// ProductPage is one catalog product page after parsing.
type ProductPage struct {
	URL       string
	Prices    domain.PriceTable
	ImageURL  string
	Liquidity domain.LiquidityBreakdown
}

// SearchResult is the outcome of a catalog search: either the search
// redirected straight to a single product page, or it produced candidate
// rows for the matcher to disambiguate.
type SearchResult struct {
	Product    *ProductPage
	Candidates []domain.CatalogCandidate
}

// Client is the HTTP client for the catalog collaborator.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a catalog Client with a 30-second request timeout.
func NewClient(cfg ClientConfig) *Client {
	if cfg.ProductMarker == "" {
		cfg.ProductMarker = "/game/"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsProductURL reports whether u points at a product page rather than a
// search or listing page.
func (c *Client) IsProductURL(u string) bool {
	return strings.Contains(u, c.cfg.ProductMarker)
}

// Search issues a catalog search for the given query (already "+"-joined).
// When the catalog redirects directly to a product page the result carries
// the parsed page; otherwise it carries the candidate rows.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	searchURL := fmt.Sprintf("%s?q=%s&type=prices", c.cfg.SearchURL, url.QueryEscape(query))
	// The query is pre-joined with "+" standing in for spaces; QueryEscape
	// would encode them, so restore.
	searchURL = strings.ReplaceAll(searchURL, "%2B", "+")

	doc, finalURL, err := c.getDocument(ctx, searchURL)
	if err != nil {
		return SearchResult{}, fmt.Errorf("catalog: search %q: %w", query, err)
	}

	if c.IsProductURL(finalURL) {
		return SearchResult{Product: parseProduct(doc, finalURL)}, nil
	}

	return SearchResult{Candidates: ExtractCandidateRows(doc)}, nil
}

// FetchProduct retrieves and parses a product page by URL.
func (c *Client) FetchProduct(ctx context.Context, pageURL string) (*ProductPage, error) {
	doc, finalURL, err := c.getDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch product %s: %w", pageURL, err)
	}
	return parseProduct(doc, finalURL), nil
}

func parseProduct(doc *goquery.Document, pageURL string) *ProductPage {
	return &ProductPage{
		URL:       pageURL,
		Prices:    ExtractPriceTable(doc),
		ImageURL:  ExtractImage(doc),
		Liquidity: ExtractLiquidity(doc),
	}
}

// getDocument fetches a page and returns the parsed document along with the
// final URL after redirects.
func (c *Client) getDocument(ctx context.Context, pageURL string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("parse html: %w", err)
	}

	return doc, resp.Request.URL.String(), nil
}
