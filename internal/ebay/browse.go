package ebay

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"dealscout/internal/model"
)

// Search modes. Auctions mode adds the buying-option filter; deals mode
// fetches the broader unfiltered set for downstream classification.
type SearchMode string

const (
	ModeDeals    SearchMode = "deals"
	ModeAuctions SearchMode = "auctions"
	ModeAll      SearchMode = "all"
)

const (
	apiBaseURL        = "https://api.ebay.com"
	sandboxAPIBaseURL = "https://api.sandbox.ebay.com"

	marketplaceID = "EBAY_GB"

	searchFieldGroups = "PRODUCT,COMPACT,SELLER_DETAILS,SHIPPING_DETAILS,TAXONOMY_DETAILS,WATCH_COUNT_DETAILS"
)

// ErrAuth marks failures acquiring or refreshing the bearer token, so callers
// can show an authentication-specific message.
var ErrAuth = errors.New("marketplace authentication failed")

// Provider is the upstream search surface the orchestrator depends on, so
// tests can swap in a mock.
type Provider interface {
	Available() bool
	Search(ctx context.Context, query string, limit, offset int, mode SearchMode) (*model.SearchEnvelope, error)
	DealItems(ctx context.Context, categoryIDs string, limit, offset int) (*model.DealEnvelope, error)
}

// Client talks to the Browse and Deal APIs using a shared token source.
type Client struct {
	tokens      *TokenSource
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates an API client. sandbox switches every endpoint to the
// sandbox environment.
func NewClient(tokens *TokenSource, sandbox bool) *Client {
	base := apiBaseURL
	if sandbox {
		base = sandboxAPIBaseURL
	}
	return &Client{
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     base,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Available reports whether the client holds usable credentials.
func (c *Client) Available() bool {
	return c != nil && c.tokens != nil && c.tokens.clientID != ""
}

// Search calls the Browse item_summary search and decodes the paginated
// envelope. Per-item and envelope-level errors survive into the result; the
// caller decides how to surface them.
func (c *Client) Search(ctx context.Context, query string, limit, offset int, mode SearchMode) (*model.SearchEnvelope, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("fieldgroups", searchFieldGroups)
	if mode == ModeAuctions {
		params.Set("filter", "buyingOptions:{AUCTION}")
	}

	endpoint := fmt.Sprintf("%s/buy/browse/v1/item_summary/search?%s", c.baseURL, params.Encode())

	var envelope model.SearchEnvelope
	if err := c.getJSON(ctx, endpoint, "search", &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// DealItems calls the Deal API, the homepage fallback source when a themed
// search comes back empty.
func (c *Client) DealItems(ctx context.Context, categoryIDs string, limit, offset int) (*model.DealEnvelope, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if categoryIDs != "" {
		params.Set("category_ids", categoryIDs)
	}

	endpoint := fmt.Sprintf("%s/buy/deal/v1/deal_item?%s", c.baseURL, params.Encode())

	var envelope model.DealEnvelope
	if err := c.getJSON(ctx, endpoint, "deal_item", &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// Item fetches a single listing's full detail record by id.
func (c *Client) Item(ctx context.Context, itemID string) (*model.RawListing, error) {
	if itemID == "" {
		return nil, fmt.Errorf("empty item id")
	}
	endpoint := fmt.Sprintf("%s/buy/browse/v1/item/%s?fieldgroups=%s",
		c.baseURL, url.PathEscape(itemID), searchFieldGroups)

	var raw model.RawListing
	if err := c.getJSON(ctx, endpoint, "item", &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, operation string, target interface{}) error {
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", marketplaceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	logRateLimitHeaders(resp, operation)

	body, err := decodeBody(resp)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", operation, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s request returned status %d: %s", operation, resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("parsing %s response: %w", operation, err)
	}
	return nil
}

// decodeBody unwraps the negotiated content encoding.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}

var rateLimitHeaders = []string{
	"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After",
}

// logRateLimitHeaders surfaces quota headers for diagnostics. Log-only; quota
// handling stays with the rate limiter.
func logRateLimitHeaders(resp *http.Response, operation string) {
	info := ""
	for _, name := range rateLimitHeaders {
		if v := resp.Header.Get(name); v != "" {
			info += name + ": " + v + "; "
		}
	}
	if info != "" {
		log.Printf("[ebay:%s] rate limit info: %s", operation, info)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
