package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"dealscout/internal/model"
)

const (
	defaultBaseURL = "https://www.ebay.co.uk/sch/i.html"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Scraper is the secondary results source: it parses the public search results
// page into raw listings when the primary API is unavailable. It fills only
// the fields the page exposes, so scraped listings never carry marketing
// prices or seller feedback.
type Scraper struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	enabled    bool
}

// New creates a scraper. enabled gates all fetching so the fallback stays off
// unless configured.
func New(enabled bool) *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
		enabled:    enabled,
	}
}

// Available reports whether the fallback source may be used.
func (s *Scraper) Available() bool {
	return s != nil && s.enabled
}

// Search fetches the results page for a query and parses its listing cards.
func (s *Scraper) Search(ctx context.Context, query string, limit int) ([]model.RawListing, error) {
	if !s.Available() {
		return nil, fmt.Errorf("scrape fallback not enabled")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s?_nkw=%s", s.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching results page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	return parseListings(doc, limit), nil
}

// parseListings walks the result cards. Cards missing a link, title, or price
// are skipped here; full invariant checking stays with the normalizer.
func parseListings(doc *goquery.Document, limit int) []model.RawListing {
	var listings []model.RawListing

	doc.Find("li.s-item, div.s-item").EachWithBreak(func(i int, card *goquery.Selection) bool {
		if limit > 0 && len(listings) >= limit {
			return false
		}

		link, _ := card.Find("a.s-item__link").Attr("href")
		title := strings.TrimSpace(card.Find(".s-item__title").Text())
		price := strings.TrimSpace(card.Find(".s-item__price").First().Text())
		if link == "" || title == "" || price == "" {
			return true
		}
		// The page pads results with a template card.
		if strings.EqualFold(title, "Shop on eBay") {
			return true
		}

		currency, amount := splitDisplayPrice(price)
		if amount == "" {
			return true
		}

		raw := model.RawListing{
			ItemID:     itemIDFromURL(link),
			Title:      title,
			ItemWebURL: link,
			Price:      &model.Money{Value: amount, Currency: currency},
		}

		if img, ok := card.Find(".s-item__image-img, .s-item__image img").Attr("src"); ok {
			raw.Image = &model.Image{ImageURL: img}
		}
		if condition := strings.TrimSpace(card.Find(".s-item__subtitle .SECONDARY_INFO").Text()); condition != "" {
			raw.Condition = condition
		}
		if original := strings.TrimSpace(card.Find(".s-item__trending-price .STRIKETHROUGH").Text()); original != "" {
			if cur, amt := splitDisplayPrice(original); amt != "" {
				raw.MarketingPrice = &model.Marketing{
					OriginalPrice: &model.Money{Value: amt, Currency: cur},
				}
			}
		}

		listings = append(listings, raw)
		return true
	})

	return listings
}

// itemIDFromURL pulls the numeric listing id from an /itm/ URL path.
func itemIDFromURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "itm" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return link
}

// splitDisplayPrice converts a display price like "£49.99" or "USD 49.99" into
// a currency code and a plain amount string.
func splitDisplayPrice(display string) (string, string) {
	display = strings.TrimSpace(display)
	// Ranged prices ("£10.00 to £20.00") use the lower bound.
	if idx := strings.Index(display, " to "); idx > 0 {
		display = display[:idx]
	}

	switch {
	case strings.HasPrefix(display, "£"):
		return "GBP", cleanAmount(strings.TrimPrefix(display, "£"))
	case strings.HasPrefix(display, "$"):
		return "USD", cleanAmount(strings.TrimPrefix(display, "$"))
	case strings.HasPrefix(display, "€"):
		return "EUR", cleanAmount(strings.TrimPrefix(display, "€"))
	}

	fields := strings.Fields(display)
	if len(fields) == 2 {
		return fields[0], cleanAmount(fields[1])
	}
	return "", ""
}

func cleanAmount(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
