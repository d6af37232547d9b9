package dealfeed

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"dealscout/internal/cache"
	"dealscout/internal/model"
)

const (
	homeFetchSize = 50

	homeDealsKey    = "home|deals"
	homeAuctionsKey = "home|auctions"

	titleTopDeals         = "Today's Top Deals"
	titleTrendingAuctions = "Trending Auctions"
)

// HomeDeals is a cached homepage deal set with its display title.
type HomeDeals struct {
	Title   string
	Deals   []model.Deal
	Total   int
	HasMore bool
	Error   string
}

// HomeAuctions is the auction-view homepage counterpart.
type HomeAuctions struct {
	Title    string
	Auctions []model.Auction
	Total    int
	HasMore  bool
	Error    string
}

// Homepage serves themed homepage results with a per-view in-memory cache.
// Cached results live for the session and are unconditionally treated as
// fresh; Invalidate or the cron refresh replaces them.
type Homepage struct {
	feed  *Service
	cache *cache.MemoryCache
	cron  *cron.Cron
}

// NewHomepage creates the homepage layer over a feed service.
func NewHomepage(feed *Service) *Homepage {
	return &Homepage{
		feed:  feed,
		cache: cache.NewMemoryCache(4, 0), // session cache, no TTL
	}
}

// Deals returns the homepage deal view, from cache when possible. A themed
// search that comes back empty without an error falls back to the Deal API
// marketplace deals, sequentially.
func (h *Homepage) Deals(ctx context.Context) HomeDeals {
	if cached, ok := h.cache.Get(homeDealsKey); ok {
		return cached.(HomeDeals)
	}

	theme := h.feed.pickTheme()
	result := h.feed.FetchDeals(ctx, theme, homeFetchSize, 0)
	title := themedTitle("Deals", theme)

	if len(result.Deals) == 0 && result.Error == "" {
		log.Printf("[homepage] theme %q yielded no deals, falling back to marketplace deals", theme)
		result = h.marketplaceDeals(ctx)
		title = titleTopDeals
	}
	if len(result.Deals) == 0 {
		title = titleTopDeals
	}

	ranked := h.feed.RankAndFilterDeals(ctx, result.Deals, "")

	home := HomeDeals{
		Title:   title,
		Deals:   ranked,
		Total:   result.Total,
		HasMore: len(result.Deals) < result.Total,
		Error:   result.Error,
	}
	if result.Error == "" {
		h.cache.Set(homeDealsKey, home, 0)
	}
	return home
}

// Auctions returns the homepage auction view. An empty themed result falls
// back to a general auction search.
func (h *Homepage) Auctions(ctx context.Context) HomeAuctions {
	if cached, ok := h.cache.Get(homeAuctionsKey); ok {
		return cached.(HomeAuctions)
	}

	theme := h.feed.pickTheme()
	result := h.feed.FetchAuctions(ctx, theme, homeFetchSize, 0)
	title := themedTitle("Auctions", theme)

	if len(result.Auctions) == 0 && result.Error == "" && theme != "" {
		log.Printf("[homepage] theme %q yielded no auctions, falling back to general auctions", theme)
		result = h.feed.FetchAuctions(ctx, "", homeFetchSize, 0)
		title = titleTrendingAuctions
	}
	if len(result.Auctions) == 0 {
		title = titleTrendingAuctions
	}

	home := HomeAuctions{
		Title:    title,
		Auctions: h.feed.RankAuctions(result.Auctions),
		Total:    result.Total,
		HasMore:  len(result.Auctions) < result.Total,
		Error:    result.Error,
	}
	if result.Error == "" {
		h.cache.Set(homeAuctionsKey, home, 0)
	}
	return home
}

// Invalidate drops both cached views.
func (h *Homepage) Invalidate() {
	h.cache.Clear()
}

// StartRefresh schedules a periodic cache refresh using a cron expression,
// e.g. "@every 1h". It returns an error for an unparseable expression.
func (h *Homepage) StartRefresh(schedule string) error {
	if schedule == "" {
		return nil
	}
	h.cron = cron.New()
	_, err := h.cron.AddFunc(schedule, func() {
		log.Printf("[homepage] scheduled refresh")
		h.Invalidate()
		ctx := context.Background()
		h.Deals(ctx)
		h.Auctions(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	h.cron.Start()
	return nil
}

// StopRefresh halts the scheduled refresh, if any.
func (h *Homepage) StopRefresh() {
	if h.cron != nil {
		h.cron.Stop()
	}
}

// marketplaceDeals pulls from the Deal API fallback and normalizes.
func (h *Homepage) marketplaceDeals(ctx context.Context) DealsResult {
	envelope, err := h.feed.provider.DealItems(ctx, "", homeFetchSize, 0)
	if err != nil {
		log.Printf("[homepage] marketplace deals fallback failed: %v", err)
		return DealsResult{Error: userMessage(err)}
	}
	return DealsResult{
		Deals: h.feed.norm.Deals(envelope.DealItems),
		Total: envelope.Total,
	}
}

func themedTitle(kind, theme string) string {
	if theme == "" {
		if kind == "Auctions" {
			return titleTrendingAuctions
		}
		return titleTopDeals
	}
	return fmt.Sprintf("%s for %q", kind, capitalize(theme))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
