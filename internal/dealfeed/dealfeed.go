package dealfeed

import (
	"context"
	"errors"
	"log"
	"math/rand"

	"dealscout/internal/dealcheck"
	"dealscout/internal/ebay"
	"dealscout/internal/model"
	"dealscout/internal/normalize"
	"dealscout/internal/rank"
	"dealscout/internal/ranker"
	"dealscout/internal/scrape"
)

// User-facing error strings. Detailed diagnostics go to logs only; the user
// sees a generic retry-oriented message.
const (
	msgAuthFailed    = "Authentication with the marketplace failed. Please try again later."
	msgSearchFailed  = "The marketplace returned an error while searching for items. Please try again."
	msgNetworkFailed = "A network error occurred while fetching results. Please check your connection."
)

// Themes rotated through for homepage fetches when no user query exists.
var homepageThemes = []string{
	"laptop", "camera", "headphones", "smart watch", "gaming console",
	"kitchen appliance", "toys", "fashion accessories", "sports equipment", "home decor",
}

// DealsResult is the deal-view response pair: items plus an optional
// user-facing error string. Errors never propagate as panics or raw errors
// past this boundary.
type DealsResult struct {
	Deals []model.Deal
	Total int
	Error string
}

// AuctionsResult is the auction-view counterpart.
type AuctionsResult struct {
	Auctions []model.Auction
	Total    int
	Error    string
}

// Service is the aggregation core: fetch, normalize, filter, rank, and merge.
type Service struct {
	provider ebay.Provider
	scraper  *scrape.Scraper
	norm     *normalize.Normalizer
	filter   *dealcheck.Filter
	ranksvc  ranker.Service

	pickTheme func() string
}

// Options configures optional collaborators.
type Options struct {
	Scraper     *scrape.Scraper
	Ranker      ranker.Service
	FilterRules *dealcheck.Config
}

// New creates a feed service over the given upstream provider.
func New(provider ebay.Provider, opts Options) *Service {
	ranksvc := opts.Ranker
	// A nil *ranker.Client means no endpoint is configured; treat it the
	// same as no service at all rather than logging a failure per call.
	if c, ok := ranksvc.(*ranker.Client); ok && c == nil {
		ranksvc = nil
	}
	return &Service{
		provider: provider,
		scraper:  opts.Scraper,
		norm:     &normalize.Normalizer{Verbose: true},
		filter:   dealcheck.New(opts.FilterRules),
		ranksvc:  ranksvc,
		pickTheme: func() string {
			return homepageThemes[rand.Intn(len(homepageThemes))]
		},
	}
}

// FetchDeals returns one page of fixed-price deals for a query. Raw items
// flagged as auctions are never classified as deals, regardless of search
// mode.
func (s *Service) FetchDeals(ctx context.Context, query string, limit, offset int) DealsResult {
	envelope, err := s.provider.Search(ctx, query, limit, offset, ebay.ModeDeals)
	if err != nil {
		log.Printf("[dealfeed] deal search %q failed: %v", query, err)
		if s.scraper.Available() {
			return s.scrapeDeals(ctx, query, limit)
		}
		return DealsResult{Error: userMessage(err)}
	}

	fixed := make([]model.RawListing, 0, len(envelope.ItemSummaries))
	for i := range envelope.ItemSummaries {
		if envelope.ItemSummaries[i].IsAuction() {
			continue
		}
		fixed = append(fixed, envelope.ItemSummaries[i])
	}

	result := DealsResult{
		Deals: s.norm.Deals(fixed),
		Total: envelope.Total,
	}
	if len(envelope.Errors) > 0 && len(result.Deals) == 0 {
		log.Printf("[dealfeed] search %q returned %d upstream errors", query, len(envelope.Errors))
		result.Error = msgSearchFailed
	}
	return result
}

// FetchAuctions returns one page of timed auctions for a query.
func (s *Service) FetchAuctions(ctx context.Context, query string, limit, offset int) AuctionsResult {
	envelope, err := s.provider.Search(ctx, query, limit, offset, ebay.ModeAuctions)
	if err != nil {
		log.Printf("[dealfeed] auction search %q failed: %v", query, err)
		return AuctionsResult{Error: userMessage(err)}
	}

	result := AuctionsResult{
		Auctions: s.norm.Auctions(envelope.ItemSummaries),
		Total:    envelope.Total,
	}
	if len(envelope.Errors) > 0 && len(result.Auctions) == 0 {
		result.Error = msgSearchFailed
	}
	return result
}

// RankAndFilterDeals runs the deterministic predicate pipeline and ranking
// policy, then the optional external ranking service as a post-filter. The
// external service is untrusted: on any failure the deterministic ordering
// stands.
func (s *Service) RankAndFilterDeals(ctx context.Context, deals []model.Deal, userQuery string) []model.Deal {
	kept := s.filter.Apply(deals, userQuery)
	rank.Deals(kept)
	return ranker.Apply(ctx, s.ranksvc, kept, userQuery)
}

// RankAuctions orders auctions by the auction policy: soonest-ending first.
func (s *Service) RankAuctions(auctions []model.Auction) []model.Auction {
	rank.Auctions(auctions)
	return auctions
}

// scrapeDeals serves a query from the HTML fallback source when the API is
// down. Scraped listings go through the same normalization and are already
// fixed-price only.
func (s *Service) scrapeDeals(ctx context.Context, query string, limit int) DealsResult {
	raws, err := s.scraper.Search(ctx, query, limit)
	if err != nil {
		log.Printf("[dealfeed] scrape fallback for %q failed: %v", query, err)
		return DealsResult{Error: msgNetworkFailed}
	}
	deals := s.norm.Deals(raws)
	return DealsResult{Deals: deals, Total: len(deals)}
}

// userMessage maps an internal error to the generic string shown to users.
func userMessage(err error) string {
	if errors.Is(err, ebay.ErrAuth) {
		return msgAuthFailed
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return msgNetworkFailed
	}
	return msgSearchFailed
}
