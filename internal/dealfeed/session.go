package dealfeed

import (
	"context"

	"dealscout/internal/assemble"
	"dealscout/internal/model"
)

// Session tracks one browse sequence: the merged working sets for both views,
// their reveal windows, and the generation guard that discards fetches
// superseded by a newer search.
//
// Fetching and revealing are decoupled: pages come in fetchSize chunks while
// the visible window grows by revealStep, so most "load more" calls are served
// from already-fetched items without a network hop.
type Session struct {
	feed       *Service
	query      string
	fetchSize  int
	revealStep int
	deals      *assemble.DealSet
	auctions   *assemble.AuctionSet
}

// NewSession creates a browse session over the feed. revealStep is how many
// items each MoreDeals/MoreAuctions call adds to the visible window.
func NewSession(feed *Service, revealStep int) *Session {
	if revealStep <= 0 {
		revealStep = 10
	}
	fetchSize := homeFetchSize
	if revealStep > fetchSize {
		fetchSize = revealStep
	}
	return &Session{
		feed:       feed,
		fetchSize:  fetchSize,
		revealStep: revealStep,
		deals:      assemble.NewDealSet(),
		auctions:   assemble.NewAuctionSet(),
	}
}

// Search starts a new sequence for query. Both working sets are cleared and
// results from fetches still in flight for the previous query are dropped.
func (s *Session) Search(query string) {
	s.query = query
	s.deals.Reset()
	s.auctions.Reset()
}

// MoreDeals grows the deal view by one step. Already-fetched hidden items are
// revealed without a network call; otherwise the next upstream page is fetched
// and merged. The returned window is the full revealed set, filtered and
// ranked.
func (s *Session) MoreDeals(ctx context.Context) DealsResult {
	if !s.deals.HasUndisplayed() && (s.deals.Fetched() == 0 || s.deals.HasMore()) {
		generation := s.deals.Generation()
		result := s.feed.FetchDeals(ctx, s.query, s.fetchSize, s.deals.Fetched())
		if result.Error != "" {
			return result
		}
		s.deals.MergePage(generation, result.Deals, result.Total)
	}

	window := s.deals.Reveal(s.revealStep)
	return DealsResult{
		Deals: s.feed.RankAndFilterDeals(ctx, window, s.query),
		Total: s.deals.ServerTotal(),
	}
}

// MoreAuctions grows the auction view by one step with the same reveal-first
// semantics.
func (s *Session) MoreAuctions(ctx context.Context) AuctionsResult {
	if !s.auctions.HasUndisplayed() && (s.auctions.Fetched() == 0 || s.auctions.HasMore()) {
		generation := s.auctions.Generation()
		result := s.feed.FetchAuctions(ctx, s.query, s.fetchSize, s.auctions.Fetched())
		if result.Error != "" {
			return result
		}
		s.auctions.MergePage(generation, result.Auctions, result.Total)
	}

	window := s.auctions.Reveal(s.revealStep)
	return AuctionsResult{
		Auctions: s.feed.RankAuctions(window),
		Total:    s.auctions.ServerTotal(),
	}
}

// HasMoreDeals reports whether another MoreDeals call can grow the view,
// either from hidden fetched items or from the upstream.
func (s *Session) HasMoreDeals() bool {
	return s.deals.HasUndisplayed() || s.deals.HasMore()
}

// HasMoreAuctions is the auction-view counterpart.
func (s *Session) HasMoreAuctions() bool {
	return s.auctions.HasUndisplayed() || s.auctions.HasMore()
}

// DisplayedDeals returns the current revealed deal window without growing it.
func (s *Session) DisplayedDeals() []model.Deal {
	return s.deals.Displayed()
}
