package assemble

import (
	"sync"

	"dealscout/internal/model"
)

// AuctionSet is the auction-view counterpart of DealSet with the same merge,
// dedup, reveal, and generation semantics.
type AuctionSet struct {
	mu          sync.Mutex
	generation  uint64
	items       []model.Auction
	seen        map[string]struct{}
	revealed    int
	serverTotal int
}

// NewAuctionSet creates an empty working set.
func NewAuctionSet() *AuctionSet {
	return &AuctionSet{seen: make(map[string]struct{})}
}

// Generation returns the current fetch generation.
func (s *AuctionSet) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Reset clears the set and starts a new generation.
func (s *AuctionSet) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.items = nil
	s.seen = make(map[string]struct{})
	s.revealed = 0
	s.serverTotal = 0
	return s.generation
}

// MergePage folds one page into the set unless its generation is stale.
func (s *AuctionSet) MergePage(generation uint64, page []model.Auction, serverTotal int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	for i := range page {
		if _, dup := s.seen[page[i].ID]; dup {
			continue
		}
		s.seen[page[i].ID] = struct{}{}
		s.items = append(s.items, page[i])
	}
	s.serverTotal = serverTotal
	return true
}

// Reveal exposes up to n more fetched items and returns the revealed window.
func (s *AuctionSet) Reveal(n int) []model.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revealed += n
	if s.revealed > len(s.items) {
		s.revealed = len(s.items)
	}
	return append([]model.Auction(nil), s.items[:s.revealed]...)
}

// All returns every fetched auction in merge order.
func (s *AuctionSet) All() []model.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Auction(nil), s.items...)
}

// Fetched reports the number of distinct auctions fetched so far.
func (s *AuctionSet) Fetched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ServerTotal returns the upstream's reported total for the current query.
func (s *AuctionSet) ServerTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverTotal
}

// HasMore reports whether the upstream holds more auctions than were fetched.
func (s *AuctionSet) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) < s.serverTotal
}

// HasUndisplayed reports whether fetched auctions remain hidden.
func (s *AuctionSet) HasUndisplayed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed < len(s.items)
}
