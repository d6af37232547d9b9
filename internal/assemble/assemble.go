package assemble

import (
	"sync"

	"dealscout/internal/model"
)

// DealSet merges paginated fetches into one working set with first-occurrence
// dedup, and tracks how much of the set is revealed to the caller versus held
// back for "load more".
//
// A monotonic generation counter guards against stale responses: Reset bumps
// the generation, and MergePage calls carrying an older generation are
// discarded. Callers capture the generation before starting a fetch sequence.
type DealSet struct {
	mu          sync.Mutex
	generation  uint64
	items       []model.Deal
	seen        map[string]struct{}
	revealed    int
	serverTotal int
}

// NewDealSet creates an empty working set.
func NewDealSet() *DealSet {
	return &DealSet{seen: make(map[string]struct{})}
}

// Generation returns the current fetch generation.
func (s *DealSet) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Reset clears the working set for a new search or view switch and returns the
// new generation.
func (s *DealSet) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.items = nil
	s.seen = make(map[string]struct{})
	s.revealed = 0
	s.serverTotal = 0
	return s.generation
}

// MergePage folds one page of results into the set. Items whose id was already
// seen keep their first-seen field values. serverTotal is the upstream's
// reported total for the query. Pages from a superseded generation are dropped
// and MergePage reports false.
func (s *DealSet) MergePage(generation uint64, page []model.Deal, serverTotal int) bool {
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

// Reveal exposes up to n more already-fetched items and returns the full
// revealed window. This is the in-memory "load more" that costs no network
// round trip.
func (s *DealSet) Reveal(n int) []model.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revealed += n
	if s.revealed > len(s.items) {
		s.revealed = len(s.items)
	}
	return append([]model.Deal(nil), s.items[:s.revealed]...)
}

// Displayed returns the currently revealed window.
func (s *DealSet) Displayed() []model.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Deal(nil), s.items[:s.revealed]...)
}

// All returns every fetched item in merge order.
func (s *DealSet) All() []model.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Deal(nil), s.items...)
}

// Fetched reports the number of distinct items fetched so far.
func (s *DealSet) Fetched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ServerTotal returns the upstream's reported total for the current query.
func (s *DealSet) ServerTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverTotal
}

// HasMore reports whether the upstream holds items beyond what was fetched.
func (s *DealSet) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) < s.serverTotal
}

// HasUndisplayed reports whether already-fetched items remain hidden, i.e. a
// Reveal would grow the window without a network fetch.
func (s *DealSet) HasUndisplayed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealed < len(s.items)
}
