package dashboard

import (
	"context"
	"sync"

	"github.com/Shuvo-2525/duedateuk/internal/registry"
)

// Detail is the outcome of a detail fetch for the selected company.
type Detail struct {
	Number  string
	Profile registry.Profile
	Raw     map[string]any
	Err     error
}

// DetailFetcher performs a full registry lookup.
type DetailFetcher interface {
	LookupFull(ctx context.Context, number string) (registry.Profile, map[string]any, error)
}

// Selector serializes detail fetches for the detail view. Each Select bumps
// a generation counter; a completion carrying a stale generation is dropped,
// so a slow earlier fetch can never overwrite a later selection. In-flight
// HTTP is not cancelled, only its result is ignored.
type Selector struct {
	fetch DetailFetcher

	mu      sync.Mutex
	gen     uint64
	results chan Detail
}

// NewSelector returns a new Selector.
func NewSelector(fetch DetailFetcher) *Selector {
	return &Selector{fetch: fetch, results: make(chan Detail, 1)}
}

// Results delivers the outcome of the most recent selection. An unread
// result is replaced when a newer one completes.
func (s *Selector) Results() <-chan Detail {
	return s.results
}

// Select starts a detail fetch for the company number.
func (s *Selector) Select(ctx context.Context, number string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	go func() {
		p, raw, err := s.fetch.LookupFull(ctx, number)
		s.complete(gen, Detail{Number: number, Profile: p, Raw: raw, Err: err})
	}()
}

// Clear invalidates the current selection; any still-running fetch is
// discarded on completion. Used when the detail dialog closes.
func (s *Selector) Clear() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

func (s *Selector) complete(gen uint64, d Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	// Replace an unread earlier result; sends happen only under mu, so
	// after the drain this cannot block.
	select {
	case <-s.results:
	default:
	}
	s.results <- d
}
