// Package peaksearch implements the client side of nearby-peak lookup:
// debounced search-as-you-type, a short-lived response cache, selection
// toggling and the stale-response guard.
package peaksearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/peekapeak/peekctl/internal/api"
	"github.com/peekapeak/peekctl/internal/config"
	"github.com/peekapeak/peekctl/internal/logger"
)

// ErrNoLocation is returned when a search is attempted without a
// coordinate; the control is disabled until the draft has one.
var ErrNoLocation = errors.New("peak search requires a location")

// Finder is the backend lookup the searcher depends on
type Finder interface {
	FindNearbyPeaks(ctx context.Context, lat, lng float64, limit int, nameFilter string, maxDistance float64) ([]api.PeakCandidate, error)
}

type cacheEntry struct {
	candidates []api.PeakCandidate
	storedAt   time.Time
}

// Searcher issues debounced nearby-peak lookups for one upload session.
// Only the response matching the most recent request generation is ever
// applied, so a superseded lookup can never overwrite newer results.
type Searcher struct {
	ctx      context.Context
	finder   Finder
	debounce time.Duration
	ttl      time.Duration
	limit    int
	cache    *lru.Cache[string, cacheEntry]

	mu       sync.Mutex
	lat, lng *float64
	query    string
	timer    *time.Timer
	gen      uint64
	results  []api.PeakCandidate
	err      error
	selected *api.Peak
	closed   bool

	onUpdate func()
}

// New creates a Searcher. ctx bounds every lookup the searcher issues;
// cancelling it (dialog close) orphans any in-flight request.
func New(ctx context.Context, finder Finder, cfg config.SearchConfig) *Searcher {
	size := cfg.CacheSize
	if size <= 0 {
		size = 64
	}
	cache, _ := lru.New[string, cacheEntry](size)

	limit := cfg.Limit
	if limit <= 0 {
		limit = 8
	}

	return &Searcher{
		ctx:      ctx,
		finder:   finder,
		debounce: cfg.Debounce,
		ttl:      cfg.CacheTTL,
		limit:    limit,
		cache:    cache,
	}
}

// OnUpdate registers a callback fired after results or errors change
func (s *Searcher) OnUpdate(fn func()) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// SetLocation moves the search origin. The response cache is keyed by
// coordinate so no explicit invalidation is needed.
func (s *Searcher) SetLocation(lat, lng float64) {
	s.mu.Lock()
	s.lat, s.lng = &lat, &lng
	s.mu.Unlock()
}

// ClearLocation removes the search origin, disabling lookups
func (s *Searcher) ClearLocation() {
	s.mu.Lock()
	s.lat, s.lng = nil, nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

// SetQuery updates the typed filter and schedules a debounced lookup.
// Rapid successive calls within the debounce window collapse into a
// single request for the latest text.
func (s *Searcher) SetQuery(query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if s.lat == nil || s.lng == nil {
		return ErrNoLocation
	}

	s.query = query
	s.gen++
	gen := s.gen

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.lookup(gen)
	})
	return nil
}

// SearchNow performs an immediate lookup, bypassing the debounce but
// sharing the cache and the stale-response guard. Used by non-interactive
// callers.
func (s *Searcher) SearchNow(ctx context.Context, query string) ([]api.PeakCandidate, error) {
	s.mu.Lock()
	if s.lat == nil || s.lng == nil {
		s.mu.Unlock()
		return nil, ErrNoLocation
	}
	lat, lng := *s.lat, *s.lng
	s.query = query
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	candidates, err := s.fetch(ctx, lat, lng, query)
	s.apply(gen, candidates, err)
	return candidates, err
}

// lookup runs after the debounce fires. gen identifies the request; a
// response belonging to an older generation is discarded.
func (s *Searcher) lookup(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.lat == nil || s.lng == nil {
		s.mu.Unlock()
		return
	}
	lat, lng := *s.lat, *s.lng
	query := s.query
	s.mu.Unlock()

	candidates, err := s.fetch(s.ctx, lat, lng, query)
	s.apply(gen, candidates, err)
}

// fetch resolves a request through the cache or the backend
func (s *Searcher) fetch(ctx context.Context, lat, lng float64, query string) ([]api.PeakCandidate, error) {
	key := fmt.Sprintf("%.6f|%.6f|%s|%d", lat, lng, strings.TrimSpace(query), s.limit)

	if entry, ok := s.cache.Get(key); ok {
		if time.Since(entry.storedAt) < s.ttl {
			logger.Debug("Peak search cache hit for %s", key)
			return entry.candidates, nil
		}
		s.cache.Remove(key)
	}

	candidates, err := s.finder.FindNearbyPeaks(ctx, lat, lng, s.limit, strings.TrimSpace(query), 0)
	if err != nil {
		return nil, err
	}

	api.SortCandidates(candidates)
	s.cache.Add(key, cacheEntry{candidates: candidates, storedAt: time.Now()})
	return candidates, nil
}

// apply publishes a response if its generation is still the latest
func (s *Searcher) apply(gen uint64, candidates []api.PeakCandidate, err error) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.results = candidates
	s.err = err
	fn := s.onUpdate
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Results returns the latest published candidates. A lookup failure is
// reported alongside empty results and does not clear the selection.
func (s *Searcher) Results() ([]api.PeakCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results, s.err
}

// Selected returns the currently selected peak, or nil
func (s *Searcher) Selected() *api.Peak {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Toggle selects a peak, or deselects it when it is already the current
// selection. Deselecting clears the typed query; selecting adopts the
// peak's name as the query text.
func (s *Searcher) Toggle(peak api.Peak) *api.Peak {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected != nil && s.selected.ID == peak.ID {
		s.selected = nil
		s.query = ""
		return nil
	}

	p := peak
	s.selected = &p
	s.query = peak.Name
	return s.selected
}

// ClearSelection drops the selected peak without touching the query
func (s *Searcher) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// Query returns the current filter text
func (s *Searcher) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Close tears the searcher down; late responses are ignored from here on
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.results, s.err, s.selected = nil, nil, nil
	s.query = ""
}
