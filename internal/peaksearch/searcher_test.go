package peaksearch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekapeak/peekctl/internal/api"
	"github.com/peekapeak/peekctl/internal/config"
)

// recordingFinder counts lookups and optionally parks them on a gate
// channel so tests can control response ordering
type recordingFinder struct {
	mu      sync.Mutex
	queries []string
	gates   map[string]chan []api.PeakCandidate
	err     error
	results []api.PeakCandidate
}

func (f *recordingFinder) FindNearbyPeaks(ctx context.Context, lat, lng float64, limit int, nameFilter string, maxDistance float64) ([]api.PeakCandidate, error) {
	f.mu.Lock()
	f.queries = append(f.queries, nameFilter)
	gate := f.gates[nameFilter]
	err := f.err
	results := f.results
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if gate != nil {
		return <-gate, nil
	}
	return results, nil
}

func (f *recordingFinder) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func candidate(id int, name string, distance float64) api.PeakCandidate {
	return api.PeakCandidate{
		Peak:     api.Peak{ID: id, Name: name, Elevation: 2000},
		Distance: distance,
	}
}

func newTestSearcher(finder Finder, debounce time.Duration) *Searcher {
	return New(context.Background(), finder, config.SearchConfig{
		Debounce:  debounce,
		CacheTTL:  time.Minute,
		CacheSize: 16,
		Limit:     8,
	})
}

func TestSearchRequiresLocation(t *testing.T) {
	finder := &recordingFinder{}
	s := newTestSearcher(finder, time.Millisecond)

	err := s.SetQuery("giewont")
	assert.ErrorIs(t, err, ErrNoLocation)

	_, err = s.SearchNow(context.Background(), "giewont")
	assert.ErrorIs(t, err, ErrNoLocation)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, finder.recorded(), "no lookup may be issued without a coordinate")
}

func TestDebounceCollapsesBurstIntoOneLookup(t *testing.T) {
	finder := &recordingFinder{}
	s := newTestSearcher(finder, 30*time.Millisecond)
	s.SetLocation(49.25, 19.93)

	require.NoError(t, s.SetQuery("a"))
	require.NoError(t, s.SetQuery("ab"))
	require.NoError(t, s.SetQuery("abc"))

	require.Eventually(t, func() bool {
		return len(finder.recorded()) > 0
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, []string{"abc"}, finder.recorded())
}

func TestStaleResponseNeverOverwritesNewerOne(t *testing.T) {
	older := make(chan []api.PeakCandidate, 1)
	newer := make(chan []api.PeakCandidate, 1)
	finder := &recordingFinder{gates: map[string]chan []api.PeakCandidate{
		"abc":  older,
		"abcd": newer,
	}}
	s := newTestSearcher(finder, time.Millisecond)
	s.SetLocation(49.25, 19.93)

	require.NoError(t, s.SetQuery("abc"))
	require.Eventually(t, func() bool {
		return len(finder.recorded()) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, s.SetQuery("abcd"))
	require.Eventually(t, func() bool {
		return len(finder.recorded()) == 2
	}, time.Second, time.Millisecond)

	// The newer request resolves first and is rendered
	newer <- []api.PeakCandidate{candidate(2, "Rysy", 120)}
	require.Eventually(t, func() bool {
		results, _ := s.Results()
		return len(results) == 1
	}, time.Second, time.Millisecond)

	// The superseded request resolves late; it must be discarded
	older <- []api.PeakCandidate{candidate(1, "Giewont", 80)}
	time.Sleep(30 * time.Millisecond)

	results, err := s.Results()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Rysy", results[0].Peak.Name)
}

func TestResultsSortedByDistanceThenName(t *testing.T) {
	finder := &recordingFinder{results: []api.PeakCandidate{
		candidate(3, "Swinica", 500),
		candidate(2, "Rysy", 200),
		candidate(1, "Giewont", 200),
	}}
	s := newTestSearcher(finder, time.Millisecond)
	s.SetLocation(49.25, 19.93)

	results, err := s.SearchNow(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Giewont", results[0].Peak.Name, "equal distances order by name")
	assert.Equal(t, "Rysy", results[1].Peak.Name)
	assert.Equal(t, "Swinica", results[2].Peak.Name)
}

func TestIdenticalRequestsServedFromCache(t *testing.T) {
	finder := &recordingFinder{results: []api.PeakCandidate{candidate(1, "Giewont", 80)}}
	s := newTestSearcher(finder, time.Millisecond)
	s.SetLocation(49.25, 19.93)

	_, err := s.SearchNow(context.Background(), "gie")
	require.NoError(t, err)
	_, err = s.SearchNow(context.Background(), "gie")
	require.NoError(t, err)

	assert.Len(t, finder.recorded(), 1, "a revisit within the freshness window hits the cache")
}

func TestMovedPinMissesCache(t *testing.T) {
	finder := &recordingFinder{results: []api.PeakCandidate{candidate(1, "Giewont", 80)}}
	s := newTestSearcher(finder, time.Millisecond)

	s.SetLocation(49.25, 19.93)
	_, err := s.SearchNow(context.Background(), "gie")
	require.NoError(t, err)

	s.SetLocation(49.26, 19.93)
	_, err = s.SearchNow(context.Background(), "gie")
	require.NoError(t, err)

	assert.Len(t, finder.recorded(), 2)
}

func TestToggleSelectAndDeselect(t *testing.T) {
	s := newTestSearcher(&recordingFinder{}, time.Millisecond)
	s.SetLocation(49.25, 19.93)

	peak := api.Peak{ID: 1, Name: "Giewont"}

	selected := s.Toggle(peak)
	require.NotNil(t, selected)
	assert.Equal(t, "Giewont", s.Query(), "selection adopts the peak name as query")

	selected = s.Toggle(peak)
	assert.Nil(t, selected, "re-selecting the current peak deselects it")
	assert.Empty(t, s.Query(), "deselection clears the query text")

	other := api.Peak{ID: 2, Name: "Rysy"}
	s.Toggle(peak)
	selected = s.Toggle(other)
	require.NotNil(t, selected)
	assert.Equal(t, 2, selected.ID, "selecting a different peak replaces the prior selection")
}

func TestLookupFailureKeepsSelection(t *testing.T) {
	finder := &recordingFinder{err: errors.New("backend down")}
	s := newTestSearcher(finder, time.Millisecond)
	s.SetLocation(49.25, 19.93)

	peak := api.Peak{ID: 1, Name: "Giewont"}
	s.Toggle(peak)

	_, err := s.SearchNow(context.Background(), "gie")
	require.Error(t, err)

	_, resultErr := s.Results()
	assert.Error(t, resultErr, "the failure is surfaced alongside the results")
	assert.NotNil(t, s.Selected(), "a failed lookup must not clear the selection")
}

func TestCloseIgnoresLateResponses(t *testing.T) {
	gate := make(chan []api.PeakCandidate, 1)
	finder := &recordingFinder{gates: map[string]chan []api.PeakCandidate{"gie": gate}}
	s := newTestSearcher(finder, time.Millisecond)
	s.SetLocation(49.25, 19.93)

	require.NoError(t, s.SetQuery("gie"))
	require.Eventually(t, func() bool {
		return len(finder.recorded()) == 1
	}, time.Second, time.Millisecond)

	s.Close()
	gate <- []api.PeakCandidate{candidate(1, "Giewont", 80)}
	time.Sleep(20 * time.Millisecond)

	results, err := s.Results()
	assert.NoError(t, err)
	assert.Empty(t, results, "responses arriving after close are dropped")
}
