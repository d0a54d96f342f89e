package discovery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbite/nearbite/internal/resilience"
	"github.com/nearbite/nearbite/pkg/navermap"
)

const (
	userLat = 37.5613
	userLon = 126.9940
)

type fakeProvider struct {
	pages     [][]navermap.Place
	pagesErr  error
	reviews   map[string][]navermap.Review
	reviewErr map[string]error
	pageCalls atomic.Int32

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (f *fakeProvider) PlacesAround(_ context.Context, _, _ float64, _, offset, pageSize int, _ string) ([]navermap.Place, error) {
	f.pageCalls.Add(1)
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	page := offset / pageSize
	if page >= len(f.pages) {
		return nil, nil
	}
	return f.pages[page], nil
}

func (f *fakeProvider) ReviewsFor(_ context.Context, placeID string, _ int) ([]navermap.Review, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if err := f.reviewErr[placeID]; err != nil {
		return nil, err
	}
	return f.reviews[placeID], nil
}

func cafes(n int) []navermap.Place {
	places := make([]navermap.Place, n)
	for i := range places {
		places[i] = navermap.Place{
			ID:       fmt.Sprintf("p%d", i+1),
			Name:     fmt.Sprintf("카페%d", i+1),
			Category: "카페,디저트",
			Lat:      userLat + float64(i)*0.0005,
			Lon:      userLon,
		}
	}
	return places
}

func TestDiscover_Basic(t *testing.T) {
	places := cafes(4)
	f := &fakeProvider{
		pages: [][]navermap.Place{places},
		reviews: map[string][]navermap.Review{
			"p1": {{Author: "민지", Content: "분위기가 좋아요"}},
		},
		reviewErr: map[string]error{"p2": eris.New("review endpoint down")},
	}

	finder := NewFinder(f, nil, DefaultOptions())
	res, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Merchants, 4)

	m := res.Merchants[0]
	assert.Equal(t, "s1", m.StoreID)
	assert.Equal(t, "카페1", m.Name)
	require.NotNil(t, m.DistanceMeters)
	assert.InDelta(t, 0, *m.DistanceMeters, 1)
	require.Len(t, m.Reviews, 1)
	assert.Equal(t, "분위기가 좋아요", m.Reviews[0].Content)

	// The failed review fetch degrades to an empty list, not an error.
	assert.Empty(t, res.Merchants[1].Reviews)

	// Distances grow with the synthetic latitudes.
	assert.Greater(t, *res.Merchants[3].DistanceMeters, *res.Merchants[1].DistanceMeters)
}

func TestDiscover_PaginatesAndDedupes(t *testing.T) {
	all := cafes(12)
	f := &fakeProvider{pages: [][]navermap.Place{
		all[0:5],
		append([]navermap.Place{all[4]}, all[5:9]...), // p5 repeats
		all[9:12],
	}}

	opts := DefaultOptions()
	opts.SampleSeed = 1
	finder := NewFinder(f, nil, opts)

	res, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Len(t, res.Merchants, 10)

	names := map[string]bool{}
	for _, m := range res.Merchants {
		assert.False(t, names[m.Name], "duplicate %s", m.Name)
		names[m.Name] = true
	}
}

func TestDiscover_SampleStableAcrossRuns(t *testing.T) {
	all := cafes(15)
	f := &fakeProvider{pages: [][]navermap.Place{all[0:5], all[5:10], all[10:15]}}

	opts := DefaultOptions()
	opts.SampleSeed = 42
	finder := NewFinder(f, nil, opts)

	first, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.NoError(t, err)
	second, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.NoError(t, err)

	require.Equal(t, len(first.Merchants), len(second.Merchants))
	for i := range first.Merchants {
		assert.Equal(t, first.Merchants[i].Name, second.Merchants[i].Name)
	}
}

func TestDiscover_NoCandidates(t *testing.T) {
	f := &fakeProvider{pages: nil}
	finder := NewFinder(f, nil, DefaultOptions())

	res, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Merchants)
}

func TestDiscover_ProviderFailure(t *testing.T) {
	f := &fakeProvider{pagesErr: eris.New("provider down")}
	finder := NewFinder(f, nil, DefaultOptions())

	_, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.Error(t, err)
}

func TestDiscover_BreakerShortCircuits(t *testing.T) {
	f := &fakeProvider{pagesErr: eris.New("provider down")}
	breaker := resilience.NewBreaker(1, 0)
	finder := NewFinder(f, breaker, DefaultOptions())

	_, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.Error(t, err)
	calls := f.pageCalls.Load()

	// With the breaker open, the provider is not called again.
	breakerOpen := resilience.NewBreaker(1, 1<<40)
	breakerOpen.Record(eris.New("prior failure"))
	finder = NewFinder(f, breakerOpen, DefaultOptions())
	_, err = finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.ErrorIs(t, eris.Cause(err), resilience.ErrOpen)
	assert.Equal(t, calls, f.pageCalls.Load())
}

func TestDiscover_ReviewConcurrencyBounded(t *testing.T) {
	f := &fakeProvider{pages: [][]navermap.Place{cafes(10)}}

	opts := DefaultOptions()
	opts.ReviewConcurrency = 2
	finder := NewFinder(f, nil, opts)

	_, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, f.maxInFlight, 2)
}

func TestNormalizePlaceType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"맛집", "음식점"},
		{"고기집", "고기"},
		{"횟집", "횟"},
		{"카페", "카페"},
		{"집", "집"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePlaceType(tt.in), "input %q", tt.in)
	}
}

func TestFilterByPlaceType_FallsBackToAllOnNoMatch(t *testing.T) {
	f := &fakeProvider{pages: [][]navermap.Place{{
		{ID: "p1", Name: "순대국밥", Category: "국밥", Lat: userLat, Lon: userLon},
	}}}
	finder := NewFinder(f, nil, DefaultOptions())

	res, err := finder.Discover(context.Background(), userLat, userLon, "카페", nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Len(t, res.Merchants, 1)
}
