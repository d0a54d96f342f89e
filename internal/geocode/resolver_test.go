package geocode

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/pkg/navermap"
)

var fallback = model.Coordinates{Lat: 37.5613, Lon: 126.9940}

type fakeProvider struct {
	geocodeByQuery map[string]*navermap.Point
	geocodeErr     error
	searchResults  []navermap.Place
	searchErr      error

	geocodeCalls []string
	searchCalls  []string
}

func (f *fakeProvider) ForwardGeocode(_ context.Context, text string) (*navermap.Point, error) {
	f.geocodeCalls = append(f.geocodeCalls, text)
	if f.geocodeErr != nil {
		return nil, f.geocodeErr
	}
	return f.geocodeByQuery[text], nil
}

func (f *fakeProvider) PlaceSearch(_ context.Context, text string, _ int) ([]navermap.Place, error) {
	f.searchCalls = append(f.searchCalls, text)
	return f.searchResults, f.searchErr
}

func TestResolve_RelativePhraseSkipsProvider(t *testing.T) {
	f := &fakeProvider{}
	r := NewResolver(f)

	for _, phrase := range []string{"이 근처", "여기", "근처"} {
		got := r.Resolve(context.Background(), phrase, fallback)
		assert.Equal(t, fallback, got)
	}
	assert.Empty(t, f.geocodeCalls)
	assert.Empty(t, f.searchCalls)
}

func TestResolve_DirectGeocode(t *testing.T) {
	f := &fakeProvider{geocodeByQuery: map[string]*navermap.Point{
		"충무로역": {Lat: 37.5612, Lon: 126.9941},
	}}
	r := NewResolver(f)

	got := r.Resolve(context.Background(), "충무로역", fallback)
	assert.InDelta(t, 37.5612, got.Lat, 1e-9)
	assert.InDelta(t, 126.9941, got.Lon, 1e-9)
	assert.Empty(t, f.searchCalls)
}

func TestResolve_PlaceSearchThenGeocode(t *testing.T) {
	f := &fakeProvider{
		geocodeByQuery: map[string]*navermap.Point{
			"서울 중구 충무로 1": {Lat: 37.5620, Lon: 126.9950},
		},
		searchResults: []navermap.Place{
			{Name: "동국대학교", Address: "서울 중구 충무로 1", Lat: 37.5580, Lon: 126.9990},
		},
	}
	r := NewResolver(f)

	got := r.Resolve(context.Background(), "동국대", fallback)
	assert.InDelta(t, 37.5620, got.Lat, 1e-9)
	assert.Equal(t, []string{"동국대", "서울 중구 충무로 1"}, f.geocodeCalls)
}

func TestResolve_SearchHitCoordinateWhenAddressGeocodeMisses(t *testing.T) {
	f := &fakeProvider{
		searchResults: []navermap.Place{
			{Name: "어딘가", Address: "지번 없는 주소", Lat: 37.5000, Lon: 127.0000},
		},
	}
	r := NewResolver(f)

	got := r.Resolve(context.Background(), "어딘가", fallback)
	assert.InDelta(t, 37.5, got.Lat, 1e-9)
	assert.InDelta(t, 127.0, got.Lon, 1e-9)
}

func TestResolve_FallbackPaths(t *testing.T) {
	tests := []struct {
		name string
		f    *fakeProvider
	}{
		{"geocode error and empty search", &fakeProvider{geocodeErr: eris.New("provider down"), searchErr: eris.New("provider down")}},
		{"no match anywhere", &fakeProvider{}},
		{"search result with no usable location", &fakeProvider{searchResults: []navermap.Place{{Name: "유령"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.f)
			got := r.Resolve(context.Background(), "충무로 어딘가", fallback)
			assert.Equal(t, fallback, got)
		})
	}
}

func TestResolve_NilProvider(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, fallback, r.Resolve(context.Background(), "충무로역", fallback))
}
