package discovery

import (
	"context"
	"sort"

	"github.com/nearbite/nearbite/internal/geoutil"
	"github.com/nearbite/nearbite/pkg/navermap"
)

// StaticProvider serves a fixed dataset. It backs degraded mode and tests
// when no map provider is configured.
type StaticProvider struct {
	Places  []navermap.Place
	Reviews map[string][]navermap.Review
}

// PlacesAround filters the dataset to the requested radius, nearest first,
// with a bounding-box prefilter ahead of the exact distance check.
func (s *StaticProvider) PlacesAround(_ context.Context, lat, lon float64, radiusMeters, offset, pageSize int, _ string) ([]navermap.Place, error) {
	bounds := geoutil.BoundsAround(lat, lon, float64(radiusMeters))

	type withDistance struct {
		place navermap.Place
		d     float64
	}
	var nearby []withDistance
	for _, p := range s.Places {
		if !geoutil.InBounds(bounds, p.Lat, p.Lon) {
			continue
		}
		d := geoutil.HaversineMeters(lat, lon, p.Lat, p.Lon)
		if d > float64(radiusMeters) {
			continue
		}
		nearby = append(nearby, withDistance{place: p, d: d})
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].d < nearby[j].d })

	if offset >= len(nearby) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(nearby) {
		end = len(nearby)
	}
	out := make([]navermap.Place, 0, end-offset)
	for _, nd := range nearby[offset:end] {
		out = append(out, nd.place)
	}
	return out, nil
}

// ReviewsFor returns the canned reviews for a place, capped at maxCount.
func (s *StaticProvider) ReviewsFor(_ context.Context, placeID string, maxCount int) ([]navermap.Review, error) {
	reviews := s.Reviews[placeID]
	if len(reviews) > maxCount {
		reviews = reviews[:maxCount]
	}
	return reviews, nil
}
