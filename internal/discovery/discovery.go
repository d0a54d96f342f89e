// Package discovery finds nearby merchants for a place type and attaches
// reviews and distances.
package discovery

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nearbite/nearbite/internal/geoutil"
	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/internal/resilience"
	"github.com/nearbite/nearbite/pkg/navermap"
)

// Provider is the slice of the map client discovery needs.
type Provider interface {
	PlacesAround(ctx context.Context, lat, lon float64, radiusMeters, offset, pageSize int, categoryFilter string) ([]navermap.Place, error)
	ReviewsFor(ctx context.Context, placeID string, maxCount int) ([]navermap.Review, error)
}

// Options bound the candidate scan and the review fan-out.
type Options struct {
	RadiusMeters       int
	MaxCandidates      int
	ReviewsPerMerchant int
	MaxPages           int
	PageSize           int
	ReviewConcurrency  int

	// SampleSeed pins the uniform sample; 0 seeds from the clock.
	SampleSeed int64
}

// DefaultOptions mirrors the configured defaults.
func DefaultOptions() Options {
	return Options{
		RadiusMeters:       1000,
		MaxCandidates:      10,
		ReviewsPerMerchant: 3,
		MaxPages:           5,
		PageSize:           5,
		ReviewConcurrency:  4,
	}
}

// Result is the discovery output. Success is false only when no candidate
// was found at all; callers then skip discount resolution and ranking.
type Result struct {
	Merchants []model.Merchant
	Success   bool
}

// Finder gathers merchant candidates from the provider.
type Finder struct {
	provider Provider
	breaker  *resilience.Breaker
	opts     Options
}

// NewFinder wires a provider. breaker may be nil.
func NewFinder(provider Provider, breaker *resilience.Breaker, opts Options) *Finder {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 10
	}
	if opts.ReviewsPerMerchant <= 0 {
		opts.ReviewsPerMerchant = 3
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 5
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.ReviewConcurrency <= 0 {
		opts.ReviewConcurrency = 4
	}
	if opts.RadiusMeters <= 0 {
		opts.RadiusMeters = 1000
	}
	return &Finder{provider: provider, breaker: breaker, opts: opts}
}

// Discover returns up to MaxCandidates merchants near the coordinate that
// match the place type, each with reviews and a distance from the user.
func (f *Finder) Discover(ctx context.Context, lat, lon float64, placeType string, attributes []string) (Result, error) {
	candidates, err := f.gather(ctx, lat, lon, placeType)
	if err != nil {
		return Result{}, err
	}

	matched := filterByPlaceType(candidates, placeType)
	if len(matched) == 0 {
		// A place-type mismatch across the board still leaves the raw
		// candidates more useful than nothing.
		matched = candidates
	}
	if len(matched) == 0 {
		return Result{Success: false}, nil
	}

	selected := f.sample(matched)

	merchants := make([]model.Merchant, len(selected))
	for i, p := range selected {
		d := geoutil.HaversineMeters(lat, lon, p.Lat, p.Lon)
		merchants[i] = model.Merchant{
			StoreID:        fmt.Sprintf("s%d", i+1),
			Name:           p.Name,
			Category:       p.Category,
			Address:        p.Address,
			Coords:         &model.Coordinates{Lat: p.Lat, Lon: p.Lon},
			DistanceMeters: &d,
		}
	}

	f.attachReviews(ctx, selected, merchants)

	zap.L().Info("discovery complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("matched", len(matched)),
		zap.Int("selected", len(merchants)),
		zap.String("place_type", placeType),
	)
	return Result{Merchants: merchants, Success: true}, nil
}

// gather pages the provider until enough unique candidates are collected or
// the page cap is reached.
func (f *Finder) gather(ctx context.Context, lat, lon float64, placeType string) ([]navermap.Place, error) {
	query := placeType
	if query == "" {
		query = "음식점"
	}

	seen := make(map[string]bool)
	var candidates []navermap.Place

	for page := 0; page < f.opts.MaxPages && len(candidates) < f.opts.MaxCandidates; page++ {
		places, err := f.placesPage(ctx, lat, lon, page, query)
		if err != nil {
			if len(candidates) > 0 {
				zap.L().Warn("discovery: page fetch failed, using partial results",
					zap.Int("page", page), zap.Error(err))
				break
			}
			return nil, eris.Wrap(err, "discovery: gather candidates")
		}
		if len(places) == 0 {
			break
		}
		for _, p := range places {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			candidates = append(candidates, p)
		}
	}
	return candidates, nil
}

func (f *Finder) placesPage(ctx context.Context, lat, lon float64, page int, query string) ([]navermap.Place, error) {
	if f.breaker != nil {
		if err := f.breaker.Allow(); err != nil {
			return nil, err
		}
	}
	places, err := f.provider.PlacesAround(ctx, lat, lon, f.opts.RadiusMeters, page*f.opts.PageSize, f.opts.PageSize, query)
	if f.breaker != nil {
		f.breaker.Record(err)
	}
	return places, err
}

// sample picks MaxCandidates uniformly without replacement, stable for a
// fixed seed.
func (f *Finder) sample(places []navermap.Place) []navermap.Place {
	if len(places) <= f.opts.MaxCandidates {
		return places
	}
	seed := f.opts.SampleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	idx := rng.Perm(len(places))[:f.opts.MaxCandidates]
	sort.Ints(idx)

	out := make([]navermap.Place, 0, f.opts.MaxCandidates)
	for _, i := range idx {
		out = append(out, places[i])
	}
	return out
}

// attachReviews fetches reviews for each merchant with bounded concurrency.
// Per-merchant failures leave an empty review list.
func (f *Finder) attachReviews(ctx context.Context, places []navermap.Place, merchants []model.Merchant) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.ReviewConcurrency)

	var mu sync.Mutex
	for i := range places {
		g.Go(func() error {
			reviews, err := f.provider.ReviewsFor(ctx, places[i].ID, f.opts.ReviewsPerMerchant)
			if err != nil {
				zap.L().Debug("discovery: review fetch failed",
					zap.String("store", merchants[i].Name), zap.Error(err))
				return nil
			}
			converted := make([]model.Review, 0, len(reviews))
			for _, r := range reviews {
				converted = append(converted, model.Review{
					Author:  r.Author,
					Rating:  r.Rating,
					Content: r.Content,
				})
			}
			mu.Lock()
			merchants[i].Reviews = converted
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// filterByPlaceType keeps candidates whose category mentions the normalized
// place type.
func filterByPlaceType(places []navermap.Place, placeType string) []navermap.Place {
	norm := NormalizePlaceType(placeType)
	if norm == "" {
		return places
	}
	var out []navermap.Place
	for _, p := range places {
		if strings.Contains(p.Category, norm) || strings.Contains(p.Name, norm) {
			out = append(out, p)
		}
	}
	return out
}

// NormalizePlaceType maps a colloquial place type onto provider category
// vocabulary: "맛집" means any restaurant, and compounds like "고기집" drop
// the trailing "집".
func NormalizePlaceType(placeType string) string {
	placeType = strings.TrimSpace(placeType)
	if placeType == "맛집" {
		return "음식점"
	}
	runes := []rune(placeType)
	if len(runes) >= 2 && runes[len(runes)-1] == '집' {
		return string(runes[:len(runes)-1])
	}
	return placeType
}
