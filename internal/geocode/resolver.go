// Package geocode turns a location phrase into a coordinate, falling back to
// the caller-supplied position whenever the provider cannot help.
package geocode

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nearbite/nearbite/internal/model"
	"github.com/nearbite/nearbite/pkg/navermap"
)

// Provider is the slice of the map client the resolver needs.
type Provider interface {
	ForwardGeocode(ctx context.Context, text string) (*navermap.Point, error)
	PlaceSearch(ctx context.Context, text string, limit int) ([]navermap.Place, error)
}

// relativePhrases resolve to the user's own position, so the provider is
// never consulted for them.
var relativePhrases = []string{"이 근처", "여기", "근처", "주변", "이곳"}

// Resolver resolves location phrases against a map provider.
type Resolver struct {
	provider Provider
}

func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve returns the coordinate for a phrase. Relative phrases and every
// failure path return the fallback; Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, phrase string, fallback model.Coordinates) model.Coordinates {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" || isRelative(phrase) || r.provider == nil {
		return fallback
	}

	if pt, err := r.provider.ForwardGeocode(ctx, phrase); err == nil && pt != nil {
		return model.Coordinates{Lat: pt.Lat, Lon: pt.Lon}
	} else if err != nil {
		zap.L().Debug("geocode: forward geocode failed", zap.String("phrase", phrase), zap.Error(err))
	}

	// Miss: search for the phrase as a place and geocode its address.
	places, err := r.provider.PlaceSearch(ctx, phrase, 1)
	if err != nil || len(places) == 0 {
		if err != nil {
			zap.L().Debug("geocode: place search failed", zap.String("phrase", phrase), zap.Error(err))
		}
		return fallback
	}

	first := places[0]
	if first.Address != "" {
		if pt, err := r.provider.ForwardGeocode(ctx, first.Address); err == nil && pt != nil {
			return model.Coordinates{Lat: pt.Lat, Lon: pt.Lon}
		}
	}

	// The search hit itself carries a coordinate; use it before giving up.
	if first.Lat != 0 || first.Lon != 0 {
		return model.Coordinates{Lat: first.Lat, Lon: first.Lon}
	}
	return fallback
}

func isRelative(phrase string) bool {
	for _, p := range relativePhrases {
		if phrase == p {
			return true
		}
	}
	return false
}
