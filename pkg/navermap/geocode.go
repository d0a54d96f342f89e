package navermap

import (
	"context"
	"net/url"
	"strconv"
)

type geocodeResponse struct {
	Status    string           `json:"status"`
	Addresses []geocodeAddress `json:"addresses"`
}

type geocodeAddress struct {
	RoadAddress string `json:"roadAddress"`
	X           string `json:"x"` // longitude
	Y           string `json:"y"` // latitude
}

// ForwardGeocode resolves an address or place phrase to a coordinate.
// Returns nil without error when the provider has no match.
func (c *httpClient) ForwardGeocode(ctx context.Context, text string) (*Point, error) {
	params := url.Values{"query": {text}}

	var resp geocodeResponse
	if err := c.get(ctx, "navermap.geocode", "/map-geocode/v2/geocode", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" || len(resp.Addresses) == 0 {
		return nil, nil
	}

	addr := resp.Addresses[0]
	lon, err := strconv.ParseFloat(addr.X, 64)
	if err != nil {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(addr.Y, 64)
	if err != nil {
		return nil, nil
	}
	return &Point{Lat: lat, Lon: lon}, nil
}
