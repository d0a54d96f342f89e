package navermap

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// localResponse is the local search payload. mapx/mapy are WGS84 longitude
// and latitude scaled by 1e7 and serialized as strings.
type localResponse struct {
	Total int         `json:"total"`
	Start int         `json:"start"`
	Items []localItem `json:"items"`
}

type localItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

var htmlTagPattern = regexp.MustCompile(`</?b>`)

// PlacesAround runs one page of local search near a coordinate. offset is
// zero-based; the API's start parameter is one-based.
func (c *httpClient) PlacesAround(ctx context.Context, lat, lon float64, radiusMeters, offset, pageSize int, categoryFilter string) ([]Place, error) {
	if pageSize <= 0 {
		pageSize = 5
	}
	query := categoryFilter
	if query == "" {
		query = "음식점"
	}

	params := url.Values{
		"query":      {query},
		"display":    {strconv.Itoa(pageSize)},
		"start":      {strconv.Itoa(offset + 1)},
		"coordinate": {fmt.Sprintf("%f,%f", lon, lat)},
		"radius":     {strconv.Itoa(radiusMeters)},
		"sort":       {"random"},
	}

	var resp localResponse
	if err := c.get(ctx, "navermap.places_around", "/v1/search/local.json", params, &resp); err != nil {
		return nil, err
	}
	return toPlaces(resp.Items), nil
}

// PlaceSearch runs a plain text local search.
func (c *httpClient) PlaceSearch(ctx context.Context, text string, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{
		"query":   {text},
		"display": {strconv.Itoa(limit)},
	}

	var resp localResponse
	if err := c.get(ctx, "navermap.place_search", "/v1/search/local.json", params, &resp); err != nil {
		return nil, err
	}
	return toPlaces(resp.Items), nil
}

func toPlaces(items []localItem) []Place {
	places := make([]Place, 0, len(items))
	for _, it := range items {
		p, err := it.toPlace()
		if err != nil {
			continue
		}
		places = append(places, p)
	}
	return places
}

func (it localItem) toPlace() (Place, error) {
	lon, err := parseScaledCoord(it.MapX)
	if err != nil {
		return Place{}, eris.Wrap(err, "navermap: parse mapx")
	}
	lat, err := parseScaledCoord(it.MapY)
	if err != nil {
		return Place{}, eris.Wrap(err, "navermap: parse mapy")
	}

	addr := it.RoadAddress
	if addr == "" {
		addr = it.Address
	}
	name := strings.TrimSpace(htmlTagPattern.ReplaceAllString(it.Title, ""))

	return Place{
		ID:       placeID(it, name),
		Name:     name,
		Category: it.Category,
		Address:  addr,
		Lat:      lat,
		Lon:      lon,
	}, nil
}

// placeID prefers the provider link; search results without one fall back to
// a name+address key, which is stable enough for per-run dedupe.
func placeID(it localItem, name string) string {
	if it.Link != "" {
		return it.Link
	}
	return name + "|" + it.Address
}

func parseScaledCoord(s string) (float64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return float64(v) / 1e7, nil
}
