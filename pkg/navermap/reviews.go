package navermap

import (
	"context"
	"net/url"
	"strconv"
)

type reviewsResponse struct {
	Items []reviewItem `json:"items"`
}

type reviewItem struct {
	Author  string   `json:"author"`
	Rating  *float64 `json:"rating"`
	Content string   `json:"content"`
}

// ReviewsFor fetches up to maxCount recent visitor reviews for a place.
func (c *httpClient) ReviewsFor(ctx context.Context, placeID string, maxCount int) ([]Review, error) {
	if maxCount <= 0 {
		maxCount = 3
	}
	params := url.Values{
		"id":      {placeID},
		"display": {strconv.Itoa(maxCount)},
	}

	var resp reviewsResponse
	if err := c.get(ctx, "navermap.reviews", "/v1/place/reviews", params, &resp); err != nil {
		return nil, err
	}

	reviews := make([]Review, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Content == "" {
			continue
		}
		reviews = append(reviews, Review{
			Author:  it.Author,
			Rating:  it.Rating,
			Content: it.Content,
		})
		if len(reviews) == maxCount {
			break
		}
	}
	return reviews, nil
}
