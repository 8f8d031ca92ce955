package api

import (
	"context"
	"net/url"
	"sort"
	"strconv"
)

// FindNearbyPeaks returns peaks around a coordinate, closest first. The
// backend already orders by distance; the client re-sorts with a name
// tiebreak so equal-distance results render deterministically.
func (c *Client) FindNearbyPeaks(ctx context.Context, lat, lng float64, limit int, nameFilter string, maxDistance float64) ([]PeakCandidate, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if nameFilter != "" {
		params.Set("nameFilter", nameFilter)
	}
	if maxDistance > 0 {
		params.Set("maxDistance", strconv.FormatFloat(maxDistance, 'f', -1, 64))
	}

	var candidates []PeakCandidate
	if err := c.get(ctx, "/peaks/find?"+params.Encode(), &candidates); err != nil {
		return nil, err
	}

	SortCandidates(candidates)
	return candidates, nil
}

// PeaksCount returns the total number of known peaks
func (c *Client) PeaksCount(ctx context.Context) (int, error) {
	var count int
	err := c.get(ctx, "/peaks/count", &count)
	return count, err
}

// SortCandidates orders candidates by ascending distance, ties broken by
// peak name
func SortCandidates(candidates []PeakCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].Peak.Name < candidates[j].Peak.Name
	})
}
