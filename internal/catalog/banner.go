package catalog

import (
	"errors"
	"fmt"
)

var ErrPositionOutOfRange = errors.New("banner position out of range")

type Banner struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image,omitempty"`
	Link     string `json:"link,omitempty"`
	Position int    `json:"position"`
}

// ReorderBanners moves the banner at index from to index to, as a drag and
// drop would, and renumbers positions from 1. The input slice is not modified.
func ReorderBanners(banners []Banner, from, to int) ([]Banner, error) {
	if from < 0 || from >= len(banners) || to < 0 || to >= len(banners) {
		return nil, fmt.Errorf("%w: move %d -> %d with %d banners", ErrPositionOutOfRange, from, to, len(banners))
	}

	out := make([]Banner, 0, len(banners))
	moved := banners[from]
	for i, b := range banners {
		if i != from {
			out = append(out, b)
		}
	}
	out = append(out[:to], append([]Banner{moved}, out[to:]...)...)

	for i := range out {
		out[i].Position = i + 1
	}
	return out, nil
}

// BannerIDs returns ids in display order.
func BannerIDs(banners []Banner) []int64 {
	ids := make([]int64, len(banners))
	for i, b := range banners {
		ids[i] = b.ID
	}
	return ids
}
