// Package catalog resolves episode inventories for content items before a
// generation run starts, so that the assignment loop never blocks on I/O.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Source when the content does not exist.
// Lookups failing with it are not retried.
var ErrNotFound = errors.New("content not found")

// Inventory is what the scheduler needs to know about one content item.
// TotalEpisodes is nil for single-unit content such as a movie.
type Inventory struct {
	ContentID              uint64 `json:"content_id"`
	TotalEpisodes          *int   `json:"total_episodes"`
	SeasonBoundaries       []int  `json:"season_boundaries,omitempty"`
	DefaultDurationMinutes int    `json:"default_duration_minutes"`
}

// Movie reports whether the content airs as a single unit.
func (inv Inventory) Movie() bool { return inv.TotalEpisodes == nil }

// Total is the number of distinct airings the content offers.
func (inv Inventory) Total() int {
	if inv.TotalEpisodes == nil {
		return 1
	}
	return *inv.TotalEpisodes
}

// Source looks up the inventory of a single content item.
type Source interface {
	GetEpisodeInventory(ctx context.Context, contentID uint64) (Inventory, error)
}
