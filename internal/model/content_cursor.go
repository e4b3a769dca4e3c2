package model

import "time"

// ContentCursor is the persisted rotation position of one content item for
// one user.  Cursors are scoped by rotation group; the personal queue uses
// RotationGroupID 0, so a show rotates independently in the queue and in
// every group it belongs to.
//
// Fields:
//  NextSeason/NextEpisode – next unseen episode.
//  Aired                  – number of distinct episodes consumed so far.
//  NewSinceRerun          – new airings since the last rerun of this item.
//  LastSeason/LastEpisode – most recently aired episode, reused by reruns;
//                           nil until the item aired once (and always nil
//                           for movies).
//  HasAired               – the item aired at least once.
//  TotalEpisodes          – catalog count the cursor was last reconciled
//                           against, nil for movies.
type ContentCursor struct {
	UserID                 uint64    // content_cursors.user_id
	RotationGroupID        uint64    // content_cursors.rotation_group_id
	ContentID              uint64    // content_cursors.content_id
	NextSeason             int       // content_cursors.next_season
	NextEpisode            int       // content_cursors.next_episode
	Aired                  int       // content_cursors.aired
	NewSinceRerun          int       // content_cursors.new_since_rerun
	LastSeason             *int      // content_cursors.last_season (nullable)
	LastEpisode            *int      // content_cursors.last_episode (nullable)
	HasAired               bool      // content_cursors.has_aired
	TotalEpisodes          *int      // content_cursors.total_episodes (nullable)
	DefaultDurationMinutes int       // content_cursors.default_duration_minutes
	UpdatedAt              time.Time // content_cursors.updated_at
}

// Snapshot captures the mutable part of the cursor.
func (c ContentCursor) Snapshot() CursorSnapshot {
	return CursorSnapshot{
		NextSeason:    c.NextSeason,
		NextEpisode:   c.NextEpisode,
		Aired:         c.Aired,
		NewSinceRerun: c.NewSinceRerun,
		LastSeason:    c.LastSeason,
		LastEpisode:   c.LastEpisode,
		HasAired:      c.HasAired,
	}
}

// Restore overwrites the mutable part of the cursor with s.
func (c *ContentCursor) Restore(s CursorSnapshot) {
	c.NextSeason = s.NextSeason
	c.NextEpisode = s.NextEpisode
	c.Aired = s.Aired
	c.NewSinceRerun = s.NewSinceRerun
	c.LastSeason = s.LastSeason
	c.LastEpisode = s.LastEpisode
	c.HasAired = s.HasAired
}

// CursorSnapshot is stored as JSON on every generated schedule entry
// (schedule_entries.cursor_before).  Regenerating a range restores the
// snapshot of the first superseded entry of each content so the rotation
// picks up exactly where it stood before that range was first generated.
type CursorSnapshot struct {
	NextSeason    int  `json:"next_season"`
	NextEpisode   int  `json:"next_episode"`
	Aired         int  `json:"aired"`
	NewSinceRerun int  `json:"new_since_rerun"`
	LastSeason    *int `json:"last_season,omitempty"`
	LastEpisode   *int `json:"last_episode,omitempty"`
	HasAired      bool `json:"has_aired"`
}

// Key returns the scope the cursor belongs to.
func (c ContentCursor) Key() CursorKey {
	return CursorKey{RotationGroupID: c.RotationGroupID, ContentID: c.ContentID}
}

// CursorKey identifies a cursor within one user's schedule.
type CursorKey struct {
	RotationGroupID uint64
	ContentID       uint64
}

// Equal compares two snapshots by value.
func (s CursorSnapshot) Equal(o CursorSnapshot) bool {
	return s.NextSeason == o.NextSeason &&
		s.NextEpisode == o.NextEpisode &&
		s.Aired == o.Aired &&
		s.NewSinceRerun == o.NewSinceRerun &&
		s.HasAired == o.HasAired &&
		eqInt(s.LastSeason, o.LastSeason) &&
		eqInt(s.LastEpisode, o.LastEpisode)
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
