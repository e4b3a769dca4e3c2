package service

import (
	"sort"

	"github.com/iliyamo/watch-rotation-scheduler/internal/catalog"
	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
	"github.com/iliyamo/watch-rotation-scheduler/internal/rotation"
)

// cursorBook holds the owner's cursors during a run, keyed by scope.
type cursorBook struct {
	ownerID uint64
	rows    map[model.CursorKey]model.ContentCursor
	dirty   map[model.CursorKey]bool
}

func newCursorBook(ownerID uint64, rows []model.ContentCursor) *cursorBook {
	b := &cursorBook{
		ownerID: ownerID,
		rows:    make(map[model.CursorKey]model.ContentCursor, len(rows)),
		dirty:   map[model.CursorKey]bool{},
	}
	for _, r := range rows {
		b.rows[r.Key()] = r
	}
	return b
}

// row returns the stored cursor for key, or a fresh one positioned at the
// first episode.
func (b *cursorBook) row(key model.CursorKey) model.ContentCursor {
	if r, ok := b.rows[key]; ok {
		return r
	}
	return model.ContentCursor{
		UserID:          b.ownerID,
		RotationGroupID: key.RotationGroupID,
		ContentID:       key.ContentID,
		NextSeason:      1,
		NextEpisode:     1,
	}
}

func (b *cursorBook) put(r model.ContentCursor) {
	b.rows[r.Key()] = r
	b.dirty[r.Key()] = true
}

// rewind restores, per cursor scope, the snapshot taken before the first
// superseded entry.  entries must be in schedule order.  It returns the
// number of scopes rewound.
func (b *cursorBook) rewind(entries []model.ScheduleEntry) int {
	seen := map[model.CursorKey]bool{}
	for _, e := range entries {
		if !e.Generated() || e.CursorBefore == nil {
			continue
		}
		key := e.CursorKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		r := b.row(key)
		r.Restore(*e.CursorBefore)
		b.put(r)
	}
	return len(seen)
}

// dirtyRows returns the modified cursors: those in order first, then any
// other scope sorted by group and content.
func (b *cursorBook) dirtyRows(order []model.CursorKey) []model.ContentCursor {
	out := make([]model.ContentCursor, 0, len(b.dirty))
	done := map[model.CursorKey]bool{}
	for _, k := range order {
		if b.dirty[k] && !done[k] {
			out = append(out, b.rows[k])
			done[k] = true
		}
	}
	var rest []model.CursorKey
	for k := range b.dirty {
		if !done[k] {
			rest = append(rest, k)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if rest[i].RotationGroupID != rest[j].RotationGroupID {
			return rest[i].RotationGroupID < rest[j].RotationGroupID
		}
		return rest[i].ContentID < rest[j].ContentID
	})
	for _, k := range rest {
		out = append(out, b.rows[k])
	}
	return out
}

// toRotation converts a stored cursor into the engine's representation.
func toRotation(r model.ContentCursor) rotation.Cursor {
	c := rotation.Cursor{
		ContentID:     r.ContentID,
		NextSeason:    r.NextSeason,
		NextEpisode:   r.NextEpisode,
		Aired:         r.Aired,
		NewSinceRerun: r.NewSinceRerun,
	}
	if r.HasAired {
		ep := rotation.Episode{}
		if r.LastSeason != nil {
			ep.Season = *r.LastSeason
		}
		if r.LastEpisode != nil {
			ep.Episode = *r.LastEpisode
		}
		c.LastAired = &ep
	}
	return c
}

// applyRotation writes the engine cursor back into a stored row and
// refreshes the catalog columns from inv.
func applyRotation(r model.ContentCursor, c rotation.Cursor, inv catalog.Inventory) model.ContentCursor {
	r.NextSeason = c.NextSeason
	r.NextEpisode = c.NextEpisode
	r.Aired = c.Aired
	r.NewSinceRerun = c.NewSinceRerun
	r.HasAired = c.LastAired != nil
	r.LastSeason, r.LastEpisode = nil, nil
	if c.LastAired != nil && !c.Movie {
		s, e := c.LastAired.Season, c.LastAired.Episode
		r.LastSeason, r.LastEpisode = &s, &e
	}
	r.TotalEpisodes = inv.TotalEpisodes
	r.DefaultDurationMinutes = inv.DefaultDurationMinutes
	return r
}

// snapshotOf captures the mutable state of an engine cursor.
func snapshotOf(c rotation.Cursor) model.CursorSnapshot {
	return applyRotation(model.ContentCursor{}, c, catalog.Inventory{}).Snapshot()
}
