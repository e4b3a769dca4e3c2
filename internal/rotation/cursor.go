package rotation

// Episode identifies one unit of a series.  Movies use the zero value.
type Episode struct {
	Season  int
	Episode int
}

// Cursor tracks the next unseen episode of one content item along with
// what the rerun policy needs: the last aired episode and the number of
// new airings since the last rerun.
//
// Aired never exceeds TotalEpisodes, so the absolute position of the next
// episode (Aired+1) never exceeds TotalEpisodes+1.
type Cursor struct {
	ContentID        uint64
	Movie            bool
	NextSeason       int
	NextEpisode      int
	Aired            int
	TotalEpisodes    int
	SeasonBoundaries []int
	DurationMinutes  int
	NewSinceRerun    int
	LastAired        *Episode
}

// NewCursor returns a cursor positioned at the first episode.  Movies are
// single-unit content with a total of one.
func NewCursor(contentID uint64, movie bool, total int, boundaries []int, duration int) Cursor {
	if movie {
		total = 1
	}
	return Cursor{
		ContentID:        contentID,
		Movie:            movie,
		NextSeason:       1,
		NextEpisode:      1,
		TotalEpisodes:    total,
		SeasonBoundaries: append([]int(nil), boundaries...),
		DurationMinutes:  duration,
	}
}

// Exhausted reports whether every episode has aired.
func (c Cursor) Exhausted() bool { return c.Aired >= c.TotalEpisodes }

// NextOrdinal is the absolute 1-based position of the next episode.
func (c Cursor) NextOrdinal() int { return c.Aired + 1 }

// Reconcile applies fresh catalog data.  When the catalog reports fewer
// episodes than were already consumed the cursor is clamped to exhausted
// and a CursorInconsistencyError describes the mismatch.
func (c Cursor) Reconcile(movie bool, total int, boundaries []int, duration int) (Cursor, error) {
	if movie {
		total = 1
	}
	c.Movie = movie
	c.TotalEpisodes = total
	c.SeasonBoundaries = append([]int(nil), boundaries...)
	c.DurationMinutes = duration
	if c.NextSeason < 1 {
		c.NextSeason = 1
	}
	if c.NextEpisode < 1 {
		c.NextEpisode = 1
	}
	if c.Aired > total {
		err := &CursorInconsistencyError{ContentID: c.ContentID, Aired: c.Aired, TotalEpisodes: total}
		c.Aired = total
		return c, err
	}
	return c, nil
}

// seasonLength returns the number of episodes the catalog lists for a
// season, or 0 when the season is unknown.
func (c Cursor) seasonLength(season int) int {
	if season >= 1 && season <= len(c.SeasonBoundaries) {
		return c.SeasonBoundaries[season-1]
	}
	return 0
}

// Advance consumes the next episode and returns it together with the
// advanced cursor.  The receiver is left untouched.  Advancing an
// exhausted cursor is a no-op.
func (c Cursor) Advance() (Episode, Cursor) {
	if c.Exhausted() {
		return Episode{}, c
	}
	var ep Episode
	if !c.Movie {
		ep = Episode{Season: c.NextSeason, Episode: c.NextEpisode}
		// Without season boundaries the series is numbered as one season.
		if length := c.seasonLength(c.NextSeason); length > 0 && c.NextEpisode >= length {
			c.NextSeason++
			c.NextEpisode = 1
		} else {
			c.NextEpisode++
		}
	}
	c.Aired++
	aired := ep
	c.LastAired = &aired
	return ep, c
}
