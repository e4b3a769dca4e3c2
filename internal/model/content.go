package model

// Content is an item of the viewing catalog: a series or a movie.  Only the
// fields the scheduler needs are mapped; titles and artwork are owned by the
// library service.
//
// Fields:
//  ID                     – primary key identifier.
//  Kind                   – SERIES or MOVIE.
//  TotalEpisodes          – episode count across all seasons, nil when
//                           the catalog does not know it yet (movies are
//                           always treated as a single unit).
//  DefaultDurationMinutes – typical runtime of one episode or the movie.
type Content struct {
	ID                     uint64 // contents.id
	Kind                   string // contents.kind
	TotalEpisodes          *int   // contents.total_episodes (nullable)
	DefaultDurationMinutes int    // contents.default_duration_minutes
}

// Content kinds as stored in contents.kind.
const (
	ContentKindSeries = "SERIES"
	ContentKindMovie  = "MOVIE"
)

// ContentSeason records how many episodes one season of a series has.
// The ordered list of seasons gives the boundaries used to roll a cursor
// over from one season to the next.
type ContentSeason struct {
	ContentID    uint64 // content_seasons.content_id
	SeasonNumber int    // content_seasons.season_number
	EpisodeCount int    // content_seasons.episode_count
}
