package model

import "time"

// Source types of a schedule entry.  Regeneration only ever supersedes
// auto and rotation entries; manual entries belong to the user.
const (
	SourceManual   = "manual"
	SourceAuto     = "auto"
	SourceRotation = "rotation"
)

// ScheduleEntry is one persisted viewing assignment.  Dates and times are
// kept in the user's nominal local time as YYYY-MM-DD and HH:MM strings
// with a separate ±HH:MM offset, never as an offset-aware timestamp.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – owner of the schedule.
//  ContentID       – content that airs.
//  Season/Episode  – aired episode, nil for movies.
//  SlotDate        – local date of the slot.
//  Track           – parallel track, 0-based.
//  StartTime       – local start of the airing.
//  EndTime         – local end, truncated to the slot when the content
//                    runs longer.
//  TimezoneOffset  – user offset the times are expressed in.
//  SourceType      – manual, auto or rotation.
//  RotationGroupID – group the entry was generated from, nil otherwise.
//  Watched         – set by playback tracking, never by the generator.
//  IsRerun         – the entry repeats an already aired episode.
//  GenerationID    – id of the run that produced the entry.
//  CursorBefore    – cursor state before this airing, generated entries only.
//  CreatedAt       – creation timestamp.
type ScheduleEntry struct {
	ID              uint64          `json:"id,omitempty"`                // schedule_entries.id
	UserID          uint64          `json:"user_id"`                     // schedule_entries.user_id
	ContentID       uint64          `json:"content_id"`                  // schedule_entries.content_id
	Season          *int            `json:"season"`                      // schedule_entries.season (nullable)
	Episode         *int            `json:"episode"`                     // schedule_entries.episode (nullable)
	SlotDate        string          `json:"slot_date"`                   // schedule_entries.slot_date
	Track           int             `json:"track"`                       // schedule_entries.track
	StartTime       string          `json:"start_time"`                  // schedule_entries.start_time
	EndTime         string          `json:"end_time"`                    // schedule_entries.end_time
	TimezoneOffset  string          `json:"timezone_offset"`             // schedule_entries.timezone_offset
	SourceType      string          `json:"source_type"`                 // schedule_entries.source_type
	RotationGroupID *uint64         `json:"rotation_group_id,omitempty"` // schedule_entries.rotation_group_id (nullable)
	Watched         bool            `json:"watched"`                     // schedule_entries.watched
	IsRerun         bool            `json:"is_rerun"`                    // schedule_entries.is_rerun
	GenerationID    *string         `json:"generation_id,omitempty"`     // schedule_entries.generation_id (nullable)
	CursorBefore    *CursorSnapshot `json:"-"`                           // schedule_entries.cursor_before (nullable JSON)
	CreatedAt       time.Time       `json:"created_at"`                  // schedule_entries.created_at
}

// Generated reports whether regeneration may supersede the entry.
func (e ScheduleEntry) Generated() bool {
	return e.SourceType == SourceAuto || e.SourceType == SourceRotation
}

// CursorKey is the scope of the cursor the entry advanced.
func (e ScheduleEntry) CursorKey() CursorKey {
	return CursorKey{RotationGroupID: e.CursorGroupID(), ContentID: e.ContentID}
}

// CursorGroupID is the rotation group scope of the cursor the entry
// advanced; 0 for queue-generated entries.
func (e ScheduleEntry) CursorGroupID() uint64 {
	if e.RotationGroupID == nil {
		return 0
	}
	return *e.RotationGroupID
}
