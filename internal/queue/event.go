// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// ScheduleGeneratedQueue is the durable queue generation events go to.
const ScheduleGeneratedQueue = "schedule.generated"

// ScheduleGeneratedEvent is published after a generation run committed.
// It carries enough for downstream consumers to log, notify or refresh a
// calendar view without querying the primary database.
type ScheduleGeneratedEvent struct {
	GenerationID string   `json:"generation_id"`
	UserID       uint64   `json:"user_id"`
	SourceType   string   `json:"source_type"`
	SourceID     uint64   `json:"source_id"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Created      int      `json:"created_count"`
	Deleted      int64    `json:"deleted_count"`
	Reruns       int      `json:"rerun_count"`
	SkippedIDs   []uint64 `json:"skipped_content_ids,omitempty"`
	GeneratedAt  string   `json:"generated_at"`
}
