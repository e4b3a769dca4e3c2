package model

import "time"

// QueueEntry is one position in a user's personal watch queue.  The
// generator reads the queue as a snapshot ordered by Position and never
// mutates it.
//
// Fields:
//  ID        – primary key identifier, breaks ties between equal positions.
//  UserID    – owner of the queue.
//  ContentID – queued content.
//  Position  – insertion rank; lower values air first.
//  CreatedAt – when the content was queued.
type QueueEntry struct {
	ID        uint64    // queue_entries.id
	UserID    uint64    // queue_entries.user_id
	ContentID uint64    // queue_entries.content_id
	Position  int       // queue_entries.position
	CreatedAt time.Time // queue_entries.created_at
}
