package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
)

// memStore is an in-memory Store with a real per-owner lock and staged
// writes that only become visible on Commit.
type memStore struct {
	mu      sync.Mutex
	locks   map[uint64]*sync.Mutex
	entries []model.ScheduleEntry
	cursors map[model.CursorKey]model.ContentCursor
	nextID  uint64
	begins  int

	beginErr  error
	commitErr error
}

func newMemStore() *memStore {
	return &memStore{locks: map[uint64]*sync.Mutex{}, cursors: map[model.CursorKey]model.ContentCursor{}}
}

func (s *memStore) Begin(ctx context.Context, ownerID uint64) (Session, error) {
	s.mu.Lock()
	s.begins++
	if s.beginErr != nil {
		err := s.beginErr
		s.mu.Unlock()
		return nil, err
	}
	l, ok := s.locks[ownerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[ownerID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return &memSession{s: s, owner: ownerID, lock: l}, nil
}

func (s *memStore) addManual(e model.ScheduleEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	e.SourceType = model.SourceManual
	s.entries = append(s.entries, e)
}

// list returns the owner's entries in schedule order.
func (s *memStore) list(owner uint64) []model.ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ScheduleEntry
	for _, e := range s.entries {
		if e.UserID == owner {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SlotDate != b.SlotDate {
			return a.SlotDate < b.SlotDate
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		return a.ID < b.ID
	})
	return out
}

func (s *memStore) cursor(owner uint64, key model.CursorKey) (model.ContentCursor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[key]
	return c, ok && c.UserID == owner
}

type memSession struct {
	s     *memStore
	owner uint64
	lock  *sync.Mutex
	done  bool

	delStart, delEnd string
	batch            []model.ScheduleEntry
	replaced         bool
	saved            []model.ContentCursor
}

func (m *memSession) Cursors(context.Context) ([]model.ContentCursor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.ContentCursor
	for _, c := range m.s.cursors {
		if c.UserID == m.owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memSession) EntriesInRange(_ context.Context, start, end string) ([]model.ScheduleEntry, error) {
	var out []model.ScheduleEntry
	for _, e := range m.s.list(m.owner) {
		if e.SlotDate >= start && e.SlotDate <= end {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memSession) FirstGeneratedAfter(_ context.Context, end string) (map[model.CursorKey]model.CursorSnapshot, error) {
	out := map[model.CursorKey]model.CursorSnapshot{}
	for _, e := range m.s.list(m.owner) {
		if e.SlotDate <= end || !e.Generated() || e.CursorBefore == nil {
			continue
		}
		if _, ok := out[e.CursorKey()]; !ok {
			out[e.CursorKey()] = *e.CursorBefore
		}
	}
	return out, nil
}

func (m *memSession) ReplaceGenerated(_ context.Context, start, end string, batch []model.ScheduleEntry) (int64, error) {
	var n int64
	for _, e := range m.s.list(m.owner) {
		if e.Generated() && e.SlotDate >= start && e.SlotDate <= end {
			n++
		}
	}
	m.delStart, m.delEnd, m.batch, m.replaced = start, end, batch, true
	return n, nil
}

func (m *memSession) SaveCursors(_ context.Context, cursors []model.ContentCursor) error {
	m.saved = append(m.saved, cursors...)
	return nil
}

func (m *memSession) Commit() error {
	if m.done {
		return errors.New("session already closed")
	}
	m.done = true
	defer m.lock.Unlock()

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.commitErr != nil {
		return m.s.commitErr
	}
	if m.replaced {
		kept := m.s.entries[:0:0]
		for _, e := range m.s.entries {
			if e.UserID == m.owner && e.Generated() && e.SlotDate >= m.delStart && e.SlotDate <= m.delEnd {
				continue
			}
			kept = append(kept, e)
		}
		for _, e := range m.batch {
			m.s.nextID++
			e.ID = m.s.nextID
			kept = append(kept, e)
		}
		m.s.entries = kept
	}
	for _, c := range m.saved {
		m.s.cursors[c.Key()] = c
	}
	return nil
}

func (m *memSession) Rollback() error {
	if m.done {
		return nil
	}
	m.done = true
	m.lock.Unlock()
	return nil
}
