package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/watch-rotation-scheduler/internal/catalog"
	"github.com/iliyamo/watch-rotation-scheduler/internal/model"
	"github.com/iliyamo/watch-rotation-scheduler/internal/queue"
	"github.com/iliyamo/watch-rotation-scheduler/internal/repository"
	"github.com/iliyamo/watch-rotation-scheduler/internal/rotation"
)

// Phase is a state of a generation run.
type Phase string

const (
	PhaseValidating         Phase = "validating"
	PhaseBuildingGrid       Phase = "building_grid"
	PhaseAssigning          Phase = "assigning"
	PhaseResolvingConflicts Phase = "resolving_conflicts"
	PhasePersisting         Phase = "persisting"
	PhaseDone               Phase = "done"
	PhaseFailed             Phase = "failed"
)

// Options tunes a Generator.
type Options struct {
	MaxDays int                    // widest accepted range, 0 means unbounded
	Resolve catalog.ResolveOptions // inventory lookup fan-out and retries
}

// Result is the outcome of a successful run.  CreatedCount always equals
// len(ScheduleEntries); Skipped lists requested items left out and why.
type Result struct {
	GenerationID    string                `json:"generation_id"`
	CreatedCount    int                   `json:"created_count"`
	DeletedCount    int64                 `json:"deleted_count"`
	ScheduleEntries []model.ScheduleEntry `json:"schedule_entries"`
	Skipped         []catalog.Skipped     `json:"skipped"`
}

// Generator turns a queue or rotation group into schedule entries.  It is
// safe for concurrent use; runs for the same owner serialize on the
// store's lock.
type Generator struct {
	catalog Catalog
	queues  QueueSource
	groups  GroupSource
	store   Store
	events  EventPublisher
	opts    Options
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string
}

// NewGenerator wires a Generator.  events may be nil.
func NewGenerator(cat Catalog, queues QueueSource, groups GroupSource, store Store, events EventPublisher, opts Options, log zerolog.Logger) *Generator {
	if events == nil {
		events = nopPublisher{}
	}
	return &Generator{
		catalog: cat,
		queues:  queues,
		groups:  groups,
		store:   store,
		events:  events,
		opts:    opts,
		log:     log,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// source is the resolved input of a run: items in rotation order and the
// effective policy.
type source struct {
	items      []rotation.Item
	groupID    uint64
	entryType  string
	strategy   rotation.Strategy
	rerun      rotation.RerunPolicy
	sourceType string
	sourceID   uint64
}

// run carries the per-invocation logger and phase.
type run struct {
	id    string
	log   zerolog.Logger
	phase Phase
}

func (r *run) enter(p Phase) {
	r.phase = p
	r.log.Debug().Str("phase", string(p)).Msg("phase")
}

func (r *run) fail(err error) error {
	r.log.Warn().Err(err).Str("phase", string(PhaseFailed)).Str("failed_in", string(r.phase)).Msg("generation failed")
	return err
}

// conflict wraps a store failure of the current phase.
func (r *run) conflict(err error) error {
	return r.fail(&ConflictResolutionError{
		Phase:     r.phase,
		Retryable: errors.Is(err, repository.ErrConflict),
		Err:       err,
	})
}

// Generate executes one run.  Validation errors are returned before any
// I/O.  An empty source yields a zero-entry result.  Cancelling ctx aborts
// the run up to the point where the write begins; from then on the write
// completes or rolls back as a whole.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	started := g.now()
	r := &run{id: g.newID()}
	r.log = g.log.With().Str("generation_id", r.id).Uint64("owner_id", req.OwnerID).Logger()

	r.enter(PhaseValidating)
	p, err := g.validate(req)
	if err != nil {
		return nil, r.fail(err)
	}
	src, err := g.loadSource(ctx, p)
	var empty *EmptySourceError
	if errors.As(err, &empty) {
		r.log.Info().Str("source_type", empty.SourceType).Uint64("source_id", empty.SourceID).Msg("nothing to schedule")
		r.enter(PhaseDone)
		return g.emptyResult(r, nil), nil
	}
	if err != nil {
		return nil, r.fail(err)
	}

	ids := make([]uint64, len(src.items))
	for i, it := range src.items {
		ids[i] = it.ContentID
	}
	inventories, skipped, err := catalog.Resolve(ctx, g.catalog, ids, g.opts.Resolve)
	if err != nil {
		return nil, r.fail(err)
	}
	for _, s := range skipped {
		r.log.Warn().Uint64("content_id", s.ContentID).Str("reason", s.Reason).Msg("content skipped")
	}
	items := src.items[:0:0]
	for _, it := range src.items {
		if _, ok := inventories[it.ContentID]; ok {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		r.log.Info().Int("skipped", len(skipped)).Msg("no content left after catalog lookup")
		r.enter(PhaseDone)
		return g.emptyResult(r, skipped), nil
	}

	r.enter(PhaseBuildingGrid)
	grid, err := rotation.NewGrid(p.grid)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, r.fail(err)
	}
	start, end := p.startDate, p.endDate

	session, err := g.store.Begin(ctx, req.OwnerID)
	if err != nil {
		return nil, g.storeErr(ctx, r, err)
	}
	defer func() { _ = session.Rollback() }()

	rows, err := session.Cursors(ctx)
	if err != nil {
		return nil, g.storeErr(ctx, r, err)
	}
	existing, err := session.EntriesInRange(ctx, start, end)
	if err != nil {
		return nil, g.storeErr(ctx, r, err)
	}
	later, err := session.FirstGeneratedAfter(ctx, end)
	if err != nil {
		return nil, g.storeErr(ctx, r, err)
	}
	book := newCursorBook(req.OwnerID, rows)
	original := make(map[model.CursorKey]model.ContentCursor, len(book.rows))
	for k, v := range book.rows {
		original[k] = v
	}
	if n := book.rewind(existing); n > 0 {
		r.log.Debug().Int("scopes", n).Msg("rewound cursors of superseded entries")
	}

	keys := make([]model.CursorKey, len(items))
	cursors := make([]rotation.Cursor, len(items))
	for i, it := range items {
		keys[i] = model.CursorKey{RotationGroupID: src.groupID, ContentID: it.ContentID}
		inv := inventories[it.ContentID]
		c, cerr := toRotation(book.row(keys[i])).Reconcile(inv.Movie(), inv.Total(), inv.SeasonBoundaries, inv.DefaultDurationMinutes)
		var inconsistent *rotation.CursorInconsistencyError
		if errors.As(cerr, &inconsistent) {
			r.log.Warn().Err(cerr).Uint64("content_id", it.ContentID).Msg("cursor clamped to catalog")
		}
		cursors[i] = c
	}
	state, err := rotation.NewState(items, cursors, src.strategy, src.rerun)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(PhaseAssigning)
	assignments, final := rotation.Run(state, grid, blockedBy(existing, r.log))
	batch := g.entries(r.id, req.OwnerID, src, assignments)

	for i, c := range final.Cursors() {
		book.put(applyRotation(book.row(keys[i]), c, inventories[c.ContentID]))
	}
	for k := range book.dirty {
		snap, ok := later[k]
		if !ok {
			continue
		}
		if book.rows[k].Snapshot().Equal(snap) {
			if o, ok := original[k]; ok {
				book.rows[k] = o
			}
			continue
		}
		r.log.Warn().Uint64("content_id", k.ContentID).Uint64("rotation_group_id", k.RotationGroupID).
			Msg("entries generated after this range no longer follow it")
	}

	if err := ctx.Err(); err != nil {
		return nil, r.fail(err)
	}

	// From here on the write runs to completion or rolls back as a whole.
	txCtx := context.WithoutCancel(ctx)
	r.enter(PhaseResolvingConflicts)
	deleted, err := session.ReplaceGenerated(txCtx, start, end, batch)
	if err != nil {
		return nil, r.conflict(err)
	}
	r.enter(PhasePersisting)
	if err := session.SaveCursors(txCtx, book.dirtyRows(keys)); err != nil {
		return nil, r.conflict(err)
	}
	if err := session.Commit(); err != nil {
		return nil, r.conflict(err)
	}
	r.enter(PhaseDone)

	res := &Result{
		GenerationID:    r.id,
		CreatedCount:    len(batch),
		DeletedCount:    deleted,
		ScheduleEntries: batch,
		Skipped:         skipped,
	}
	if res.Skipped == nil {
		res.Skipped = []catalog.Skipped{}
	}
	r.log.Info().
		Int("created", res.CreatedCount).
		Int64("superseded", deleted).
		Int("skipped", len(skipped)).
		Str("strategy", string(src.strategy)).
		Dur("took", g.now().Sub(started)).
		Msg("schedule generated")

	g.publish(txCtx, r, p, src, res)
	return res, nil
}

// storeErr reports a failure while reading under the lock.  A cancelled
// caller surfaces as the context error, everything else as a conflict.
func (g *Generator) storeErr(ctx context.Context, r *run, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return r.fail(fmt.Errorf("%w: %v", cerr, err))
	}
	return r.conflict(err)
}

func (g *Generator) emptyResult(r *run, skipped []catalog.Skipped) *Result {
	if skipped == nil {
		skipped = []catalog.Skipped{}
	}
	return &Result{GenerationID: r.id, ScheduleEntries: []model.ScheduleEntry{}, Skipped: skipped}
}

// loadSource reads the queue or rotation group and settles the effective
// policy.
func (g *Generator) loadSource(ctx context.Context, p *plan) (*source, error) {
	req := p.req
	src := &source{sourceType: p.sourceType}
	var (
		strategy  = p.strategy
		frequency = p.frequency
		reruns    bool
	)
	switch p.sourceType {
	case SourceRotationGroup:
		grp, err := g.groups.GetRotationGroup(ctx, req.SourceID)
		if err != nil {
			return nil, err
		}
		if grp.UserID != req.OwnerID {
			return nil, repository.ErrForbidden
		}
		src.groupID, src.sourceID, src.entryType = grp.ID, grp.ID, model.SourceRotation
		for _, it := range grp.Items {
			src.items = append(src.items, rotation.Item{ContentID: it.ContentID, Weight: it.Weight})
		}
		if strategy == "" {
			s, err := rotation.ParseStrategy(grp.RotationType)
			if err != nil {
				return nil, err
			}
			strategy = s
		}
		if frequency == "" {
			f, err := rotation.ParseFrequency(grp.RerunFrequency)
			if err != nil {
				return nil, err
			}
			frequency = f
		}
		reruns = grp.IncludeReruns
	default:
		if req.SourceID != 0 && req.SourceID != req.OwnerID {
			return nil, repository.ErrForbidden
		}
		ids, err := g.queues.GetQueueOrder(ctx, req.OwnerID)
		if err != nil {
			return nil, err
		}
		src.sourceID, src.entryType = req.OwnerID, model.SourceAuto
		for _, id := range ids {
			src.items = append(src.items, rotation.Item{ContentID: id, Weight: 1})
		}
	}
	if strategy == "" {
		strategy = rotation.RoundRobin
	}
	if frequency == "" {
		frequency = rotation.FrequencySometimes
	}
	if req.IncludeReruns != nil {
		reruns = *req.IncludeReruns
	}
	src.strategy = strategy
	src.rerun = rotation.RerunPolicy{Enabled: reruns, Frequency: frequency}

	seen := map[uint64]bool{}
	items := src.items[:0]
	for _, it := range src.items {
		if seen[it.ContentID] {
			continue
		}
		seen[it.ContentID] = true
		if w, ok := req.RotationWeights[it.ContentID]; ok {
			it.Weight = w
		}
		items = append(items, it)
	}
	src.items = items
	if len(src.items) == 0 {
		return nil, &EmptySourceError{SourceType: src.sourceType, SourceID: src.sourceID}
	}
	return src, nil
}

// entries turns assignments into rows ready for insertion.
func (g *Generator) entries(genID string, ownerID uint64, src *source, as []rotation.Assignment) []model.ScheduleEntry {
	out := make([]model.ScheduleEntry, 0, len(as))
	for _, a := range as {
		id := genID
		snap := snapshotOf(a.CursorBefore)
		e := model.ScheduleEntry{
			UserID:         ownerID,
			ContentID:      a.ContentID,
			SlotDate:       a.Slot.DateString(),
			Track:          a.Slot.Track,
			StartTime:      a.Slot.Start.String(),
			EndTime:        a.Slot.End.String(),
			TimezoneOffset: a.Slot.TimezoneOffset,
			SourceType:     src.entryType,
			IsRerun:        a.IsRerun,
			GenerationID:   &id,
			CursorBefore:   &snap,
		}
		if a.Episode != nil {
			season, episode := a.Episode.Season, a.Episode.Episode
			e.Season, e.Episode = &season, &episode
		}
		if src.entryType == model.SourceRotation {
			gid := src.groupID
			e.RotationGroupID = &gid
		}
		out = append(out, e)
	}
	return out
}

// blockedBy returns a predicate reporting slots that overlap an entry the
// run may not supersede.
func blockedBy(existing []model.ScheduleEntry, log zerolog.Logger) func(rotation.Slot) bool {
	type span struct{ start, end rotation.Clock }
	type lane struct {
		date  string
		track int
	}
	keep := map[lane][]span{}
	for _, e := range existing {
		if e.Generated() {
			continue
		}
		s, err1 := rotation.ParseClock(e.StartTime)
		f, err2 := rotation.ParseClock(e.EndTime)
		if err1 != nil || err2 != nil {
			log.Warn().Uint64("entry_id", e.ID).Msg("ignoring entry with unreadable times")
			continue
		}
		l := lane{e.SlotDate, e.Track}
		keep[l] = append(keep[l], span{s, f})
	}
	if len(keep) == 0 {
		return nil
	}
	return func(slot rotation.Slot) bool {
		date := slot.DateString()
		for _, sp := range keep[lane{date, slot.Track}] {
			if slot.Overlaps(date, slot.Track, sp.start, sp.end) {
				return true
			}
		}
		return false
	}
}

// publish announces a committed run.  It never fails the run.
func (g *Generator) publish(ctx context.Context, r *run, p *plan, src *source, res *Result) {
	reruns := 0
	for _, e := range res.ScheduleEntries {
		if e.IsRerun {
			reruns++
		}
	}
	ev := queue.ScheduleGeneratedEvent{
		GenerationID: res.GenerationID,
		UserID:       p.req.OwnerID,
		SourceType:   src.sourceType,
		SourceID:     src.sourceID,
		StartDate:    p.startDate,
		EndDate:      p.endDate,
		Created:      res.CreatedCount,
		Deleted:      res.DeletedCount,
		Reruns:       reruns,
		GeneratedAt:  g.now().UTC().Format(time.RFC3339),
	}
	for _, s := range res.Skipped {
		ev.SkippedIDs = append(ev.SkippedIDs, s.ContentID)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := g.events.PublishScheduleGenerated(pctx, ev); err != nil {
		r.log.Warn().Err(err).Msg("schedule.generated event not published")
	}
}
