package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc/pool"
)

// Skipped names a requested content item that was left out of a run and
// why.
type Skipped struct {
	ContentID uint64 `json:"content_id"`
	Reason    string `json:"reason"`
}

// ResolveOptions bounds the fan-out of Resolve.
type ResolveOptions struct {
	Workers  int
	Attempts uint
	Delay    time.Duration
}

// Resolve looks up the inventories of ids concurrently.  Transient failures
// are retried; items that still fail are reported as Skipped in the order
// they were requested.  Duplicate ids are looked up once.  The only error
// returned is the context's.
func Resolve(ctx context.Context, src Source, ids []uint64, opts ResolveOptions) (map[uint64]Inventory, []Skipped, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	var (
		mu     sync.Mutex
		found  = make(map[uint64]Inventory, len(ids))
		failed = make(map[uint64]error)
		seen   = make(map[uint64]bool, len(ids))
	)
	p := pool.New().WithMaxGoroutines(opts.Workers)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		id := id
		p.Go(func() {
			inv, err := retry.DoWithData(
				func() (Inventory, error) { return src.GetEpisodeInventory(ctx, id) },
				retry.Context(ctx),
				retry.Attempts(opts.Attempts),
				retry.Delay(opts.Delay),
				retry.DelayType(retry.BackOffDelay),
				retry.LastErrorOnly(true),
				retry.RetryIf(func(err error) bool { return !errors.Is(err, ErrNotFound) }),
			)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[id] = err
				return
			}
			inv.ContentID = id
			found[id] = inv
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var skipped []Skipped
	for _, id := range ids {
		err, ok := failed[id]
		if !ok {
			continue
		}
		delete(failed, id)
		reason := "catalog lookup failed: " + err.Error()
		if errors.Is(err, ErrNotFound) {
			reason = "content not found in catalog"
		}
		skipped = append(skipped, Skipped{ContentID: id, Reason: reason})
	}
	return found, skipped, nil
}
