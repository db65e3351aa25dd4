package discovery

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/indaco/projfind/internal/enumerate"
	"github.com/indaco/projfind/internal/marker"
	"github.com/puzpuzpuz/xsync/v3"
)

// event is one message from a producer. depth is relative to the
// producer's own start path.
type event struct {
	producer int
	unit     unit
	depth    int
	done     bool
}

// levelOrdered is implemented by enumerators whose entries never decrease
// in depth.
type levelOrdered interface {
	LevelOrdered() bool
}

func isLevelOrdered(e enumerate.Enumerator) bool {
	lo, ok := e.(levelOrdered)
	return ok && lo.LevelOrdered()
}

// run holds the state shared by the dispatcher and the workers of one
// Discover call.
type run struct {
	svc           *Service
	ctx           context.Context
	cancel        context.CancelFunc
	roots         []string
	maxDepth      int
	limit         int
	alwaysSurface []marker.Kind

	// seen holds every claimed directory path, symlink targets included.
	seen    *xsync.MapOf[string, struct{}]
	set     *resultSet
	units   chan unit
	pending sync.WaitGroup
}

// work processes units until the channel is closed. Units received after
// cancellation are acknowledged without being processed.
func (r *run) work() {
	for u := range r.units {
		if r.ctx.Err() == nil {
			r.process(u)
		}
		r.pending.Done()
	}
}

// claim reports whether path was not seen before.
func (r *run) claim(path string) bool {
	_, loaded := r.seen.LoadOrStore(path, struct{}{})
	return !loaded
}

func (r *run) submit(u unit) {
	r.pending.Add(1)
	r.units <- u
}

// dispatch consumes producer events until the channel is closed and reports
// whether the result cap stopped the run.
//
// Without a cap, units go to the workers as they arrive. With a cap, units
// are grouped by depth and each depth level is processed completely before
// the next one starts. The run stops after the first level at which the
// visible projects reach the cap, so the reported projects are exactly the
// shallowest ones in (depth, path) order.
func (r *run) dispatch(events <-chan event, ordered bool) bool {
	if r.limit <= 0 {
		for ev := range events {
			if !ev.done && r.claim(ev.unit.path) {
				r.submit(ev.unit)
			}
		}
		r.pending.Wait()
		return false
	}

	var (
		buckets  = make(map[int][]unit)
		frontier = make([]int, len(r.roots))
		done     = make([]bool, len(r.roots))
		next     = 0
		capped   = false
	)

	// closed reports whether no producer can still yield a unit at level.
	closed := func(level int) bool {
		for i := range frontier {
			if !done[i] && frontier[i] <= level {
				return false
			}
		}
		return true
	}

	for ev := range events {
		if capped || r.ctx.Err() != nil {
			continue
		}

		if ev.done {
			done[ev.producer] = true
		} else {
			if ordered {
				frontier[ev.producer] = ev.depth
			}
			if r.claim(ev.unit.path) {
				level, _ := rootDepth(ev.unit.path, r.roots)
				level = max(level, next)
				buckets[level] = append(buckets[level], ev.unit)
			}
		}

		for next <= r.maxDepth && closed(next) && r.ctx.Err() == nil {
			batch := buckets[next]
			delete(buckets, next)
			if r.runLevel(next, batch) {
				r.svc.logger.Debug("result cap reached, stopping discovery", "max_results", r.limit, "depth", next)
				capped = true
				r.cancel()
				break
			}
			next++
		}
	}
	return capped
}

// runLevel processes every unit of one depth level and reports whether the
// visible projects at or above that level reach the cap.
func (r *run) runLevel(level int, batch []unit) bool {
	slices.SortFunc(batch, func(a, b unit) int { return strings.Compare(a.path, b.path) })
	for _, u := range batch {
		r.submit(u)
	}
	r.pending.Wait()
	if r.ctx.Err() != nil {
		return false
	}

	projects, _ := r.set.snapshot()
	Resolve(projects, r.alwaysSurface)
	visible := 0
	for _, p := range projects {
		if !p.Suppressed && p.Depth <= level {
			visible++
		}
	}
	return visible >= r.limit
}
