package lmdiskann

import (
	"context"
	"sort"

	"github.com/mantzaris/lmdiskann/internal/pqueue"
)

// candidate is a (distance, internal ID) pair produced by traversal.
type candidate struct {
	ID       uint32
	Distance float64
}

// traverse performs a best-first expansion from the current entrypoint
// toward query, returning up to ef candidates sorted ascending by
// distance. When hasExclude is true, excludeID is never admitted to the
// result or frontier (used by Insert so a node being inserted cannot
// become its own neighbor candidate); when it is false, excludeID is
// ignored.
func (idx *Index[T]) traverse(ctx context.Context, query []T, ef int, excludeID uint32, hasExclude bool) []candidate {
	if idx.meta.Entrypoint < 0 {
		return nil
	}
	entry := uint32(idx.meta.Entrypoint)

	frontier := idx.frontier
	result := idx.result
	seen := idx.seen
	frontier.Reset()
	result.Reset()
	seen.Reset()
	seen.EnsureCapacity(idx.capacity())

	admit := func(id uint32, d float64) {
		if hasExclude && id == excludeID {
			return
		}
		if !idx.isLive(id) {
			// Defensive: invariant 1 guarantees neighbors are always live,
			// but a crash mid-mutation could leave a torn adjacency row.
			return
		}
		frontier.PushItem(pqueue.Item{ID: id, Distance: d})
		if result.Len() < ef {
			result.PushItem(pqueue.Item{ID: id, Distance: d})
			return
		}
		worst, _ := result.TopItem()
		if d < worst.Distance {
			result.PopItem()
			result.PushItem(pqueue.Item{ID: id, Distance: d})
		}
	}

	if seen.Visit(entry) {
		admit(entry, idx.dist(query, idx.vectorAt(entry)))
	}

	for frontier.Len() > 0 {
		// Traversal has no side effects, so an abandoned context simply
		// stops expansion early and returns whatever was accumulated —
		// no error, no partial-mutation cleanup needed (§5).
		if ctx.Err() != nil {
			break
		}

		top, _ := frontier.TopItem()
		if result.Len() >= ef {
			worst, _ := result.TopItem()
			if top.Distance > worst.Distance {
				break
			}
		}
		cur, _ := frontier.PopItem()

		for _, n := range idx.neighbors(cur.ID) {
			if !seen.Visit(n) {
				continue
			}
			d := idx.dist(query, idx.vectorAt(n))
			admit(n, d)
		}
	}

	out := make([]candidate, 0, result.Len())
	for result.Len() > 0 {
		item, _ := result.PopItem()
		out = append(out, candidate{ID: item.ID, Distance: item.Distance})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	return out
}
