package lmdiskann

import "sort"

// prune reduces candidates (neighbor IDs of owner, with precomputed
// distance to owner) to at most maxDegree entries.
//
// The default criterion keeps the maxDegree candidates closest to owner
// (ties broken by ascending internal ID) — the source's own pruning rule.
// When Options.DiversifyPrune is set, an alpha-RNG diversifying pass is
// applied instead: candidates are considered in ascending distance order
// and a candidate is rejected if some already-kept candidate is closer to
// it than owner's distance to it divided by alpha, which spreads edges out
// directionally instead of clustering them all on the closest side of the
// owner. See the pruning-criterion decision in DESIGN.md for why
// distance-to-owner remains the default.
func (idx *Index[T]) prune(owner uint32, cands []candidate) []uint32 {
	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Distance != sorted[j].Distance {
			return sorted[i].Distance < sorted[j].Distance
		}
		return sorted[i].ID < sorted[j].ID
	})

	if len(sorted) <= idx.maxDegree {
		ids := make([]uint32, len(sorted))
		for i, c := range sorted {
			ids[i] = c.ID
		}
		return ids
	}

	if !idx.opts.DiversifyPrune {
		out := make([]uint32, 0, idx.maxDegree)
		for _, c := range sorted[:idx.maxDegree] {
			out = append(out, c.ID)
		}
		return out
	}

	kept := make([]candidate, 0, idx.maxDegree)
	for _, c := range sorted {
		if len(kept) >= idx.maxDegree {
			break
		}
		dominated := false
		for _, k := range kept {
			if idx.dist(idx.vectorAt(k.ID), idx.vectorAt(c.ID))*idx.opts.Alpha < c.Distance {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, c)
		}
	}

	// Backfill from the closest unused candidates if alpha-pruning left
	// room under maxDegree, so diversification never under-fills the row
	// relative to the non-diversified criterion.
	if len(kept) < idx.maxDegree {
		have := make(map[uint32]bool, len(kept))
		for _, k := range kept {
			have[k.ID] = true
		}
		for _, c := range sorted {
			if len(kept) >= idx.maxDegree {
				break
			}
			if !have[c.ID] {
				kept = append(kept, c)
				have[c.ID] = true
			}
		}
	}

	out := make([]uint32, len(kept))
	for i, c := range kept {
		out[i] = c.ID
	}
	return out
}
