package lmdiskann

import "context"

// Insert adds vector under an optional user key, returning the effective
// key (the supplied key, or the stringified external ID if none was
// given) and the external ID assigned to it.
//
// Insert commits its metadata snapshot before returning; a crash between
// writing a candidate's back-patched neighbor row and the final commit
// only affects that one candidate's connectivity (see the back-patch
// transactionality decision in DESIGN.md), never the invariants in §8.
func (idx *Index[T]) Insert(ctx context.Context, vector []T, key string) (string, int64, error) {
	if len(vector) != idx.dim {
		return "", 0, &ErrDimensionMismatch{Expected: idx.dim, Actual: len(vector)}
	}

	id, err := idx.allocateID(ctx)
	if err != nil {
		idx.opts.Logger.LogInsert(ctx, id, err)
		return "", 0, err
	}

	idx.writeVector(id, vector)

	if idx.meta.Entrypoint < 0 {
		idx.setNeighbors(id, nil)
		idx.meta.Entrypoint = int64(id)
		if err := idx.finishInsert(id, key); err != nil {
			idx.opts.Logger.LogInsert(ctx, id, err)
			return "", 0, err
		}
		idx.opts.Logger.LogInsert(ctx, id, nil)
		return idx.keyOrDefault(key, id), externalID(id), nil
	}

	ef := idx.opts.EFConstruction
	if ef < idx.maxDegree {
		ef = idx.maxDegree
	}
	cands := idx.traverse(ctx, vector, ef, id, true)

	neighborIDs := idx.prune(id, cands)
	idx.setNeighbors(id, neighborIDs)

	// Back-patch each neighbor kept as this node's forward edge, so the
	// new node is reachable from the nodes it points to.
	for _, c := range neighborIDs {
		idx.backPatch(c, id)
	}

	if err := idx.finishInsert(id, key); err != nil {
		idx.opts.Logger.LogInsert(ctx, id, err)
		return "", 0, err
	}
	idx.opts.Logger.LogInsert(ctx, id, nil)
	return idx.keyOrDefault(key, id), externalID(id), nil
}

// backPatch appends newID to owner's neighbor row and re-prunes it. It has
// no failure path, so a back-patch never aborts the insert and nothing is
// logged for it.
func (idx *Index[T]) backPatch(owner, newID uint32) {
	existing := idx.neighbors(owner)
	cands := make([]candidate, 0, len(existing)+1)
	ownerVec := idx.vectorAt(owner)
	for _, n := range existing {
		if n == newID {
			return // already present
		}
		cands = append(cands, candidate{ID: n, Distance: idx.dist(ownerVec, idx.vectorAt(n))})
	}
	cands = append(cands, candidate{ID: newID, Distance: idx.dist(ownerVec, idx.vectorAt(newID))})

	pruned := idx.prune(owner, cands)
	idx.setNeighbors(owner, pruned)
}

func (idx *Index[T]) finishInsert(id uint32, key string) error {
	effectiveKey := idx.keyOrDefault(key, id)
	if err := idx.keys.PutForward(effectiveKey, id); err != nil {
		return err
	}
	if err := idx.keys.PutReverse(id, effectiveKey); err != nil {
		return err
	}
	return idx.commitMeta()
}

// allocateID pops a tombstoned slot from the free list if one exists,
// otherwise takes the next dense slot, growing storage if necessary.
func (idx *Index[T]) allocateID(ctx context.Context) (uint32, error) {
	if len(idx.meta.FreeList) > 0 {
		id := idx.meta.FreeList[len(idx.meta.FreeList)-1]
		idx.meta.FreeList = idx.meta.FreeList[:len(idx.meta.FreeList)-1]
		idx.live.Set(uint(id))
		return id, nil
	}

	id := idx.meta.NumPoints
	if err := idx.ensureCapacity(ctx, id); err != nil {
		return 0, err
	}
	idx.meta.NumPoints++
	idx.live.Set(uint(id))
	return id, nil
}
