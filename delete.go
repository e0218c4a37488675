package lmdiskann

import "context"

// DeleteByID removes the node with the given external ID. It is an error
// to delete an out-of-range or already-tombstoned ID.
func (idx *Index[T]) DeleteByID(ctx context.Context, extID int64) error {
	id, err := toInternalID(extID)
	if err != nil {
		idx.opts.Logger.LogDelete(ctx, 0, err)
		return err
	}
	if err := idx.deleteInternal(id); err != nil {
		idx.opts.Logger.LogDelete(ctx, id, err)
		return err
	}
	idx.opts.Logger.LogDelete(ctx, id, nil)
	return nil
}

// DeleteByKey removes the node registered under key. Unlike DeleteByID,
// an unknown key is not an error: it returns (false, nil).
func (idx *Index[T]) DeleteByKey(ctx context.Context, key string) (bool, error) {
	id, err := idx.keys.Forward(key)
	if err != nil {
		return false, nil
	}
	if err := idx.deleteInternal(id); err != nil {
		idx.opts.Logger.LogDelete(ctx, id, err)
		return false, err
	}
	idx.opts.Logger.LogDelete(ctx, id, nil)
	return true, nil
}

func (idx *Index[T]) deleteInternal(id uint32) error {
	if uint32(id) >= idx.meta.NumPoints {
		return &ErrInvalidID{ID: externalID(id), Reason: "out of range"}
	}
	if !idx.isLive(id) {
		return &ErrInvalidID{ID: externalID(id), Reason: "already deleted"}
	}

	for _, n := range idx.neighbors(id) {
		remaining := make([]uint32, 0, idx.maxDegree)
		for _, nn := range idx.neighbors(n) {
			if nn != id {
				remaining = append(remaining, nn)
			}
		}
		idx.setNeighbors(n, remaining)
	}

	idx.setNeighbors(id, nil)

	if idx.meta.Entrypoint == int64(id) {
		idx.meta.Entrypoint = idx.nextLiveEntrypoint(id)
	}

	idx.meta.FreeList = append(idx.meta.FreeList, id)
	idx.live.Clear(uint(id))
	idx.zeroVector(id)

	key, err := idx.keys.Reverse(id)
	if err == nil {
		idx.keys.DeleteForward(key)
	}
	idx.keys.DeleteReverse(id)

	return idx.commitMeta()
}

// nextLiveEntrypoint scans ascending internal IDs for the first live node
// other than excluded, returning -1 if none exists.
func (idx *Index[T]) nextLiveEntrypoint(excluded uint32) int64 {
	for i := uint32(0); i < idx.meta.NumPoints; i++ {
		if i == excluded {
			continue
		}
		if idx.isLive(i) {
			return int64(i)
		}
	}
	return -1
}
