package lmdiskann

import "context"

// Result is a single ranked hit returned by Search.
type Result struct {
	ExternalID int64
	Key        string
	Distance   float64
}

// Search returns up to topk nearest neighbors of query, ranked ascending
// by distance. An empty index returns an empty, nil-error result.
func (idx *Index[T]) Search(ctx context.Context, query []T, topk int) ([]Result, error) {
	if topk <= 0 {
		return nil, ErrInvalidTopK
	}
	if len(query) != idx.dim {
		err := &ErrDimensionMismatch{Expected: idx.dim, Actual: len(query)}
		idx.opts.Logger.LogSearch(ctx, topk, 0, err)
		return nil, err
	}

	if idx.meta.Entrypoint < 0 {
		idx.opts.Logger.LogSearch(ctx, topk, 0, nil)
		return nil, nil
	}

	ef := idx.opts.EFSearch
	if ef < topk {
		ef = topk
	}
	cands := idx.traverse(ctx, query, ef, 0, false)
	if len(cands) > topk {
		cands = cands[:topk]
	}

	out := make([]Result, 0, len(cands))
	for _, c := range cands {
		key, _ := idx.keys.Reverse(c.ID)
		out = append(out, Result{
			ExternalID: externalID(c.ID),
			Key:        key,
			Distance:   c.Distance,
		})
	}

	idx.opts.Logger.LogSearch(ctx, topk, len(out), nil)
	return out, nil
}

// GetVectorByID returns a copy of the vector stored at externalID.
func (idx *Index[T]) GetVectorByID(externalID int64) ([]T, error) {
	id, err := toInternalID(externalID)
	if err != nil {
		return nil, err
	}
	if uint32(id) >= idx.meta.NumPoints {
		return nil, &ErrInvalidID{ID: externalID, Reason: "out of range"}
	}
	if !idx.isLive(id) {
		return nil, wrapNotFound(&ErrInvalidID{ID: externalID, Reason: "tombstoned"})
	}
	src := idx.vectorAt(id)
	out := make([]T, len(src))
	copy(out, src)
	return out, nil
}

// GetVectorByKey returns a copy of the vector registered under key.
func (idx *Index[T]) GetVectorByKey(key string) ([]T, error) {
	id, err := idx.keys.Forward(key)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return idx.GetVectorByID(externalID(id))
}
