package pqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinQueueOrdering(t *testing.T) {
	q := NewMin(4)
	q.PushItem(Item{ID: 1, Distance: 5})
	q.PushItem(Item{ID: 2, Distance: 1})
	q.PushItem(Item{ID: 3, Distance: 3})

	top, ok := q.TopItem()
	assert.True(t, ok)
	assert.Equal(t, uint32(2), top.ID)

	var order []uint32
	for q.Len() > 0 {
		item, _ := q.PopItem()
		order = append(order, item.ID)
	}
	assert.Equal(t, []uint32{2, 3, 1}, order)
}

func TestMaxQueueOrdering(t *testing.T) {
	q := NewMax(4)
	q.PushItem(Item{ID: 1, Distance: 5})
	q.PushItem(Item{ID: 2, Distance: 1})
	q.PushItem(Item{ID: 3, Distance: 3})

	top, ok := q.TopItem()
	assert.True(t, ok)
	assert.Equal(t, uint32(1), top.ID)
}

func TestQueueEmptyPop(t *testing.T) {
	q := NewMin(0)
	_, ok := q.PopItem()
	assert.False(t, ok)
}

func TestQueueReset(t *testing.T) {
	q := NewMin(2)
	q.PushItem(Item{ID: 1, Distance: 1})
	q.Reset()
	assert.Equal(t, 0, q.Len())
}
