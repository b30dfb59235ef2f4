package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	q := NewRingQueue[int](3)
	assert.True(t, q.IsEmpty())

	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(3))
	assert.True(t, q.IsFull())
	assert.ErrorIs(t, q.Enqueue(4), ErrQueueFull)

	v, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	require.NoError(t, q.Enqueue(4))
	assert.Equal(t, []int{2, 3, 4}, q.Drain())
	assert.Zero(t, q.Len())

	_, err = q.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	_, err = q.Peek()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRingQueueReplace(t *testing.T) {
	q := NewRingQueue[string](1)
	q.Replace("a")
	q.Replace("b")
	q.Replace("c")
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, []string{"c"}, q.Drain())

	wide := NewRingQueue[int](4)
	require.NoError(t, wide.Enqueue(1))
	require.NoError(t, wide.Enqueue(2))
	wide.Replace(9)
	assert.Equal(t, []int{1, 9}, wide.Drain())
}

func TestRingQueueMinimumSize(t *testing.T) {
	q := NewRingQueue[int](0)
	require.NoError(t, q.Enqueue(1))
	assert.True(t, q.IsFull())
}
