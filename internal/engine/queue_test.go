package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeQueue_EnqueueFront(t *testing.T) {
	q := newChangeQueue()

	ok := q.Enqueue("score")
	require.True(t, ok, "first enqueue should succeed")

	name, _, ok := q.Front()
	require.True(t, ok)
	assert.Equal(t, "score", name)
}

func TestChangeQueue_Deduplicates(t *testing.T) {
	q := newChangeQueue()

	assert.True(t, q.Enqueue("score"))
	assert.False(t, q.Enqueue("score"), "duplicate enqueue should report false")
	assert.Equal(t, 1, q.Len())
}

func TestChangeQueue_FIFOOverDistinctNames(t *testing.T) {
	q := newChangeQueue()

	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c")
	q.Enqueue("a") // duplicate keeps original position

	name, gen, _ := q.Front()
	assert.Equal(t, "a", name)
	q.Remove(name, gen)

	name, gen, _ = q.Front()
	assert.Equal(t, "b", name)
	q.Remove(name, gen)

	name, _, _ = q.Front()
	assert.Equal(t, "c", name)
}

func TestChangeQueue_FrontDoesNotRemove(t *testing.T) {
	q := newChangeQueue()
	q.Enqueue("score")

	q.Front()
	q.Front()

	assert.Equal(t, 1, q.Len(), "Front must not dequeue")
}

func TestChangeQueue_RemoveUnknownIsNoop(t *testing.T) {
	q := newChangeQueue()
	q.Enqueue("score")
	_, gen, _ := q.Front()

	q.Remove("level", gen)

	assert.Equal(t, 1, q.Len())
}

func TestChangeQueue_RemoveStaleGenerationKeepsEntry(t *testing.T) {
	q := newChangeQueue()
	q.Enqueue("score")

	name, gen, ok := q.Front()
	require.True(t, ok)

	// The variable changes again while its previous value is in flight.
	assert.False(t, q.Enqueue("score"), "still pending, dedup applies")

	q.Remove(name, gen)
	assert.Equal(t, 1, q.Len(), "entry re-enqueued mid-flight must stay pending")

	// The next observation sees the moved generation and may remove it.
	name, gen, ok = q.Front()
	require.True(t, ok)
	assert.Equal(t, "score", name)
	q.Remove(name, gen)
	assert.Equal(t, 0, q.Len())
}

func TestChangeQueue_ReenqueueAfterRemove(t *testing.T) {
	q := newChangeQueue()
	q.Enqueue("score")
	_, gen, _ := q.Front()
	q.Remove("score", gen)

	assert.True(t, q.Enqueue("score"), "name should be enqueueable again after dispatch")
}

func TestChangeQueue_FrontEmpty(t *testing.T) {
	q := newChangeQueue()

	_, _, ok := q.Front()
	assert.False(t, ok)
}

func TestChangeQueue_ThreadSafe(t *testing.T) {
	q := newChangeQueue()

	const producers = 10
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Enqueue(string(rune('a' + id)))
			}
		}(p)
	}
	wg.Wait()

	// Each producer used one distinct name; dedup leaves exactly one each.
	assert.Equal(t, producers, q.Len())
}
