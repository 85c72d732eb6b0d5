package engine

import "sync"

// changeQueue is a thread-safe, deduplicated FIFO of variable names
// pending outbound transmission.
//
// Membership is checked before insert, so a name appears at most once
// no matter how often its variable changes; the value is never captured
// here - it is read from the adapter at flush time. Drain is tick-driven
// (the flush loop polls Front), so unlike a work queue there is no
// blocking dequeue or wakeup signal.
//
// Each pending name carries a generation, bumped on every Enqueue.
// Remove takes the generation observed at Front and keeps the entry
// when the generation has moved since - a change that lands while its
// previous value is in flight on the wire stays pending instead of
// being wiped by the completion of the stale send.
//
// Thread-safety covers external enqueuing (the host's VariableChanged)
// while the handler's run loop drains.
type changeQueue struct {
	mu     sync.Mutex
	names  []string
	member map[string]uint64
	gen    uint64
}

// newChangeQueue creates an empty change queue.
func newChangeQueue() *changeQueue {
	return &changeQueue{
		member: make(map[string]uint64),
	}
}

// Enqueue appends name unless it is already pending, and bumps the
// name's generation either way. Returns false for a duplicate.
func (q *changeQueue) Enqueue(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.gen++
	if _, ok := q.member[name]; ok {
		q.member[name] = q.gen
		return false
	}
	q.member[name] = q.gen
	q.names = append(q.names, name)
	return true
}

// Front returns the oldest pending name and its current generation
// without removing it. A name leaves the queue only via Remove, after
// successful dispatch.
func (q *changeQueue) Front() (string, uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.names) == 0 {
		return "", 0, false
	}
	name := q.names[0]
	return name, q.member[name], true
}

// Remove deletes name from the queue if its generation still matches
// gen. An entry re-enqueued after Front stays pending, so the change
// that raced with the in-flight send is dispatched on a later tick.
func (q *changeQueue) Remove(name string, gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	current, ok := q.member[name]
	if !ok || current != gen {
		return
	}
	delete(q.member, name)
	for i, n := range q.names {
		if n == name {
			q.names = append(q.names[:i], q.names[i+1:]...)
			break
		}
	}
}

// Len returns the number of pending names.
func (q *changeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.names)
}
