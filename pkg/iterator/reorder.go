package iterator

import (
	"sync"

	"github.com/chazu/ifcgeom/pkg/element"
)

// result is the outcome of converting one candidate. A candidate may
// produce several stages, one per representation context, or none.
type result struct {
	stages []element.Stage
	err    error
}

// reorderBuffer hands results to a single consumer in submission order.
// Producers reserve a sequence number's slot before working on it, which
// bounds the results held to window.
type reorderBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	slots  map[int]result
	next   int // sequence the consumer takes next
	window int
	closed bool
}

func newReorderBuffer(window int) *reorderBuffer {
	if window < 1 {
		window = 1
	}
	b := &reorderBuffer{slots: make(map[int]result), window: window}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Reserve blocks until seq fits in the window. It returns false once the
// buffer is closed.
func (b *reorderBuffer) Reserve(seq int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for !b.closed && seq >= b.next+b.window {
		b.cond.Wait()
	}
	return !b.closed
}

// Put stores the result for seq. Results put after Close are dropped.
func (b *reorderBuffer) Put(seq int, r result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.slots[seq] = r
	b.cond.Broadcast()
}

// Take blocks until the result for seq is present, removes it and moves
// the window past it. ok is false when the buffer was closed first.
func (b *reorderBuffer) Take(seq int) (r result, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		if r, ok = b.slots[seq]; ok {
			delete(b.slots, seq)
			if seq >= b.next {
				b.next = seq + 1
			}
			b.cond.Broadcast()
			return r, true
		}
		if b.closed {
			return result{}, false
		}
		b.cond.Wait()
	}
}

// Len returns the number of results waiting to be taken.
func (b *reorderBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.slots)
}

// Close wakes every waiter and refuses further results.
func (b *reorderBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.slots = map[int]result{}
	b.cond.Broadcast()
}
