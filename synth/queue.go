package synth

import (
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultQueueCapacity = 1024

	// Producers waiting on a full queue yield this many times before they
	// start sleeping for waitInterval between attempts.
	yieldAttempts = 64
	waitInterval  = 100 * time.Microsecond
)

// commandQueue is a bounded ring of commands with any number of producers
// and exactly one consumer. Producers serialize on mu; the consumer never
// takes it and never blocks.
type commandQueue struct {
	mu   sync.Mutex
	buf  []Command
	mask uint64

	head atomic.Uint64 // next slot to read, written by the consumer
	tail atomic.Uint64 // next slot to write, written by producers
}

func newCommandQueue(capacity int) *commandQueue {
	size := 1
	if capacity > 1 {
		size = 1 << bits.Len(uint(capacity-1))
	}

	return &commandQueue{
		buf:  make([]Command, size),
		mask: uint64(size - 1),
	}
}

// push appends c and reports false if the queue is full.
func (q *commandQueue) push(c Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.buf)) {
		return false
	}

	q.buf[tail&q.mask] = c
	q.tail.Store(tail + 1)

	return true
}

// pop removes the oldest command. Consumer only.
func (q *commandQueue) pop() (Command, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Command{}, false
	}

	c := q.buf[head&q.mask]
	q.head.Store(head + 1)

	return c, true
}

// len returns the number of queued commands at the time of the call.
func (q *commandQueue) len() int {
	head := q.head.Load()
	return int(q.tail.Load() - head)
}

func (q *commandQueue) capacity() int { return len(q.buf) }

// backoff pauses a producer that found the queue full.
func backoff(attempt int) {
	if attempt < yieldAttempts {
		runtime.Gosched()
		return
	}

	time.Sleep(waitInterval)
}
