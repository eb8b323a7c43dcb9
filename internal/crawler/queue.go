package crawler

import (
	"sync"

	"graph-crawler/internal/models"
)

// WorkQueue is an unbounded multi-producer/multi-consumer task queue that hands out
// tasks one depth level at a time. Push never blocks; Pop parks the caller on a
// condition variable until a task of the current level is available or the queue
// is shut down.
//
// The current level is the lowest depth that still has queued or in-flight tasks.
// A task popped from the queue stays in flight until the caller reports it with Done,
// so no depth d+1 task starts while a depth d task can still discover new nodes.
type WorkQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	levels map[int][]models.Task // queued tasks by depth
	open   map[int]int           // queued plus in-flight tasks by depth
	queued int
	closed bool
}

// NewWorkQueue returns an empty, open queue.
func NewWorkQueue() *WorkQueue {
	q := &WorkQueue{
		levels: make(map[int][]models.Task),
		open:   make(map[int]int),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues task and wakes one waiting consumer.
func (q *WorkQueue) Push(task models.Task) {
	q.mu.Lock()
	q.levels[task.Depth] = append(q.levels[task.Depth], task)
	q.open[task.Depth]++
	q.queued++
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop blocks until a task of the current level is available or the queue is shut down.
// It returns ok=false only once shutdown has been signaled and the queue is drained.
// Every task returned with ok=true must be reported with Done.
func (q *WorkQueue) Pop() (models.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if depth, ok := q.readyLevel(); ok {
			return q.take(depth), true
		}
		if q.closed && q.queued == 0 {
			return models.Task{}, false
		}
		q.cond.Wait()
	}
}

// Done marks a popped task of the given depth as finished. When it was the last open
// task of its level, consumers waiting on the next level are woken.
func (q *WorkQueue) Done(depth int) {
	q.mu.Lock()
	n := q.open[depth] - 1
	if n < 0 {
		q.mu.Unlock()
		panic("crawler: WorkQueue.Done without a matching Pop")
	}
	if n > 0 {
		q.open[depth] = n
		q.mu.Unlock()
		return
	}
	delete(q.open, depth)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// readyLevel returns the depth a consumer may take from. After shutdown the level
// gate is lifted and leftover tasks drain lowest depth first.
func (q *WorkQueue) readyLevel() (int, bool) {
	if q.queued == 0 {
		return 0, false
	}
	if q.closed {
		return lowestKey(q.levels), true
	}
	current := lowestKey(q.open)
	return current, len(q.levels[current]) > 0
}

func (q *WorkQueue) take(depth int) models.Task {
	items := q.levels[depth]
	task := items[0]
	items[0] = models.Task{}
	if len(items) == 1 {
		delete(q.levels, depth)
	} else {
		q.levels[depth] = items[1:]
	}
	q.queued--
	return task
}

func lowestKey[V any](m map[int]V) int {
	first := true
	lowest := 0
	for k := range m {
		if first || k < lowest {
			lowest = k
			first = false
		}
	}
	return lowest
}

// Shutdown permanently closes the queue and wakes every blocked consumer. Safe to call repeatedly.
func (q *WorkQueue) Shutdown() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Len reports the number of queued tasks.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queued
}
