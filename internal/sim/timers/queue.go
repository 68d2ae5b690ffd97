// Package timers is a tick-driven delayed-task queue. It is not safe for
// concurrent use; the owning tick loop calls Advance once per tick.
package timers

import "container/heap"

type Task struct {
	q         *Queue
	due       uint64
	seq       uint64
	period    uint64
	fn        func()
	index     int
	cancelled bool
}

// Cancel removes the task. Safe to call from inside its own callback and on
// tasks that already ran.
func (t *Task) Cancel() {
	if t == nil || t.cancelled {
		return
	}
	t.cancelled = true
	if t.index >= 0 && t.q != nil {
		heap.Remove(&t.q.h, t.index)
	}
}

// Active reports whether the task will fire again.
func (t *Task) Active() bool { return t != nil && !t.cancelled }

// Due is the tick the task fires next.
func (t *Task) Due() uint64 { return t.due }

type Queue struct {
	now uint64
	seq uint64
	h   taskHeap
}

func New() *Queue { return &Queue{} }

func (q *Queue) Now() uint64 { return q.now }

// Len counts pending tasks.
func (q *Queue) Len() int { return len(q.h) }

// After runs fn once, delay ticks from now. A delay of 0 runs on the next tick.
func (q *Queue) After(delay uint64, fn func()) *Task {
	return q.schedule(delay, 0, fn)
}

// Every runs fn after delay and then every period ticks until cancelled.
func (q *Queue) Every(delay, period uint64, fn func()) *Task {
	if period == 0 {
		period = 1
	}
	return q.schedule(delay, period, fn)
}

func (q *Queue) schedule(delay, period uint64, fn func()) *Task {
	if delay == 0 {
		delay = 1
	}
	q.seq++
	t := &Task{q: q, due: q.now + delay, seq: q.seq, period: period, fn: fn, index: -1}
	heap.Push(&q.h, t)
	return t
}

// Advance moves to the next tick and runs every task due at it, ordered by
// due tick then scheduling order. Tasks scheduled by a callback for the same
// tick are not possible (minimum delay is 1), so one pass drains the tick.
func (q *Queue) Advance() {
	q.now++
	for len(q.h) > 0 && q.h[0].due <= q.now {
		t := heap.Pop(&q.h).(*Task)
		if t.period > 0 {
			t.due += t.period
			q.seq++
			t.seq = q.seq
			heap.Push(&q.h, t)
		} else {
			t.cancelled = true
		}
		t.fn()
	}
}

// CancelAll drops every pending task.
func (q *Queue) CancelAll() {
	for _, t := range q.h {
		t.cancelled = true
		t.index = -1
	}
	q.h = nil
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
