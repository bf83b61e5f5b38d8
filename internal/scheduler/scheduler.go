// Package scheduler runs deferred callbacks measured in world ticks.
package scheduler

import "container/heap"

// Task is a scheduled callback. Repeating tasks may stop themselves by
// returning false from fn; one-shot tasks always run at most once.
type Task struct {
	due       int64
	period    int64 // 0 = one-shot
	owner     int64
	seq       int64
	fn        func() bool
	cancelled bool
}

// Cancelled reports whether the task was cancelled before firing
// (or stopped itself).
func (t *Task) Cancelled() bool {
	return t.cancelled
}

// Scheduler is a monotonic min-heap of tasks keyed by due tick.
// Not safe for concurrent use: the world thread owns it.
type Scheduler struct {
	h   taskHeap
	now int64
	seq int64
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Once schedules fn to fire once, delay ticks from now.
func (s *Scheduler) Once(delay int64, owner int64, fn func()) *Task {
	return s.push(delay, 0, owner, func() bool {
		fn()
		return false
	})
}

// Every schedules fn to fire every period ticks, first firing period ticks
// from now. fn returning false stops the task.
func (s *Scheduler) Every(period int64, owner int64, fn func() bool) *Task {
	if period < 1 {
		period = 1
	}
	return s.push(period, period, owner, fn)
}

func (s *Scheduler) push(delay, period, owner int64, fn func() bool) *Task {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	t := &Task{
		due:    s.now + delay,
		period: period,
		owner:  owner,
		seq:    s.seq,
		fn:     fn,
	}
	heap.Push(&s.h, t)
	return t
}

// Cancel marks t so it never fires again. Safe on nil and on already-fired
// one-shots.
func (s *Scheduler) Cancel(t *Task) {
	if t != nil {
		t.cancelled = true
	}
}

// CancelOwner cancels every pending task registered under owner.
func (s *Scheduler) CancelOwner(owner int64) {
	for _, t := range s.h {
		if t.owner == owner {
			t.cancelled = true
		}
	}
}

// RunDue fires every task whose due tick is <= now, in (due, insertion)
// order. Repeating tasks that keep going are re-armed at due+period.
func (s *Scheduler) RunDue(now int64) {
	s.now = now
	for len(s.h) > 0 && s.h[0].due <= now {
		t := heap.Pop(&s.h).(*Task)
		if t.cancelled {
			continue
		}
		keep := t.fn()
		if t.period > 0 && keep && !t.cancelled {
			t.due += t.period
			heap.Push(&s.h, t)
		} else {
			t.cancelled = true
		}
	}
}

// Len returns the number of pending tasks, cancelled ones included until
// they drain.
func (s *Scheduler) Len() int {
	return len(s.h)
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*Task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
