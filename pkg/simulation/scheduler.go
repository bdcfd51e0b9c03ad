package simulation

import (
	"container/heap"

	golog "github.com/tochemey/goakt/v3/log"
)

// task is a callback due at a simulation time. seq keeps tasks due at the same
// time in the order they were scheduled.
type task struct {
	at   float64
	seq  uint64
	name string
	fn   func()
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }
func (q taskQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}
func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *taskQueue) Push(x any)   { *q = append(*q, x.(*task)) }
func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// Scheduler runs callbacks at simulation time instead of wall-clock time, so a
// paused or stepped world keeps its timers in step.
type Scheduler struct {
	queue  taskQueue
	seq    uint64
	logger golog.Logger
}

func NewScheduler(logger golog.Logger) *Scheduler {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	return &Scheduler{logger: logger}
}

// At schedules fn to run on the first RunDue whose time reaches at.
func (s *Scheduler) At(at float64, name string, fn func()) {
	if fn == nil {
		return
	}
	s.seq++
	heap.Push(&s.queue, &task{at: at, seq: s.seq, name: name, fn: fn})
}

// Len is the number of pending tasks.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// RunDue runs every task due at or before now, earliest first, and returns how
// many ran. Tasks scheduled by a running task are picked up in the same call
// when they are already due.
func (s *Scheduler) RunDue(now float64) int {
	ran := 0
	for s.queue.Len() > 0 && s.queue[0].at <= now {
		t := heap.Pop(&s.queue).(*task)
		s.logger.Debugf("running %s (due %.2f) at %.2f", t.name, t.at, now)
		t.fn()
		ran++
	}
	return ran
}
