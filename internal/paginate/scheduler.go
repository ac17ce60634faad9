package paginate

import "sync"

// Scheduler defers work out of the current turn. The orchestrator uses it
// as its "await layout settle" primitive: overflow checks and merge
// attempts are always deferred, never run inside the triggering callback.
type Scheduler interface {
	Defer(fn func())
}

// QueueScheduler collects deferred work for explicit draining. The demo
// drains it from its event loop; tests drain it step by step.
type QueueScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// NewQueueScheduler creates an empty queue scheduler.
func NewQueueScheduler() *QueueScheduler {
	return &QueueScheduler{}
}

// Defer appends fn to the queue.
func (q *QueueScheduler) Defer(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, fn)
}

// Len returns the number of queued tasks.
func (q *QueueScheduler) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Step runs the oldest queued task. It returns false when the queue was
// empty.
func (q *QueueScheduler) Step() bool {
	q.mu.Lock()
	if len(q.queue) == 0 {
		q.mu.Unlock()
		return false
	}
	fn := q.queue[0]
	q.queue = q.queue[1:]
	q.mu.Unlock()

	fn()
	return true
}

// Drain runs queued tasks, including ones they enqueue, until the queue
// is empty, and returns how many ran.
func (q *QueueScheduler) Drain() int {
	ran := 0
	for q.Step() {
		ran++
	}
	return ran
}

// Phase tracks where a page sits in its check progression.
type Phase int

// Check phases, in order.
const (
	PhaseIdle Phase = iota
	PhaseMutationApplied
	PhaseLayoutSettled
	PhaseOverflowChecked
	PhaseActionDecided
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMutationApplied:
		return "mutation-applied"
	case PhaseLayoutSettled:
		return "layout-settled"
	case PhaseOverflowChecked:
		return "overflow-checked"
	case PhaseActionDecided:
		return "action-decided"
	default:
		return "unknown"
	}
}
