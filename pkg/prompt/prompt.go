// Package prompt tracks short lived interactive prompts, such as confirmations and selections,
// that finish in exactly one of three outcomes.
package prompt

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is how long a prompt waits before it times out.
const DefaultTimeout = 60 * time.Second

// Outcome is how a prompt finished.
type Outcome int

const (
	// Confirmed means the user answered the prompt.
	Confirmed Outcome = iota

	// Cancelled means the user dismissed the prompt.
	Cancelled

	// TimedOut means nobody answered in time.
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Result is the outcome of a prompt and, when Confirmed, the value it was resolved with.
type Result[T any] struct {
	Outcome Outcome
	Value   T
}

type pending[T any] struct {
	ch    chan Result[T]
	timer *time.Timer
}

// Registry holds the open prompts of one kind.
type Registry[T any] struct {
	mu      sync.Mutex
	timeout time.Duration
	open    map[string]*pending[T]
}

// NewRegistry creates a prompt registry. A zero timeout uses DefaultTimeout.
func NewRegistry[T any](timeout time.Duration) *Registry[T] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry[T]{
		timeout: timeout,
		open:    make(map[string]*pending[T]),
	}
}

// Open starts a prompt. The returned channel receives exactly one Result.
func (r *Registry[T]) Open() (string, <-chan Result[T]) {
	id := uuid.NewString()
	p := &pending[T]{ch: make(chan Result[T], 1)}

	r.mu.Lock()
	r.open[id] = p
	p.timer = time.AfterFunc(r.timeout, func() {
		var zero T
		r.finish(id, Result[T]{Outcome: TimedOut, Value: zero})
	})
	r.mu.Unlock()

	return id, p.ch
}

// Resolve confirms the prompt with value. It reports false if the prompt is no longer open.
func (r *Registry[T]) Resolve(id string, value T) bool {
	return r.finish(id, Result[T]{Outcome: Confirmed, Value: value})
}

// Cancel cancels the prompt. It reports false if the prompt is no longer open.
func (r *Registry[T]) Cancel(id string) bool {
	var zero T
	return r.finish(id, Result[T]{Outcome: Cancelled, Value: zero})
}

// Len returns the number of open prompts.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

func (r *Registry[T]) finish(id string, res Result[T]) bool {
	r.mu.Lock()
	p, ok := r.open[id]
	if ok {
		delete(r.open, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	p.timer.Stop()
	p.ch <- res
	close(p.ch)
	return true
}
