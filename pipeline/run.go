package pipeline

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/bububa/uxcrew/components"
)

// Run is a single execution of the pipeline
type Run struct {
	id      string
	req     Request
	state   *atomic.Int32
	done    chan struct{}
	mtx     sync.RWMutex
	result  Result
	started time.Time
}

func newRun(req *Request) *Run {
	id := components.NewTurnID()
	ret := &Run{
		id:    id,
		state: atomic.NewInt32(int32(NotStarted)),
		done:  make(chan struct{}),
		result: Result{
			RunID: id,
			State: NotStarted,
		},
	}
	if req != nil {
		ret.req = *req
		ret.req.Goals = append([]string(nil), req.Goals...)
	}
	return ret
}

// ID returns the run ID
func (r *Run) ID() string {
	return r.id
}

// Request returns the request of the run
func (r *Run) Request() Request {
	return r.req
}

// State returns the current state
func (r *Run) State() State {
	return State(r.state.Load())
}

// Done is closed once the run reached a terminal state
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run is over and returns its result and terminal error
func (r *Run) Wait() (*Result, error) {
	<-r.done
	ret := r.Result()
	return ret, ret.Err
}

// Result returns a snapshot of the result, safe to call while the run is going on
func (r *Run) Result() *Result {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	ret := r.result.clone()
	ret.State = r.State()
	if !ret.State.Terminal() && !r.started.IsZero() {
		ret.Elapsed = time.Since(r.started)
	}
	return ret
}

func (r *Run) transition(to State) error {
	from := r.State()
	if !from.CanTransition(to) || !r.state.CompareAndSwap(int32(from), int32(to)) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func (r *Run) start() {
	r.mtx.Lock()
	r.started = time.Now()
	r.result.StartedAt = r.started
	r.mtx.Unlock()
}

func (r *Run) add(res StageResult) {
	r.mtx.Lock()
	r.result.add(res)
	r.mtx.Unlock()
}

func (r *Run) finish(err error) {
	r.mtx.Lock()
	r.result.Err = err
	r.result.Elapsed = time.Since(r.started)
	r.result.State = r.State()
	r.mtx.Unlock()
}
