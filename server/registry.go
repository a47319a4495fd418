package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/stories"
)

// ErrRegistryFull is returned when every slot holds a run still in progress
var ErrRegistryFull = errors.New("too many runs in progress")

// Entry is a run held by the registry
type Entry struct {
	Run     *pipeline.Run
	Created time.Time

	mtx        sync.Mutex
	extracted  bool
	stories    stories.List
	storiesErr error
}

// Stories returns the user stories of the run, extracted once the stories stage finished.
// The list is empty while the stage output is missing. The outcome of the extraction,
// failure included, is kept for later calls.
func (e *Entry) Stories(ctx context.Context, extractor *stories.Extractor) (stories.List, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if e.extracted {
		return e.stories, e.storiesErr
	}
	text := e.Run.Result().Output(pipeline.StageStories)
	if text == "" {
		return stories.List{}, nil
	}
	e.stories, e.storiesErr = extractor.Extract(ctx, text)
	e.extracted = true
	return e.stories, e.storiesErr
}

// Registry keeps the latest runs in memory
type Registry struct {
	mtx   sync.RWMutex
	max   int
	order []string
	runs  map[string]*Entry
}

// NewRegistry returns a Registry holding at most max runs
func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = 1
	}
	return &Registry{
		max:  max,
		runs: make(map[string]*Entry, max),
	}
}

// Start evicts the oldest finished runs when the registry is full, then starts and stores a run.
// It returns ErrRegistryFull when no slot can be freed.
func (r *Registry) Start(start func() *pipeline.Run) (*Entry, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for len(r.order) >= r.max {
		if !r.evictLocked() {
			return nil, ErrRegistryFull
		}
	}
	e := &Entry{Run: start(), Created: time.Now()}
	id := e.Run.ID()
	r.order = append(r.order, id)
	r.runs[id] = e
	return e, nil
}

func (r *Registry) evictLocked() bool {
	for i, id := range r.order {
		if !r.runs[id].Run.State().Terminal() {
			continue
		}
		delete(r.runs, id)
		r.order = append(r.order[:i], r.order[i+1:]...)
		return true
	}
	return false
}

// Get returns a run by ID
func (r *Registry) Get(id string) (*Entry, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	e, ok := r.runs[id]
	return e, ok
}

// List returns the runs, newest first
func (r *Registry) List() []*Entry {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	ret := make([]*Entry, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		ret = append(ret, r.runs[r.order[i]])
	}
	return ret
}

// Len returns the number of runs held
func (r *Registry) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.order)
}
