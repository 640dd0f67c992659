package simulate

import (
	"context"
	"sync"

	"github.com/meikuraledutech/canvas"
)

// Progress is the transient highlight state of a run.
type Progress struct {
	Current  string `json:"currentNode"`
	Previous string `json:"previousNode,omitempty"`
}

// Tracker keeps the latest progress of a run for readers on other goroutines.
// Progress is cleared when the run finishes.
type Tracker struct {
	mu       sync.RWMutex
	running  bool
	progress Progress
	visits   int
	err      error
}

// Handle is a Handler.
func (t *Tracker) Handle(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch e.Kind {
	case EventStarted:
		t.running = true
		t.progress = Progress{}
		t.visits = 0
		t.err = nil
	case EventVisit:
		t.progress = Progress{Current: e.Current, Previous: e.Previous}
		t.visits++
	case EventFinished:
		t.running = false
		t.progress = Progress{}
		t.err = e.Err
	}
}

// Progress returns the highlighted node pair while a run is active.
func (t *Tracker) Progress() (Progress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progress, t.running && t.progress.Current != ""
}

// Running reports whether a run is in flight.
func (t *Tracker) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// Visits returns the number of visits reported by the current or last run.
func (t *Tracker) Visits() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.visits
}

// Err returns the error that ended the last run, if any.
func (t *Tracker) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Run is a simulation executing in the background.
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result
	err    error
}

// Start runs the simulation on a new goroutine. Stop cancels it.
func (s *Simulator) Start(ctx context.Context, nodes []canvas.Node, edges []canvas.Edge, h Handler) *Run {
	ctx, cancel := context.WithCancel(ctx)
	r := &Run{cancel: cancel, done: make(chan struct{})}
	nodes, edges = canvas.CloneNodes(nodes), canvas.CloneEdges(edges)
	go func() {
		defer close(r.done)
		defer cancel()
		r.result, r.err = s.Run(ctx, nodes, edges, h)
	}()
	return r
}

// Stop cancels the run. It does not wait for it to end.
func (r *Run) Stop() { r.cancel() }

// Done is closed once the run has ended.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run ends and returns its outcome.
func (r *Run) Wait() (Result, error) {
	<-r.done
	return r.result, r.err
}
