// Package simulate animates a workflow graph by walking it from its source
// nodes and reporting which node is "running". Nothing is executed; the walk
// exists to drive progress highlighting.
package simulate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/log"
)

const (
	DefaultDelay   = time.Second
	DefaultMaxHops = 1000
)

// EventKind tells handlers what happened.
type EventKind int

const (
	EventStarted EventKind = iota
	EventVisit
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventVisit:
		return "visit"
	case EventFinished:
		return "finished"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is reported to a Handler during a run. Current and Previous are set
// for visits; Err is set on a Finished event that ended early.
type Event struct {
	Kind     EventKind
	Current  string
	Previous string
	Hop      int
	Err      error
}

// Handler receives events on the goroutine that runs the simulation.
type Handler func(Event)

// Multi fans events out to several handlers in order.
func Multi(handlers ...Handler) Handler {
	return func(e Event) {
		for _, h := range handlers {
			if h != nil {
				h(e)
			}
		}
	}
}

// Visit is one step of a trace.
type Visit struct {
	Node     string `json:"node"`
	Previous string `json:"previous,omitempty"`
}

// Result is the visit trace of a run, complete or partial.
type Result struct {
	Visits []Visit `json:"visits"`
}

// Nodes returns the visited node ids in order.
func (r Result) Nodes() []string {
	out := make([]string, 0, len(r.Visits))
	for _, v := range r.Visits {
		out = append(out, v.Node)
	}
	return out
}

// Simulator walks graphs. A zero delay makes runs complete immediately.
type Simulator struct {
	delay   time.Duration
	maxHops int
	logger  *zap.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithDelay sets the pause spent on each node.
func WithDelay(d time.Duration) Option {
	return func(s *Simulator) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithMaxHops bounds the total number of visits in one run. Zero or less
// removes the bound.
func WithMaxHops(n int) Option {
	return func(s *Simulator) { s.maxHops = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) { s.logger = log.Component(l, "simulate") }
}

// New creates a Simulator.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		delay:   DefaultDelay,
		maxHops: DefaultMaxHops,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run walks the graph depth first from every source node, one source after
// the other. Each visited node is reported, held for the configured delay and
// then followed along its outgoing edges in edge order. A node reachable by
// several paths is visited once per path.
//
// An empty graph returns immediately without events. A cyclic graph is
// rejected with ErrCycleDetected before anything is reported. Cancelling ctx
// stops the run; the partial trace is returned with ctx's error.
func (s *Simulator) Run(ctx context.Context, nodes []canvas.Node, edges []canvas.Edge, h Handler) (Result, error) {
	res := Result{Visits: []Visit{}}
	if len(nodes) == 0 {
		return res, nil
	}
	if h == nil {
		h = func(Event) {}
	}
	if err := canvas.ValidateAcyclic(nodes, edges); err != nil {
		s.logger.Warn("refusing to simulate cyclic workflow", zap.Error(err))
		return res, err
	}

	known := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.ID] = struct{}{}
	}
	out := make(map[string][]string)
	for _, e := range edges {
		if _, ok := known[e.To]; !ok {
			continue
		}
		out[e.From] = append(out[e.From], e.To)
	}

	w := &walker{sim: s, ctx: ctx, out: out, emit: h, res: &res}
	h(Event{Kind: EventStarted})
	s.logger.Debug("simulation started", zap.Int("nodes", len(nodes)), zap.Int("edges", len(edges)))

	var err error
	for _, src := range canvas.Sources(nodes, edges) {
		if err = w.visit(src, ""); err != nil {
			break
		}
	}

	h(Event{Kind: EventFinished, Hop: w.hops, Err: err})
	if err != nil {
		s.logger.Info("simulation stopped", zap.Int("visits", len(res.Visits)), zap.Error(err))
		return res, err
	}
	s.logger.Debug("simulation finished", zap.Int("visits", len(res.Visits)))
	return res, nil
}

type walker struct {
	sim  *Simulator
	ctx  context.Context
	out  map[string][]string
	emit Handler
	res  *Result
	hops int
}

func (w *walker) visit(id, prev string) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if w.sim.maxHops > 0 && w.hops >= w.sim.maxHops {
		return fmt.Errorf("%w (%d)", canvas.ErrHopLimit, w.sim.maxHops)
	}
	w.hops++
	w.res.Visits = append(w.res.Visits, Visit{Node: id, Previous: prev})
	w.emit(Event{Kind: EventVisit, Current: id, Previous: prev, Hop: w.hops})

	if err := w.wait(); err != nil {
		return err
	}
	for _, next := range w.out[id] {
		if err := w.visit(next, id); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) wait() error {
	if w.sim.delay <= 0 {
		return w.ctx.Err()
	}
	t := time.NewTimer(w.sim.delay)
	defer t.Stop()
	select {
	case <-w.ctx.Done():
		return w.ctx.Err()
	case <-t.C:
		return nil
	}
}
