package iterator

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/filter"
	"github.com/chazu/ifcgeom/pkg/geom"
	"github.com/chazu/ifcgeom/pkg/graph"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// windowPerThread is the number of reorder buffer slots per worker.
const windowPerThread = 4

// State is the lifecycle position of an Iterator.
type State int

const (
	Uninitialized State = iota
	Ready
	Exhausted
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configure an Iterator.
type Options struct {
	File  *ifc.File
	Graph *graph.Graph // built from File when nil
	Chain *filter.Chain
	// Kernel creates one kernel per worker.
	Kernel   kernel.Factory
	Settings geom.Settings
	Threads  int    // <= 0 means one per CPU
	Output   string // config.OutputTriangulated, OutputNative or OutputSerialized
	Log      *zap.SugaredLogger
}

// Stats counts candidates and results so far.
type Stats struct {
	Candidates int // products that passed the filters
	Consumed   int // candidates whose result the consumer has taken
	Produced   int // elements surfaced through Get
	Failed     int // candidates whose conversion failed
}

// Iterator walks the candidates of a model. Get, Next and the accessors
// must be called from one goroutine; the conversion runs on the workers.
type Iterator struct {
	opts    Options
	log     *zap.SugaredLogger
	state   State
	threads int

	candidates []*ifc.Entity
	hierarchy  []*element.Element
	index      map[int]int

	buffer    *reorderBuffer
	group     *errgroup.Group
	cancel    context.CancelFunc
	submitted atomic.Int64
	failed    atomic.Int64
	closeOnce sync.Once

	// newWorker is replaced in tests.
	newWorker func(id int) (worker, error)

	current  []element.Stage
	pos      int
	consumed int
	produced int
	progress int

	unitName      string
	unitMagnitude float64
	boundsMin     [3]float64
	boundsMax     [3]float64
	boundsValid   bool
}

// New returns an uninitialized iterator.
func New(o Options) *Iterator {
	log := o.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if o.Output == "" {
		o.Output = config.OutputTriangulated
	}
	threads := o.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	it := &Iterator{opts: o, log: log.Named("iterator"), threads: threads}
	it.newWorker = it.geomWorker
	return it
}

// State returns the lifecycle state.
func (it *Iterator) State() State {
	return it.state
}

// Initialize selects the candidates, starts the workers and converts up
// to the first element. It returns errors.ErrNothingToConvert when no
// product passes the filters and errors.ErrNoGeometryProduced when none
// of them yields geometry.
func (it *Iterator) Initialize() error {
	if it.state != Uninitialized {
		return errors.Newf("iterator already initialized (%s)", it.state)
	}
	if it.opts.File == nil || it.opts.Chain == nil || it.opts.Kernel == nil {
		it.state = Failed
		return errors.New("iterator needs a file, a filter chain and a kernel factory")
	}
	switch it.opts.Output {
	case config.OutputTriangulated, config.OutputNative, config.OutputSerialized:
	default:
		it.state = Failed
		return errors.Mark(errors.Newf("unknown output mode %q", it.opts.Output), errors.ErrInvalidConfig)
	}

	f := it.opts.File
	it.unitName, it.unitMagnitude = f.LengthUnit()
	if it.opts.Graph == nil {
		it.opts.Graph = graph.Build(f)
	}

	candidates, err := it.opts.Chain.Candidates(f)
	if err != nil {
		it.state = Failed
		return err
	}
	if len(candidates) == 0 {
		it.state = Exhausted
		return errors.WithHint(errors.WithStack(errors.ErrNothingToConvert),
			"check the --include and --exclude filters")
	}
	it.candidates = candidates
	it.buildHierarchy()

	workers := make([]worker, it.threads)
	for i := range workers {
		if workers[i], err = it.newWorker(i); err != nil {
			it.state = Failed
			return errors.Wrapf(err, "starting worker %d", i)
		}
	}
	it.log.Debugw("starting conversion", "candidates", len(candidates), "threads", it.threads, "output", it.opts.Output)
	it.start(workers)

	it.state = Ready
	if !it.advance() {
		it.state = Failed
		it.Close()
		return errors.WithDetailf(errors.WithStack(errors.ErrNoGeometryProduced),
			"%d candidates, %d failed", len(candidates), it.failed.Load())
	}
	return nil
}

// start launches the worker pool. Each worker claims the next sequence
// number, waits for its slot in the reorder buffer and converts it.
func (it *Iterator) start(workers []worker) {
	it.buffer = newReorderBuffer(it.threads * windowPerThread)
	ctx, cancel := context.WithCancel(context.Background())
	it.cancel = cancel
	it.group, ctx = errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		it.group.Go(func() error {
			for ctx.Err() == nil {
				seq := int(it.submitted.Add(1) - 1)
				if seq >= len(it.candidates) || !it.buffer.Reserve(seq) {
					return nil
				}
				it.buffer.Put(seq, it.process(w, it.candidates[seq]))
			}
			return nil
		})
	}
}

// process converts one candidate. Errors and panics stay here.
func (it *Iterator) process(w worker, e *ifc.Entity) (r result) {
	defer func() {
		if p := recover(); p != nil {
			r = result{err: errors.Newf("panic: %v", p)}
		}
		if r.err != nil {
			it.failed.Add(1)
			it.log.Errorw("failed to convert product", "id", e.ID, "type", e.Type, "error", r.err)
		}
	}()
	stages, err := w.convert(e)
	return result{stages: stages, err: err}
}

// advance moves to the next element, taking results from the buffer
// until one holds geometry. It returns false when the candidates are
// exhausted.
func (it *Iterator) advance() bool {
	it.pos++
	if it.pos < len(it.current) {
		it.produced++
		return true
	}
	it.current, it.pos = nil, 0
	for it.consumed < len(it.candidates) {
		r, ok := it.buffer.Take(it.consumed)
		if !ok {
			return false
		}
		it.consumed++
		it.updateProgress()
		if r.err == nil && len(r.stages) > 0 {
			it.current = r.stages
			it.produced++
			return true
		}
	}
	return false
}

func (it *Iterator) updateProgress() {
	if n := len(it.candidates); n > 0 {
		if p := it.consumed * 100 / n; p > it.progress {
			it.progress = p
		}
	}
}

// Get returns the current element. It is never nil while the iterator is
// Ready.
func (it *Iterator) Get() element.Stage {
	if it.state != Ready || it.pos >= len(it.current) {
		return nil
	}
	return it.current[it.pos]
}

// Next advances to the next element and reports whether there is one.
// The previous element is released.
func (it *Iterator) Next() bool {
	if it.state != Ready {
		return false
	}
	it.current[it.pos] = nil
	if it.advance() {
		return true
	}
	it.state = Exhausted
	it.Close()
	return false
}

// Progress returns the share of candidates consumed, 0 to 100. It never
// decreases.
func (it *Iterator) Progress() int {
	return it.progress
}

// Stats returns the counters of the run so far.
func (it *Iterator) Stats() Stats {
	return Stats{
		Candidates: len(it.candidates),
		Consumed:   it.consumed,
		Produced:   it.produced,
		Failed:     int(it.failed.Load()),
	}
}

// Close stops the workers once their current candidate is done and waits
// for them. It is safe to call more than once.
func (it *Iterator) Close() {
	it.closeOnce.Do(func() {
		if it.buffer == nil {
			return
		}
		it.cancel()
		it.buffer.Close()
		if err := it.group.Wait(); err != nil {
			it.log.Warnw("worker stopped with error", "error", err)
		}
		if it.state == Ready {
			it.state = Exhausted
		}
	})
}

// UnitName returns the declared length unit, e.g. "METRE".
func (it *Iterator) UnitName() string {
	return it.unitName
}

// UnitMagnitude returns the length of one file unit in meters.
func (it *Iterator) UnitMagnitude() float64 {
	return it.unitMagnitude
}

// Hierarchy returns the spatial structure elements (project, sites,
// buildings, storeys) ordered with element.Less. Element.Parents index
// into it.
func (it *Iterator) Hierarchy() []*element.Element {
	return it.hierarchy
}

// buildHierarchy fills the arena of spatial structure elements.
func (it *Iterator) buildHierarchy() {
	f := it.opts.File
	conv := geom.NewConverter(f, it.opts.Graph, nil, it.opts.Settings, it.log)
	var arena []*element.Element
	add := func(e *ifc.Entity) {
		el, err := conv.SpatialElement(e)
		if err != nil {
			it.log.Warnw("spatial element without placement", "id", e.ID, "type", e.Type, "error", err)
			return
		}
		arena = append(arena, el)
	}
	for _, e := range f.ByType("IfcProject") {
		add(e)
	}
	for _, e := range f.ByType("IfcSpatialStructureElement") {
		if !e.Is("IfcSpace") {
			add(e)
		}
	}
	sort.SliceStable(arena, func(i, j int) bool { return element.Less(arena[i], arena[j]) })

	it.index = make(map[int]int, len(arena))
	for i, e := range arena {
		it.index[e.ID] = i
	}
	conv.SetHierarchy(it.index)
	for _, e := range arena {
		for _, n := range it.opts.Graph.SpatialChain(graph.NodeID(e.ID)) {
			if i, ok := it.index[int(n.ID)]; ok {
				e.Parents = append(e.Parents, i)
			}
		}
	}
	it.hierarchy = arena
}
