package crawler

import (
	"errors"
	"sync"
	"sync/atomic"
)

// DetectorState is the lifecycle of a TerminationDetector.
type DetectorState int32

const (
	StateNotStarted DetectorState = iota
	StateRunning
	StateFinished
)

func (s DetectorState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyStarted = errors.New("crawler: already started")
	errInvalidSeed    = errors.New("crawler: seed work must be positive")
)

// TerminationDetector counts pending work: tasks created but not yet fully processed.
// Every task is counted once at creation (TaskCreated) and once at completion (TaskDone).
// The decrement that reaches zero moves the detector to Finished, runs onFinish and
// closes the Finished channel, exactly once.
//
// Callers must count a child task before pushing it and finish the parent only after all
// of its children are pushed; the counter can then never touch zero while work remains.
type TerminationDetector struct {
	pending  atomic.Int64
	state    atomic.Int32
	once     sync.Once
	done     chan struct{}
	onFinish func()
}

// NewTerminationDetector returns a detector in StateNotStarted. onFinish may be nil.
func NewTerminationDetector(onFinish func()) *TerminationDetector {
	return &TerminationDetector{
		done:     make(chan struct{}),
		onFinish: onFinish,
	}
}

// Start records the seed work and moves the detector to StateRunning.
func (d *TerminationDetector) Start(seed int64) error {
	if seed <= 0 {
		return errInvalidSeed
	}
	if !d.state.CompareAndSwap(int32(StateNotStarted), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	d.pending.Add(seed)
	return nil
}

// TaskCreated counts one new task. Call it before the task becomes visible to other workers.
func (d *TerminationDetector) TaskCreated() {
	d.pending.Add(1)
}

// TaskDone counts one fully processed task, including all pushes it caused.
func (d *TerminationDetector) TaskDone() {
	n := d.pending.Add(-1)
	if n < 0 {
		panic("crawler: pending work went negative")
	}
	if n == 0 {
		d.finish()
	}
}

func (d *TerminationDetector) finish() {
	d.once.Do(func() {
		d.state.Store(int32(StateFinished))
		if d.onFinish != nil {
			d.onFinish()
		}
		close(d.done)
	})
}

// Finished is closed once the crawl has no pending work left.
func (d *TerminationDetector) Finished() <-chan struct{} {
	return d.done
}

func (d *TerminationDetector) Pending() int64 {
	return d.pending.Load()
}

func (d *TerminationDetector) State() DetectorState {
	return DetectorState(d.state.Load())
}
