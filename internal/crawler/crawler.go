package crawler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"graph-crawler/internal/models"
)

const (
	DefaultWorkers        = 8
	DefaultFetchTimeout   = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
)

var (
	ErrEmptyStartNode = errors.New("crawler: start node is empty")
	ErrInvalidDepth   = errors.New("crawler: depth must be >= 0")
	ErrInvalidWorkers = errors.New("crawler: worker count must be > 0")
	ErrNilService     = errors.New("crawler: nil neighbor service")
)

// Options configures a single crawl.
type Options struct {
	MaxDepth       int
	Workers        int
	SessionID      string        // defaults to NewSessionID()
	FetchTimeout   time.Duration // per neighbor lookup; <= 0 disables the crawler-side deadline
	PublishTimeout time.Duration
	Debug          bool

	Visited VisitedSet // defaults to a fresh MemoryVisitedSet
	Sink    Sink       // defaults to a no-op sink
	Metrics *Metrics   // defaults to unregistered collectors
}

// Result is the outcome of a completed crawl.
type Result struct {
	SessionID string
	StartNode models.NodeID
	MaxDepth  int
	Workers   int
	Visits    []models.Visit // in the order processing began
	Visited   int            // visited-set cardinality
	Elapsed   time.Duration
}

// Nodes returns the visited node ids in processing order.
func (r Result) Nodes() []models.NodeID {
	out := make([]models.NodeID, len(r.Visits))
	for i, v := range r.Visits {
		out[i] = v.Node
	}
	return out
}

// Crawler runs one breadth-first crawl over a remote graph with a fixed worker pool.
// A Crawler is single-use.
type Crawler struct {
	service NeighborService
	opts    Options
	started atomic.Bool
}

// New validates opts and returns a Crawler ready to Run.
func New(service NeighborService, opts Options) (*Crawler, error) {
	if service == nil {
		return nil, ErrNilService
	}
	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, opts.MaxDepth)
	}
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, opts.Workers)
	}
	if opts.SessionID == "" {
		opts.SessionID = NewSessionID()
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}
	if opts.Visited == nil {
		opts.Visited = NewMemoryVisitedSet()
	}
	if opts.Sink == nil {
		opts.Sink = noopSink{}
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	return &Crawler{service: service, opts: opts}, nil
}

// SessionID identifies this crawl in logs, sinks and stores.
func (c *Crawler) SessionID() string {
	return c.opts.SessionID
}

// Run crawls outward from start and blocks until no pending work remains.
// ctx is handed to every neighbor lookup and publish; cancelling it makes outstanding
// lookups fail, which drains the crawl rather than aborting it.
func (c *Crawler) Run(ctx context.Context, start models.NodeID) (Result, error) {
	if strings.TrimSpace(string(start)) == "" {
		return Result{}, ErrEmptyStartNode
	}
	if !c.started.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyStarted
	}

	began := time.Now()
	queue := NewWorkQueue()
	detector := NewTerminationDetector(queue.Shutdown)
	pool := &workerPool{
		sessionID:      c.opts.SessionID,
		maxDepth:       c.opts.MaxDepth,
		fetchTimeout:   c.opts.FetchTimeout,
		publishTimeout: c.opts.PublishTimeout,
		debug:          c.opts.Debug,
		queue:          queue,
		visited:        c.opts.Visited,
		results:        &ResultCollector{},
		detector:       detector,
		service:        c.service,
		sink:           c.opts.Sink,
		metrics:        c.opts.Metrics,
	}

	inserted, err := c.opts.Visited.InsertIfAbsent(ctx, start)
	if err != nil {
		return Result{}, fmt.Errorf("seed visited set: %w", err)
	}
	if !inserted {
		return Result{}, fmt.Errorf("seed visited set: start node %q already present", start)
	}
	if err := detector.Start(1); err != nil {
		return Result{}, err
	}
	queue.Push(models.Task{Node: start, Depth: 0})
	c.opts.Metrics.PendingTasks.Set(1)

	log.Printf("crawl start session=%s start=%s depth=%d workers=%d", c.opts.SessionID, start, c.opts.MaxDepth, c.opts.Workers)

	var g errgroup.Group
	for i := 0; i < c.opts.Workers; i++ {
		id := i
		g.Go(func() error {
			pool.run(ctx, id)
			return nil
		})
	}
	<-detector.Finished()
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	visits := pool.results.Snapshot()
	result := Result{
		SessionID: c.opts.SessionID,
		StartNode: start,
		MaxDepth:  c.opts.MaxDepth,
		Workers:   c.opts.Workers,
		Visits:    visits,
		Visited:   c.opts.Visited.Len(),
		Elapsed:   time.Since(began),
	}
	log.Printf("crawl done session=%s nodes=%d elapsed=%s", c.opts.SessionID, len(visits), result.Elapsed)
	return result, nil
}

// NewSessionID returns a timestamp-based crawl session id.
func NewSessionID() string {
	return strings.ReplaceAll(time.Now().UTC().Format("20060102150405.000000000"), ".", "")
}
