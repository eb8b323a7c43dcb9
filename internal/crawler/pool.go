package crawler

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"graph-crawler/internal/models"
)

// workerPool holds the state shared by every worker of one crawl.
type workerPool struct {
	sessionID      string
	maxDepth       int
	fetchTimeout   time.Duration
	publishTimeout time.Duration
	debug          bool

	queue    *WorkQueue
	visited  VisitedSet
	results  *ResultCollector
	detector *TerminationDetector
	service  NeighborService
	sink     Sink
	metrics  *Metrics

	active atomic.Int64 // workers between Pop and TaskDone
}

// run is one worker's loop; it exits once the queue is shut down and drained.
func (p *workerPool) run(ctx context.Context, id int) {
	if p.debug {
		log.Printf("worker start id=%d session=%s", id, p.sessionID)
	}
	for {
		task, ok := p.queue.Pop()
		if !ok {
			if p.debug {
				log.Printf("worker exit id=%d session=%s", id, p.sessionID)
			}
			return
		}
		p.process(ctx, task)
	}
}

// process records task, expands it when below maxDepth, and only then counts it done.
// Done and TaskDone are deferred so they run after every child push.
func (p *workerPool) process(ctx context.Context, task models.Task) {
	p.active.Add(1)
	p.metrics.ActiveWorkers.Inc()
	defer func() {
		p.active.Add(-1)
		p.metrics.ActiveWorkers.Dec()
		p.queue.Done(task.Depth)
		p.detector.TaskDone()
		p.metrics.PendingTasks.Set(float64(p.detector.Pending()))
	}()

	visit := models.Visit{
		SessionID: p.sessionID,
		Node:      task.Node,
		Depth:     task.Depth,
		VisitedAt: time.Now().UTC(),
	}
	p.results.Append(visit)
	p.metrics.NodesVisited.Inc()
	p.publishVisit(ctx, visit)

	if task.Depth >= p.maxDepth {
		return
	}

	for _, neighbor := range p.fetchNeighbors(ctx, task) {
		p.publishEdge(ctx, models.Edge{
			SessionID: p.sessionID,
			From:      task.Node,
			To:        neighbor,
			Depth:     task.Depth + 1,
		})

		inserted, err := p.visited.InsertIfAbsent(ctx, neighbor)
		if err != nil {
			p.metrics.VisitedErrors.Inc()
			log.Printf("visited set error node=%s neighbor=%s err=%v (skipping neighbor)", task.Node, neighbor, err)
			continue
		}
		if !inserted {
			p.metrics.DuplicatesSkipped.Inc()
			continue
		}
		p.detector.TaskCreated()
		p.queue.Push(models.Task{Node: neighbor, Depth: task.Depth + 1})
	}
	p.metrics.PendingTasks.Set(float64(p.detector.Pending()))
}

// fetchNeighbors calls the neighbor service under fetchTimeout. Any failure is a soft
// failure: it is logged and the node contributes no neighbors.
func (p *workerPool) fetchNeighbors(ctx context.Context, task models.Task) []models.NodeID {
	fetchCtx := ctx
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	neighbors, err := p.service.Fetch(fetchCtx, task.Node)
	p.metrics.FetchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		result := fetchResultError
		if errors.Is(err, context.DeadlineExceeded) {
			result = fetchResultTimeout
		}
		p.metrics.Fetches.WithLabelValues(result).Inc()
		log.Printf("fetch failed node=%s depth=%d err=%v (treating as zero neighbors)", task.Node, task.Depth, err)
		return nil
	}
	p.metrics.Fetches.WithLabelValues(fetchResultOK).Inc()
	if p.debug {
		log.Printf("fetched node=%s depth=%d neighbors=%d", task.Node, task.Depth, len(neighbors))
	}
	return neighbors
}

func (p *workerPool) publishVisit(ctx context.Context, visit models.Visit) {
	publishCtx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()
	if err := p.sink.PublishVisit(publishCtx, visit); err != nil {
		p.metrics.SinkErrors.Inc()
		log.Printf("publish visit error node=%s err=%v", visit.Node, err)
	}
}

func (p *workerPool) publishEdge(ctx context.Context, edge models.Edge) {
	publishCtx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()
	if err := p.sink.PublishEdge(publishCtx, edge); err != nil {
		p.metrics.SinkErrors.Inc()
		log.Printf("publish edge error from=%s to=%s err=%v", edge.From, edge.To, err)
	}
}
