package crawler

import (
	"context"

	"graph-crawler/internal/models"
)

// NeighborService fetches the outgoing neighbors of a node from the remote graph.
// Implementations may fail; the crawler treats any error as an empty neighbor list.
type NeighborService interface {
	Fetch(ctx context.Context, id models.NodeID) ([]models.NodeID, error)
}

// VisitedSet is the crawl-wide dedupe set.
// InsertIfAbsent must be atomic across concurrent callers: for a given id exactly one
// call returns true for the lifetime of the set.
type VisitedSet interface {
	InsertIfAbsent(ctx context.Context, id models.NodeID) (bool, error)
	Len() int
}

// Sink receives crawl events as they happen. Implementations must be safe for concurrent use.
type Sink interface {
	PublishVisit(ctx context.Context, visit models.Visit) error
	PublishEdge(ctx context.Context, edge models.Edge) error
}

type noopSink struct{}

func (noopSink) PublishVisit(context.Context, models.Visit) error { return nil }
func (noopSink) PublishEdge(context.Context, models.Edge) error   { return nil }
