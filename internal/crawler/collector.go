package crawler

import (
	"sync"

	"graph-crawler/internal/models"
)

// ResultCollector is an append-only log of visits in the order workers began processing them.
type ResultCollector struct {
	mu     sync.Mutex
	visits []models.Visit
}

func (c *ResultCollector) Append(visit models.Visit) {
	c.mu.Lock()
	c.visits = append(c.visits, visit)
	c.mu.Unlock()
}

// Snapshot returns a copy of the visits recorded so far.
func (c *ResultCollector) Snapshot() []models.Visit {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Visit, len(c.visits))
	copy(out, c.visits)
	return out
}

func (c *ResultCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.visits)
}
