package crawler

import (
	"context"
	"sync"

	"graph-crawler/internal/models"
)

// MemoryVisitedSet is an in-process VisitedSet guarded by a mutex.
type MemoryVisitedSet struct {
	mu    sync.Mutex
	nodes map[models.NodeID]struct{}
}

func NewMemoryVisitedSet() *MemoryVisitedSet {
	return &MemoryVisitedSet{nodes: make(map[models.NodeID]struct{})}
}

// InsertIfAbsent adds id and reports whether this call performed the insertion. It never fails.
func (s *MemoryVisitedSet) InsertIfAbsent(_ context.Context, id models.NodeID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; ok {
		return false, nil
	}
	s.nodes[id] = struct{}{}
	return true, nil
}

func (s *MemoryVisitedSet) Contains(id models.NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[id]
	return ok
}

func (s *MemoryVisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

