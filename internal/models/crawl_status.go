package models

import "time"

// CrawlState is the lifecycle state of a crawl session.
type CrawlState string

const (
	CrawlStateQueued   CrawlState = "queued"
	CrawlStateRunning  CrawlState = "running"
	CrawlStateFinished CrawlState = "finished"
)

// CrawlStatus tracks the state of a crawl session.
type CrawlStatus struct {
	SessionID    string     `json:"session_id"`
	StartNode    NodeID     `json:"start_node"`
	MaxDepth     int        `json:"max_depth"`
	Workers      int        `json:"workers"`
	Status       CrawlState `json:"status"`
	NodesVisited int        `json:"nodes_visited"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
