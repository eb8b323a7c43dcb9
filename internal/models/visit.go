package models

import "time"

// Visit records that a worker began processing a node.
type Visit struct {
	SessionID string    `json:"session_id,omitempty"`
	Node      NodeID    `json:"node"`
	Depth     int       `json:"depth"`
	VisitedAt time.Time `json:"visited_at"`
}
