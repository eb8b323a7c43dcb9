package models

// Edge represents a neighbor relationship returned by the neighbor service.
type Edge struct {
	SessionID string `json:"session_id"`
	From      NodeID `json:"from"`
	To        NodeID `json:"to"`
	Depth     int    `json:"depth"`
}
