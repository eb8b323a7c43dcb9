package models

// NodeID identifies a graph node. It is opaque to the crawler; equality is string equality.
type NodeID string

// Task is a unit of crawl work: a node awaiting processing at a given BFS depth.
type Task struct {
	Node  NodeID `json:"node"`
	Depth int    `json:"depth"`
}
