package models

import "time"

// CrawlSummary is the end-of-run report printed by the CLI.
type CrawlSummary struct {
	Workers      int           `json:"workers"`
	NodesVisited int           `json:"nodes_visited"`
	Elapsed      time.Duration `json:"elapsed"`
}
