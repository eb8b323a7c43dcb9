package main

import (
	"fmt"
	"strconv"
	"strings"

	"graph-crawler/internal/models"
)

const usageLine = "crawler <startNode> <depth> [workerCount]"

// ArgumentError reports malformed positional input. No crawl is attempted.
type ArgumentError struct {
	Arg    string
	Value  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Arg, e.Value, e.Reason)
}

type crawlArgs struct {
	start   models.NodeID
	depth   int
	workers int
}

// parseArgs validates <startNode> <depth> [workerCount]; defaultWorkers applies when
// workerCount is omitted.
func parseArgs(args []string, defaultWorkers int) (crawlArgs, error) {
	if len(args) < 2 || len(args) > 3 {
		return crawlArgs{}, &ArgumentError{Reason: fmt.Sprintf("expected 2 or 3 arguments, got %d", len(args))}
	}

	start := args[0]
	if strings.TrimSpace(start) == "" {
		return crawlArgs{}, &ArgumentError{Arg: "startNode", Value: start, Reason: "must not be empty"}
	}

	depth, err := strconv.Atoi(args[1])
	if err != nil {
		return crawlArgs{}, &ArgumentError{Arg: "depth", Value: args[1], Reason: "not an integer"}
	}
	if depth < 0 {
		return crawlArgs{}, &ArgumentError{Arg: "depth", Value: args[1], Reason: "must be >= 0"}
	}

	workers := defaultWorkers
	if len(args) == 3 {
		workers, err = strconv.Atoi(args[2])
		if err != nil {
			return crawlArgs{}, &ArgumentError{Arg: "workerCount", Value: args[2], Reason: "not an integer"}
		}
		if workers <= 0 {
			return crawlArgs{}, &ArgumentError{Arg: "workerCount", Value: args[2], Reason: "must be > 0"}
		}
	}

	return crawlArgs{start: models.NodeID(start), depth: depth, workers: workers}, nil
}
