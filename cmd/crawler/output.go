package main

import (
	"bufio"
	"fmt"
	"io"

	"graph-crawler/internal/models"
)

func printNodes(w io.Writer, nodes []models.NodeID) error {
	bw := bufio.NewWriter(w)
	for _, node := range nodes {
		if _, err := fmt.Fprintf(bw, "- %s\n", node); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func printSummary(w io.Writer, summary models.CrawlSummary) error {
	_, err := fmt.Fprintf(w, "Workers: %d, Nodes visited: %d, Time: %.3fs\n",
		summary.Workers, summary.NodesVisited, summary.Elapsed.Seconds())
	return err
}
