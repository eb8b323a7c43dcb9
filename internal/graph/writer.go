package graph

import (
	"context"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"graph-crawler/internal/models"
)

// Writer persists crawled nodes and edges as (:Node {id}) and [:NEIGHBOR] relationships.
type Writer struct {
	driver DriverSessioner
}

func NewWriter(driver DriverSessioner) *Writer {
	return &Writer{driver: driver}
}

// WriteVisit merges the visited node, keeping the smallest depth it was seen at.
func (w *Writer) WriteVisit(ctx context.Context, visit models.Visit) error {
	if visit.Node == "" {
		return nil
	}
	query, params := BuildVisitQuery(visit)
	return w.runWrite(ctx, query, params)
}

// WriteEdge merges both endpoints and the session-scoped relationship between them.
func (w *Writer) WriteEdge(ctx context.Context, edge models.Edge) error {
	if edge.From == "" || edge.To == "" {
		return nil
	}
	query, params := BuildEdgeQuery(edge)
	return w.runWrite(ctx, query, params)
}

func (w *Writer) runWrite(ctx context.Context, query string, params map[string]any) error {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() {
		if err := session.Close(ctx); err != nil {
			log.Printf("neo4j session close error: %v", err)
		}
	}()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

func BuildVisitQuery(visit models.Visit) (string, map[string]any) {
	query := "MERGE (n:Node {id: $id}) " +
		"SET n.session_id = $session_id, " +
		"n.depth = CASE WHEN n.depth IS NULL OR $depth < n.depth THEN $depth ELSE n.depth END, " +
		"n.visited_at = $visited_at"
	params := map[string]any{
		"id":         string(visit.Node),
		"session_id": visit.SessionID,
		"depth":      visit.Depth,
		"visited_at": visit.VisitedAt,
	}
	return query, params
}

func BuildEdgeQuery(edge models.Edge) (string, map[string]any) {
	query := "MERGE (from:Node {id: $from}) " +
		"MERGE (to:Node {id: $to}) " +
		"MERGE (from)-[r:NEIGHBOR {session_id: $session_id}]->(to)"
	params := map[string]any{
		"from":       string(edge.From),
		"to":         string(edge.To),
		"session_id": edge.SessionID,
	}
	return query, params
}
