package graph_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"graph-crawler/internal/graph"
	"graph-crawler/internal/models"
	"graph-crawler/mocks"
)

func newMockWriter(t *testing.T, execErr error, expectWrites int) *graph.Writer {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	driver := mocks.NewMockDriverSessioner(ctrl)
	session := mocks.NewMockSessionRunner(ctrl)

	driver.EXPECT().NewSession(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cfg neo4j.SessionConfig) graph.SessionRunner {
			if cfg.AccessMode != neo4j.AccessModeWrite {
				t.Fatalf("expected write session, got %v", cfg.AccessMode)
			}
			return session
		},
	).Times(expectWrites)
	session.EXPECT().Close(gomock.Any()).Return(nil).Times(expectWrites)
	session.EXPECT().ExecuteWrite(gomock.Any(), gomock.Any()).Return(nil, execErr).Times(expectWrites)

	return graph.NewWriter(driver)
}

func TestBuildVisitQuery(t *testing.T) {
	visit := models.Visit{SessionID: "s1", Node: "Kevin Bacon", Depth: 2, VisitedAt: time.Unix(0, 0).UTC()}
	query, params := graph.BuildVisitQuery(visit)
	if !strings.Contains(query, "MERGE (n:Node {id: $id})") {
		t.Fatalf("unexpected visit query: %s", query)
	}
	if params["id"] != "Kevin Bacon" || params["session_id"] != "s1" || params["depth"] != 2 {
		t.Fatalf("unexpected visit params: %+v", params)
	}
}

func TestBuildEdgeQuery(t *testing.T) {
	edge := models.Edge{SessionID: "s1", From: "A", To: "B", Depth: 1}
	query, params := graph.BuildEdgeQuery(edge)
	if !strings.Contains(query, "[r:NEIGHBOR {session_id: $session_id}]") {
		t.Fatalf("unexpected edge query: %s", query)
	}
	if params["from"] != "A" || params["to"] != "B" || params["session_id"] != "s1" {
		t.Fatalf("unexpected edge params: %+v", params)
	}
}

func TestWriterWriteEdge(t *testing.T) {
	w := newMockWriter(t, nil, 1)
	if err := w.WriteEdge(context.Background(), models.Edge{SessionID: "s1", From: "A", To: "B"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestWriterSkipsIncompleteEdge(t *testing.T) {
	w := newMockWriter(t, nil, 0)
	if err := w.WriteEdge(context.Background(), models.Edge{SessionID: "s1", From: "A"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := w.WriteVisit(context.Background(), models.Visit{SessionID: "s1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestWriterWriteVisitError(t *testing.T) {
	w := newMockWriter(t, errors.New("neo4j unavailable"), 1)
	if err := w.WriteVisit(context.Background(), models.Visit{SessionID: "s1", Node: "A"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}
