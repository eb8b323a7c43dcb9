package neighbors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
)

var errEmptyGraph = errors.New("neighbors: graph file has no nodes")

// Graph is an adjacency map from node id to neighbor ids.
type Graph map[string][]string

// LoadGraph reads a JSON adjacency file such as {"A": ["B", "C"], "B": []}.
func LoadGraph(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse graph %s: %w", path, err)
	}
	if len(g) == 0 {
		return nil, errEmptyGraph
	}
	return g, nil
}

type response struct {
	Neighbors []string `json:"neighbors"`
}

// Handler serves the neighbor protocol for a static Graph under prefix.
type Handler struct {
	graph  Graph
	prefix string
	debug  bool
}

// NewHandler returns a Handler answering GET {prefix}{id}. The id is taken from the
// escaped path, so ids containing "/" or ".." survive intact. Unknown ids get an empty list.
func NewHandler(g Graph, prefix string, debug bool) *Handler {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Handler{graph: g, prefix: prefix, debug: debug}
}

// ServeHTTP handles neighbor lookups.
//
// Method: GET
// Path:   {prefix}{id}
// Example:
//
//	curl "http://localhost:8081/neighbors/Kevin%20Bacon"
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	escaped := r.URL.EscapedPath()
	if !strings.HasPrefix(escaped, h.prefix) {
		http.NotFound(w, r)
		return
	}
	id, err := url.PathUnescape(strings.TrimPrefix(escaped, h.prefix))
	if err != nil {
		http.Error(w, "invalid node id", http.StatusBadRequest)
		return
	}

	neighbors := h.graph[id]
	if neighbors == nil {
		neighbors = []string{}
	}
	if h.debug {
		log.Printf("neighbors request node=%q count=%d", id, len(neighbors))
	}
	writeJSON(w, response{Neighbors: neighbors}, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, payload any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response error: %v", err)
	}
}
