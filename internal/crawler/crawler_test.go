package crawler_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"graph-crawler/internal/crawler"
	"graph-crawler/internal/models"
	"graph-crawler/mocks"
)

// graphService serves a fixed adjacency map and counts lookups per node.
type graphService struct {
	mu    sync.Mutex
	adj   map[models.NodeID][]models.NodeID
	fail  map[models.NodeID]error
	delay map[models.NodeID]time.Duration
	calls map[models.NodeID]int
}

func newGraphService(adj map[models.NodeID][]models.NodeID) *graphService {
	return &graphService{
		adj:   adj,
		fail:  make(map[models.NodeID]error),
		delay: make(map[models.NodeID]time.Duration),
		calls: make(map[models.NodeID]int),
	}
}

func (g *graphService) Fetch(_ context.Context, id models.NodeID) ([]models.NodeID, error) {
	g.mu.Lock()
	delay := g.delay[id]
	g.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[id]++
	if err := g.fail[id]; err != nil {
		return nil, err
	}
	return g.adj[id], nil
}

func (g *graphService) callCount(id models.NodeID) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[id]
}

func (g *graphService) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

// countingVisitedSet wraps a MemoryVisitedSet and records calls and successful inserts.
type countingVisitedSet struct {
	*crawler.MemoryVisitedSet
	mu        sync.Mutex
	calls     map[models.NodeID]int
	successes map[models.NodeID]int
}

func newCountingVisitedSet() *countingVisitedSet {
	return &countingVisitedSet{
		MemoryVisitedSet: crawler.NewMemoryVisitedSet(),
		calls:            make(map[models.NodeID]int),
		successes:        make(map[models.NodeID]int),
	}
}

func (s *countingVisitedSet) InsertIfAbsent(ctx context.Context, id models.NodeID) (bool, error) {
	ok, err := s.MemoryVisitedSet.InsertIfAbsent(ctx, id)
	s.mu.Lock()
	s.calls[id]++
	if ok {
		s.successes[id]++
	}
	s.mu.Unlock()
	return ok, err
}

func runCrawl(t *testing.T, service crawler.NeighborService, start models.NodeID, opts crawler.Options) crawler.Result {
	t.Helper()
	c, err := crawler.New(service, opts)
	if err != nil {
		t.Fatalf("new crawler: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := c.Run(ctx, start)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return result
}

func sortedNodes(result crawler.Result) []models.NodeID {
	nodes := result.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes
}

func assertWellFormedResult(t *testing.T, result crawler.Result, start models.NodeID, maxDepth int) {
	t.Helper()
	if len(result.Visits) != result.Visited {
		t.Fatalf("collector has %d visits but visited set has %d members", len(result.Visits), result.Visited)
	}
	seen := make(map[models.NodeID]bool)
	startCount := 0
	for _, v := range result.Visits {
		if seen[v.Node] {
			t.Fatalf("node %s processed twice", v.Node)
		}
		seen[v.Node] = true
		if v.Depth < 0 || v.Depth > maxDepth {
			t.Fatalf("node %s has depth %d outside [0,%d]", v.Node, v.Depth, maxDepth)
		}
		if v.Node == start {
			startCount++
			if v.Depth != 0 {
				t.Fatalf("start node recorded at depth %d", v.Depth)
			}
		}
	}
	if startCount != 1 {
		t.Fatalf("expected start node once, got %d", startCount)
	}
}

func TestCrawlFourNodeGraph(t *testing.T) {
	defer leaktest.Check(t)()

	service := newGraphService(map[models.NodeID][]models.NodeID{
		"A": {"B", "C"},
		"B": {"A", "D"},
		"C": {},
		"D": {},
	})
	result := runCrawl(t, service, "A", crawler.Options{MaxDepth: 2, Workers: 4})

	want := []models.NodeID{"A", "B", "C", "D"}
	if diff := cmp.Diff(want, sortedNodes(result)); diff != "" {
		t.Fatalf("visited set mismatch (-want +got):\n%s", diff)
	}
	assertWellFormedResult(t, result, "A", 2)
	if got := service.callCount("D"); got != 0 {
		t.Fatalf("expected no fetch for node at max depth, got %d", got)
	}
	if got := service.totalCalls(); got != 3 {
		t.Fatalf("expected 3 fetches (A, B, C), got %d", got)
	}
}

func TestCrawlDepthZeroNeverFetches(t *testing.T) {
	defer leaktest.Check(t)()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	service := mocks.NewMockNeighborService(ctrl)
	service.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(0)

	result := runCrawl(t, service, "solo", crawler.Options{MaxDepth: 0, Workers: 8})
	if diff := cmp.Diff([]models.NodeID{"solo"}, result.Nodes()); diff != "" {
		t.Fatalf("unexpected nodes (-want +got):\n%s", diff)
	}
	assertWellFormedResult(t, result, "solo", 0)
}

func TestCrawlMalformedResponseIsSoftFailure(t *testing.T) {
	defer leaktest.Check(t)()

	service := newGraphService(map[models.NodeID][]models.NodeID{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"E"},
	})
	service.fail["B"] = errors.New("malformed response: invalid character '<'")

	metrics := crawler.NewMetrics(nil)
	result := runCrawl(t, service, "A", crawler.Options{MaxDepth: 3, Workers: 2, Metrics: metrics})

	want := []models.NodeID{"A", "B", "C", "E"}
	if diff := cmp.Diff(want, sortedNodes(result)); diff != "" {
		t.Fatalf("visited set mismatch (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(metrics.Fetches.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed fetch, got %v", got)
	}
}

func TestCrawlCycleTerminates(t *testing.T) {
	defer leaktest.Check(t)()

	service := newGraphService(map[models.NodeID][]models.NodeID{
		"A": {"B"},
		"B": {"A"},
	})
	result := runCrawl(t, service, "A", crawler.Options{MaxDepth: 5, Workers: 8})

	if diff := cmp.Diff([]models.NodeID{"A", "B"}, sortedNodes(result)); diff != "" {
		t.Fatalf("visited set mismatch (-want +got):\n%s", diff)
	}
	if service.callCount("A") != 1 || service.callCount("B") != 1 {
		t.Fatalf("expected one fetch per node, got A=%d B=%d", service.callCount("A"), service.callCount("B"))
	}
}

func TestCrawlSelfLoop(t *testing.T) {
	defer leaktest.Check(t)()

	service := newGraphService(map[models.NodeID][]models.NodeID{
		"A": {"A", "B"},
		"B": {"B"},
	})
	result := runCrawl(t, service, "A", crawler.Options{MaxDepth: 10, Workers: 3})
	if diff := cmp.Diff([]models.NodeID{"A", "B"}, sortedNodes(result)); diff != "" {
		t.Fatalf("visited set mismatch (-want +got):\n%s", diff)
	}
}

func TestCrawlConcurrentDiscoveryCreatesOneTask(t *testing.T) {
	defer leaktest.Check(t)()

	// root fans out to 64 parents that all point at the same child.
	adj := map[models.NodeID][]models.NodeID{}
	var parents []models.NodeID
	for i := 0; i < 64; i++ {
		p := models.NodeID(fmt.Sprintf("P%02d", i))
		parents = append(parents, p)
		adj[p] = []models.NodeID{"X"}
	}
	adj["root"] = parents

	visited := newCountingVisitedSet()
	result := runCrawl(t, newGraphService(adj), "root", crawler.Options{MaxDepth: 2, Workers: 32, Visited: visited})

	if got := visited.calls["X"]; got != 64 {
		t.Fatalf("expected 64 insert attempts for X, got %d", got)
	}
	if got := visited.successes["X"]; got != 1 {
		t.Fatalf("expected exactly one successful insert for X, got %d", got)
	}
	count := 0
	for _, n := range result.Nodes() {
		if n == "X" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected X processed once, got %d", count)
	}
	assertWellFormedResult(t, result, "root", 2)
}

// layeredGraph builds a graph whose edges only go from layer k to layer k+1, so every
// path to a node has the same length and the depth-bounded visited set is fixed.
func layeredGraph(layers, width int) map[models.NodeID][]models.NodeID {
	adj := make(map[models.NodeID][]models.NodeID)
	name := func(layer, i int) models.NodeID {
		if layer == 0 {
			return "root"
		}
		return models.NodeID(fmt.Sprintf("L%d-%d", layer, i))
	}
	adj["root"] = nil
	for i := 0; i < width; i++ {
		adj["root"] = append(adj["root"], name(1, i))
	}
	for layer := 1; layer < layers; layer++ {
		for i := 0; i < width; i++ {
			from := name(layer, i)
			adj[from] = []models.NodeID{
				name(layer+1, i),
				name(layer+1, (i+1)%width),
				name(layer+1, (i*7+3)%width),
			}
		}
	}
	return adj
}

func TestCrawlVisitedSetIndependentOfWorkerCount(t *testing.T) {
	adj := layeredGraph(8, 25)

	var baseline []models.NodeID
	for _, workers := range []int{1, 8, 32} {
		result := runCrawl(t, newGraphService(adj), "root", crawler.Options{MaxDepth: 5, Workers: workers})
		assertWellFormedResult(t, result, "root", 5)
		nodes := sortedNodes(result)
		if len(nodes) != 1+5*25 {
			t.Fatalf("workers=%d: expected %d nodes, got %d", workers, 1+5*25, len(nodes))
		}
		if baseline == nil {
			baseline = nodes
			continue
		}
		if diff := cmp.Diff(baseline, nodes); diff != "" {
			t.Fatalf("workers=%d changed the visited set (-1 worker +%d workers):\n%s", workers, workers, diff)
		}
	}
}

func TestCrawlShortestDepthWinsWithUnevenPaths(t *testing.T) {
	// X is two hops from A via C and three via B and D. With C slow, the longer
	// path would reach X first unless levels are processed in order.
	adj := map[models.NodeID][]models.NodeID{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"X"},
		"D": {"X"},
		"X": {"Z"},
	}
	want := []models.NodeID{"A", "B", "C", "D", "X", "Z"}

	defer leaktest.Check(t)()
	for _, workers := range []int{1, 8, 32} {
		service := newGraphService(adj)
		service.delay["C"] = 100 * time.Millisecond

		result := runCrawl(t, service, "A", crawler.Options{MaxDepth: 3, Workers: workers})
		assertWellFormedResult(t, result, "A", 3)
		if diff := cmp.Diff(want, sortedNodes(result)); diff != "" {
			t.Fatalf("workers=%d: visited mismatch (-want +got):\n%s", workers, diff)
		}
		for _, v := range result.Visits {
			if v.Node == "X" && v.Depth != 2 {
				t.Fatalf("workers=%d: expected X at depth 2, got %d", workers, v.Depth)
			}
		}
	}
}

func TestCrawlVisitsLevelsInOrder(t *testing.T) {
	adj := layeredGraph(6, 10)
	result := runCrawl(t, newGraphService(adj), "root", crawler.Options{MaxDepth: 5, Workers: 16})
	last := 0
	for _, v := range result.Visits {
		if v.Depth < last {
			t.Fatalf("visit %s at depth %d recorded after depth %d", v.Node, v.Depth, last)
		}
		last = v.Depth
	}
}

func TestCrawlCyclicGraphFullDepthIndependentOfWorkerCount(t *testing.T) {
	// A ring with chords; depth covers the whole graph so every reachable node is visited.
	const n = 60
	adj := make(map[models.NodeID][]models.NodeID)
	for i := 0; i < n; i++ {
		from := models.NodeID(fmt.Sprintf("N%d", i))
		adj[from] = []models.NodeID{
			models.NodeID(fmt.Sprintf("N%d", (i+1)%n)),
			models.NodeID(fmt.Sprintf("N%d", (i*5)%n)),
			from,
		}
	}

	for _, workers := range []int{1, 8, 32} {
		service := newGraphService(adj)
		result := runCrawl(t, service, "N0", crawler.Options{MaxDepth: n, Workers: workers})
		if len(result.Visits) != n {
			t.Fatalf("workers=%d: expected %d nodes, got %d", workers, n, len(result.Visits))
		}
		assertWellFormedResult(t, result, "N0", n)
		for i := 0; i < n; i++ {
			id := models.NodeID(fmt.Sprintf("N%d", i))
			if got := service.callCount(id); got > 1 {
				t.Fatalf("workers=%d: node %s fetched %d times", workers, id, got)
			}
		}
	}
}

func TestCrawlFetchTimeoutIsSoftFailure(t *testing.T) {
	defer leaktest.Check(t)()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	service := mocks.NewMockNeighborService(ctrl)
	service.EXPECT().Fetch(gomock.Any(), models.NodeID("slow")).DoAndReturn(
		func(ctx context.Context, _ models.NodeID) ([]models.NodeID, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	).Times(1)

	metrics := crawler.NewMetrics(nil)
	result := runCrawl(t, service, "slow", crawler.Options{
		MaxDepth:     3,
		Workers:      2,
		FetchTimeout: 20 * time.Millisecond,
		Metrics:      metrics,
	})
	if diff := cmp.Diff([]models.NodeID{"slow"}, result.Nodes()); diff != "" {
		t.Fatalf("unexpected nodes (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(metrics.Fetches.WithLabelValues("timeout")); got != 1 {
		t.Fatalf("expected 1 timed out fetch, got %v", got)
	}
}

func TestCrawlPublishesVisitsAndEdges(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	sink := mocks.NewMockSink(ctrl)
	var mu sync.Mutex
	var visits []models.NodeID
	var edges []string
	sink.EXPECT().PublishVisit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, v models.Visit) error {
			mu.Lock()
			defer mu.Unlock()
			if v.SessionID != "session-1" {
				t.Errorf("unexpected session id %q", v.SessionID)
			}
			visits = append(visits, v.Node)
			return nil
		},
	).Times(3)
	sink.EXPECT().PublishEdge(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e models.Edge) error {
			mu.Lock()
			defer mu.Unlock()
			edges = append(edges, string(e.From)+"->"+string(e.To))
			return errors.New("broker unavailable")
		},
	).Times(3)

	service := newGraphService(map[models.NodeID][]models.NodeID{
		"A": {"B", "C"},
		"B": {"A"},
	})
	metrics := crawler.NewMetrics(nil)
	result := runCrawl(t, service, "A", crawler.Options{
		MaxDepth:  2,
		Workers:   2,
		SessionID: "session-1",
		Sink:      sink,
		Metrics:   metrics,
	})

	if len(result.Visits) != 3 {
		t.Fatalf("expected 3 visits despite sink errors, got %d", len(result.Visits))
	}
	sort.Strings(edges)
	if diff := cmp.Diff([]string{"A->B", "A->C", "B->A"}, edges); diff != "" {
		t.Fatalf("unexpected edges (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(metrics.SinkErrors); got != 3 {
		t.Fatalf("expected 3 sink errors, got %v", got)
	}
}

func TestCrawlVisitedSetErrorSkipsNeighbor(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	visited := mocks.NewMockVisitedSet(ctrl)
	visited.EXPECT().InsertIfAbsent(gomock.Any(), models.NodeID("A")).Return(true, nil)
	visited.EXPECT().InsertIfAbsent(gomock.Any(), models.NodeID("B")).Return(false, errors.New("redis down"))
	visited.EXPECT().InsertIfAbsent(gomock.Any(), models.NodeID("C")).Return(true, nil)
	visited.EXPECT().Len().Return(2)

	service := newGraphService(map[models.NodeID][]models.NodeID{"A": {"B", "C"}})
	metrics := crawler.NewMetrics(nil)
	result := runCrawl(t, service, "A", crawler.Options{MaxDepth: 1, Workers: 2, Visited: visited, Metrics: metrics})

	if diff := cmp.Diff([]models.NodeID{"A", "C"}, sortedNodes(result)); diff != "" {
		t.Fatalf("unexpected nodes (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(metrics.VisitedErrors); got != 1 {
		t.Fatalf("expected 1 visited error, got %v", got)
	}
}

func TestCrawlSeedVisitedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	visited := mocks.NewMockVisitedSet(ctrl)
	visited.EXPECT().InsertIfAbsent(gomock.Any(), models.NodeID("A")).Return(false, errors.New("redis down"))

	c, err := crawler.New(newGraphService(nil), crawler.Options{MaxDepth: 1, Workers: 1, Visited: visited})
	if err != nil {
		t.Fatalf("new crawler: %v", err)
	}
	if _, err := c.Run(context.Background(), "A"); err == nil {
		t.Fatal("expected seed error, got nil")
	}
}

func TestCrawlMetricsCountVisits(t *testing.T) {
	service := newGraphService(map[models.NodeID][]models.NodeID{
		"A": {"B", "C"},
		"B": {"C"},
		"C": {"A"},
	})
	metrics := crawler.NewMetrics(nil)
	runCrawl(t, service, "A", crawler.Options{MaxDepth: 3, Workers: 4, Metrics: metrics})

	if got := testutil.ToFloat64(metrics.NodesVisited); got != 3 {
		t.Fatalf("expected 3 visits, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.DuplicatesSkipped); got != 2 {
		t.Fatalf("expected 2 duplicate neighbors, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.ActiveWorkers); got != 0 {
		t.Fatalf("expected no active workers after crawl, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.PendingTasks); got != 0 {
		t.Fatalf("expected no pending tasks after crawl, got %v", got)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	service := newGraphService(nil)
	tests := []struct {
		name    string
		service crawler.NeighborService
		opts    crawler.Options
		wantErr error
	}{
		{"nil service", nil, crawler.Options{Workers: 1}, crawler.ErrNilService},
		{"negative depth", service, crawler.Options{MaxDepth: -1, Workers: 1}, crawler.ErrInvalidDepth},
		{"zero workers", service, crawler.Options{MaxDepth: 1}, crawler.ErrInvalidWorkers},
		{"negative workers", service, crawler.Options{MaxDepth: 1, Workers: -3}, crawler.ErrInvalidWorkers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := crawler.New(tt.service, tt.opts); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRunRejectsEmptyStartAndReuse(t *testing.T) {
	c, err := crawler.New(newGraphService(nil), crawler.Options{Workers: 1})
	if err != nil {
		t.Fatalf("new crawler: %v", err)
	}
	if _, err := c.Run(context.Background(), "  "); !errors.Is(err, crawler.ErrEmptyStartNode) {
		t.Fatalf("expected ErrEmptyStartNode, got %v", err)
	}
	if _, err := c.Run(context.Background(), "A"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := c.Run(context.Background(), "A"); !errors.Is(err, crawler.ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}
