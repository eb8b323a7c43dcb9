package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"graph-crawler/common"
	"graph-crawler/internal/neighbors"
)

const neighborsPrefix = "/neighbors/"

type serverConfig struct {
	graphPath string
	addr      string
	debug     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := serverConfig{
		graphPath: common.GetEnv("GRAPH_FILE", "graph.json"),
		addr:      common.GetEnv("NEIGHBOR_ADDR", ":8081"),
		debug:     common.ParseBool(common.GetEnv("DEBUG", ""), false),
	}

	cmd := &cobra.Command{
		Use:          "neighbor-server",
		Short:        "Serve neighbor lookups from a JSON adjacency file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := neighbors.LoadGraph(cfg.graphPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg.addr, newRouter(g, cfg.debug), len(g))
		},
	}
	cmd.Flags().StringVar(&cfg.graphPath, "graph", cfg.graphPath, "Path to JSON adjacency file")
	cmd.Flags().StringVar(&cfg.addr, "addr", cfg.addr, "Listen address")
	cmd.Flags().BoolVar(&cfg.debug, "debug", cfg.debug, "Log every request")
	return cmd
}

// newRouter sends neighbor lookups straight to the handler. ServeMux would clean and
// redirect ids that contain dot segments.
func newRouter(g neighbors.Graph, debug bool) http.Handler {
	lookup := neighbors.NewHandler(g, neighborsPrefix, debug)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.EscapedPath(), neighborsPrefix) {
			lookup.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func serve(ctx context.Context, addr string, handler http.Handler, nodes int) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("neighbor-server shutdown error: %v", err)
		}
	}()

	log.Printf("neighbor-server listening on %s nodes=%d", addr, nodes)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
