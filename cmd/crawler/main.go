package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"graph-crawler/common"
	"graph-crawler/internal/config"
	"graph-crawler/internal/crawler"
	"graph-crawler/internal/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	cmd := newRootCmd(&cfg, &deps{}, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var argErr *ArgumentError
		if errors.As(err, &argErr) {
			fmt.Fprintf(os.Stderr, "Usage: %s\n", usageLine)
		}
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. Flags override the env-derived cfg in place before the crawl starts.
func newRootCmd(cfg *config.Config, d *deps, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   usageLine,
		Short: "Breadth-first crawl of a remote graph from a start node",
		Long: `Crawls outward from startNode up to depth hops using a pool of workers,
printing every visited node on stdout and a summary on stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 || len(args) > 3 {
				return &ArgumentError{Reason: fmt.Sprintf("expected 2 or 3 arguments, got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseArgs(args, cfg.Workers)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCrawl(cmd.Context(), *cfg, d, parsed, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ArgumentError{Reason: err.Error()}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "Neighbor service base URL")
	flags.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Timeout for one neighbor lookup")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Log every neighbor request")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus /metrics on this address during the crawl")
	flags.StringVar(&cfg.VisitedBackend, "visited-backend", cfg.VisitedBackend, "Visited set backend (memory or redis)")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the redis visited backend and status store")

	root.AddCommand(newStatusCmd(cfg, d, stdout))
	return root
}

func runCrawl(ctx context.Context, cfg config.Config, d *deps, args crawlArgs, stdout, stderr io.Writer) error {
	sessionID := crawler.NewSessionID()
	d.wire(cfg, sessionID)
	defer d.close()

	reg := prometheus.NewRegistry()
	metrics := crawler.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		common.StartMetricsServer(metricsCtx, cfg.MetricsAddr, reg)
	}

	c, err := crawler.New(d.service, crawler.Options{
		MaxDepth:       args.depth,
		Workers:        args.workers,
		SessionID:      sessionID,
		FetchTimeout:   cfg.FetchTimeout,
		PublishTimeout: cfg.PublishTimeout,
		Debug:          cfg.Debug,
		Visited:        d.visited,
		Sink:           d.sink,
		Metrics:        metrics,
	})
	if err != nil {
		return err
	}

	status := models.CrawlStatus{
		SessionID: sessionID,
		StartNode: args.start,
		MaxDepth:  args.depth,
		Workers:   args.workers,
		Status:    models.CrawlStateQueued,
		CreatedAt: time.Now().UTC(),
	}
	d.recordStatus(ctx, status)

	status.Status = models.CrawlStateRunning
	d.recordStatus(ctx, status)

	result, err := c.Run(ctx, args.start)
	if err != nil {
		return err
	}

	status.Status = models.CrawlStateFinished
	status.NodesVisited = len(result.Visits)
	d.recordStatus(ctx, status)

	if err := printNodes(stdout, result.Nodes()); err != nil {
		return err
	}
	return printSummary(stderr, models.CrawlSummary{
		Workers:      result.Workers,
		NodesVisited: len(result.Visits),
		Elapsed:      result.Elapsed,
	})
}
