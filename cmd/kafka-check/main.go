package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"graph-crawler/common"
	"graph-crawler/internal/kafka"
)

// topicAdmin is the broker surface the check needs.
type topicAdmin interface {
	CheckTopics(ctx context.Context, broker string, topics ...string) ([]string, error)
	CreateTopics(ctx context.Context, broker string, partitions, replication int, topics ...string) error
}

type kafkaAdmin struct{}

func (kafkaAdmin) CheckTopics(ctx context.Context, broker string, topics ...string) ([]string, error) {
	return kafka.CheckTopics(ctx, broker, topics...)
}

func (kafkaAdmin) CreateTopics(ctx context.Context, broker string, partitions, replication int, topics ...string) error {
	return kafka.CreateTopics(ctx, broker, partitions, replication, topics...)
}

type checkConfig struct {
	broker      string
	visitsTopic string
	edgesTopic  string
	create      bool
	partitions  int
	replication int
	timeout     time.Duration
}

var errMissingTopics = errors.New("missing topics")

func main() {
	if err := newRootCmd(kafkaAdmin{}, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(admin topicAdmin, stdout io.Writer) *cobra.Command {
	cfg := checkConfig{
		broker:      common.GetEnv("KAFKA_BROKER", "localhost:9092"),
		visitsTopic: common.GetEnv("KAFKA_VISITS_TOPIC", "graph.crawl.visits"),
		edgesTopic:  common.GetEnv("KAFKA_EDGES_TOPIC", "graph.crawl.edges"),
		partitions:  3,
		replication: 1,
		timeout:     5 * time.Second,
	}

	cmd := &cobra.Command{
		Use:           "kafka-check",
		Short:         "Check that the broker is reachable and the crawler topics exist",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
			defer cancel()
			return runCheck(ctx, admin, cfg, stdout)
		},
	}
	cmd.Flags().StringVar(&cfg.broker, "broker", cfg.broker, "Kafka broker address")
	cmd.Flags().BoolVar(&cfg.create, "create", cfg.create, "Create missing crawler topics")
	cmd.Flags().IntVar(&cfg.partitions, "partitions", cfg.partitions, "Partitions for created topics")
	cmd.Flags().IntVar(&cfg.replication, "replication", cfg.replication, "Replication factor for created topics")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", cfg.timeout, "Deadline for the whole check")
	cmd.SetOut(stdout)
	return cmd
}

func runCheck(ctx context.Context, admin topicAdmin, cfg checkConfig, stdout io.Writer) error {
	missing, err := admin.CheckTopics(ctx, cfg.broker, cfg.visitsTopic, cfg.edgesTopic)
	if err != nil {
		return fmt.Errorf("read Kafka metadata at %s: %w", cfg.broker, err)
	}
	if len(missing) == 0 {
		fmt.Fprintf(stdout, "connected to Kafka at %s; topics %s and %s exist\n", cfg.broker, cfg.visitsTopic, cfg.edgesTopic)
		return nil
	}
	if !cfg.create {
		return fmt.Errorf("%w at %s: %s", errMissingTopics, cfg.broker, strings.Join(missing, ", "))
	}

	if err := admin.CreateTopics(ctx, cfg.broker, cfg.partitions, cfg.replication, missing...); err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	fmt.Fprintf(stdout, "created topics: %s\n", strings.Join(missing, ", "))
	return nil
}
