package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"graph-crawler/common"
	"graph-crawler/internal/graph"
	crawlkafka "graph-crawler/internal/kafka"
	"graph-crawler/internal/models"
)

// writerMetrics counts messages per topic kind ("visits" or "edges").
type writerMetrics struct {
	received *prometheus.CounterVec
	written  *prometheus.CounterVec
	failed   *prometheus.CounterVec
	dropped  *prometheus.CounterVec
}

func newWriterMetrics(reg prometheus.Registerer) *writerMetrics {
	factory := promauto.With(reg)
	return &writerMetrics{
		received: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_writer_messages_received_total",
			Help: "Messages fetched from Kafka.",
		}, []string{"kind"}),
		written: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_writer_messages_written_total",
			Help: "Messages persisted to Neo4j.",
		}, []string{"kind"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_writer_messages_failed_total",
			Help: "Failed write attempts, including retries.",
		}, []string{"kind"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_writer_messages_dropped_total",
			Help: "Undecodable messages committed without a write.",
		}, []string{"kind"}),
	}
}

type handler func(ctx context.Context, payload []byte) error

const (
	retryBackoff    = 100 * time.Millisecond
	maxRetryBackoff = 10 * time.Second
)

var errUndecodable = errors.New("undecodable payload")

func main() {
	broker := common.GetEnv("KAFKA_BROKER", "localhost:9092")
	visitsTopic := common.GetEnv("KAFKA_VISITS_TOPIC", "graph.crawl.visits")
	edgesTopic := common.GetEnv("KAFKA_EDGES_TOPIC", "graph.crawl.edges")
	visitsGroup := common.GetEnv("KAFKA_VISITS_GROUP", "graph-writer-visits")
	edgesGroup := common.GetEnv("KAFKA_EDGES_GROUP", "graph-writer-edges")
	metricsAddr := common.GetEnv("METRICS_ADDR", ":9091")

	neo4jURI := common.GetEnv("NEO4J_URI", "neo4j://localhost:7687")
	neo4jUser := common.GetEnv("NEO4J_USER", "neo4j")
	neo4jPassword := common.GetEnv("NEO4J_PASSWORD", "neo4j")

	driver, err := neo4j.NewDriverWithContext(neo4jURI, neo4j.BasicAuth(neo4jUser, neo4jPassword, ""))
	if err != nil {
		log.Fatalf("neo4j driver error: %v", err)
	}
	defer func() {
		if err := driver.Close(context.Background()); err != nil {
			log.Printf("neo4j close error: %v", err)
		}
	}()

	writer := graph.NewWriter(graph.NewDriver(driver))

	visitsReader := newReader(broker, visitsTopic, visitsGroup)
	defer closeReader("visits", visitsReader)
	edgesReader := newReader(broker, edgesTopic, edgesGroup)
	defer closeReader("edges", edgesReader)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics := newWriterMetrics(reg)
	if metricsAddr != "" {
		common.StartMetricsServer(ctx, metricsAddr, reg)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consume(ctx, "visits", visitsReader, visitHandler(writer), metrics)
	}()
	go func() {
		defer wg.Done()
		consume(ctx, "edges", edgesReader, edgeHandler(writer), metrics)
	}()
	log.Printf("graph-writer consuming topics=%s,%s broker=%s", visitsTopic, edgesTopic, broker)

	wg.Wait()
}

func newReader(broker, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: group,
	})
}

func closeReader(kind string, reader crawlkafka.MessageReader) {
	if err := reader.Close(); err != nil {
		log.Printf("%s reader close error: %v", kind, err)
	}
}

func visitHandler(writer *graph.Writer) handler {
	return func(ctx context.Context, payload []byte) error {
		var visit models.Visit
		if err := json.Unmarshal(payload, &visit); err != nil {
			return fmt.Errorf("%w: %v", errUndecodable, err)
		}
		return writer.WriteVisit(ctx, visit)
	}
}

func edgeHandler(writer *graph.Writer) handler {
	return func(ctx context.Context, payload []byte) error {
		var edge models.Edge
		if err := json.Unmarshal(payload, &edge); err != nil {
			return fmt.Errorf("%w: %v", errUndecodable, err)
		}
		return writer.WriteEdge(ctx, edge)
	}
}

// consume handles messages one at a time and commits each only once it is settled.
// A failed write is retried on the same message with backoff, so later offsets are
// never committed past it. Undecodable payloads are committed without a write.
func consume(ctx context.Context, kind string, reader crawlkafka.MessageReader, handle handler, metrics *writerMetrics) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("%s fetch error: %v", kind, err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		metrics.received.WithLabelValues(kind).Inc()
		if err := settle(ctx, kind, msg, handle, metrics); err != nil {
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Printf("%s commit error: %v", kind, err)
		}
	}
}

// settle runs handle until it succeeds or fails permanently. It returns an error only
// when ctx ends first, in which case msg must not be committed.
func settle(ctx context.Context, kind string, msg kafka.Message, handle handler, metrics *writerMetrics) error {
	backoff := retryBackoff
	for {
		err := handle(ctx, msg.Value)
		if err == nil {
			metrics.written.WithLabelValues(kind).Inc()
			return nil
		}
		metrics.failed.WithLabelValues(kind).Inc()
		if errors.Is(err, errUndecodable) {
			metrics.dropped.WithLabelValues(kind).Inc()
			log.Printf("%s dropping message partition=%d offset=%d err=%v", kind, msg.Partition, msg.Offset, err)
			return nil
		}
		log.Printf("%s write error partition=%d offset=%d retry_in=%s err=%v", kind, msg.Partition, msg.Offset, backoff, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}
