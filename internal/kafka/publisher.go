package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"graph-crawler/internal/models"
)

// Publisher is a crawler.Sink that writes visits and edges to Kafka, keyed by session.
type Publisher struct {
	visits MessageWriter
	edges  MessageWriter
}

// NewPublisher creates writers for the visits and edges topics on broker.
func NewPublisher(broker, visitsTopic, edgesTopic string) *Publisher {
	return &Publisher{
		visits: newWriter(broker, visitsTopic),
		edges:  newWriter(broker, edgesTopic),
	}
}

// NewPublisherWithWriters builds a publisher using custom writers (tests).
func NewPublisherWithWriters(visits, edges MessageWriter) *Publisher {
	return &Publisher{visits: visits, edges: edges}
}

func newWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond, // default 1s would stall every worker
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
}

// Close shuts down both writers.
func (p *Publisher) Close() error {
	return errors.Join(p.visits.Close(), p.edges.Close())
}

// PublishVisit writes a visit record to the visits topic.
func (p *Publisher) PublishVisit(ctx context.Context, visit models.Visit) error {
	return write(ctx, p.visits, visit.SessionID, visit)
}

// PublishEdge writes a discovered edge to the edges topic.
func (p *Publisher) PublishEdge(ctx context.Context, edge models.Edge) error {
	return write(ctx, p.edges, edge.SessionID, edge)
}

func write(ctx context.Context, w MessageWriter, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	return w.WriteMessages(ctx, msg)
}
