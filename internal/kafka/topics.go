package kafka

import (
	"context"
	"net"
	"sort"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// MissingTopics returns the topics that have no partition in partitions, sorted.
func MissingTopics(partitions []kafka.Partition, topics []string) []string {
	present := make(map[string]struct{}, len(partitions))
	for _, p := range partitions {
		present[p.Topic] = struct{}{}
	}
	var missing []string
	for _, topic := range topics {
		if _, ok := present[topic]; !ok {
			missing = append(missing, topic)
		}
	}
	sort.Strings(missing)
	return missing
}

// CheckTopics connects to broker and reports which of topics do not exist yet.
func CheckTopics(ctx context.Context, broker string, topics ...string) ([]string, error) {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return nil, err
	}
	return MissingTopics(partitions, topics), nil
}

// CreateTopics creates topics through the cluster controller.
func CreateTopics(ctx context.Context, broker string, partitions, replication int, topics ...string) error {
	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	ctrlConn, err := kafka.DialContext(ctx, "tcp", controllerAddr)
	if err != nil {
		return err
	}
	defer ctrlConn.Close()

	configs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: replication,
		})
	}
	return ctrlConn.CreateTopics(configs...)
}
