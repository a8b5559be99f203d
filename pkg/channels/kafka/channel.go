// Package kafka wires the event bus to Kafka via watermill.
package kafka

import (
	"errors"
	"os"
	"strings"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

// CreateChannel builds a Kafka publisher/subscriber pair. Brokers come from
// the KAFKA_BROKERS environment variable (comma-separated host:port list).
func CreateChannel(logger watermill.LoggerAdapter, serviceName string) (*kafka.Publisher, *kafka.Subscriber, error) {
	brokers, err := brokersFromEnv()
	if err != nil {
		return nil, nil, err
	}

	subscriber, err := newSubscriber(brokers, serviceName, logger)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := newPublisher(brokers, logger)
	if err != nil {
		return nil, nil, err
	}

	return publisher, subscriber, nil
}

func brokersFromEnv() ([]string, error) {
	raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if raw == "" {
		return nil, errors.New("KAFKA_BROKERS environment variable is not set or empty")
	}

	return strings.Split(raw, ","), nil
}

func newSubscriber(brokers []string, serviceName string, logger watermill.LoggerAdapter) (*kafka.Subscriber, error) {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	return kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               brokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
			ConsumerGroup:         "cg-" + serviceName,
			OTELEnabled:           true,
		},
		logger,
	)
}

func newPublisher(brokers []string, logger watermill.LoggerAdapter) (*kafka.Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true

	return kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               brokers,
			Marshaler:             kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
			OTELEnabled:           true,
		},
		logger,
	)
}
