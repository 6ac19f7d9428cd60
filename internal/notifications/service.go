package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"engracedsmile/internal/shared/config"
	"engracedsmile/pkg/logger"
)

// Service owns the event publisher handed to the booking flows and, when
// Kafka is enabled, the email workers consuming the same topic
type Service struct {
	publisher Publisher
	consumer  *Consumer
	workers   int
	cancel    context.CancelFunc
}

func NewService(kafka config.KafkaConfig, email config.EmailConfig) (*Service, error) {
	if !kafka.Enabled {
		return &Service{publisher: NoopPublisher{}}, nil
	}

	producerConfig := DefaultKafkaProducerConfig()
	producerConfig.Brokers = kafka.Brokers
	producerConfig.Topic = kafka.Topic
	publisher, err := NewKafkaPublisher(producerConfig)
	if err != nil {
		return nil, err
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = kafka.Brokers
	consumerConfig.Topics = []string{kafka.Topic}
	consumerConfig.GroupID = kafka.ConsumerGroup
	consumerConfig.MaxRetries = kafka.MaxRetries
	consumer, err := NewConsumer(consumerConfig, NewMailer(email))
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	return &Service{publisher: publisher, consumer: consumer, workers: kafka.Workers}, nil
}

func (s *Service) Publisher() Publisher {
	return s.publisher
}

func (s *Service) Start(ctx context.Context) {
	if s.consumer == nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.consumer.Start(ctx, s.workers)
}

func (s *Service) Stop() error {
	log := logger.GetDefault()
	if s.cancel != nil {
		s.cancel()
	}
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			log.Error("error stopping notification consumer", slog.Any("error", err))
		}
	}
	return s.publisher.Close()
}
