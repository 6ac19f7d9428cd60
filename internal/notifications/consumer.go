package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"engracedsmile/pkg/logger"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "booking-notifications",
		Topics:               []string{"booking-events"},
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		MaxProcessingTime:    5 * time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// Consumer runs one consumer group member whose claims hand booking events
// to a bounded pool of email workers
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	mailer        Mailer
	wg            sync.WaitGroup
}

func NewConsumer(config *ConsumerConfig, mailer Mailer) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{consumerGroup: group, config: config, mailer: mailer}, nil
}

// Start joins the group and launches numWorkers email workers. Everything
// runs until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, numWorkers int) {
	log := logger.GetDefault()
	if numWorkers < 1 {
		numWorkers = 1
	}
	log.Info("starting notification workers", slog.Int("workers", numWorkers), slog.Any("topics", c.config.Topics))

	go func() {
		for err := range c.consumerGroup.Errors() {
			log.Error("consumer group error", slog.Any("error", err))
		}
	}()

	handler := &groupHandler{
		mailer:     c.mailer,
		maxRetries: c.config.MaxRetries,
		backoff:    c.config.RetryBackoffDuration,
	}
	handler.startWorkers(numWorkers, &c.wg)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// claims only dispatch from inside Consume, so the pool can be closed here
		defer handler.stopWorkers()
		c.consume(ctx, handler)
	}()
}

func (c *Consumer) consume(ctx context.Context, handler *groupHandler) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
			logger.GetDefault().Warn("consume failed", slog.Any("error", err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop waits for the consume loop and the workers to return and closes the
// group. Cancel the context passed to Start first.
func (c *Consumer) Stop() error {
	c.wg.Wait()
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type job struct {
	ctx    context.Context
	value  []byte
	result chan<- jobResult
}

type jobResult struct {
	workerID int
	err      error
}

type groupHandler struct {
	mailer     Mailer
	maxRetries int
	backoff    time.Duration
	jobs       chan job
}

func (h *groupHandler) startWorkers(n int, wg *sync.WaitGroup) {
	h.jobs = make(chan job)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range h.jobs {
				j.result <- jobResult{workerID: workerID, err: h.process(j.ctx, j.value)}
			}
		}(i)
	}
}

func (h *groupHandler) stopWorkers() {
	close(h.jobs)
}

// dispatch hands value to the next free worker and waits for the outcome.
// An error means the session ended first.
func (h *groupHandler) dispatch(ctx context.Context, value []byte) (jobResult, error) {
	result := make(chan jobResult, 1)
	select {
	case h.jobs <- job{ctx: ctx, value: value, result: result}:
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	}
	select {
	case res := <-result:
		return res, nil
	case <-ctx.Done():
		return jobResult{}, ctx.Err()
	}
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim keeps partition order: the next message is dispatched only
// after the previous one was handled. Claims on other partitions share the
// pool concurrently.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			res, err := h.dispatch(session.Context(), message.Value)
			if err != nil {
				// left unmarked so the next session redelivers it
				return nil
			}
			if res.err != nil {
				logger.GetDefault().Error("dropping booking event",
					slog.Int("worker", res.workerID),
					slog.Int("partition", int(message.Partition)),
					slog.Int64("offset", message.Offset),
					slog.Any("error", res.err),
				)
			}
			// email is best effort; a poison message must not block the partition
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) process(ctx context.Context, value []byte) error {
	var event BookingEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal booking event: %w", err)
	}
	if event.PassengerEmail == "" {
		return nil
	}

	content, err := renderEmail(event)
	if err != nil {
		return err
	}
	return h.sendWithRetry(ctx, event.PassengerEmail, content)
}

func (h *groupHandler) sendWithRetry(ctx context.Context, to string, content *emailContent) error {
	var err error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if err = h.mailer.Send(ctx, to, content.Subject, content.HTML, content.Text); err == nil {
			return nil
		}
		if attempt == h.maxRetries {
			break
		}

		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("email to %s failed after %d attempts: %w", to, h.maxRetries+1, err)
}
