// Package kafka publishes paper events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/quizpaper/pkg/eventstream"
	"github.com/papercomputeco/quizpaper/pkg/logger"
)

const (
	defaultRetries      = 3
	defaultWriteTimeout = 10 * time.Second
	defaultBatchTimeout = 100 * time.Millisecond
)

// ErrClosed is returned when publishing on a closed publisher.
var ErrClosed = errors.New("kafka publisher is closed")

// Writer is the subset of *kafkago.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config configures a Publisher.
type Config struct {
	// Brokers is the list of broker addresses. Required.
	Brokers []string

	// Topic receives the events. Required.
	Topic string

	// Retries is the number of write attempts per event (defaults to 3).
	Retries int

	// WriteTimeout bounds one write attempt (defaults to 10s).
	WriteTimeout time.Duration

	Logger *slog.Logger
}

// Publisher writes paper events as JSON messages keyed by paper ID.
type Publisher struct {
	writer  Writer
	topic   string
	retries int
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewPublisher creates a publisher backed by a kafka-go Writer.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if c.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}

	log := logger.OrNop(c.Logger)
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           defaultBatchTimeout,
		RequiredAcks:           kafkago.RequireAll,
		WriteTimeout:           c.WriteTimeout,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...any) {
			log.Error("kafka writer: " + fmt.Sprintf(msg, args...))
		}),
	}

	return NewPublisherWithWriter(w, c.Topic, c.Retries, log), nil
}

// NewPublisherWithWriter creates a publisher on top of an existing writer.
// Messages carry the topic, so w must not have one configured.
func NewPublisherWithWriter(w Writer, topic string, retries int, log *slog.Logger) *Publisher {
	if retries <= 0 {
		retries = defaultRetries
	}
	return &Publisher{
		writer:  w,
		topic:   topic,
		retries: retries,
		logger:  logger.OrNop(log),
	}
}

// PublishPaper writes event to the topic, retrying with linear backoff.
func (p *Publisher) PublishPaper(ctx context.Context, event *eventstream.PaperGeneratedEvent) error {
	if event == nil {
		return eventstream.ErrNilPaperEvent
	}

	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := event.EventID
	if event.Paper != nil && event.Paper.ID != "" {
		key = event.Paper.ID
	}
	msg := kafkago.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte(event.EventType)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= p.retries; attempt++ {
		if lastErr = p.writer.WriteMessages(ctx, msg); lastErr == nil {
			p.logger.Debug("paper event published", "topic", p.topic, "event_id", event.EventID, "key", key)
			return nil
		}
		if attempt < p.retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	return fmt.Errorf("write after %d attempts: %w", p.retries, lastErr)
}

// Close flushes and closes the writer. Further publishes fail with ErrClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
