package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/flood-risk-etl/internal/config"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes daily risk records to a Kafka topic behind a circuit
// breaker, so a dead broker fails fast instead of stalling every dataset.
// It implements pipeline.DayPublisher.
type Writer struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newWriter(w, logger)
}

func newWriter(w messageWriter, logger *slog.Logger) *Writer {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-sink",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Writer{writer: w, breaker: breaker, logger: logger}
}

// PublishDays serializes days and writes them in a single WriteMessages call.
// Messages are keyed by dataset and date so a topic partition holds a
// dataset's days in order.
func (w *Writer) PublishDays(ctx context.Context, runID, dataset string, days []domain.DailyRecord) error {
	if len(days) == 0 {
		return nil
	}
	processedAt := domain.Now()
	msgs := make([]kafkago.Message, len(days))
	for i := range days {
		msg, err := serializeToMessage(runID, dataset, days[i], processedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	_, err := w.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, w.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("publish %d days: %w", len(msgs), err)
	}
	w.logger.Debug("daily records published", "dataset", dataset, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// DayMessage is the JSON value of a published daily record.
type DayMessage struct {
	RunID   string `json:"run_id"`
	Dataset string `json:"dataset"`
	domain.DailyRecord
}

// serializeToMessage marshals one daily record into a Kafka message.
func serializeToMessage(runID, dataset string, day domain.DailyRecord, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(DayMessage{RunID: runID, Dataset: dataset, DailyRecord: day})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(dataset + "|" + day.Date.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_state", Value: []byte(day.RiskState.String())},
			{Key: "run_id", Value: []byte(runID)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
