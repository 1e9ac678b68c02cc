package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid-br-dashboard/internal/config"
	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes normalized state records to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one message per state in a single WriteMessages call.
// Messages are keyed by UF so each state stays on one partition.
func (w *Writer) Publish(ctx context.Context, report domain.Report) error {
	records := report.Snapshot.Records()
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i], report.GeneratedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write snapshot to %s: %w", w.writer.Topic, err)
	}
	w.logger.Debug("snapshot published", "topic", w.writer.Topic, "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StateRecord into a Kafka message.
func serializeToMessage(rec domain.StateRecord, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize state record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.UF),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_date", Value: []byte(rec.ReportDate.Format("2006-01-02"))},
			{Key: "fetched_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
