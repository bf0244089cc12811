package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/mixradar/internal/config"
	"github.com/couchcryptid/mixradar/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Notifier publishes batch progress to a Kafka topic.
// It implements pipeline.ProgressObserver.
type Notifier struct {
	writer *kafkago.Writer
	runID  string
	logger *slog.Logger
}

// progressMessage is the JSON payload of a notification.
type progressMessage struct {
	RunID string `json:"run_id"`
	domain.Progress
}

// NewNotifier creates a Kafka producer for the configured progress topic.
// Every message of one process carries the same run ID as its key.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		// One message per call; flush it at once instead of waiting out the
		// default one-second batch window while workers wait on progress.
		BatchSize:    1,
		BatchTimeout: 5 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	return &Notifier{writer: w, runID: uuid.NewString(), logger: logger}
}

// RunID identifies this process's notifications.
func (n *Notifier) RunID() string { return n.runID }

// OnProgress publishes p synchronously. Delivery failures are logged and do
// not affect the batch.
func (n *Notifier) OnProgress(ctx context.Context, p domain.Progress) {
	msg, err := serializeToMessage(n.runID, p)
	if err != nil {
		n.logger.Error("serialize progress", "error", err)
		return
	}
	if err := n.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		n.logger.Warn("progress notification failed",
			"topic", n.writer.Topic,
			"kind", p.Kind,
			"pair_index", p.Index,
			"error", err,
		)
	}
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals a progress event into a Kafka message keyed by
// run ID so a run's events stay ordered within one partition.
func serializeToMessage(runID string, p domain.Progress) (kafkago.Message, error) {
	data, err := json.Marshal(progressMessage{RunID: runID, Progress: p})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize progress: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(runID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(p.Kind)},
			{Key: "pair_index", Value: []byte(strconv.Itoa(p.Index))},
			{Key: "emitted_at", Value: []byte(p.EmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
