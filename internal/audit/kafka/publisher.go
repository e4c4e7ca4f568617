// Package kafka mirrors audit entries to a Kafka topic for downstream
// consumers (reporting, alerting). The local audit log stays authoritative;
// publishing is fire-and-forget and a broker outage only logs.
package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"kycgate/internal/audit"
)

type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// message is the wire representation of one audit entry.
type message struct {
	Timestamp        string  `json:"timestamp"`
	Name             string  `json:"name"`
	DocumentNumber   string  `json:"documentNumber"`
	IDType           string  `json:"idType"`
	FraudProbability float64 `json:"fraudProbability"`
	RiskLevel        string  `json:"riskLevel"`
	Confidence       float64 `json:"confidence"`
}

// Publish produces the entry asynchronously. Keyed by document number so a
// subject's entries stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, entry audit.Entry) {
	value, err := json.Marshal(message{
		Timestamp:        entry.Timestamp.Format(time.RFC3339),
		Name:             entry.Name,
		DocumentNumber:   entry.DocumentNumber,
		IDType:           entry.IDType,
		FraudProbability: entry.FraudProbability,
		RiskLevel:        entry.RiskLevel,
		Confidence:       entry.Confidence,
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode audit mirror message", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.DocumentNumber),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("audit mirror publish failed", "topic", p.topic, "error", err)
		}
	})
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
