// Package publisher announces confirmed payments on the order-confirmed
// topic, so fulfilment consumers can pick them up.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/HassanTech1/4seven/internal/domain"
)

const topic = "order-confirmed"

type orderConfirmedEvent struct {
	SessionID   string `json:"session_id"`
	OrderID     string `json:"order_id,omitempty"`
	AmountTotal int64  `json:"amount_total"`
	Currency    string `json:"currency"`
	ItemsCount  string `json:"items_count,omitempty"`
	ConfirmedAt string `json:"confirmed_at"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishConfirmed(ctx context.Context, sessionID string, status *domain.PaymentStatus) error {
	msg, err := buildMessage(sessionID, status, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish confirmed order: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// buildMessage keys by session ID for per-session ordering.
func buildMessage(sessionID string, status *domain.PaymentStatus, confirmedAt time.Time) (kafka.Message, error) {
	event := orderConfirmedEvent{
		SessionID:   sessionID,
		OrderID:     status.Metadata.OrderID,
		AmountTotal: status.AmountTotal,
		Currency:    status.Currency,
		ItemsCount:  status.Metadata.ItemsCount,
		ConfirmedAt: confirmedAt.Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal confirmed order event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(sessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.confirmed")},
		},
	}, nil
}
