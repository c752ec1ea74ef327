package kafka

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/RaikyD/einlagen-orders-service/internal/domain"
)

// Producer publishes submitted orders to the order-creation topic.
type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokersSTR, topic string) *Producer {
	brokers := strings.Split(brokersSTR, ",")

	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}

// PublishOrder keys by customer id so one customer's orders stay ordered.
func (p *Producer) PublishOrder(ctx context.Context, o domain.Order) error {
	msg, err := orderMessage(o)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

func orderMessage(o domain.Order) (kafka.Message, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(o.CustomerID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "order-id", Value: []byte(o.OrderID.String())},
			{Key: "order-kind", Value: []byte(o.Kind)},
		},
	}, nil
}
