package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/logger"
)

var errNoCustomerID = errors.New("prefill update has no customer id")

type ConsumerConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

// OrderDataReceiver takes prefill data that arrives after a form was opened.
type OrderDataReceiver interface {
	ApplyOrderDataUpdate(customerID string, p domain.PrefillOrder) int
}

// PrefillUpdate is the message body on the prefill topic.
type PrefillUpdate struct {
	CustomerID string              `json:"customerId"`
	Prefill    domain.PrefillOrder `json:"prefill"`
}

// DecodePrefillUpdate falls back to the customer id inside the prefill order.
func DecodePrefillUpdate(b []byte) (PrefillUpdate, error) {
	var u PrefillUpdate
	if err := json.Unmarshal(b, &u); err != nil {
		return PrefillUpdate{}, err
	}
	u.CustomerID = strings.TrimSpace(u.CustomerID)
	if u.CustomerID == "" {
		u.CustomerID = strings.TrimSpace(u.Prefill.CustomerID)
	}
	if u.CustomerID == "" {
		return PrefillUpdate{}, errNoCustomerID
	}
	return u, nil
}

func StartConsumer(ctx context.Context, svc OrderDataReceiver, cfg ConsumerConfig) (*kafka.Reader, error) {
	brokers := strings.Split(cfg.Brokers, ",")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.LastOffset,
		ReadLagInterval: -1,
	})

	logger.Info("kafka consumer starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		backoff := time.Millisecond * 300
		for {
			m, err := r.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("kafka fetch error", "err", err)
				time.Sleep(backoff)
				continue
			}
			logger.Debug("prefill update fetched", "partition", m.Partition, "offset", m.Offset)

			u, err := DecodePrefillUpdate(m.Value)
			if err != nil {
				logger.Warn("kafka invalid prefill update. skip and commit", "err", err)
				_ = r.CommitMessages(ctx, m)
				continue
			}

			// sessions live in memory only; nobody listening is not an error
			n := svc.ApplyOrderDataUpdate(u.CustomerID, u.Prefill)
			logger.Info("prefill update applied", "customer_id", u.CustomerID, "sessions", n)

			if err := r.CommitMessages(ctx, m); err != nil {
				logger.Warn("[kafka] commit failed", "err", err)
			}
		}
	}()
	return r, nil
}
