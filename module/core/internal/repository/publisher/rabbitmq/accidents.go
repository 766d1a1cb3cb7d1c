package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/publisher"
)

var _ publisher.AccidentArchive = (*AccidentArchive)(nil)

const (
	exchangeName = "road.events"
	queueName    = "accident_alerts"
)

// AccidentArchive fans accident notifications out to a durable queue for
// consumers that cannot subscribe to the MQTT broker.
type AccidentArchive struct {
	ch *amqp.Channel
}

func NewAccidentArchive(conn *amqp.Connection) (*AccidentArchive, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &AccidentArchive{ch: ch}, nil
}

func (a *AccidentArchive) ArchiveAccidentNotification(ctx context.Context, n *domain.AccidentNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	return a.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
