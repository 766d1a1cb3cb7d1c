package mqttpub

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/publisher"
)

var (
	_ publisher.CarUpdatePublisher         = (*Publisher)(nil)
	_ publisher.SpeedAlertPublisher        = (*Publisher)(nil)
	_ publisher.AccidentAlertPublisher     = (*Publisher)(nil)
	_ publisher.OvertakingAlertPublisher   = (*Publisher)(nil)
	_ publisher.HighwayEntryAlertPublisher = (*Publisher)(nil)
)

const (
	speedAlertTopic        = "alerts/speed"
	accidentAlertTopic     = "alerts/accident"
	overtakingAlertTopic   = "alerts/overtaking"
	highwayEntryAlertTopic = "alerts/highway_entry"
)

const alertQoS = 1

// Publisher sends enriched updates and alerts over MQTT.
type Publisher struct {
	client       mqtt.Client
	updatesTopic string
}

func New(client mqtt.Client, updatesTopic string) *Publisher {
	return &Publisher{client: client, updatesTopic: updatesTopic}
}

func (p *Publisher) PublishCarUpdate(ctx context.Context, u *domain.CarUpdate) error {
	return p.publish(ctx, p.updatesTopic, u)
}

func (p *Publisher) PublishSpeedViolation(ctx context.Context, alert *domain.SpeedViolation) error {
	return p.publish(ctx, speedAlertTopic, alert)
}

func (p *Publisher) PublishAccidentNotification(ctx context.Context, n *domain.AccidentNotification) error {
	if err := p.publish(ctx, accidentAlertTopic+"/"+n.TargetCarID, n); err != nil {
		return err
	}
	return p.publish(ctx, accidentAlertTopic, n)
}

func (p *Publisher) PublishOvertakingEvent(ctx context.Context, event *domain.OvertakingEvent) error {
	return p.publish(ctx, overtakingAlertTopic, event)
}

func (p *Publisher) PublishHighwayEntryAssessment(ctx context.Context, a *domain.HighwayEntryAssessment) error {
	return p.publish(ctx, highwayEntryAlertTopic, a)
}

func (p *Publisher) publish(ctx context.Context, topic string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	token := p.client.Publish(topic, alertQoS, false, body)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		return nil
	}
}
