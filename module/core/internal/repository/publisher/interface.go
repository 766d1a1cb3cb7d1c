package publisher

import (
	"context"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
)

type CarUpdatePublisher interface {
	PublishCarUpdate(ctx context.Context, u *domain.CarUpdate) error
}

type SpeedAlertPublisher interface {
	PublishSpeedViolation(ctx context.Context, alert *domain.SpeedViolation) error
}

// AccidentAlertPublisher delivers a notification to both the per-target-car
// topic and the general accident topic.
type AccidentAlertPublisher interface {
	PublishAccidentNotification(ctx context.Context, n *domain.AccidentNotification) error
}

// AccidentArchive is a durable sink for accident notifications, consumed by
// downstream services outside the MQTT fan-out.
type AccidentArchive interface {
	ArchiveAccidentNotification(ctx context.Context, n *domain.AccidentNotification) error
}

type OvertakingAlertPublisher interface {
	PublishOvertakingEvent(ctx context.Context, event *domain.OvertakingEvent) error
}

type HighwayEntryAlertPublisher interface {
	PublishHighwayEntryAssessment(ctx context.Context, a *domain.HighwayEntryAssessment) error
}
