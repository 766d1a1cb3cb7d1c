package service

import (
	"context"
	"log"
	"time"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/publisher"
)

// SpeedDetector checks every update against a fixed speed limit. It keeps no
// state.
type SpeedDetector struct {
	limitKmh float64
	alerts   publisher.SpeedAlertPublisher
	now      func() time.Time
}

func NewSpeedDetector(limitKmh float64, alerts publisher.SpeedAlertPublisher) *SpeedDetector {
	return &SpeedDetector{limitKmh: limitKmh, alerts: alerts, now: time.Now}
}

func (d *SpeedDetector) HandleUpdate(ctx context.Context, u *domain.CarUpdate) error {
	if u.SpeedKmh == nil {
		return nil
	}
	if *u.SpeedKmh <= d.limitKmh {
		return nil
	}

	log.Printf("[SPEED] %s speeding: %.1f km/h > %.0f", u.CarID, *u.SpeedKmh, d.limitKmh)

	return d.alerts.PublishSpeedViolation(ctx, &domain.SpeedViolation{
		AlertType:       domain.AlertTypeSpeedViolation,
		CarID:           u.CarID,
		CurrentSpeedKmh: *u.SpeedKmh,
		SpeedLimitKmh:   d.limitKmh,
		Latitude:        u.Latitude,
		Longitude:       u.Longitude,
		Timestamp:       domain.UnixSeconds(d.now()),
	})
}
