package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
)

type mockSpeedAlerts struct {
	publishFn func(ctx context.Context, alert *domain.SpeedViolation) error
	calls     []*domain.SpeedViolation
}

func (m *mockSpeedAlerts) PublishSpeedViolation(ctx context.Context, alert *domain.SpeedViolation) error {
	m.calls = append(m.calls, alert)
	if m.publishFn != nil {
		return m.publishFn(ctx, alert)
	}
	return nil
}

func TestSpeedDetector_OverLimit(t *testing.T) {
	alerts := &mockSpeedAlerts{}
	d := NewSpeedDetector(20, alerts)

	u := &domain.CarUpdate{
		CarID:     "car1",
		Latitude:  40.63,
		Longitude: -8.66,
		SpeedKmh:  domain.Float64(25),
		Timestamp: 1715003456,
	}

	if err := d.HandleUpdate(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts.calls) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts.calls))
	}

	alert := alerts.calls[0]
	if alert.AlertType != domain.AlertTypeSpeedViolation {
		t.Errorf("expected %s, got %s", domain.AlertTypeSpeedViolation, alert.AlertType)
	}
	if alert.CarID != "car1" {
		t.Errorf("expected car1, got %s", alert.CarID)
	}
	if alert.CurrentSpeedKmh != 25 {
		t.Errorf("expected 25, got %f", alert.CurrentSpeedKmh)
	}
	if alert.SpeedLimitKmh != 20 {
		t.Errorf("expected 20, got %f", alert.SpeedLimitKmh)
	}
}

func TestSpeedDetector_AtOrUnderLimit(t *testing.T) {
	alerts := &mockSpeedAlerts{}
	d := NewSpeedDetector(20, alerts)

	for _, speed := range []float64{19, 20} {
		u := &domain.CarUpdate{CarID: "car1", SpeedKmh: domain.Float64(speed)}
		if err := d.HandleUpdate(context.Background(), u); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(alerts.calls) != 0 {
		t.Fatalf("expected 0 alerts, got %d", len(alerts.calls))
	}
}

func TestSpeedDetector_NoSpeed(t *testing.T) {
	alerts := &mockSpeedAlerts{}
	d := NewSpeedDetector(20, alerts)

	u := &domain.CarUpdate{CarID: "car1", Latitude: 40.63, Longitude: -8.66}
	if err := d.HandleUpdate(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts.calls) != 0 {
		t.Fatalf("expected 0 alerts, got %d", len(alerts.calls))
	}
}

func TestSpeedDetector_PublishError(t *testing.T) {
	alerts := &mockSpeedAlerts{
		publishFn: func(_ context.Context, _ *domain.SpeedViolation) error {
			return errors.New("mqtt down")
		},
	}
	d := NewSpeedDetector(20, alerts)

	u := &domain.CarUpdate{CarID: "car1", SpeedKmh: domain.Float64(25)}
	if err := d.HandleUpdate(context.Background(), u); err == nil {
		t.Fatal("expected error")
	}
}
