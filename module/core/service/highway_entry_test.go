package service

import (
	"context"
	"testing"
	"time"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
)

type mockHighwayAlerts struct {
	publishFn func(ctx context.Context, a *domain.HighwayEntryAssessment) error
	calls     []*domain.HighwayEntryAssessment
}

func (m *mockHighwayAlerts) PublishHighwayEntryAssessment(ctx context.Context, a *domain.HighwayEntryAssessment) error {
	m.calls = append(m.calls, a)
	if m.publishFn != nil {
		return m.publishFn(ctx, a)
	}
	return nil
}

// testCorridors builds an eastbound highway along lat 40.0 with a northbound
// entering lane merging into it at (40.0, -8.0).
func testCorridors() (*domain.Corridor, *domain.Corridor) {
	highway := &domain.Corridor{Name: "highway", Waypoints: []domain.Waypoint{
		{Lat: 40.0, Lon: -8.00047},
		{Lat: 40.0, Lon: -8.00020},
		{Lat: 40.0, Lon: -8.00000},
		{Lat: 40.0, Lon: -7.99706},
	}}
	entering := &domain.Corridor{Name: "entering", Waypoints: []domain.Waypoint{
		{Lat: 39.99900, Lon: -8.0},
		{Lat: 39.99950, Lon: -8.0},
		{Lat: 40.00000, Lon: -8.0},
	}}
	return highway, entering
}

func newTestHighwayEntryDetector(alerts *mockHighwayAlerts) *HighwayEntryDetector {
	highway, entering := testCorridors()
	d := NewHighwayEntryDetector(alerts, highway, entering, time.Hour)
	d.now = func() time.Time { return time.Unix(1715003456, 0) }
	return d
}

// highwayCar sits ~40m west of the merge point, on a highway waypoint.
func highwayCar(speed, heading float64) *domain.CarUpdate {
	return &domain.CarUpdate{
		CarID: "hwy1", Latitude: 40.0, Longitude: -8.00047,
		SpeedKmh: domain.Float64(speed), HeadingDeg: domain.Float64(heading),
		Timestamp: 1715003456,
	}
}

// enteringCar sits ~5.5m south of the merge point on the entering lane.
func enteringCar(speed, heading float64) *domain.CarUpdate {
	return &domain.CarUpdate{
		CarID: "ent1", Latitude: 39.99995, Longitude: -8.0,
		SpeedKmh: domain.Float64(speed), HeadingDeg: domain.Float64(heading),
		Timestamp: 1715003456,
	}
}

func TestHighwayEntry_UnsafeWhenTrajectoriesConverge(t *testing.T) {
	alerts := &mockHighwayAlerts{}
	d := newTestHighwayEntryDetector(alerts)
	ctx := context.Background()

	// highway car eastbound at 36 km/h, 40m from the merge; entering car
	// crawls onto the merge at 5 km/h. Both arrive around t=4s.
	_ = d.HandleUpdate(ctx, highwayCar(36, 90))
	_ = d.HandleUpdate(ctx, enteringCar(5, 0))

	if len(alerts.calls) != 1 {
		t.Fatalf("expected 1 assessment, got %d", len(alerts.calls))
	}
	a := alerts.calls[0]
	if a.AlertType != domain.AlertTypeHighwayEntryUnsafe {
		t.Errorf("expected %s, got %s", domain.AlertTypeHighwayEntryUnsafe, a.AlertType)
	}
	if a.Status != "unsafe" {
		t.Errorf("expected unsafe, got %s", a.Status)
	}
	if a.EnteringCarID != "ent1" || a.HighwayCarID != "hwy1" {
		t.Errorf("unexpected pair: %s / %s", a.EnteringCarID, a.HighwayCarID)
	}
	if a.PredictedMinDistanceM >= 10 {
		t.Errorf("expected predicted distance under 10m, got %f", a.PredictedMinDistanceM)
	}
	if a.TimeToClosestApproachS == nil {
		t.Fatal("expected time to closest approach on unsafe assessment")
	}
	if *a.TimeToClosestApproachS < 3.5 || *a.TimeToClosestApproachS > 4.5 {
		t.Errorf("expected closest approach ~4s, got %f", *a.TimeToClosestApproachS)
	}
}

func TestHighwayEntry_SafeWhenHighwayCarDiverges(t *testing.T) {
	alerts := &mockHighwayAlerts{}
	d := newTestHighwayEntryDetector(alerts)
	ctx := context.Background()

	// highway car driving west, away from the merge point
	_ = d.HandleUpdate(ctx, highwayCar(36, 270))
	_ = d.HandleUpdate(ctx, enteringCar(5, 0))

	if len(alerts.calls) != 1 {
		t.Fatalf("expected 1 assessment, got %d", len(alerts.calls))
	}
	a := alerts.calls[0]
	if a.AlertType != domain.AlertTypeHighwayEntrySafe {
		t.Errorf("expected %s, got %s", domain.AlertTypeHighwayEntrySafe, a.AlertType)
	}
	if a.Status != "safe" {
		t.Errorf("expected safe, got %s", a.Status)
	}
	if a.PredictedMinDistanceM < 39 || a.PredictedMinDistanceM > 42 {
		t.Errorf("expected min distance ~40m, got %f", a.PredictedMinDistanceM)
	}
	if a.TimeToClosestApproachS != nil {
		t.Error("expected no time to closest approach on safe assessment")
	}
}

func TestHighwayEntry_PairAlertedOnce(t *testing.T) {
	alerts := &mockHighwayAlerts{}
	d := newTestHighwayEntryDetector(alerts)
	ctx := context.Background()

	_ = d.HandleUpdate(ctx, highwayCar(36, 90))
	_ = d.HandleUpdate(ctx, enteringCar(5, 0))
	_ = d.HandleUpdate(ctx, enteringCar(5, 0))

	if len(alerts.calls) != 1 {
		t.Fatalf("expected 1 assessment for the pair, got %d", len(alerts.calls))
	}
}

func TestHighwayEntry_PairClearedOnceHighwayCarLeaves(t *testing.T) {
	alerts := &mockHighwayAlerts{}
	d := newTestHighwayEntryDetector(alerts)
	ctx := context.Background()

	_ = d.HandleUpdate(ctx, highwayCar(36, 90))
	_ = d.HandleUpdate(ctx, enteringCar(5, 0))
	if len(alerts.calls) != 1 {
		t.Fatalf("expected 1 assessment, got %d", len(alerts.calls))
	}

	// highway car passes the merge and travels ~250m beyond it
	gone := highwayCar(36, 90)
	gone.Longitude = -7.99706
	_ = d.HandleUpdate(ctx, gone)

	// back in the entry zone: the pair may alert again
	_ = d.HandleUpdate(ctx, highwayCar(36, 90))
	_ = d.HandleUpdate(ctx, enteringCar(5, 0))

	if len(alerts.calls) != 2 {
		t.Fatalf("expected fresh assessment after clearing, got %d", len(alerts.calls))
	}
}

func TestHighwayEntry_NoHighwayTrafficNoAssessment(t *testing.T) {
	alerts := &mockHighwayAlerts{}
	d := newTestHighwayEntryDetector(alerts)
	ctx := context.Background()

	_ = d.HandleUpdate(ctx, enteringCar(5, 0))

	if len(alerts.calls) != 0 {
		t.Fatalf("expected 0 assessments, got %d", len(alerts.calls))
	}
}

func TestHighwayEntry_IgnoresStationaryAndOffCorridorCars(t *testing.T) {
	alerts := &mockHighwayAlerts{}
	d := newTestHighwayEntryDetector(alerts)
	ctx := context.Background()

	// stopped on the entering lane
	_ = d.HandleUpdate(ctx, enteringCar(0, 0))
	if len(d.enteringCars) != 0 {
		t.Fatal("expected stationary car not to be classified")
	}

	// driving nowhere near either corridor
	_ = d.HandleUpdate(ctx, &domain.CarUpdate{
		CarID: "lost", Latitude: 41.0, Longitude: -8.5,
		SpeedKmh: domain.Float64(50), HeadingDeg: domain.Float64(0),
		Timestamp: 1715003456,
	})
	if len(d.enteringCars) != 0 || len(d.highwayCars) != 0 {
		t.Fatal("expected off-corridor car not to be classified")
	}
	if len(alerts.calls) != 0 {
		t.Fatalf("expected 0 assessments, got %d", len(alerts.calls))
	}
}

func TestPredictCollision_ImmediateOverlap(t *testing.T) {
	entering := enteringCar(5, 0)
	highway := highwayCar(36, 90)
	highway.Latitude = entering.Latitude
	highway.Longitude = entering.Longitude

	collision, ttc, minDist := predictCollision(entering, highway)
	if !collision {
		t.Fatal("expected collision for overlapping positions")
	}
	if ttc != 0 {
		t.Errorf("expected immediate collision, got ttc %f", ttc)
	}
	if minDist >= 10 {
		t.Errorf("expected min distance under threshold, got %f", minDist)
	}
}
