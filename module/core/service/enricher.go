package service

import (
	"context"
	"log"
	"time"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/module/core/geo"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/publisher"
)

const (
	// minimum interval for a meaningful derivative (50ms)
	minSampleIntervalS = 0.05
	// anything faster than this is a sensor glitch
	maxRealisticSpeedKmh = 600.0
	// below this displacement, heading is GPS jitter
	minHeadingDistanceM = 1.0
)

type lastPosition struct {
	lat float64
	lon float64
	ts  float64
}

type telemetryRecorder interface {
	RecordUpdate(ctx context.Context, u *domain.CarUpdate) error
}

// PositionEnricher turns raw (car_id, lat, lon) samples into kinematic
// CarUpdates. State is only touched from the feed's single consuming
// goroutine, so no locking is needed.
type PositionEnricher struct {
	updates    publisher.CarUpdatePublisher
	telemetry  telemetryRecorder
	staleAfter time.Duration

	states map[string]lastPosition
	now    func() time.Time
}

func NewPositionEnricher(updates publisher.CarUpdatePublisher, telemetry telemetryRecorder, staleAfter time.Duration) *PositionEnricher {
	return &PositionEnricher{
		updates:    updates,
		telemetry:  telemetry,
		staleAfter: staleAfter,
		states:     make(map[string]lastPosition),
		now:        time.Now,
	}
}

// ProcessSample derives speed and heading from the previous sample for the
// same car and publishes the enriched update. The first sighting of a car
// only seeds its state; nothing is emitted for it.
func (e *PositionEnricher) ProcessSample(ctx context.Context, carID string, lat, lon float64) error {
	now := domain.UnixSeconds(e.now())
	e.pruneStale(now)

	last, seen := e.states[carID]
	e.states[carID] = lastPosition{lat: lat, lon: lon, ts: now}
	if !seen {
		return nil
	}

	var speedKmh, headingDeg *float64
	dt := now - last.ts
	if dt > minSampleIntervalS {
		distM := geo.DistanceM(last.lat, last.lon, lat, lon)

		s := distM / dt * 3.6
		if s >= 0 && s <= maxRealisticSpeedKmh {
			speedKmh = &s
		}

		if distM > minHeadingDistanceM {
			h := geo.BearingDeg(last.lat, last.lon, lat, lon)
			headingDeg = &h
		}
	}

	update := &domain.CarUpdate{
		CarID:      carID,
		Latitude:   lat,
		Longitude:  lon,
		SpeedKmh:   speedKmh,
		HeadingDeg: headingDeg,
		Timestamp:  now,
	}

	// history is best-effort; never blocks the stream
	if err := e.telemetry.RecordUpdate(ctx, update); err != nil {
		log.Printf("save telemetry for %s: %v", carID, err)
	}

	return e.updates.PublishCarUpdate(ctx, update)
}

func (e *PositionEnricher) pruneStale(now float64) {
	for carID, last := range e.states {
		if now-last.ts > e.staleAfter.Seconds() {
			delete(e.states, carID)
		}
	}
}
