package service

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/module/core/geo"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/publisher"
)

const (
	overtakeProximityM          = 50.0
	overtakeHeadingToleranceDeg = 30.0
)

// OvertakingDetector tracks, per ordered car pair, whether the second car is
// ahead of or behind the first along the first car's heading, and fires when
// that sign flips from ahead to behind. The pairwise scan is O(n) per update
// (O(n²) overall), fine for small fleets.
type OvertakingDetector struct {
	alerts     publisher.OvertakingAlertPublisher
	staleAfter time.Duration

	cars      map[string]*domain.CarUpdate
	lastSigns map[domain.CarPair]int

	now func() time.Time
}

func NewOvertakingDetector(alerts publisher.OvertakingAlertPublisher, staleAfter time.Duration) *OvertakingDetector {
	return &OvertakingDetector{
		alerts:     alerts,
		staleAfter: staleAfter,
		cars:       make(map[string]*domain.CarUpdate),
		lastSigns:  make(map[domain.CarPair]int),
		now:        time.Now,
	}
}

func (d *OvertakingDetector) HandleUpdate(ctx context.Context, u *domain.CarUpdate) error {
	if !u.HasKinematics() {
		return nil
	}

	d.cars[u.CarID] = u

	for otherID, other := range d.cars {
		if otherID == u.CarID {
			continue
		}
		if !other.HasKinematics() {
			continue
		}

		// cars must be co-directional
		if geo.HeadingDiffDeg(*u.HeadingDeg, *other.HeadingDeg) > overtakeHeadingToleranceDeg {
			continue
		}

		dist := geo.DistanceM(u.Latitude, u.Longitude, other.Latitude, other.Longitude)
		if dist > overtakeProximityM {
			continue
		}

		sign := projectionSign(u.Longitude, u.Latitude, other.Longitude, other.Latitude, *u.HeadingDeg)

		key := domain.CarPair{First: u.CarID, Second: otherID}
		prev, seen := d.lastSigns[key]

		// ahead -> behind means u just passed the other car
		if seen && prev == +1 && sign == -1 {
			event := &domain.OvertakingEvent{
				AlertType:       domain.AlertTypeOvertaking,
				OvertakingCarID: u.CarID,
				OvertakenCarID:  otherID,
				SpeedKmh:        *u.SpeedKmh,
				Latitude:        u.Latitude,
				Longitude:       u.Longitude,
				Timestamp:       domain.UnixSeconds(d.now()),
			}
			if err := d.alerts.PublishOvertakingEvent(ctx, event); err != nil {
				log.Printf("publish overtaking event: %v", err)
			} else {
				log.Printf("[OVERTAKE] %s overtook %s", u.CarID, otherID)
			}
		}

		d.lastSigns[key] = sign
	}

	d.pruneStale(domain.UnixSeconds(d.now()))
	return nil
}

// projectionSign projects the vector from A to B onto A's heading unit
// vector in the local lon/lat plane. +1 means B is ahead of A, -1 behind.
func projectionSign(ax, ay, bx, by, headingDeg float64) int {
	headingRad := headingDeg * math.Pi / 180
	hx, hy := math.Sin(headingRad), math.Cos(headingRad)

	vx, vy := bx-ax, by-ay

	if vx*hx+vy*hy >= 0 {
		return +1
	}
	return -1
}

func (d *OvertakingDetector) pruneStale(now float64) {
	for carID, u := range d.cars {
		if now-u.Timestamp > d.staleAfter.Seconds() {
			delete(d.cars, carID)
			for key := range d.lastSigns {
				if key.Involves(carID) {
					delete(d.lastSigns, key)
				}
			}
		}
	}
}
