package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/module/core/geo"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/publisher"
)

const (
	// a 70% reduction between consecutive samples counts as a sudden stop
	speedDropPercent      = 0.70
	minSpeedBeforeStopKmh = 30.0
	stoppedThresholdKmh   = 5.0

	notificationRadiusM = 500.0
	// accidents closer than this are considered the same location
	accidentProximityM = 50.0
	accidentCooldownS  = 60.0
	accidentExpiryS    = 300.0
)

type carState struct {
	carID        string
	latitude     float64
	longitude    float64
	speedKmh     *float64
	headingDeg   *float64
	timestamp    float64
	prevSpeedKmh *float64
}

// AccidentDetector infers accidents from sudden stops and warns vehicles
// approaching the site. Updates arrive serialized through the dispatch loop;
// the mutex exists because the HTTP API reads the accident snapshot
// concurrently.
type AccidentDetector struct {
	alerts     publisher.AccidentAlertPublisher
	archive    publisher.AccidentArchive
	staleAfter time.Duration

	mu           sync.Mutex
	cars         map[string]*carState
	accidents    map[string]*domain.Accident
	eventCounter int

	now func() time.Time
}

func NewAccidentDetector(alerts publisher.AccidentAlertPublisher, archive publisher.AccidentArchive, staleAfter time.Duration) *AccidentDetector {
	return &AccidentDetector{
		alerts:     alerts,
		archive:    archive,
		staleAfter: staleAfter,
		cars:       make(map[string]*carState),
		accidents:  make(map[string]*domain.Accident),
		now:        time.Now,
	}
}

func (d *AccidentDetector) HandleUpdate(ctx context.Context, u *domain.CarUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := domain.UnixSeconds(d.now())

	state, seen := d.cars[u.CarID]
	if !seen {
		d.cars[u.CarID] = &carState{
			carID:      u.CarID,
			latitude:   u.Latitude,
			longitude:  u.Longitude,
			speedKmh:   u.SpeedKmh,
			headingDeg: u.HeadingDeg,
			timestamp:  now,
		}
		return nil
	}

	state.prevSpeedKmh = state.speedKmh

	if d.isSuddenStop(u, state) {
		log.Printf("[SUDDEN STOP] %s: %.1f -> %.1f km/h", u.CarID, *state.prevSpeedKmh, *u.SpeedKmh)

		if !d.inCooldown(u.Latitude, u.Longitude, now) {
			accident := &domain.Accident{
				EventID:         d.nextEventID(now),
				Type:            "accident",
				Latitude:        u.Latitude,
				Longitude:       u.Longitude,
				SourceVehicleID: u.CarID,
				DetectedAt:      now,
				Active:          true,
			}
			d.accidents[accident.EventID] = accident

			log.Printf("[ACCIDENT DETECTED] %s at (%.6f, %.6f)", accident.EventID, u.Latitude, u.Longitude)

			// immediately notify cars already in range
			for _, car := range d.cars {
				if d.shouldNotify(car, accident) {
					d.notify(ctx, car, accident, now)
				}
			}
		}
	}

	state.latitude = u.Latitude
	state.longitude = u.Longitude
	state.speedKmh = u.SpeedKmh
	state.headingDeg = u.HeadingDeg
	state.timestamp = now

	// re-evaluate this car against every still-active accident; cars may be
	// notified again on later updates
	for _, accident := range d.accidents {
		if accident.Active && d.shouldNotify(state, accident) {
			d.notify(ctx, state, accident, now)
		}
	}

	d.expireAccidents(now)
	d.pruneStale(now)
	return nil
}

// isSuddenStop applies the percentage-based drop rule between the previous
// and current speed samples.
func (d *AccidentDetector) isSuddenStop(u *domain.CarUpdate, state *carState) bool {
	if state.prevSpeedKmh == nil || u.SpeedKmh == nil {
		return false
	}

	prev := *state.prevSpeedKmh
	if prev < minSpeedBeforeStopKmh {
		return false
	}
	if *u.SpeedKmh > stoppedThresholdKmh {
		return false
	}

	return (prev-*u.SpeedKmh)/prev >= speedDropPercent
}

// inCooldown reports whether an active accident was recently detected near
// this location, suppressing a duplicate event.
func (d *AccidentDetector) inCooldown(lat, lon, now float64) bool {
	for _, accident := range d.accidents {
		if !accident.Active {
			continue
		}

		dist := geo.DistanceM(lat, lon, accident.Latitude, accident.Longitude)
		if dist <= accidentProximityM && now-accident.DetectedAt < accidentCooldownS {
			return true
		}
	}
	return false
}

// shouldNotify checks eligibility: not the source vehicle, moving, within
// the notification radius, and with the accident still ahead of it.
func (d *AccidentDetector) shouldNotify(car *carState, accident *domain.Accident) bool {
	if car.carID == accident.SourceVehicleID {
		return false
	}
	if car.speedKmh == nil || *car.speedKmh < stoppedThresholdKmh {
		return false
	}

	dist := geo.DistanceM(car.latitude, car.longitude, accident.Latitude, accident.Longitude)
	if dist > notificationRadiusM {
		return false
	}

	return d.isAhead(car, accident)
}

// isAhead compares the bearing from the car to the accident with the car's
// heading; a wrapped difference under 90 degrees means the car has not
// passed the site yet.
func (d *AccidentDetector) isAhead(car *carState, accident *domain.Accident) bool {
	if car.headingDeg == nil {
		return false
	}

	bearing := geo.BearingDeg(car.latitude, car.longitude, accident.Latitude, accident.Longitude)
	return geo.HeadingDiffDeg(*car.headingDeg, bearing) < 90
}

func (d *AccidentDetector) notify(ctx context.Context, car *carState, accident *domain.Accident, now float64) {
	dist := geo.DistanceM(car.latitude, car.longitude, accident.Latitude, accident.Longitude)

	n := &domain.AccidentNotification{
		NotificationType: domain.NotificationTypeAccident,
		TargetCarID:      car.carID,
		EventID:          accident.EventID,
		Accident:         *accident,
		DistanceM:        dist,
		Timestamp:        now,
	}

	if err := d.alerts.PublishAccidentNotification(ctx, n); err != nil {
		log.Printf("publish accident notification for %s: %v", car.carID, err)
		return
	}
	if d.archive != nil {
		if err := d.archive.ArchiveAccidentNotification(ctx, n); err != nil {
			log.Printf("archive accident notification for %s: %v", car.carID, err)
		}
	}

	log.Printf("[ACCIDENT] notified %s - ahead at %.0fm", car.carID, dist)
}

func (d *AccidentDetector) expireAccidents(now float64) {
	for eventID, accident := range d.accidents {
		if accident.Active && now-accident.DetectedAt > accidentExpiryS {
			accident.Active = false
			log.Printf("[ACCIDENT] expired: %s", eventID)
		}
	}
}

func (d *AccidentDetector) pruneStale(now float64) {
	for carID, car := range d.cars {
		if now-car.timestamp > d.staleAfter.Seconds() {
			delete(d.cars, carID)
		}
	}
}

func (d *AccidentDetector) nextEventID(now float64) string {
	d.eventCounter++
	return fmt.Sprintf("ACC-%d-%d", int64(now), d.eventCounter)
}

// ActiveAccidents returns a copy of the accidents that have not expired.
func (d *AccidentDetector) ActiveAccidents() []domain.Accident {
	d.mu.Lock()
	defer d.mu.Unlock()

	var active []domain.Accident
	for _, accident := range d.accidents {
		if accident.Active {
			active = append(active, *accident)
		}
	}
	return active
}
