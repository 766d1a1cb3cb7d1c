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
	entryZoneM           = 100.0
	mergePointDetectionM = 20.0
	collisionThresholdM  = 10.0
	predictionWindowS    = 5.0
	predictionStepS      = 0.1

	// entering is checked first with a tighter threshold so it wins over the
	// highway near the merge point
	enteringRouteThresholdM = 15.0
	highwayRouteThresholdM  = 25.0

	metersPerDegree = 111000.0
)

type roadRole string

const (
	roleEntering roadRole = "entering"
	roleHighway  roadRole = "highway"
)

// HighwayEntryDetector classifies cars onto the highway or the entering lane
// by corridor proximity and, when an entering car reaches the merge point,
// predicts whether merging now would bring it within the collision threshold
// of any highway car in the entry zone.
type HighwayEntryDetector struct {
	alerts     publisher.HighwayEntryAlertPublisher
	staleAfter time.Duration

	highway  *domain.Corridor
	entering *domain.Corridor

	mergePoint    domain.Waypoint
	hasMergePoint bool

	cars         map[string]*domain.CarUpdate
	highwayCars  map[string]struct{}
	enteringCars map[string]struct{}
	alertedPairs map[domain.CarPair]struct{}

	now func() time.Time
}

func NewHighwayEntryDetector(alerts publisher.HighwayEntryAlertPublisher, highway, entering *domain.Corridor, staleAfter time.Duration) *HighwayEntryDetector {
	d := &HighwayEntryDetector{
		alerts:       alerts,
		staleAfter:   staleAfter,
		highway:      highway,
		entering:     entering,
		cars:         make(map[string]*domain.CarUpdate),
		highwayCars:  make(map[string]struct{}),
		enteringCars: make(map[string]struct{}),
		alertedPairs: make(map[domain.CarPair]struct{}),
		now:          time.Now,
	}

	d.mergePoint, d.hasMergePoint = entering.MergePoint()
	if d.hasMergePoint {
		log.Printf("merge point identified at (%.6f, %.6f)", d.mergePoint.Lat, d.mergePoint.Lon)
	} else {
		log.Printf("entering corridor is empty, merge detection disabled")
	}

	return d
}

func (d *HighwayEntryDetector) HandleUpdate(ctx context.Context, u *domain.CarUpdate) error {
	// track every car, even without kinematics
	d.cars[u.CarID] = u
	d.pruneStale(domain.UnixSeconds(d.now()))

	if !u.HasKinematics() || *u.SpeedKmh == 0 {
		return nil
	}

	switch d.classify(u) {
	case roleEntering:
		d.enteringCars[u.CarID] = struct{}{}
		delete(d.highwayCars, u.CarID)

		if d.distanceToMerge(u.Latitude, u.Longitude) < mergePointDetectionM {
			d.assessMerge(ctx, u)
		}

	case roleHighway:
		d.highwayCars[u.CarID] = struct{}{}
		delete(d.enteringCars, u.CarID)

		// once the car leaves the merge area, allow fresh alerts for it
		if d.distanceToMerge(u.Latitude, u.Longitude) > entryZoneM*2 {
			for pair := range d.alertedPairs {
				if pair.Involves(u.CarID) {
					delete(d.alertedPairs, pair)
				}
			}
		}
	}

	return nil
}

// assessMerge runs collision prediction against every highway car currently
// inside the entry zone and publishes one assessment per pair per approach.
func (d *HighwayEntryDetector) assessMerge(ctx context.Context, entering *domain.CarUpdate) {
	for highwayID := range d.highwayCars {
		highway, tracked := d.cars[highwayID]
		if !tracked {
			continue
		}
		if !highway.HasKinematics() || *highway.SpeedKmh == 0 {
			continue
		}
		if d.distanceToMerge(highway.Latitude, highway.Longitude) >= entryZoneM {
			continue
		}

		pair := domain.CarPair{First: entering.CarID, Second: highwayID}
		if _, alerted := d.alertedPairs[pair]; alerted {
			continue
		}

		collision, ttc, minDist := predictCollision(entering, highway)

		assessment := &domain.HighwayEntryAssessment{
			EnteringCarID:         entering.CarID,
			HighwayCarID:          highwayID,
			EnteringSpeedKmh:      *entering.SpeedKmh,
			HighwaySpeedKmh:       *highway.SpeedKmh,
			PredictedMinDistanceM: round2(minDist),
			Latitude:              entering.Latitude,
			Longitude:             entering.Longitude,
			Timestamp:             domain.UnixSeconds(d.now()),
		}

		if collision {
			assessment.AlertType = domain.AlertTypeHighwayEntryUnsafe
			assessment.Status = "unsafe"
			assessment.TimeToClosestApproachS = domain.Float64(round2(ttc))
			log.Printf("[HIGHWAY ENTRY - UNSAFE] %s cannot merge, collision risk with %s (min %.1fm)",
				entering.CarID, highwayID, minDist)
		} else {
			assessment.AlertType = domain.AlertTypeHighwayEntrySafe
			assessment.Status = "safe"
			log.Printf("[HIGHWAY ENTRY - SAFE] %s can merge, min distance to %s %.1fm",
				entering.CarID, highwayID, minDist)
		}

		if err := d.alerts.PublishHighwayEntryAssessment(ctx, assessment); err != nil {
			log.Printf("publish highway entry assessment: %v", err)
			continue
		}
		d.alertedPairs[pair] = struct{}{}
	}
}

func (d *HighwayEntryDetector) classify(u *domain.CarUpdate) roadRole {
	if nearCorridor(u.Latitude, u.Longitude, d.entering, enteringRouteThresholdM) {
		return roleEntering
	}
	if nearCorridor(u.Latitude, u.Longitude, d.highway, highwayRouteThresholdM) {
		return roleHighway
	}
	return ""
}

func (d *HighwayEntryDetector) distanceToMerge(lat, lon float64) float64 {
	if !d.hasMergePoint {
		return math.Inf(1)
	}
	return geo.DistanceM(lat, lon, d.mergePoint.Lat, d.mergePoint.Lon)
}

func nearCorridor(lat, lon float64, c *domain.Corridor, thresholdM float64) bool {
	for _, wp := range c.Waypoints {
		if geo.DistanceM(lat, lon, wp.Lat, wp.Lon) < thresholdM {
			return true
		}
	}
	return false
}

// predictCollision extrapolates both cars at constant velocity along their
// headings in 0.1s steps over the prediction window, on a local planar
// approximation, and reports the minimum separation and when it occurs.
func predictCollision(entering, highway *domain.CarUpdate) (collision bool, ttc, minDist float64) {
	currentDist := geo.DistanceM(entering.Latitude, entering.Longitude, highway.Latitude, highway.Longitude)
	if currentDist < collisionThresholdM {
		return true, 0, currentDist
	}

	enteringSpeedMS := *entering.SpeedKmh / 3.6
	highwaySpeedMS := *highway.SpeedKmh / 3.6

	minDist = currentDist
	steps := int(predictionWindowS / predictionStepS)
	for step := 1; step < steps; step++ {
		t := float64(step) * predictionStepS

		eLat, eLon := extrapolate(entering.Latitude, entering.Longitude, *entering.HeadingDeg, enteringSpeedMS*t)
		hLat, hLon := extrapolate(highway.Latitude, highway.Longitude, *highway.HeadingDeg, highwaySpeedMS*t)

		dist := geo.DistanceM(eLat, eLon, hLat, hLon)
		if dist < minDist {
			minDist = dist
			ttc = t
		}
	}

	return minDist < collisionThresholdM, ttc, minDist
}

// extrapolate moves a point by distM along headingDeg (0 = north, 90 = east)
// using the flat-earth approximation of 111,000 m per degree.
func extrapolate(lat, lon, headingDeg, distM float64) (float64, float64) {
	headingRad := headingDeg * math.Pi / 180

	dLat := distM * math.Cos(headingRad) / metersPerDegree
	dLon := distM * math.Sin(headingRad) / (metersPerDegree * math.Cos(lat*math.Pi/180))

	return lat + dLat, lon + dLon
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (d *HighwayEntryDetector) pruneStale(now float64) {
	for carID, u := range d.cars {
		if now-u.Timestamp > d.staleAfter.Seconds() {
			delete(d.cars, carID)
			delete(d.highwayCars, carID)
			delete(d.enteringCars, carID)
			for pair := range d.alertedPairs {
				if pair.Involves(carID) {
					delete(d.alertedPairs, pair)
				}
			}
		}
	}
}
