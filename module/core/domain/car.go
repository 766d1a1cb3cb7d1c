package domain

import "time"

// CarUpdate is the enriched kinematic sample flowing through every detector.
// SpeedKmh and HeadingDeg are nil when the enricher could not derive them;
// that is a normal output state, not an error.
type CarUpdate struct {
	CarID      string   `json:"car_id"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	SpeedKmh   *float64 `json:"speed_kmh"`
	HeadingDeg *float64 `json:"heading_deg"`
	Timestamp  float64  `json:"timestamp"`
}

// HasKinematics reports whether both speed and heading are known.
func (u *CarUpdate) HasKinematics() bool {
	return u.SpeedKmh != nil && u.HeadingDeg != nil
}

// CarPair is an explicit ordered pair key. Ordering matters: for overtaking
// the first element is the observer, for highway entry it is the entering
// car.
type CarPair struct {
	First  string
	Second string
}

// Involves reports whether carID is either element of the pair.
func (p CarPair) Involves(carID string) bool {
	return p.First == carID || p.Second == carID
}

type Car struct {
	CarID string `json:"car_id"`
}

type HistoryQuery struct {
	CarID string
	Start time.Time
	End   time.Time
}

// UnixSeconds converts a time.Time to epoch seconds, the wire representation
// used by every payload in the system.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// TimeFromUnixSeconds is the inverse of UnixSeconds.
func TimeFromUnixSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second)))
}

// Float64 returns a pointer to v. Convenience for optional fields.
func Float64(v float64) *float64 {
	return &v
}
