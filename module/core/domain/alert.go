package domain

const (
	AlertTypeSpeedViolation     = "speed_violation"
	AlertTypeOvertaking         = "overtaking_event"
	AlertTypeHighwayEntrySafe   = "highway_entry_safe"
	AlertTypeHighwayEntryUnsafe = "highway_entry_unsafe"

	NotificationTypeAccident = "accident_alert"
)

type SpeedViolation struct {
	AlertType       string  `json:"alert_type"`
	CarID           string  `json:"car_id"`
	CurrentSpeedKmh float64 `json:"current_speed_kmh"`
	SpeedLimitKmh   float64 `json:"speed_limit_kmh"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Timestamp       float64 `json:"timestamp"`
}

type OvertakingEvent struct {
	AlertType       string  `json:"alert_type"`
	OvertakingCarID string  `json:"overtaking_car_id"`
	OvertakenCarID  string  `json:"overtaken_car_id"`
	SpeedKmh        float64 `json:"speed_kmh"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Timestamp       float64 `json:"timestamp"`
}

// HighwayEntryAssessment is published when an entering car reaches the merge
// point with highway traffic inside the entry zone. TimeToClosestApproachS
// is only set on unsafe assessments.
type HighwayEntryAssessment struct {
	AlertType              string   `json:"alert_type"`
	EnteringCarID          string   `json:"entering_car_id"`
	HighwayCarID           string   `json:"highway_car_id"`
	EnteringSpeedKmh       float64  `json:"entering_speed_kmh"`
	HighwaySpeedKmh        float64  `json:"highway_speed_kmh"`
	PredictedMinDistanceM  float64  `json:"predicted_min_distance_m"`
	TimeToClosestApproachS *float64 `json:"time_to_closest_approach_s,omitempty"`
	Status                 string   `json:"status"`
	Latitude               float64  `json:"latitude"`
	Longitude              float64  `json:"longitude"`
	Timestamp              float64  `json:"timestamp"`
}
