package domain

// Accident is a detected sudden-stop event. Once expired it is flipped to
// inactive and retained for the process lifetime.
type Accident struct {
	EventID         string  `json:"event_id"`
	Type            string  `json:"type"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	SourceVehicleID string  `json:"source_vehicle_id"`
	DetectedAt      float64 `json:"detected_at"`
	Active          bool    `json:"active"`
}

// AccidentNotification is sent to a specific car that has the accident ahead
// of it, on both the per-car topic and the general accident topic.
type AccidentNotification struct {
	NotificationType string   `json:"notification_type"`
	TargetCarID      string   `json:"target_car_id"`
	EventID          string   `json:"event_id"`
	Accident         Accident `json:"accident"`
	DistanceM        float64  `json:"distance_m"`
	Timestamp        float64  `json:"timestamp"`
}
