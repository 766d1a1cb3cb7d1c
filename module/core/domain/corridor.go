package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

type Waypoint struct {
	Lat float64
	Lon float64
}

// Corridor is an ordered, immutable polyline of waypoints representing a
// road segment. Used only for proximity-based role classification.
type Corridor struct {
	Name      string
	Waypoints []Waypoint
}

// MergePoint returns the last waypoint of the corridor, which for an
// entering lane is where it joins the highway.
func (c *Corridor) MergePoint() (Waypoint, bool) {
	if len(c.Waypoints) == 0 {
		return Waypoint{}, false
	}
	return c.Waypoints[len(c.Waypoints)-1], true
}

// LoadCorridor reads a corridor from a JSON file holding an ordered array of
// [latitude, longitude] pairs.
func LoadCorridor(name, path string) (*Corridor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corridor %s: %w", name, err)
	}

	var pairs [][]float64
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, fmt.Errorf("parse corridor %s: %w", name, err)
	}

	waypoints := make([]Waypoint, 0, len(pairs))
	for i, p := range pairs {
		if len(p) < 2 {
			return nil, fmt.Errorf("parse corridor %s: waypoint %d has %d coordinates", name, i, len(p))
		}
		waypoints = append(waypoints, Waypoint{Lat: p[0], Lon: p[1]})
	}

	return &Corridor{Name: name, Waypoints: waypoints}, nil
}
