package domain

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCorridorFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corridor.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCorridor(t *testing.T) {
	path := writeCorridorFile(t, `[[40.0, -8.0], [40.001, -8.001], [40.002, -8.002]]`)

	c, err := LoadCorridor("highway", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "highway" {
		t.Errorf("expected highway, got %s", c.Name)
	}
	if len(c.Waypoints) != 3 {
		t.Fatalf("expected 3 waypoints, got %d", len(c.Waypoints))
	}
	if c.Waypoints[0].Lat != 40.0 || c.Waypoints[0].Lon != -8.0 {
		t.Errorf("unexpected first waypoint: %+v", c.Waypoints[0])
	}

	mp, ok := c.MergePoint()
	if !ok {
		t.Fatal("expected a merge point")
	}
	if mp.Lat != 40.002 || mp.Lon != -8.002 {
		t.Errorf("expected last waypoint as merge point, got %+v", mp)
	}
}

func TestLoadCorridor_MissingFile(t *testing.T) {
	if _, err := LoadCorridor("highway", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadCorridor_InvalidJSON(t *testing.T) {
	path := writeCorridorFile(t, `{"not": "a corridor"}`)
	if _, err := LoadCorridor("highway", path); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadCorridor_ShortWaypoint(t *testing.T) {
	path := writeCorridorFile(t, `[[40.0, -8.0], [40.001]]`)
	if _, err := LoadCorridor("highway", path); err == nil {
		t.Fatal("expected error")
	}
}

func TestMergePoint_EmptyCorridor(t *testing.T) {
	c := &Corridor{Name: "entering"}
	if _, ok := c.MergePoint(); ok {
		t.Fatal("expected no merge point for empty corridor")
	}
}
