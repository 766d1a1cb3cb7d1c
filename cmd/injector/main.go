// Command injector drives a simulated car along a corridor file, pushing one
// GPS point at a time to the digital twin's HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
)

const thingNamespace = "org.acme"

type gpsProperties struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <car_id> <corridor_file> [interval_ms]\n", os.Args[0])
		os.Exit(1)
	}

	carID := os.Args[1]
	corridorFile := os.Args[2]

	intervalMs := 500
	if len(os.Args) > 3 {
		v, err := strconv.Atoi(os.Args[3])
		if err != nil || v <= 0 {
			fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
			os.Exit(1)
		}
		intervalMs = v
	}

	apiURL := getenv("DITTO_API_URL", "http://localhost:8080")
	user := getenv("DITTO_USER", "ditto")
	pass := getenv("DITTO_PASS", "ditto")

	corridor, err := domain.LoadCorridor(carID, corridorFile)
	if err != nil {
		log.Fatalf("load corridor: %v", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	url := fmt.Sprintf("%s/api/2/things/%s:%s/features/gps/properties", apiURL, thingNamespace, carID)

	log.Printf("driving %s along %s (%d waypoints, every %dms)", carID, corridorFile, len(corridor.Waypoints), intervalMs)

	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	defer ticker.Stop()

	for _, wp := range corridor.Waypoints {
		<-ticker.C

		if err := putGPS(client, url, user, pass, wp); err != nil {
			log.Printf("send position (%.6f, %.6f): %v", wp.Lat, wp.Lon, err)
			continue
		}
		log.Printf("sent (%.6f, %.6f)", wp.Lat, wp.Lon)
	}
}

func putGPS(client *http.Client, url, user, pass string, wp domain.Waypoint) error {
	body, err := json.Marshal(gpsProperties{Latitude: wp.Lat, Longitude: wp.Lon})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(user, pass)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ditto returned %d", resp.StatusCode)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
