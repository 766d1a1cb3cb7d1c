package ditto

import "testing"

func TestParseGPSEvent_ThingID(t *testing.T) {
	raw := []byte(`{"thingId":"org.acme:car-1","value":{"gps":{"properties":{"latitude":40.6283,"longitude":-8.7334}}}}`)

	carID, lat, lon, ok := parseGPSEvent(raw)
	if !ok {
		t.Fatal("expected event to parse")
	}
	if carID != "car-1" {
		t.Errorf("expected car-1, got %s", carID)
	}
	if lat != 40.6283 || lon != -8.7334 {
		t.Errorf("unexpected coordinates: %f, %f", lat, lon)
	}
}

func TestParseGPSEvent_TopicFallback(t *testing.T) {
	raw := []byte(`{"topic":"org.acme/car-2/things/twin/events/modified","value":{"gps":{"properties":{"latitude":1.0,"longitude":2.0}}}}`)

	carID, _, _, ok := parseGPSEvent(raw)
	if !ok {
		t.Fatal("expected event to parse")
	}
	if carID != "car-2" {
		t.Errorf("expected car-2, got %s", carID)
	}
}

func TestParseGPSEvent_Skipped(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"ping", ":keepalive"},
		{"ack", "START-SEND-EVENTS:ACK"},
		{"invalid json", "{nope"},
		{"no car id", `{"value":{"gps":{"properties":{"latitude":1,"longitude":2}}}}`},
		{"missing latitude", `{"thingId":"org.acme:car-3","value":{"gps":{"properties":{"longitude":2}}}}`},
		{"no gps feature", `{"thingId":"org.acme:car-3","value":{"battery":{"properties":{"level":0.5}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, ok := parseGPSEvent([]byte(tt.raw)); ok {
				t.Errorf("expected %q to be skipped", tt.raw)
			}
		})
	}
}
