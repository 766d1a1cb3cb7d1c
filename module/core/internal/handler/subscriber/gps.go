package subscriber

import (
	"context"
	"log"
)

type positionService interface {
	ProcessSample(ctx context.Context, carID string, lat, lon float64) error
}

// GPSHandler bridges raw digital-twin GPS samples into the enrichment stage.
type GPSHandler struct {
	positions positionService
}

func NewGPSHandler(positions positionService) *GPSHandler {
	return &GPSHandler{positions: positions}
}

// HandleSample matches the Ditto feed callback signature. Failures only
// affect the sample being processed.
func (h *GPSHandler) HandleSample(carID string, lat, lon float64) {
	if err := h.positions.ProcessSample(context.Background(), carID, lat, lon); err != nil {
		log.Printf("process gps sample for %s: %v", carID, err)
	}
}
