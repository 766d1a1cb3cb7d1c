package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	handler "github.com/ATNoG/pei-automotive-backend/module/core/internal/handler/http"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/handler/subscriber"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/database/postgres"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/publisher/mqttpub"
	"github.com/ATNoG/pei-automotive-backend/module/core/internal/repository/publisher/rabbitmq"
	"github.com/ATNoG/pei-automotive-backend/module/core/service"
)

type Options struct {
	CarUpdatesTopic string
	SpeedLimitKmh   float64
	CarStaleAfter   time.Duration
	Highway         *domain.Corridor
	Entering        *domain.Corridor
}

type Module struct {
	Enricher     *service.PositionEnricher
	Telemetry    *service.TelemetryService
	Speed        *service.SpeedDetector
	Accident     *service.AccidentDetector
	Overtaking   *service.OvertakingDetector
	HighwayEntry *service.HighwayEntryDetector

	gps     *subscriber.GPSHandler
	updates *subscriber.CarUpdateSubscriber
	fleet   *handler.FleetHandler
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) (*Module, error) {
	telemetryRepo := postgres.NewTelemetryRepo(db)
	telemetrySvc := service.NewTelemetryService(telemetryRepo)

	pub := mqttpub.New(mqttClient, opts.CarUpdatesTopic)

	archive, err := rabbitmq.NewAccidentArchive(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("accident archive: %w", err)
	}

	enricher := service.NewPositionEnricher(pub, telemetrySvc, opts.CarStaleAfter)
	speed := service.NewSpeedDetector(opts.SpeedLimitKmh, pub)
	accident := service.NewAccidentDetector(pub, archive, opts.CarStaleAfter)
	overtaking := service.NewOvertakingDetector(pub, opts.CarStaleAfter)
	highwayEntry := service.NewHighwayEntryDetector(pub, opts.Highway, opts.Entering, opts.CarStaleAfter)

	return &Module{
		Enricher:     enricher,
		Telemetry:    telemetrySvc,
		Speed:        speed,
		Accident:     accident,
		Overtaking:   overtaking,
		HighwayEntry: highwayEntry,

		gps:     subscriber.NewGPSHandler(enricher),
		updates: subscriber.NewCarUpdateSubscriber(mqttClient, opts.CarUpdatesTopic, speed, accident, overtaking, highwayEntry),
		fleet:   handler.NewFleetHandler(telemetrySvc, accident),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.fleet.Register(r)
}

// StartSubscribers begins consuming the enriched updates topic. Detector
// state is only mutated by the subscriber's dispatch loop.
func (m *Module) StartSubscribers(ctx context.Context) error {
	return m.updates.Start(ctx)
}

// HandleRawGPS is the Ditto feed callback feeding the enrichment stage.
func (m *Module) HandleRawGPS(carID string, lat, lon float64) {
	m.gps.HandleSample(carID, lat, lon)
}
