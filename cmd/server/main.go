package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/ATNoG/pei-automotive-backend/config"
	"github.com/ATNoG/pei-automotive-backend/module/core"
	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
	"github.com/ATNoG/pei-automotive-backend/pkg/ditto"
)

func main() {
	cfg := config.Load()

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	highway, err := domain.LoadCorridor("highway", filepath.Join(cfg.RoadsDir, "highway.json"))
	if err != nil {
		log.Fatalf("highway corridor: %v", err)
	}
	entering, err := domain.LoadCorridor("entering", filepath.Join(cfg.RoadsDir, "entering.json"))
	if err != nil {
		log.Fatalf("entering corridor: %v", err)
	}

	coreModule, err := core.Build(db, amqpConn, mqttClient, core.Options{
		CarUpdatesTopic: cfg.CarUpdatesTopic,
		SpeedLimitKmh:   cfg.SpeedLimitKmh,
		CarStaleAfter:   cfg.CarStaleAfter,
		Highway:         highway,
		Entering:        entering,
	})
	if err != nil {
		log.Fatalf("core module: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := coreModule.StartSubscribers(ctx); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	feed := ditto.NewClient(cfg.DittoWSURL, cfg.DittoUser, cfg.DittoPass, coreModule.HandleRawGPS)

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, feed)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feed.Run(ctx)
	})
	g.Go(func() error {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server: %v", err)
	}
	log.Println("shutting down")
}
