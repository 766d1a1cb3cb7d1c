package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ATNoG/pei-automotive-backend/module/core/domain"
)

// UpdateHandler is implemented by every detector.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u *domain.CarUpdate) error
}

const updateBuffer = 256

// CarUpdateSubscriber consumes the enriched updates topic. Incoming messages
// are parsed on paho's router goroutine and queued; a single dispatch
// goroutine feeds the detectors, so each detector sees one update at a time.
type CarUpdateSubscriber struct {
	client   mqtt.Client
	topic    string
	handlers []UpdateHandler
	updates  chan *domain.CarUpdate
}

func NewCarUpdateSubscriber(client mqtt.Client, topic string, handlers ...UpdateHandler) *CarUpdateSubscriber {
	return &CarUpdateSubscriber{
		client:   client,
		topic:    topic,
		handlers: handlers,
		updates:  make(chan *domain.CarUpdate, updateBuffer),
	}
}

func (s *CarUpdateSubscriber) Start(ctx context.Context) error {
	go s.dispatch(ctx)

	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *CarUpdateSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var u domain.CarUpdate
	if err := json.Unmarshal(msg.Payload(), &u); err != nil {
		log.Printf("invalid car update: %v", err)
		return
	}

	if err := validateUpdate(&u); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	s.updates <- &u
}

func (s *CarUpdateSubscriber) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-s.updates:
			for _, h := range s.handlers {
				if err := h.HandleUpdate(ctx, u); err != nil {
					log.Printf("handle update for %s: %v", u.CarID, err)
				}
			}
		}
	}
}

func validateUpdate(u *domain.CarUpdate) error {
	if u.CarID == "" {
		return fmt.Errorf("car_id: required")
	}
	if u.Latitude < -90 || u.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if u.Longitude < -180 || u.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	return nil
}
