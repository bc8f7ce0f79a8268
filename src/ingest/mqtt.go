package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sensor-dashboard/src/helpers"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const connectTimeout = 10 * time.Second

// -----------------------------------------------------------------------------
// MQTTSource subscribes to the sensor topic on an MQTT broker.
// -----------------------------------------------------------------------------

type MQTTSource struct {
	Config models.MMQTTConfig
	Logger *logger.Logger

	mu     sync.Mutex
	client mqtt.Client
}

// -----------------------------------------------------------------------------

func NewMQTTSource(cfg models.MMQTTConfig, log *logger.Logger) *MQTTSource {
	return &MQTTSource{
		Config: cfg,
		Logger: log,
	}
}

func (s *MQTTSource) Name() string {
	return "mqtt:" + s.Config.Topic
}

// -----------------------------------------------------------------------------

// Start connects and subscribes. The subscription is renewed on every
// reconnect; cancelling ctx disconnects the client.
func (s *MQTTSource) Start(ctx context.Context, outputChan chan<- models.MSensorMessage, wg *sync.WaitGroup) error {
	handler := s.handler(ctx, outputChan)

	opts := mqtt.NewClientOptions().
		AddBroker(s.Config.Broker).
		SetClientID(s.Config.ClientID).
		SetKeepAlive(time.Duration(s.Config.KeepAlive) * time.Second).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(c mqtt.Client) {
			token := c.Subscribe(s.Config.Topic, s.Config.QoS, handler)
			if token.WaitTimeout(connectTimeout) && token.Error() != nil {
				s.Logger.Error("Subscribe to %s failed: %v", s.Config.Topic, token.Error())
				return
			}
			s.Logger.Info("Subscribed to %s on %s", s.Config.Topic, s.Config.Broker)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.Logger.Warning("MQTT connection lost: %v", err)
		})
	if s.Config.Username != "" {
		opts.SetUsername(s.Config.Username)
		opts.SetPassword(s.Config.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return helpers.NewIngestError(fmt.Sprintf("timed out connecting to %s", s.Config.Broker), nil)
	}
	if err := token.Error(); err != nil {
		return helpers.NewIngestError(fmt.Sprintf("failed to connect to %s", s.Config.Broker), err)
	}

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// -----------------------------------------------------------------------------

func (s *MQTTSource) handler(ctx context.Context, out chan<- models.MSensorMessage) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		msg, err := Decode(m.Payload())
		if err != nil {
			s.Logger.Warning("Dropping message on %s: %v", m.Topic(), err)
			return
		}
		deliver(ctx, out, msg)
	}
}

// -----------------------------------------------------------------------------

func (s *MQTTSource) Stop() error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	client.Unsubscribe(s.Config.Topic).WaitTimeout(time.Second)
	client.Disconnect(250)
	s.Logger.Info("Disconnected from %s", s.Config.Broker)
	return nil
}
