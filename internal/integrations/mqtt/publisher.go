// Package mqtt publishes detection events for downstream automations.
// Publishing is fire-and-forget and never affects the HTTP response.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"moodtunes/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// DetectionEvent is the payload published after each successful detection.
type DetectionEvent struct {
	RequestID   string    `json:"request_id"`
	Emotion     string    `json:"emotion"`
	Artist      string    `json:"artist"`
	Language    string    `json:"language"`
	PlaylistURL string    `json:"playlist_url,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher sends detection events to the configured broker.
type Publisher struct {
	cfg    config.MQTTConfig
	client mqtt.Client
}

// NewPublisher creates and connects the MQTT publisher.
func NewPublisher(cfg config.MQTTConfig) (*Publisher, error) {
	opts := mqtt.NewClientOptions()

	brokerURL := fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port)
	opts.AddBroker(brokerURL)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Minute)

	client := mqtt.NewClient(opts)

	log.Infof("Connecting to MQTT broker at %s", brokerURL)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	log.Info("MQTT publisher connected")

	return &Publisher{cfg: cfg, client: client}, nil
}

// Publish sends a detection event, QoS 0. Errors are logged and swallowed.
func (p *Publisher) Publish(event DetectionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("Failed to marshal detection event")
		return
	}

	token := p.client.Publish(p.cfg.Topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).Warnf("Failed to publish detection event to %s", p.cfg.Topic)
		}
	}()
}

// Stop disconnects from the broker.
func (p *Publisher) Stop() {
	if p.client != nil && p.client.IsConnected() {
		log.Info("Disconnecting MQTT publisher...")
		p.client.Disconnect(250)
	}
}
