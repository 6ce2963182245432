package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"faceswap-go/internal/config"
	"faceswap-go/internal/core/models"
)

// Client veröffentlicht Swap-Ereignisse an einen MQTT-Broker
type Client struct {
	config      config.MQTTConfig
	client      mqtt.Client
	isConnected bool
}

// SwapEvent ist die Nachricht, die nach jedem abgeschlossenen Auftrag
// veröffentlicht wird
type SwapEvent struct {
	ID           uint      `json:"id"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	OutputFormat string    `json:"output_format,omitempty"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewClient erstellt einen neuen MQTT-Client
func NewClient(cfg config.MQTTConfig) *Client {
	return &Client{
		config: cfg,
	}
}

// Start startet den MQTT-Client und verbindet ihn mit dem Broker
func (c *Client) Start() error {
	if !c.config.Enabled {
		log.Info("MQTT client is disabled in configuration")
		return nil
	}

	// MQTT-Client-Optionen konfigurieren
	opts := mqtt.NewClientOptions()

	// Broker-URL erstellen
	brokerURL := fmt.Sprintf("tcp://%s:%d", c.config.Broker, c.config.Port)
	opts.AddBroker(brokerURL)

	// Client-ID
	opts.SetClientID(c.config.ClientID)

	// Optionale Authentifizierung
	if c.config.Username != "" {
		opts.SetUsername(c.config.Username)
		opts.SetPassword(c.config.Password)
	}

	// Connection-Callbacks konfigurieren
	opts.SetOnConnectHandler(c.onConnectHandler)
	opts.SetConnectionLostHandler(c.connectionLostHandler)

	// Automatische Wiederverbindung
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Minute)

	c.client = mqtt.NewClient(opts)

	// Verbindung herstellen
	log.Infof("Connecting to MQTT broker at %s", brokerURL)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		log.Errorf("Failed to connect to MQTT broker: %v", token.Error())
		return token.Error()
	}

	log.Info("MQTT client connected successfully")
	return nil
}

// Stop beendet den MQTT-Client
func (c *Client) Stop() {
	if c.client != nil && c.client.IsConnected() {
		log.Info("Disconnecting MQTT client...")
		c.client.Disconnect(250) // 250ms Wartezeit
		c.isConnected = false
		log.Info("MQTT client disconnected")
	}
}

// IsConnected prüft, ob der Client verbunden ist
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// onConnectHandler wird aufgerufen, wenn die Verbindung hergestellt wurde
func (c *Client) onConnectHandler(client mqtt.Client) {
	log.Infof("Connected to MQTT broker at %s:%d", c.config.Broker, c.config.Port)
	c.isConnected = true
}

// connectionLostHandler wird aufgerufen, wenn die Verbindung verloren geht
func (c *Client) connectionLostHandler(client mqtt.Client, err error) {
	log.Errorf("MQTT connection lost: %v", err)
	c.isConnected = false
}

// PublishSwapEvent veröffentlicht das Ergebnis eines Swap-Auftrags.
// Fehler werden nur geloggt; die Verarbeitung hängt nicht vom Broker ab.
func (c *Client) PublishSwapEvent(record *models.SwapRecord) {
	if !c.IsConnected() {
		return
	}

	event := SwapEvent{
		ID:           record.ID,
		Status:       record.Status,
		Error:        record.Error,
		OutputFormat: record.OutputFormat,
		Width:        record.Width,
		Height:       record.Height,
		DurationMs:   record.DurationMs,
		Timestamp:    record.CreatedAt,
	}

	if err := c.publish(c.config.Topic, event); err != nil {
		log.Errorf("Failed to publish swap event: %v", err)
	}
}

// publish veröffentlicht eine Nachricht an ein MQTT-Topic
func (c *Client) publish(topic string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	token := c.client.Publish(topic, 1, false, payloadBytes)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", topic, token.Error())
	}

	log.Debugf("Published message to topic: %s", topic)
	return nil
}
